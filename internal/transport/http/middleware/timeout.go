package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	resp "go-gin-gorm-notes/internal/transport/http/response"
)

var errRequestTimeout = errors.New("request timeout")

// Timeout 给请求上下文加截止时间。只有本中间件的截止时间触发、且尚未写出响应时才返回 504；
// 客户端断开或上游更早的 deadline 不算超时
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeoutCause(c.Request.Context(), d, errRequestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if c.Writer.Written() || !errors.Is(context.Cause(ctx), errRequestTimeout) {
			return
		}
		resp.Abort(c, http.StatusGatewayTimeout, "Request timed out")
	}
}
