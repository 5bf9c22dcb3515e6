package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "go-gin-gorm-notes/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小。声明的 Content-Length 超限直接 413；
// 未声明长度的请求读到上限时由绑定层报 413（见 ez.RegisterAction）
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
