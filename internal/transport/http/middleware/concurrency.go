package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "go-gin-gorm-notes/internal/transport/http/response"
)

// ConcurrencyLimit 限制同时处理的请求数；排队最多 wait，超过返回 503 + Retry-After
func ConcurrencyLimit(max int64, wait time.Duration) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	retryAfter := strconv.Itoa(max1(int(wait.Seconds())))
	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
			err := sem.Acquire(ctx, 1)
			cancel()
			if err != nil {
				c.Header("Retry-After", retryAfter)
				resp.Abort(c, http.StatusServiceUnavailable, "Server is busy, please retry")
				return
			}
		}
		defer sem.Release(1)
		c.Next()
	}
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
