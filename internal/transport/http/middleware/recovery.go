package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "go-gin-gorm-notes/internal/transport/http/response"
)

// RecoveryResponse 是 ginzap.CustomRecoveryWithZap 的兜底响应
func RecoveryResponse(c *gin.Context, _ any) {
	resp.Abort(c, http.StatusInternalServerError, "internal error")
}
