package middleware

import (
	"github.com/gin-gonic/gin"

	"go-gin-gorm-notes/pkg/utils"
)

const (
	KeyRequestID = "X-Request-ID"
	maxRIDLen    = 64
)

// RequestID 沿用上游传入的 id（仅限安全字符），否则生成新的
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(KeyRequestID)
		if !validRID(rid) {
			rid = utils.NewID()
		}
		c.Header(KeyRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Next()
	}
}

func validRID(s string) bool {
	if s == "" || len(s) > maxRIDLen {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return false
		}
	}
	return true
}
