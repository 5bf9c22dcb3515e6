package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-notes/internal/core/auth"
	"go-gin-gorm-notes/internal/domain"
	"go-gin-gorm-notes/internal/transport/http/ez"
	resp "go-gin-gorm-notes/internal/transport/http/response"
)

const KeyUser = "user"

// Authenticator 校验令牌并返回仍然存在的用户
type Authenticator interface {
	Authenticate(ctx context.Context, kind auth.Kind, token string) (*domain.User, error)
}

// AuthJWT 优先读取 Bearer access token，缺失时退回 refresh cookie
func AuthJWT(a Authenticator, cookieName string, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, tok := auth.KindAccess, ""
		if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
			tok = strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
		}
		if tok == "" && cookieName != "" {
			if ck, err := c.Cookie(cookieName); err == nil && ck != "" {
				kind, tok = auth.KindRefresh, ck
			}
		}
		if tok == "" {
			ObserveAuth("missing")
			resp.Abort(c, http.StatusUnauthorized, "You are not authorized")
			return
		}

		u, err := a.Authenticate(c.Request.Context(), kind, tok)
		if err != nil {
			code := domain.CodeOf(err)
			if code == http.StatusUnauthorized {
				ObserveAuth("invalid")
			}
			resp.Abort(c, code, err.Error())
			return
		}
		if len(roles) > 0 && !hasRole(u.Role, roles) {
			ObserveAuth("forbidden")
			resp.Abort(c, http.StatusForbidden, "Forbidden")
			return
		}
		ObserveAuth("ok")
		c.Set(ez.KeyUserID, u.ID)
		c.Set(ez.KeyRole, u.Role)
		c.Set(KeyUser, u)
		c.Next()
	}
}

func hasRole(role string, roles []string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
