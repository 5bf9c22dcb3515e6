package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// cookies 统一 refresh token / oauth state 的写法
type cookies struct {
	refreshName string
	refreshTTL  time.Duration
	stateTTL    time.Duration
	secure      bool // 生产环境只走 https
}

const stateCookie = "oauth_state"

func (k cookies) setRefresh(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(k.refreshName, token, int(k.refreshTTL.Seconds()), "/", "", k.secure, true)
}

// state cookie 要在第三方回跳时带上，只能用 Lax
func (k cookies) setState(c *gin.Context, state string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, int(k.stateTTL.Seconds()), "/", "", k.secure, true)
}

func (k cookies) clearState(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, "", -1, "/", "", k.secure, true)
}
