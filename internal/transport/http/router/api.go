package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-gorm-notes/internal/core/config"
	"go-gin-gorm-notes/internal/core/server"
	"go-gin-gorm-notes/internal/transport/http/ez"
	mdw "go-gin-gorm-notes/internal/transport/http/middleware"
)

// Deps 是两个 HTTP 入口共用的依赖
type Deps struct {
	Log     *zap.Logger
	Cfg     *config.Config
	Auth    mdw.Authenticator
	Modules *Registry
}

func baseEngine(d Deps) *gin.Engine {
	r := server.NewRouter(d.Log, server.Options{
		AllowOrigins: d.Cfg.CORS.AllowOrigins,
		Recovery:     mdw.RecoveryResponse,
	})

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300, 2*time.Second),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	// 健康检查 + 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", mdw.MetricsHandler())
	return r
}

func ezOptions(d Deps) ez.Options {
	return ez.Options{Log: d.Log, ShowStack: !d.Cfg.App.IsProduction()}
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := baseEngine(d)

	// 前缀
	api := r.Group("/api")

	// 鉴权分组：Bearer access token 或 refresh cookie
	authUser := api.Group("")
	authUser.Use(mdw.AuthJWT(d.Auth, d.Cfg.Auth.CookieName))

	opt := ezOptions(d)
	d.Modules.MountAPI(ez.New(api, opt), ez.New(authUser, opt))
	return r
}
