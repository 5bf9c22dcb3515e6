package router

import (
	"github.com/gin-gonic/gin"

	"go-gin-gorm-notes/internal/domain"
	"go-gin-gorm-notes/internal/transport/http/ez"
	mdw "go-gin-gorm-notes/internal/transport/http/middleware"
)

func NewAdminEngine(d Deps) *gin.Engine {
	r := baseEngine(d)

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.Auth, d.Cfg.Auth.CookieName, domain.RoleAdmin))

	d.Modules.MountAdmin(ez.New(admin, ezOptions(d)))
	return r
}
