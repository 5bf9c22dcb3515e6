package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-notes/internal/domain"
	"go-gin-gorm-notes/internal/query"
	"go-gin-gorm-notes/internal/repo"
	"go-gin-gorm-notes/internal/service"
	"go-gin-gorm-notes/internal/transport/http/ez"
)

// AdminHandler 管理端：用户列表 / 封禁
type AdminHandler struct {
	svc *service.UserService
}

func NewAdminHandler(s *service.UserService) *AdminHandler { return &AdminHandler{svc: s} }

func (h *AdminHandler) MountAdmin(admin ez.EZ) {
	// --- GET /admin/v1/users  用户列表 ---
	ez.RegisterAction(admin, ez.Action[struct{}, *query.Result[domain.User]]{
		Method:  http.MethodGet,
		Path:    "/users",
		Binder:  ez.BindNone,
		Auth:    true,
		Roles:   []string{domain.RoleAdmin},
		Message: "Users retrieved successfully",
		Handler: func(c *gin.Context, _ *struct{}) (*query.Result[domain.User], error) {
			p, o := query.Pick(c.Request.URL.Query(), repo.UserSpec)
			return h.svc.List(c.Request.Context(), p, o)
		},
	})

	// --- POST /admin/v1/users/:id/ban  封禁（软删） ---
	ez.RegisterAction(admin, ez.Action[struct{}, gin.H]{
		Method:  http.MethodPost,
		Path:    "/users/:id/ban",
		Binder:  ez.BindNone,
		Auth:    true,
		Roles:   []string{domain.RoleAdmin},
		Message: "User banned successfully",
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if id == c.GetString(ez.KeyUserID) {
				return nil, domain.BadRequest("Cannot ban yourself")
			}
			if err := h.svc.Ban(c.Request.Context(), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
