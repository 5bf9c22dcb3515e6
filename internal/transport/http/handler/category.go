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

type CategoryHandler struct {
	svc *service.CategoryService
}

func NewCategoryHandler(s *service.CategoryService) *CategoryHandler { return &CategoryHandler{svc: s} }

type categoryIn struct {
	Name string `json:"name"`
}

func (h *CategoryHandler) MountAPI(_, authed ez.EZ) {
	g := authed.Group("/category")

	ez.RegisterAction(g, ez.Action[categoryIn, *domain.Category]{
		Method:  http.MethodPost,
		Path:    "",
		Binder:  ez.BindJSON,
		Auth:    true,
		Status:  http.StatusCreated,
		Message: "Category created successfully",
		Handler: func(c *gin.Context, in *categoryIn) (*domain.Category, error) {
			return h.svc.Create(c.Request.Context(), c.GetString(ez.KeyUserID), in.Name)
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, *query.Result[domain.Category]]{
		Method:  http.MethodGet,
		Path:    "",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: "Categories retrieved successfully",
		Handler: func(c *gin.Context, _ *struct{}) (*query.Result[domain.Category], error) {
			p, o := query.Pick(c.Request.URL.Query(), repo.CategorySpec)
			return h.svc.List(c.Request.Context(), c.GetString(ez.KeyUserID), p, o)
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, *domain.Category]{
		Method:  http.MethodGet,
		Path:    "/:id",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: "Category retrieved successfully",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Category, error) {
			return h.svc.Get(c.Request.Context(), c.GetString(ez.KeyUserID), c.Param("id"))
		},
	})

	ez.RegisterAction(g, ez.Action[service.CategoryUpdate, *domain.Category]{
		Method:  http.MethodPut,
		Path:    "/:id",
		Binder:  ez.BindJSON,
		Auth:    true,
		Message: "Category updated successfully",
		Handler: func(c *gin.Context, in *service.CategoryUpdate) (*domain.Category, error) {
			return h.svc.Update(c.Request.Context(), c.GetString(ez.KeyUserID), c.Param("id"), *in)
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, gin.H]{
		Method:  http.MethodDelete,
		Path:    "/:id",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: "Category deleted successfully",
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.svc.Delete(c.Request.Context(), c.GetString(ez.KeyUserID), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
