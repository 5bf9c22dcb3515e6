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

type NoteHandler struct {
	svc *service.NoteService
}

func NewNoteHandler(s *service.NoteService) *NoteHandler { return &NoteHandler{svc: s} }

func (h *NoteHandler) MountAPI(_, authed ez.EZ) {
	g := authed.Group("/note")

	// 创建和更新都是 multipart：data(JSON) + image(可选)
	ez.RegisterAction(g, ez.Action[service.NoteInput, *domain.Note]{
		Method:  http.MethodPost,
		Path:    "",
		Binder:  ez.BindMultipart,
		Auth:    true,
		Status:  http.StatusCreated,
		Message: "Note created successfully",
		Handler: func(c *gin.Context, in *service.NoteInput) (*domain.Note, error) {
			img, done, err := ez.FormImage(c, "image")
			defer done()
			if err != nil {
				return nil, err
			}
			return h.svc.Create(c.Request.Context(), c.GetString(ez.KeyUserID), *in, img)
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, *query.Result[domain.Note]]{
		Method:  http.MethodGet,
		Path:    "",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: "Notes retrieved successfully",
		Handler: func(c *gin.Context, _ *struct{}) (*query.Result[domain.Note], error) {
			p, o := query.Pick(c.Request.URL.Query(), repo.NoteSpec)
			return h.svc.List(c.Request.Context(), c.GetString(ez.KeyUserID), p, o)
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, *domain.Note]{
		Method:  http.MethodGet,
		Path:    "/:id",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: "Note retrieved successfully",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Note, error) {
			return h.svc.Get(c.Request.Context(), c.GetString(ez.KeyUserID), c.Param("id"))
		},
	})

	ez.RegisterAction(g, ez.Action[service.NoteUpdate, *domain.Note]{
		Method:  http.MethodPut,
		Path:    "/:id",
		Binder:  ez.BindMultipart,
		Auth:    true,
		Message: "Note updated successfully",
		Handler: func(c *gin.Context, in *service.NoteUpdate) (*domain.Note, error) {
			img, done, err := ez.FormImage(c, "image")
			defer done()
			if err != nil {
				return nil, err
			}
			return h.svc.Update(c.Request.Context(), c.GetString(ez.KeyUserID), c.Param("id"), *in, img)
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, gin.H]{
		Method:  http.MethodDelete,
		Path:    "/:id",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: "Note deleted successfully",
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.svc.Delete(c.Request.Context(), c.GetString(ez.KeyUserID), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
