package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"go-gin-gorm-notes/internal/core/storage"
	"go-gin-gorm-notes/internal/domain"
	"go-gin-gorm-notes/internal/query"
	"go-gin-gorm-notes/pkg/utils"
)

type NoteInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// NoteUpdate 只更新非 nil 字段
type NoteUpdate struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

type NoteService struct {
	users    domain.UserRepository
	cats     domain.CategoryRepository
	notes    domain.NoteRepository
	uploader storage.Uploader
	log      *zap.Logger
}

func NewNoteService(users domain.UserRepository, cats domain.CategoryRepository, notes domain.NoteRepository, up storage.Uploader, l *zap.Logger) *NoteService {
	if up == nil {
		up = storage.Disabled{}
	}
	return &NoteService{users: users, cats: cats, notes: notes, uploader: up, log: l}
}

// ownedCategory 分类必须属于同一用户，否则按不存在处理
func (s *NoteService) ownedCategory(ctx context.Context, userID, id string) (*domain.Category, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.BadRequest("Category is required")
	}
	c, err := s.cats.FindOwned(ctx, userID, id)
	if err != nil {
		return nil, domain.Internal("load category failed", err)
	}
	if c == nil {
		return nil, domain.NotFound("Category not found")
	}
	return c, nil
}

func (s *NoteService) Create(ctx context.Context, userID string, in NoteInput, img *storage.File) (*domain.Note, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	title, content := strings.TrimSpace(in.Title), strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, domain.BadRequest("Title and content are required")
	}
	cat, err := s.ownedCategory(ctx, userID, in.Category)
	if err != nil {
		return nil, err
	}
	n := &domain.Note{
		ID:         utils.NewID(),
		Title:      title,
		Content:    content,
		UserID:     userID,
		CategoryID: cat.ID,
	}
	if img != nil {
		if n.Image, err = uploadImage(ctx, s.uploader, s.log, img); err != nil {
			return nil, err
		}
	}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, domain.Internal("create note failed", err)
	}
	n.Category = cat
	return n, nil
}

func (s *NoteService) List(ctx context.Context, userID string, p query.Params, o query.Options) (*query.Result[domain.Note], error) {
	res, err := s.notes.List(ctx, userID, p, o)
	if err != nil {
		return nil, domain.Internal("list notes failed", err)
	}
	return res, nil
}

func (s *NoteService) Get(ctx context.Context, userID, id string) (*domain.Note, error) {
	n, err := s.notes.FindOwned(ctx, userID, id)
	if err != nil {
		return nil, domain.Internal("load note failed", err)
	}
	if n == nil {
		return nil, domain.NotFound("Note not found")
	}
	return n, nil
}

func (s *NoteService) Update(ctx context.Context, userID, id string, in NoteUpdate, img *storage.File) (*domain.Note, error) {
	n, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		if n.Title = strings.TrimSpace(*in.Title); n.Title == "" {
			return nil, domain.BadRequest("Title cannot be empty")
		}
	}
	if in.Content != nil {
		if n.Content = strings.TrimSpace(*in.Content); n.Content == "" {
			return nil, domain.BadRequest("Content cannot be empty")
		}
	}
	if in.Category != nil && *in.Category != n.CategoryID {
		cat, err := s.ownedCategory(ctx, userID, *in.Category)
		if err != nil {
			return nil, err
		}
		n.CategoryID, n.Category = cat.ID, cat
	}
	if img != nil {
		if n.Image, err = uploadImage(ctx, s.uploader, s.log, img); err != nil {
			return nil, err
		}
	}
	if err := s.notes.Update(ctx, n); err != nil {
		return nil, domain.Internal("update note failed", err)
	}
	return n, nil
}

func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	ok, err := s.notes.DeleteOwned(ctx, userID, id)
	if err != nil {
		return domain.Internal("delete note failed", err)
	}
	if !ok {
		return domain.NotFound("Note not found")
	}
	return nil
}
