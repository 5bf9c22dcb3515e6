package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"go-gin-gorm-notes/internal/domain"
	"go-gin-gorm-notes/internal/query"
	"go-gin-gorm-notes/pkg/utils"
)

type CategoryUpdate struct {
	Name *string `json:"name"`
}

type CategoryService struct {
	users domain.UserRepository
	cats  domain.CategoryRepository
	log   *zap.Logger
}

func NewCategoryService(users domain.UserRepository, cats domain.CategoryRepository, l *zap.Logger) *CategoryService {
	return &CategoryService{users: users, cats: cats, log: l}
}

func requireUser(ctx context.Context, users domain.UserRepository, id string) error {
	u, err := users.FindByID(ctx, id)
	if err != nil {
		return domain.Internal("user lookup failed", err)
	}
	if u == nil {
		return domain.NotFound("User not found")
	}
	return nil
}

func (s *CategoryService) Create(ctx context.Context, userID, name string) (*domain.Category, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.BadRequest("Category name is required")
	}
	c := &domain.Category{ID: utils.NewID(), Name: name, UserID: userID}
	if err := s.cats.Create(ctx, c); err != nil {
		return nil, domain.Internal("create category failed", err)
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context, userID string, p query.Params, o query.Options) (*query.Result[domain.Category], error) {
	res, err := s.cats.List(ctx, userID, p, o)
	if err != nil {
		return nil, domain.Internal("list categories failed", err)
	}
	return res, nil
}

func (s *CategoryService) Get(ctx context.Context, userID, id string) (*domain.Category, error) {
	c, err := s.cats.FindOwned(ctx, userID, id)
	if err != nil {
		return nil, domain.Internal("load category failed", err)
	}
	if c == nil {
		return nil, domain.NotFound("Category not found")
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, id string, in CategoryUpdate) (*domain.Category, error) {
	c, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.BadRequest("Category name cannot be empty")
		}
		c.Name = name
	}
	if err := s.cats.Update(ctx, c); err != nil {
		return nil, domain.Internal("update category failed", err)
	}
	return c, nil
}

// Delete removes the category together with all of its notes.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	ok, err := s.cats.DeleteCascade(ctx, userID, id)
	if err != nil {
		s.log.Error("category cascade delete failed", zap.String("categoryId", id), zap.Error(err))
		return domain.Internal("delete category failed", err)
	}
	if !ok {
		return domain.NotFound("Category not found")
	}
	return nil
}
