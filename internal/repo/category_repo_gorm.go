package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-gin-gorm-notes/internal/domain"
	"go-gin-gorm-notes/internal/query"
)

var CategorySpec = query.Spec{
	Search:      []string{"name"},
	Filters:     map[string]string{"name": "name"},
	Sorts:       query.SortKeys("name"),
	OwnerColumn: "user_id",
}

type CategoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CategoryRepo) FindOwned(ctx context.Context, userID, id string) (*domain.Category, error) {
	var c domain.Category
	err := r.db.WithContext(ctx).First(&c, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) List(ctx context.Context, userID string, p query.Params, o query.Options) (*query.Result[domain.Category], error) {
	return query.Find[domain.Category](ctx, r.db, CategorySpec, userID, p, o)
}

func (r *CategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CategoryRepo) DeleteCascade(ctx context.Context, userID, id string) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		found = true
		return tx.Where("category_id = ?", id).Delete(&domain.Note{}).Error
	})
	if err != nil {
		return false, err
	}
	return found, nil
}
