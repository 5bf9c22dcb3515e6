package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-gorm-notes/internal/domain"
	"go-gin-gorm-notes/internal/query"
)

var NoteSpec = query.Spec{
	Search: []string{"title", "content"},
	Filters: map[string]string{
		"title":    "title",
		"content":  "content",
		"category": "category_id",
	},
	Sorts:       query.SortKeys("title"),
	OwnerColumn: "user_id",
}

func withCategory(db *gorm.DB) *gorm.DB {
	return db.Preload("Category", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") })
}

type NoteRepo struct{ db *gorm.DB }

func NewNoteRepo(db *gorm.DB) *NoteRepo { return &NoteRepo{db: db} }

func (r *NoteRepo) Create(ctx context.Context, n *domain.Note) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(n).Error
}

func (r *NoteRepo) FindOwned(ctx context.Context, userID, id string) (*domain.Note, error) {
	var n domain.Note
	err := r.db.WithContext(ctx).Scopes(withCategory).First(&n, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NoteRepo) List(ctx context.Context, userID string, p query.Params, o query.Options) (*query.Result[domain.Note], error) {
	return query.Find[domain.Note](ctx, r.db, NoteSpec, userID, p, o, withCategory)
}

func (r *NoteRepo) Update(ctx context.Context, n *domain.Note) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(n).Error
}

func (r *NoteRepo) DeleteOwned(ctx context.Context, userID, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Note{})
	return res.RowsAffected > 0, res.Error
}
