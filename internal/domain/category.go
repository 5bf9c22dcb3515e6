package domain

import (
	"context"
	"time"

	"go-gin-gorm-notes/internal/query"
)

type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	UserID    string    `gorm:"size:36;not null;index" json:"user"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Category) TableName() string { return "categories" }

type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	FindOwned(ctx context.Context, userID, id string) (*Category, error)
	List(ctx context.Context, userID string, p query.Params, o query.Options) (*query.Result[Category], error)
	Update(ctx context.Context, c *Category) error
	// DeleteCascade removes the category and every note that references it
	// atomically. Returns false when no owned category matched.
	DeleteCascade(ctx context.Context, userID, id string) (bool, error)
}
