package domain

import (
	"context"
	"time"

	"go-gin-gorm-notes/internal/query"
)

type Note struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	UserID     string    `gorm:"size:36;not null;index" json:"user"`
	CategoryID string    `gorm:"size:36;not null;index" json:"categoryId"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Image      string    `gorm:"size:512" json:"image,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Note) TableName() string { return "notes" }

type NoteRepository interface {
	Create(ctx context.Context, n *Note) error
	FindOwned(ctx context.Context, userID, id string) (*Note, error)
	List(ctx context.Context, userID string, p query.Params, o query.Options) (*query.Result[Note], error)
	Update(ctx context.Context, n *Note) error
	DeleteOwned(ctx context.Context, userID, id string) (bool, error)
}
