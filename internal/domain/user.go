package domain

import (
	"context"
	"time"

	"gorm.io/gorm"

	"go-gin-gorm-notes/internal/query"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// 登录方式
const (
	MethodCredentials = "credentials"
	MethodGitHub      = "github"
	MethodGoogle      = "google"
)

func ValidMethod(m string) bool {
	switch m {
	case MethodCredentials, MethodGitHub, MethodGoogle:
		return true
	}
	return false
}

type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Name         string         `gorm:"size:128;not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string         `gorm:"size:100" json:"-"`
	Role         string         `gorm:"size:16;not null;default:user" json:"role"`
	Method       string         `gorm:"size:16;not null;default:credentials" json:"method"`
	Image        string         `gorm:"size:512" json:"image"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, p query.Params, o query.Options) (*query.Result[User], error)
	Update(ctx context.Context, u *User) error
	SoftDelete(ctx context.Context, id string) (bool, error)
}
