package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-gin-gorm-notes/internal/core/cache"
	"go-gin-gorm-notes/internal/domain"
	"go-gin-gorm-notes/internal/query"
)

func userKey(id string) string { return "user:" + id }

// UserLookup 按 id 读取用户，走 Redis 缓存
type UserLookup struct {
	users domain.UserRepository
	cache *cache.Cache
	ttl   time.Duration
}

func NewUserLookup(users domain.UserRepository, c *cache.Cache, ttl time.Duration) *UserLookup {
	if c == nil {
		c = &cache.Cache{}
	}
	return &UserLookup{users: users, cache: c, ttl: ttl}
}

// Get 返回 (nil, nil) 表示用户不存在或已被封禁
func (l *UserLookup) Get(ctx context.Context, id string) (*domain.User, error) {
	return cache.GetOrLoadJSON[domain.User](l.cache, ctx, userKey(id), l.ttl, func(ctx context.Context) (*domain.User, error) {
		return l.users.FindByID(ctx, id)
	})
}

func (l *UserLookup) Forget(ctx context.Context, id string) error {
	return l.cache.Delete(ctx, userKey(id))
}

// UserService backs the admin surface.
type UserService struct {
	users  domain.UserRepository
	lookup *UserLookup
	log    *zap.Logger
}

func NewUserService(users domain.UserRepository, lookup *UserLookup, l *zap.Logger) *UserService {
	return &UserService{users: users, lookup: lookup, log: l}
}

func (s *UserService) List(ctx context.Context, p query.Params, o query.Options) (*query.Result[domain.User], error) {
	res, err := s.users.List(ctx, p, o)
	if err != nil {
		return nil, domain.Internal("list users failed", err)
	}
	return res, nil
}

// Ban soft-deletes the user; their tokens stop working on the next lookup.
func (s *UserService) Ban(ctx context.Context, id string) error {
	ok, err := s.users.SoftDelete(ctx, id)
	if err != nil {
		return domain.Internal("ban user failed", err)
	}
	if !ok {
		return domain.NotFound("User not found")
	}
	if err := s.lookup.Forget(ctx, id); err != nil {
		s.log.Warn("user cache invalidate failed", zap.String("userId", id), zap.Error(err))
	}
	s.log.Info("user banned", zap.String("userId", id))
	return nil
}
