// Package bootstrap wires config into the stores, services and HTTP modules
// shared by cmd/api and cmd/admin.
package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-gorm-notes/internal/core/auth"
	"go-gin-gorm-notes/internal/core/cache"
	"go-gin-gorm-notes/internal/core/config"
	"go-gin-gorm-notes/internal/core/database"
	"go-gin-gorm-notes/internal/core/oauth"
	"go-gin-gorm-notes/internal/core/storage"
	"go-gin-gorm-notes/internal/repo"
	"go-gin-gorm-notes/internal/service"
	"go-gin-gorm-notes/internal/transport/http/handler"
	"go-gin-gorm-notes/internal/transport/http/router"
)

type App struct {
	DB    *gorm.DB
	Cache *cache.Cache
	Deps  router.Deps
}

// Close 释放数据库和 Redis 连接
func (a *App) Close() {
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.Cache.Close()
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             log,
	})
	if err != nil {
		return nil, err
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	// 自动迁移
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		log.Info("automigrate done")
	}

	// Redis 可选：未配置时只做进程内合并
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Ping(ctx); err != nil {
		log.Warn("redis unavailable, user lookups go straight to db", zap.Error(err))
		_ = c.Close()
		c = cache.New("", "", 0)
	}

	// 对象存储可选：未配置时图片上传返回 400
	var uploader storage.Uploader = storage.Disabled{}
	if cfg.Storage.Enabled() {
		m, err := storage.NewMinIOClient(cfg.Storage, log)
		if err != nil {
			return nil, err
		}
		if err := m.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		uploader = m
	}

	jwter := &auth.JWTer{
		Secret:     []byte(cfg.JWT.Secret),
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL(),
		RefreshTTL: cfg.JWT.RefreshTTL(),
	}

	users := repo.NewUserRepo(db)
	cats := repo.NewCategoryRepo(db)
	notes := repo.NewNoteRepo(db)
	lookup := service.NewUserLookup(users, c, time.Duration(cfg.Auth.CacheTTLSec)*time.Second)

	authSvc := service.NewAuthService(users, lookup, jwter, uploader, cfg.Auth, log)
	modules := router.NewRegistry(
		handler.NewUserHandler(authSvc, oauth.New(cfg.OAuth), cfg, log),
		handler.NewCategoryHandler(service.NewCategoryService(users, cats, log)),
		handler.NewNoteHandler(service.NewNoteService(users, cats, notes, uploader, log)),
		handler.NewAdminHandler(service.NewUserService(users, lookup, log)),
	)

	return &App{
		DB:    db,
		Cache: c,
		Deps:  router.Deps{Log: log, Cfg: cfg, Auth: authSvc, Modules: modules},
	}, nil
}
