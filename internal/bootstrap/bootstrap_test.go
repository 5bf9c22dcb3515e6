package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-gin-gorm-notes/internal/core/config"
	"go-gin-gorm-notes/internal/transport/http/router"
)

func TestNew_SQLiteWithoutRedisOrStorage(t *testing.T) {
	cfg := &config.Config{
		App:  config.App{Env: "development"},
		JWT:  config.JWT{Secret: "s", Issuer: "notes", AccessTokenTTLMin: 5, RefreshTokenTTLMin: 10},
		Auth: config.Auth{CookieName: "refreshToken", CacheTTLSec: 30},
		DB:   config.DB{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1, AutoMigrate: true, LogLevel: "silent"},
	}
	app, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(app.Close)

	api := router.NewAPIEngine(app.Deps)
	for path, want := range map[string]int{
		"/health":       http.StatusOK,
		"/metrics":      http.StatusOK,
		"/api/note":     http.StatusUnauthorized,
		"/api/category": http.StatusUnauthorized,
	} {
		w := httptest.NewRecorder()
		api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}

	admin := router.NewAdminEngine(app.Deps)
	w := httptest.NewRecorder()
	admin.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/v1/users", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(context.Background(), &config.Config{DB: config.DB{Driver: "mongo"}}, zap.NewNop())
	assert.Error(t, err)
}
