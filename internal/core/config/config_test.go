package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestRead_Defaults(t *testing.T) {
	c, err := Read(writeYAML(t, "jwt:\n  secret: s\n"))
	require.NoError(t, err)

	assert.Equal(t, "s", c.JWT.Secret)
	assert.Equal(t, 24*time.Hour, c.JWT.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, c.JWT.RefreshTTL())
	assert.Equal(t, "refreshToken", c.Auth.CookieName)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, 5000, c.App.HTTP.Port)
	assert.False(t, c.App.IsProduction())
	assert.False(t, c.Storage.Enabled())
	assert.Equal(t, []string{"http://localhost:3000"}, c.CORS.AllowOrigins)
}

func TestRead_EnvOverride(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", "from-env")
	t.Setenv("APP_APP_ENV", "production")

	c, err := Read(writeYAML(t, "jwt:\n  secret: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.True(t, c.App.IsProduction())
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLocalConfigParses(t *testing.T) {
	c, err := Read("../../../configs/config.local.yaml")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", c.Auth.AdminEmail)
	assert.Equal(t, "notes", c.Storage.Bucket)
}
