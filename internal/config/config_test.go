package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load("")
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/skillstage")
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	require.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/skillstage")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_EXPIRY_HOURS", "")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 24*time.Hour, cfg.Auth.JWTExpiry)
	require.Equal(t, "development", cfg.Environment)
	require.True(t, cfg.CORS.AllowAllOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/skillstage")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 2*time.Hour, cfg.Auth.JWTExpiry)
	require.False(t, cfg.CORS.AllowAllOrigins)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("LOG_FORMAT", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: 7070
database:
  url: postgres://localhost/fromfile
auth:
  jwt_secret: file-secret
  jwt_expiry: 36h
logging:
  format: console
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "postgres://localhost/fromfile", cfg.Database.URL)
	require.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	require.Equal(t, 36*time.Hour, cfg.Auth.JWTExpiry)
	require.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadConfigFileExpiryDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_EXPIRY_HOURS", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("database:\n  url: postgres://localhost/fromfile\nauth:\n  jwt_secret: file-secret\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, cfg.Auth.JWTExpiry)
}

func TestLoadConfigFileBadExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("database:\n  url: postgres://localhost/fromfile\nauth:\n  jwt_secret: file-secret\n  jwt_expiry: soon\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	_, err := Load(path)
	require.ErrorContains(t, err, "jwt_expiry")
}

func TestEnvWinsOverFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/fromenv")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("database:\n  url: postgres://localhost/fromfile\nauth:\n  jwt_secret: file-secret\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "postgres://localhost/fromenv", cfg.Database.URL)
	require.Equal(t, "env-secret", cfg.Auth.JWTSecret)
}
