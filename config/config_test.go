package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", `
server:
  port: 8080
jwt:
  secret: s3cret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "oss", cfg.Storage.Driver)
	assert.Equal(t, 3, cfg.Subscription.PaymentRetentionDays)
	assert.Equal(t, 60, cfg.Subscription.ReconcileIntervalSeconds)
	assert.Equal(t, 30, cfg.Redis.EventCacheTTLSeconds)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxScreenshotSize)
}

func TestLoad_PrefersLocalConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "server:\n  port: 8080\n")
	writeConfig(t, dir, "config.local.yaml", "server:\n  port: 9999\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "database:\n  driver: mysql\n")

	t.Setenv("DATABASE_DRIVER", "postgres")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
