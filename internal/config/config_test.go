package config_test

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/wayfinder/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "wayfinder.yaml", `
routes: app/routes.yaml
hooks: hooks.yaml
basename: /app
hook_timeout: 2s
http:
  port: 9090
  metrics: true
sessions:
  store: redis
redis:
  addr: redis:6379
  lock: true
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(path), "app", "routes.yaml"), cfg.Routes)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "hooks.yaml"), cfg.Hooks)
	assert.Equal(t, "/app", cfg.Basename)
	assert.Equal(t, 2*time.Second, cfg.HookTimeout)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.HTTP.Metrics)
	assert.Equal(t, "redis", cfg.Sessions.Store)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Redis.Lock)

	// Defaults survive for keys the file leaves out.
	assert.Equal(t, "wayfinder:session:", cfg.Redis.Prefix)
	assert.Equal(t, 10, cfg.Sessions.MaxRedirects)
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "wayfinder.json", `{"routes": "/etc/routes.json", "http": {"port": 8081}}`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/etc/routes.json", cfg.Routes)
	assert.Equal(t, 8081, cfg.HTTP.Port)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = config.Load(writeConfig(t, "bad.yaml", "routs: typo.yaml\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = config.Load(writeConfig(t, "bad.yaml", "sessions:\n  store: etcd\n"))
	assert.ErrorContains(t, err, "etcd")

	_, err = config.Load(writeConfig(t, "bad.yaml", "log_level: loud\n"))
	assert.Error(t, err)
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "wayfinder.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"WAYFINDER_BASENAME":   "/docs",
		"WAYFINDER_PORT":       "7000",
		"WAYFINDER_REDIS_ADDR": "cache:6379",
	}
	cfg := config.Default()
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))
	assert.Equal(t, "/docs", cfg.Basename)
	assert.Equal(t, 7000, cfg.HTTP.Port)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)

	env["WAYFINDER_PORT"] = "eighty"
	assert.Error(t, config.Default().ApplyEnv(func(k string) string { return env[k] }))
}

func TestSessionsKeys(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))
	old := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{2}, 32))

	active, fallback, err := config.SessionsConfig{}.Keys()
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Nil(t, fallback)

	active, fallback, err = config.SessionsConfig{EncryptionKey: key, FallbackKeys: []string{old}}.Keys()
	require.NoError(t, err)
	assert.Len(t, active, 32)
	require.Len(t, fallback, 1)
	assert.Equal(t, byte(2), fallback[0][0])

	_, _, err = config.SessionsConfig{EncryptionKey: base64.StdEncoding.EncodeToString([]byte("short"))}.Keys()
	assert.ErrorContains(t, err, "32 bytes")

	_, err = config.Load(writeConfig(t, "bad.yaml", "sessions:\n  mask: [\"(\"]\n"))
	assert.ErrorContains(t, err, "sessions.mask")
}
