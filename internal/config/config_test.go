package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMustLoadPath(t *testing.T) {
	path := writeConfig(t, `
env: dev
http:
  address: ":9090"
  allowed_origins:
    - "http://example.com"
room:
  max_players: 4
  timeout_hours: 12
  sweep_interval_hours: 6
`)

	cfg := MustLoadPath(path)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, []string{"http://example.com"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 4, cfg.Room.MaxPlayers)
	assert.Equal(t, 12*time.Hour, cfg.Room.Timeout())
	assert.Equal(t, 6*time.Hour, cfg.Room.SweepInterval())
}

func TestMustLoadPathDefaults(t *testing.T) {
	path := writeConfig(t, "env: local\n")

	cfg := MustLoadPath(path)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 8, cfg.Room.MaxPlayers)
	assert.Equal(t, 24*time.Hour, cfg.Room.Timeout())
	assert.Equal(t, 24*time.Hour, cfg.Room.SweepInterval())
	assert.Empty(t, cfg.Database.DSN)
}

func TestMustLoadPathMissingFile(t *testing.T) {
	assert.Panics(t, func() {
		MustLoadPath(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}
