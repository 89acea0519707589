package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 12, cfg.Catalog.PageSize)
	assert.Equal(t, 5, cfg.Chat.MaxResults)
	assert.Equal(t, 8*time.Second, cfg.LLM.Timeout)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadConfigFrom_YAMLKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("database:\n  driver: sqlite\n  database: ':memory:'\ncatalog:\n  pageSize: 20\nllm:\n  timeout: 3s\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg := LoadConfigFrom(path)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.Database)
	assert.Equal(t, 20, cfg.Catalog.PageSize)
	assert.Equal(t, 3*time.Second, cfg.LLM.Timeout)
	// 文件中未出现的字段保留默认值
	assert.Equal(t, "filmmate", cfg.JWT.Issuer)
	assert.Equal(t, 5, cfg.Chat.MaxResults)
}

func TestLoadConfigFrom_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("LLM_TIMEOUT", "2s")
	t.Setenv("CHAT_MAX_RESULTS", "3")
	t.Setenv("RATE_LIMIT_CHAT_WINDOW", "30s")

	cfg := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.Chat.MaxResults)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.ChatWindow)
}

func TestLoadConfigFrom_InvalidYAMLFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))

	cfg := LoadConfigFrom(path)
	assert.Equal(t, "8080", cfg.Server.Port)
}
