package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/kingdom-bot/internal/model"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "HOST", "STORAGE_TYPE", "REDIS_URL", "SQLITE_PATH",
		"BOT_CONFIG", "LOG_LEVEL", "SERIALIZE_SENDERS", "EXPECTATION_TTL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := LoadServerConfig()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "sqlite", cfg.StorageType)
	assert.Equal(t, "data/game.db", cfg.SQLitePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.SerializeSenders)
	assert.Equal(t, 5*time.Minute, cfg.ExpectationTTL)
	assert.Equal(t, ":3000", cfg.Addr())
}

func TestLoadServerConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("STORAGE_TYPE", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERIALIZE_SENDERS", "true")
	t.Setenv("EXPECTATION_TTL", "90s")

	cfg, err := LoadServerConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, "redis", cfg.StorageType)
	assert.True(t, cfg.SerializeSenders)
	assert.Equal(t, 90*time.Second, cfg.ExpectationTTL)
	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadServerConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "abc"}},
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"redis without url", map[string]string{"STORAGE_TYPE": "redis", "REDIS_URL": ""}},
		{"unknown storage", map[string]string{"STORAGE_TYPE": "postgres"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}},
		{"bad ttl", map[string]string{"EXPECTATION_TTL": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadServerConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadBotConfigDefaults(t *testing.T) {
	cfg, err := LoadBotConfig("")
	require.NoError(t, err)

	require.Len(t, cfg.Kingdoms, 3)
	assert.Equal(t, "FALORYA KINGDOM", cfg.Kingdoms[0].Group)
	assert.Len(t, cfg.NativeKingdoms, 3)
	assert.Empty(t, cfg.PluginOverrides())

	k, ok := cfg.Resolver().Resolve("azmar kingdom")
	require.True(t, ok)
	assert.Equal(t, model.Kingdom("ازمار"), k)
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBotConfigFile(t *testing.T) {
	path := writeFile(t, `
kingdoms:
  - group: " north realm "
    name: North
plugins:
  - name: profile
    priority: 5
  - name: welcome
    disabled: true
`)

	cfg, err := LoadBotConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.Kingdoms, 1)
	assert.Equal(t, "north realm", cfg.Kingdoms[0].Group)
	assert.Len(t, cfg.NativeKingdoms, 3)

	k, ok := cfg.Resolver().Resolve("The North Realm")
	require.True(t, ok)
	assert.Equal(t, model.Kingdom("North"), k)

	overrides := cfg.PluginOverrides()
	require.Len(t, overrides, 2)
	require.NotNil(t, overrides[0].Priority)
	assert.Equal(t, 5, *overrides[0].Priority)
	assert.True(t, overrides[1].Disabled)
}

func TestLoadBotConfigInvalid(t *testing.T) {
	path := writeFile(t, `
kingdoms:
  - group: ""
    name: Nowhere
`)

	_, err := LoadBotConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot.yaml")
}

func TestLoadBotConfigMalformed(t *testing.T) {
	path := writeFile(t, "kingdoms: [")

	_, err := LoadBotConfig(path)
	assert.Error(t, err)
}

func TestLoadBotConfigMissingFile(t *testing.T) {
	_, err := LoadBotConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestExampleBotConfigLoads(t *testing.T) {
	cfg, err := LoadBotConfig(filepath.Join("..", "..", "configs", "bot.example.yaml"))
	require.NoError(t, err)

	k, ok := cfg.Resolver().Resolve("Ali to Azmar Kingdom")
	require.True(t, ok)
	assert.Equal(t, model.Kingdom("ازمار"), k)
	require.Len(t, cfg.PluginOverrides(), 1)
}
