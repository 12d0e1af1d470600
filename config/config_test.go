package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nomatterpluda/browser-history-search/lifecycle"
	"github.com/nomatterpluda/browser-history-search/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAPIKey, EnvDatabase, EnvLogLevel, EnvListen} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, lifecycle.DefaultMaxContentItems, cfg.Content.MaxItems)
	assert.Equal(t, lifecycle.DefaultMinDwell, cfg.Content.MinDwell)
	assert.Equal(t, search.DefaultSimilarityThreshold, cfg.Search.SimilarityThreshold)
	assert.Equal(t, 7*24*time.Hour, cfg.Search.HistoryWindow)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotContains(t, cfg.Database.Path, "~")
	assert.Empty(t, cfg.Embedding.APIKey)
}

func TestLoad_FileOverlay(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
database:
  path: /var/lib/histsearch
embedding:
  model: text-embedding-3-small
  max_retries: 5
search:
  similarity_threshold: 0.75
  history_window: 72h
content:
  max_items: 250
  min_dwell: 15s
logging:
  level: DEBUG
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/histsearch", cfg.Database.Path)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, 5, cfg.Embedding.MaxRetries)
	assert.Equal(t, 5000, cfg.Embedding.MaxInputChars, "unset fields keep defaults")
	assert.Equal(t, 0.75, cfg.Search.SimilarityThreshold)
	assert.Equal(t, 72*time.Hour, cfg.Search.HistoryWindow)
	assert.Equal(t, 250, cfg.Content.MaxItems)
	assert.Equal(t, lifecycle.LegacyMinDwell, cfg.Content.MinDwell)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvOverlay(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, " sk-env ")
	t.Setenv(EnvDatabase, "/tmp/histsearch-env")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvListen, ":9000")

	path := writeFile(t, "config.yaml", "embedding:\n  api_key: sk-file\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.Embedding.APIKey)
	assert.Equal(t, "/tmp/histsearch-env", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, ":9000", cfg.Server.Listen)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.yaml", "search: [unclosed"))
		assert.Error(t, err)
	})

	tests := []struct {
		name string
		yaml string
	}{
		{"threshold out of range", "search:\n  similarity_threshold: 1.5\n"},
		{"limits inverted", "search:\n  default_limit: 60\n  max_limit: 50\n"},
		{"zero max items", "content:\n  max_items: 0\n"},
		{"negative words", "content:\n  min_words: -1\n"},
		{"bad schedule", "content:\n  retention_schedule: \"not a cron\"\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"zero pool", "embedding:\n  pool_size: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	os.Unsetenv(EnvAPIKey)

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := writeFile(t, ".env", EnvAPIKey+"=sk-dotenv\n")
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "sk-dotenv", os.Getenv(EnvAPIKey))
}

func TestConfig_Builders(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Embedding.APIKey = "sk-x"
	cfg.Search.SimilarityThreshold = 0.9

	aiCfg := cfg.AIConfig()
	assert.Equal(t, "sk-x", aiCfg.APIKey)
	assert.Equal(t, cfg.Embedding.MaxRetries, aiCfg.MaxRetries)
	require.NoError(t, aiCfg.Validate())

	sc := cfg.SearcherConfig()
	assert.Equal(t, 0.9, sc.SimilarityThreshold)
	assert.Equal(t, search.DefaultConfig().FetchMultiplier, sc.FetchMultiplier)

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, lifecycle.DefaultMinWords, policy.MinWords)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
