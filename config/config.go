// Package config loads the YAML configuration shared by the CLI and server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/joho/godotenv"
	"github.com/nomatterpluda/browser-history-search/ai"
	"github.com/nomatterpluda/browser-history-search/lifecycle"
	"github.com/nomatterpluda/browser-history-search/search"
	"gopkg.in/yaml.v3"
)

// Environment variables overlaid on top of the file.
const (
	EnvAPIKey   = "OPENAI_API_KEY"
	EnvDatabase = "HISTSEARCH_DB"
	EnvLogLevel = "HISTSEARCH_LOG_LEVEL"
	EnvListen   = "HISTSEARCH_LISTEN"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Content   ContentConfig   `yaml:"content"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type DatabaseConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

type EmbeddingConfig struct {
	Host              string        `yaml:"host"`
	Model             string        `yaml:"model"`
	APIKey            string        `yaml:"api_key"`
	MaxInputChars     int           `yaml:"max_input_chars"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryBaseDelay    time.Duration `yaml:"retry_base_delay"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	CacheSize         int           `yaml:"cache_size"`
	PoolSize          int           `yaml:"pool_size"`
}

type SearchConfig struct {
	HistoryFile         string        `yaml:"history_file"`
	HistoryWindow       time.Duration `yaml:"history_window"`
	MinHistoryFetch     int           `yaml:"min_history_fetch"`
	DefaultLimit        int           `yaml:"default_limit"`
	MaxLimit            int           `yaml:"max_limit"`
	SimilarityThreshold float64       `yaml:"similarity_threshold"`
}

type ContentConfig struct {
	MaxItems          int           `yaml:"max_items"`
	MinDwell          time.Duration `yaml:"min_dwell"`
	MinWords          int           `yaml:"min_words"`
	RetentionSchedule string        `yaml:"retention_schedule"`
}

type ServerConfig struct {
	Listen          string        `yaml:"listen"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	searchDefaults := search.DefaultConfig()
	return &Config{
		Database: DatabaseConfig{Path: "~/.histsearch/db"},
		Embedding: EmbeddingConfig{
			Host:              aiDefaults.EmbeddingHost,
			Model:             aiDefaults.EmbeddingModel,
			MaxInputChars:     aiDefaults.MaxInputChars,
			MaxRetries:        aiDefaults.MaxRetries,
			RetryBaseDelay:    aiDefaults.RetryBaseDelay,
			RequestsPerSecond: aiDefaults.RequestsPerSecond,
			RequestTimeout:    aiDefaults.RequestTimeout,
			CacheSize:         aiDefaults.CacheSize,
			PoolSize:          2,
		},
		Search: SearchConfig{
			HistoryWindow:       searchDefaults.HistoryWindow,
			MinHistoryFetch:     searchDefaults.MinHistoryFetch,
			DefaultLimit:        searchDefaults.DefaultLimit,
			MaxLimit:            searchDefaults.MaxLimit,
			SimilarityThreshold: searchDefaults.SimilarityThreshold,
		},
		Content: ContentConfig{
			MaxItems:          lifecycle.DefaultMaxContentItems,
			MinDwell:          lifecycle.DefaultMinDwell,
			MinWords:          lifecycle.DefaultMinWords,
			RetentionSchedule: "0 * * * *",
		},
		Server: ServerConfig{
			Listen:          "127.0.0.1:8787",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults, then applies the environment.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		path = expandPath(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from .env files into the process environment.
// Missing files are ignored; with no arguments ".env" is tried.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Embedding.APIKey = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		c.Server.Listen = v
	}
}

func (c *Config) normalize() {
	c.Database.Path = expandClean(c.Database.Path)
	c.Search.HistoryFile = expandClean(c.Search.HistoryFile)
	c.Embedding.APIKey = strings.TrimSpace(c.Embedding.APIKey)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	if c.Database.Path == "" && !c.Database.InMemory {
		return errors.New("database.path is required")
	}
	if c.Embedding.MaxInputChars < 1 {
		return errors.New("embedding.max_input_chars must be positive")
	}
	if c.Embedding.MaxRetries < 0 {
		return errors.New("embedding.max_retries must not be negative")
	}
	if c.Embedding.RequestsPerSecond < 0 {
		return errors.New("embedding.requests_per_second must not be negative")
	}
	if c.Embedding.PoolSize < 1 {
		return errors.New("embedding.pool_size must be positive")
	}
	if c.Search.SimilarityThreshold < 0 || c.Search.SimilarityThreshold > 1 {
		return fmt.Errorf("search.similarity_threshold must be within [0, 1], got %v", c.Search.SimilarityThreshold)
	}
	if c.Search.DefaultLimit < 1 || c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("search limits must satisfy 1 <= default_limit (%d) <= max_limit (%d)",
			c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	if c.Search.HistoryWindow <= 0 {
		return errors.New("search.history_window must be positive")
	}
	if c.Content.MaxItems < 1 {
		return errors.New("content.max_items must be positive")
	}
	if c.Content.MinDwell < 0 || c.Content.MinWords < 0 {
		return errors.New("content.min_dwell and content.min_words must not be negative")
	}
	if c.Content.RetentionSchedule != "" {
		if _, err := cronexpr.Parse(c.Content.RetentionSchedule); err != nil {
			return fmt.Errorf("content.retention_schedule: %w", err)
		}
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// AIConfig returns the embedding provider configuration.
func (c *Config) AIConfig() *ai.Config {
	e := c.Embedding
	return ai.NewConfig(
		ai.WithEmbeddingHost(e.Host),
		ai.WithEmbeddingModel(e.Model),
		ai.WithAPIKey(e.APIKey),
		ai.WithMaxInputChars(e.MaxInputChars),
		ai.WithRetries(e.MaxRetries, e.RetryBaseDelay),
		ai.WithRequestsPerSecond(e.RequestsPerSecond),
		ai.WithRequestTimeout(e.RequestTimeout),
		ai.WithCacheSize(e.CacheSize),
	)
}

// SearcherConfig returns the query orchestrator configuration.
func (c *Config) SearcherConfig() search.Config {
	cfg := search.DefaultConfig()
	cfg.HistoryWindow = c.Search.HistoryWindow
	cfg.MinHistoryFetch = c.Search.MinHistoryFetch
	cfg.DefaultLimit = c.Search.DefaultLimit
	cfg.MaxLimit = c.Search.MaxLimit
	cfg.SimilarityThreshold = c.Search.SimilarityThreshold
	return cfg
}

// Policy builds the embedding eligibility policy.
func (c *Config) Policy() (*lifecycle.Policy, error) {
	return lifecycle.NewPolicy(
		lifecycle.WithMinDwell(c.Content.MinDwell),
		lifecycle.WithMinWords(c.Content.MinWords),
	)
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", name)
	}
}

func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	return filepath.Clean(p)
}

func expandClean(p string) string {
	if p == "" {
		return ""
	}
	return expandPath(p)
}
