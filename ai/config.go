package ai

import (
	"errors"
	"strings"
	"time"
)

const (
	DefaultEmbeddingHost  = "https://api.openai.com/v1"
	DefaultEmbeddingModel = "text-embedding-ada-002"
)

// Config configures the embedding provider and the gateway in front of it.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "https://api.openai.com/v1" or a local OpenAI-compatible server
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	EmbeddingModel string

	// APIKey is the credential sent to the provider. Empty means not configured.
	APIKey string

	// MaxInputChars caps the text submitted for embedding.
	// Longer input is truncated and suffixed with "...".
	// Default: 5000
	MaxInputChars int

	// MaxRetries is the number of retries after the first failed attempt.
	// Default: 3
	MaxRetries int

	// RetryBaseDelay is the delay before the first retry; each retry doubles it.
	// Default: 1s
	RetryBaseDelay time.Duration

	// RequestsPerSecond paces calls to the provider. Zero disables pacing.
	// Default: 1
	RequestsPerSecond float64

	// RequestTimeout bounds a single provider call.
	// Default: 30s
	RequestTimeout time.Duration

	// CacheSize is the number of query embeddings kept in memory.
	// Zero disables the cache.
	// Default: 256
	CacheSize int
}

type ConfigOption func(*Config)

func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

func WithMaxInputChars(n int) ConfigOption {
	return func(c *Config) {
		c.MaxInputChars = n
	}
}

func WithRetries(maxRetries int, baseDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
		c.RetryBaseDelay = baseDelay
	}
}

func WithRequestsPerSecond(rps float64) ConfigOption {
	return func(c *Config) {
		c.RequestsPerSecond = rps
	}
}

func WithRequestTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = timeout
	}
}

func WithCacheSize(size int) ConfigOption {
	return func(c *Config) {
		c.CacheSize = size
	}
}

func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:     DefaultEmbeddingHost,
		EmbeddingModel:    DefaultEmbeddingModel,
		MaxInputChars:     5000,
		MaxRetries:        3,
		RetryBaseDelay:    time.Second,
		RequestsPerSecond: 1,
		RequestTimeout:    30 * time.Second,
		CacheSize:         256,
	}
}

func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

func (c *Config) Normalize() {
	c.APIKey = strings.TrimSpace(c.APIKey)
	// Ensure EmbeddingHost ends with /v1 for OpenAI-compatible APIs
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
}

func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.MaxInputChars < 1 {
		return errors.New("ai config: MaxInputChars must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("ai config: MaxRetries cannot be negative")
	}
	if c.RetryBaseDelay < 0 {
		return errors.New("ai config: RetryBaseDelay cannot be negative")
	}
	if c.RequestsPerSecond < 0 {
		return errors.New("ai config: RequestsPerSecond cannot be negative")
	}
	if c.CacheSize < 0 {
		return errors.New("ai config: CacheSize cannot be negative")
	}
	return nil
}
