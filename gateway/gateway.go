package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nomatterpluda/browser-history-search/ai"
	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/metrics"
	"github.com/nomatterpluda/browser-history-search/storage"
	"golang.org/x/time/rate"
)

// probeText is the input sent when validating a credential.
const probeText = "test"

var (
	// ErrFactoryRequired is returned when no embedder factory is supplied.
	ErrFactoryRequired = errors.New("embedder factory is required")

	errEmptyEmbedding = errors.New("provider returned an empty embedding")
)

// Embedding is the gateway's answer for one text.
type Embedding struct {
	Vector []float32
	Tokens int
	Cached bool
}

// Gateway converts text into embedding vectors.
type Gateway interface {
	// Embed returns the embedding for text. Fails with core.ErrNotReady when
	// no credential is configured, core.ErrEmptyInput for blank text, and
	// core.ErrRequestFailed once retries are exhausted.
	Embed(ctx context.Context, text string) (*Embedding, error)

	// ValidateKey probes the provider with key without retrying.
	// Fails with core.ErrInvalidKey or core.ErrNetwork.
	ValidateKey(ctx context.Context, key string) error

	// IsReady reports whether a credential is configured.
	IsReady() bool
}

// Status describes the gateway for display.
type Status struct {
	Configured bool   `json:"configured"`
	Ready      bool   `json:"ready"`
	Model      string `json:"model"`
}

// EmbeddingGateway is the Gateway backed by an ai.Embedder.
type EmbeddingGateway struct {
	mu       sync.RWMutex
	config   *ai.Config
	factory  ai.EmbedderFactory
	embedder ai.Embedder

	settings storage.SettingsRepository
	limiter  *rate.Limiter
	cache    *lru.Cache[core.ID, []float32]
	tokens   ai.TokenCounter
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

var _ Gateway = (*EmbeddingGateway)(nil)

// Option configures an EmbeddingGateway.
type Option func(*EmbeddingGateway) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *EmbeddingGateway) error {
		if logger != nil {
			g.logger = logger.With("component", "embedding-gateway")
		}
		return nil
	}
}

// WithSettingsRepository enables key persistence through SetKey and Initialize.
func WithSettingsRepository(repo storage.SettingsRepository) Option {
	return func(g *EmbeddingGateway) error {
		g.settings = repo
		return nil
	}
}

// WithTokenCounter replaces the default token estimator.
func WithTokenCounter(counter ai.TokenCounter) Option {
	return func(g *EmbeddingGateway) error {
		if counter != nil {
			g.tokens = counter
		}
		return nil
	}
}

// WithMetrics records request outcomes and retries.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *EmbeddingGateway) error {
		g.metrics = m
		return nil
	}
}

// New creates a gateway. If config carries an API key the gateway starts ready.
func New(config *ai.Config, factory ai.EmbedderFactory, opts ...Option) (*EmbeddingGateway, error) {
	if factory == nil {
		return nil, ErrFactoryRequired
	}
	if config == nil {
		config = ai.DefaultConfig()
	} else {
		config = config.Clone()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	g := &EmbeddingGateway{
		config:  config,
		factory: factory,
		tokens:  ai.EstimateTokens,
		logger:  slog.Default().With("component", "embedding-gateway"),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	if config.RequestsPerSecond > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	if config.CacheSize > 0 {
		cache, err := lru.New[core.ID, []float32](config.CacheSize)
		if err != nil {
			return nil, err
		}
		g.cache = cache
	}

	if config.APIKey != "" {
		if err := g.configure(config.APIKey); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Initialize loads a previously stored key when none was configured.
func (g *EmbeddingGateway) Initialize(ctx context.Context) error {
	if g.IsReady() || g.settings == nil {
		return nil
	}
	settings, err := g.settings.LoadSettings(ctx)
	if err != nil {
		return err
	}
	if settings.APIKey == "" {
		g.logger.Debug("no stored api key")
		return nil
	}
	return g.configure(settings.APIKey)
}

// IsReady reports whether a credential is configured.
func (g *EmbeddingGateway) IsReady() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.embedder != nil
}

// Status reports configuration state.
func (g *EmbeddingGateway) Status() Status {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Status{
		Configured: g.config.APIKey != "",
		Ready:      g.embedder != nil,
		Model:      g.config.EmbeddingModel,
	}
}

// SetKey validates key, switches the gateway to it and persists it.
// An invalid key leaves the gateway unchanged.
func (g *EmbeddingGateway) SetKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if err := g.ValidateKey(ctx, key); err != nil {
		return err
	}
	if err := g.configure(key); err != nil {
		return err
	}
	g.logger.Info("api key configured", "model", g.Status().Model)

	if g.settings == nil {
		return nil
	}
	settings, err := g.settings.LoadSettings(ctx)
	if err != nil {
		return err
	}
	settings.APIKey = key
	return g.settings.SaveSettings(ctx, settings)
}

// ValidateKey sends a single probe request with key.
func (g *EmbeddingGateway) ValidateKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: key is empty", core.ErrInvalidKey)
	}

	g.mu.RLock()
	cfg := g.config.Clone()
	g.mu.RUnlock()
	cfg.APIKey = key

	embedder, err := g.factory(cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidKey, err)
	}
	if _, err := embedder.EmbedText(ctx, probeText); err != nil {
		if isNetworkError(err) {
			g.logger.Warn("api key validation could not reach provider", "err", err)
			return fmt.Errorf("%w: %w", core.ErrNetwork, err)
		}
		g.logger.Warn("api key rejected", "err", err)
		return fmt.Errorf("%w: %w", core.ErrInvalidKey, err)
	}
	return nil
}

// Embed returns the embedding for text.
func (g *EmbeddingGateway) Embed(ctx context.Context, text string) (*Embedding, error) {
	g.mu.RLock()
	embedder := g.embedder
	cfg := g.config
	g.mu.RUnlock()

	if embedder == nil {
		g.metrics.EmbeddingRequest(metrics.OutcomeNotReady)
		return nil, core.ErrNotReady
	}
	if strings.TrimSpace(text) == "" {
		return nil, core.ErrEmptyInput
	}

	input := Truncate(text, cfg.MaxInputChars)
	key := core.IDFromContent(cfg.EmbeddingModel + "\x00" + input)
	if g.cache != nil {
		if vector, ok := g.cache.Get(key); ok {
			g.metrics.EmbeddingRequest(metrics.OutcomeCached)
			return &Embedding{Vector: vector, Tokens: g.tokens(input), Cached: true}, nil
		}
	}

	var vector []float32
	err := RetryWithBackoff(ctx, func() error {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return Permanent(err)
			}
		}
		v, err := embedder.EmbedText(ctx, input)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Permanent(ctxErr)
			}
			return err
		}
		if len(v) == 0 {
			return errEmptyEmbedding
		}
		vector = v
		return nil
	}, cfg.MaxRetries+1, cfg.RetryBaseDelay, func(attempt int, err error) {
		limited := isRateLimited(err)
		g.metrics.EmbeddingRetry(limited)
		g.logger.Debug("embedding attempt failed", "attempt", attempt, "rateLimited", limited, "err", err)
	})
	if err != nil {
		g.metrics.EmbeddingRequest(metrics.OutcomeFailure)
		g.logger.Warn("embedding request failed", "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrRequestFailed, err)
	}

	if g.cache != nil {
		g.cache.Add(key, vector)
	}
	g.metrics.EmbeddingRequest(metrics.OutcomeSuccess)
	return &Embedding{Vector: vector, Tokens: g.tokens(input)}, nil
}

func (g *EmbeddingGateway) configure(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	cfg := g.config.Clone()
	cfg.APIKey = key
	embedder, err := g.factory(cfg)
	if err != nil {
		return fmt.Errorf("create embedder: %w", err)
	}
	g.config = cfg
	g.embedder = embedder
	return nil
}

// Truncate caps text at maxChars characters, marking the cut with "...".
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + "..."
}

func isNetworkError(err error) bool {
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) || errors.As(err, &netErr)
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit")
}
