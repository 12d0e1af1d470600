package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/gateway"
	"github.com/nomatterpluda/browser-history-search/lifecycle"
	"github.com/nomatterpluda/browser-history-search/metrics"
	"github.com/nomatterpluda/browser-history-search/storage"
	"github.com/panjf2000/ants/v2"
)

// Pipeline orchestrates the ingestion and processing of extracted pages.
// It stores pages synchronously and generates embeddings on a worker pool.
type Pipeline struct {
	contents      storage.ContentRepository
	screenshots   storage.ScreenshotRepository
	settings      storage.SettingsRepository
	gateway       gateway.Gateway
	policy        *lifecycle.Policy
	retainer      *lifecycle.Retainer
	embeddingPool *ants.Pool
	embeddingProc *embeddingProcessor
	pending       sync.WaitGroup
	metrics       *metrics.Metrics
	now           func() time.Time
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for embedding generation.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingestion")
		return nil
	}
}

// WithPolicy replaces the default embedding eligibility policy.
func WithPolicy(policy *lifecycle.Policy) Option {
	return func(p *Pipeline) error {
		if policy != nil {
			p.policy = policy
		}
		return nil
	}
}

// WithRetainer enforces retention after every ingested page.
func WithRetainer(retainer *lifecycle.Retainer) Option {
	return func(p *Pipeline) error {
		p.retainer = retainer
		return nil
	}
}

// WithScreenshots stores screenshots passed to Ingest.
func WithScreenshots(repo storage.ScreenshotRepository) Option {
	return func(p *Pipeline) error {
		p.screenshots = repo
		return nil
	}
}

// WithSettings enables stats tracking, screenshot expiry from the user's
// retention setting and the embedding checkpoint.
func WithSettings(repo storage.SettingsRepository) Option {
	return func(p *Pipeline) error {
		p.settings = repo
		return nil
	}
}

// WithMetrics counts ingested pages.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) error {
		p.metrics = m
		return nil
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) error {
		if now != nil {
			p.now = now
		}
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	contents storage.ContentRepository,
	embeddings storage.EmbeddingRepository,
	gw gateway.Gateway,
	opts ...Option,
) (*Pipeline, error) {
	if contents == nil {
		return nil, ErrContentRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if gw == nil {
		return nil, ErrGatewayRequired
	}

	policy, err := lifecycle.NewPolicy()
	if err != nil {
		return nil, err
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		contents:      contents,
		gateway:       gw,
		policy:        policy,
		embeddingPool: pool,
		now:           time.Now,
		logger:        slog.Default().With("component", "ingestion"),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create the processor after options are applied (so it gets final config)
	proc, err := newEmbeddingProcessor(contents, embeddings, p.settings, gw, p.now, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = proc

	return p, nil
}

// Ingest stores an extracted page and, when the gateway is ready and the page
// is eligible, schedules embedding generation. shot may be nil.
// Errors during async processing are logged but do not fail the ingestion.
func (p *Pipeline) Ingest(ctx context.Context, content *core.ExtractedContent, shot *core.Screenshot) error {
	if err := core.ValidateContent(content); err != nil {
		return err
	}

	now := p.now().UTC()
	record := *content
	record.StoredAt = now
	record.Processed = false
	record.EmbeddingGeneratedAt = time.Time{}
	if record.ExtractedAt.IsZero() {
		record.ExtractedAt = now
	}

	if err := p.contents.PutContent(ctx, &record); err != nil {
		return err
	}
	p.metrics.ContentIngested()
	p.logger.Info("content stored", "url", record.URL, "words", record.WordCount())

	settings := p.loadSettings(ctx)
	p.updateStats(ctx, now)
	if shot != nil {
		p.storeScreenshot(ctx, record.URL, shot, settings)
	}
	if p.retainer != nil {
		if _, err := p.retainer.EnforceContentCap(ctx); err != nil {
			p.logger.Warn("error enforcing retention", "err", err)
		}
	}

	if !p.gateway.IsReady() {
		p.logger.Debug("embedding gateway not configured, skipping embeddings", "url", record.URL)
		return nil
	}
	if verdict := p.policy.Evaluate(&record); !verdict.Eligible {
		p.logger.Debug("page not eligible for embedding", "url", record.URL, "reason", verdict.Reason)
		return nil
	}

	url := record.URL
	p.pending.Add(1)
	err := p.embeddingPool.Submit(func() {
		defer p.pending.Done()
		if err := p.embeddingProc.process(context.Background(), url); err != nil {
			p.logger.Warn("embedding generation failed, continuing without", "url", url, "err", err)
			return
		}
		if err := p.embeddingProc.checkpoint(context.Background()); err != nil {
			p.logger.Error("error applying embedding checkpoint", "err", err)
		}
	})
	if err != nil {
		p.pending.Done()
		p.logger.Warn("could not schedule embedding", "url", url, "err", err)
	}
	return nil
}

// GenerateEmbedding synchronously embeds the page stored under url,
// regardless of the eligibility policy.
func (p *Pipeline) GenerateEmbedding(ctx context.Context, url string) (*core.EmbeddingRecord, error) {
	if !p.gateway.IsReady() {
		return nil, core.ErrNotReady
	}
	record, err := p.embeddingProc.embed(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := p.embeddingProc.checkpoint(ctx); err != nil {
		p.logger.Error("error applying embedding checkpoint", "err", err)
	}
	return record, nil
}

// Policy returns the eligibility policy in use.
func (p *Pipeline) Policy() *lifecycle.Policy {
	return p.policy
}

// Wait blocks until all scheduled embedding work has finished.
func (p *Pipeline) Wait() {
	p.pending.Wait()
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}

func (p *Pipeline) loadSettings(ctx context.Context) *core.Settings {
	if p.settings == nil {
		return core.DefaultSettings()
	}
	settings, err := p.settings.LoadSettings(ctx)
	if err != nil {
		p.logger.Warn("error loading settings, using defaults", "err", err)
		return core.DefaultSettings()
	}
	return settings
}

func (p *Pipeline) updateStats(ctx context.Context, now time.Time) {
	if p.settings == nil {
		return
	}
	if _, err := p.settings.IncrementStats(ctx, 1, now); err != nil {
		p.logger.Warn("error updating stats", "err", err)
	}
}

func (p *Pipeline) storeScreenshot(ctx context.Context, url string, shot *core.Screenshot, settings *core.Settings) {
	if p.screenshots == nil || !settings.EnablePreview || len(shot.Data) == 0 {
		return
	}
	stored := *shot
	stored.URL = url
	if stored.CapturedAt.IsZero() {
		stored.CapturedAt = p.now().UTC()
	}
	stored.ExpiresAt = lifecycle.ScreenshotExpiry(stored.CapturedAt, settings.ScreenshotRetentionDays)
	if err := p.screenshots.PutScreenshot(ctx, &stored); err != nil {
		p.logger.Warn("could not store screenshot", "url", url, "err", err)
	}
}
