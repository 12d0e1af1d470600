package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/gateway"
	"github.com/nomatterpluda/browser-history-search/storage"
)

// embeddingProcessor generates embeddings for stored pages.
type embeddingProcessor struct {
	contents   storage.ContentRepository
	embeddings storage.EmbeddingRepository
	settings   storage.SettingsRepository
	gateway    gateway.Gateway
	now        func() time.Time
	logger     *slog.Logger

	mu            sync.Mutex
	lastProcessed time.Time
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(
	contents storage.ContentRepository,
	embeddings storage.EmbeddingRepository,
	settings storage.SettingsRepository,
	gw gateway.Gateway,
	now func() time.Time,
	logger *slog.Logger,
) (*embeddingProcessor, error) {
	if contents == nil {
		return nil, ErrContentRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if gw == nil {
		return nil, ErrGatewayRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		contents:   contents,
		embeddings: embeddings,
		settings:   settings,
		gateway:    gw,
		now:        now,
		logger:     logger.With("processor", "embeddings"),
	}, nil
}

// process generates embeddings for the pages stored under urls.
// Every URL is attempted; failures are joined.
func (ep *embeddingProcessor) process(ctx context.Context, urls ...string) error {
	ep.logger.Debug("processing pages for embeddings", "pages", len(urls))

	var errs []error
	for _, url := range urls {
		if _, err := ep.embed(ctx, url); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", url, err))
		}
	}
	return errors.Join(errs...)
}

// embed generates, stores and returns the embedding for one page,
// then marks the page processed.
func (ep *embeddingProcessor) embed(ctx context.Context, url string) (*core.EmbeddingRecord, error) {
	content, err := ep.contents.GetContent(ctx, url)
	if err != nil {
		return nil, err
	}

	embedding, err := ep.gateway.Embed(ctx, content.Content)
	if err != nil {
		return nil, err
	}

	generatedAt := ep.now().UTC()
	record := &core.EmbeddingRecord{
		URL:           url,
		Embedding:     embedding.Vector,
		Tokens:        embedding.Tokens,
		GeneratedAt:   generatedAt,
		ContentLength: utf8.RuneCountInString(content.Content),
	}
	if err := ep.embeddings.PutEmbedding(ctx, record); err != nil {
		return nil, err
	}
	if err := ep.contents.MarkProcessed(ctx, url, generatedAt); err != nil {
		return nil, err
	}

	ep.mu.Lock()
	if generatedAt.After(ep.lastProcessed) {
		ep.lastProcessed = generatedAt
	}
	ep.mu.Unlock()

	ep.logger.Info("embedding stored", "url", url, "tokens", record.Tokens, "cached", embedding.Cached)
	return record, nil
}

// checkpoint saves the time of the latest embedding to the settings.
func (ep *embeddingProcessor) checkpoint(ctx context.Context) error {
	if ep.settings == nil {
		return nil
	}
	ep.mu.Lock()
	last := ep.lastProcessed
	ep.mu.Unlock()
	if last.IsZero() {
		return nil
	}

	settings, err := ep.settings.LoadSettings(ctx)
	if err != nil {
		return err
	}
	if !last.After(settings.LastProcessedDate) {
		return nil
	}
	settings.LastProcessedDate = last
	return ep.settings.SaveSettings(ctx, settings)
}
