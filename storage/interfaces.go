package storage

import (
	"context"
	"time"

	"github.com/nomatterpluda/browser-history-search/core"
)

// ContentRepository provides operations for extracted page content.
// Records are keyed by URL; Put replaces any earlier record for the same URL.
type ContentRepository interface {
	// GetContent retrieves the content stored for url.
	// Returns ErrNotFound if nothing is stored.
	GetContent(ctx context.Context, url string) (*core.ExtractedContent, error)

	// PutContent stores a content record, replacing any previous one for its URL.
	PutContent(ctx context.Context, content *core.ExtractedContent) error

	// MarkProcessed flags the content for url as embedded at the given time.
	// Returns ErrNotFound if nothing is stored.
	MarkProcessed(ctx context.Context, url string, at time.Time) error

	// ListContent returns every stored content record.
	ListContent(ctx context.Context) ([]*core.ExtractedContent, error)

	// DeleteContent removes content records together with their embeddings
	// and screenshots. Missing URLs are ignored.
	DeleteContent(ctx context.Context, urls ...string) error

	// CountContent returns the number of stored content records.
	CountContent(ctx context.Context) (int, error)
}

// EmbeddingRepository provides operations for page embeddings.
type EmbeddingRepository interface {
	// PutEmbedding stores an embedding. Returns ErrNotFound when no content
	// exists for the record's URL, so an embedding never outlives its page.
	PutEmbedding(ctx context.Context, record *core.EmbeddingRecord) error

	// GetEmbedding retrieves the embedding stored for url.
	// Returns ErrNotFound if nothing is stored.
	GetEmbedding(ctx context.Context, url string) (*core.EmbeddingRecord, error)

	// ListEmbeddings returns every stored embedding.
	ListEmbeddings(ctx context.Context) ([]*core.EmbeddingRecord, error)

	// DeleteEmbeddings removes embeddings by URL. Missing URLs are ignored.
	DeleteEmbeddings(ctx context.Context, urls ...string) error
}

// ScreenshotRepository provides operations for captured screenshots.
type ScreenshotRepository interface {
	PutScreenshot(ctx context.Context, shot *core.Screenshot) error
	GetScreenshot(ctx context.Context, url string) (*core.Screenshot, error)
	ListScreenshots(ctx context.Context) ([]*core.Screenshot, error)
	DeleteScreenshots(ctx context.Context, urls ...string) error
}

// SettingsRepository persists user settings and running statistics.
type SettingsRepository interface {
	// LoadSettings returns the saved settings, or core.DefaultSettings when none exist.
	LoadSettings(ctx context.Context) (*core.Settings, error)
	SaveSettings(ctx context.Context, settings *core.Settings) error

	// LoadStats returns the saved stats, or zero stats when none exist.
	LoadStats(ctx context.Context) (*core.Stats, error)
	SaveStats(ctx context.Context, stats *core.Stats) error

	// IncrementStats atomically adds pages to TotalPages and sets LastUpdate to at.
	IncrementStats(ctx context.Context, pages int, at time.Time) (*core.Stats, error)
}
