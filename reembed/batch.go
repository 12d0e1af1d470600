package reembed

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/lifecycle"
)

// Embedder generates and stores the embedding of a stored page.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, url string) (*core.EmbeddingRecord, error)
}

// Counts tallies the outcome of processed pages.
type Counts struct {
	Embedded int `json:"embedded"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Pages returns the number of pages the counts cover.
func (c Counts) Pages() int {
	return c.Embedded + c.Skipped + c.Failed
}

func (c *Counts) add(other Counts) {
	c.Embedded += other.Embedded
	c.Skipped += other.Skipped
	c.Failed += other.Failed
}

// BatchProcessor embeds the pages of a batch one at a time.
type BatchProcessor struct {
	embedder Embedder
	policy   *lifecycle.Policy
	force    bool
	logger   *slog.Logger
}

// NewBatchProcessor creates a new batch processor.
// policy may be nil to embed every page; force re-embeds processed pages.
func NewBatchProcessor(embedder Embedder, policy *lifecycle.Policy, force bool, logger *slog.Logger) *BatchProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{
		embedder: embedder,
		policy:   policy,
		force:    force,
		logger:   logger,
	}
}

// Process embeds each eligible page of the batch.
// A page that fails is counted and skipped; only conditions that would fail
// every remaining page (cancellation, no credential) stop processing.
func (bp *BatchProcessor) Process(ctx context.Context, contents []*core.ExtractedContent) (Counts, error) {
	var counts Counts
	for _, content := range contents {
		if content.Processed && !bp.force {
			counts.Skipped++
			continue
		}
		if bp.policy != nil {
			if verdict := bp.policy.Evaluate(content); !verdict.Eligible {
				bp.logger.Debug("skipping ineligible page", "url", content.URL, "reason", verdict.Reason)
				counts.Skipped++
				continue
			}
		}

		if _, err := bp.embedder.GenerateEmbedding(ctx, content.URL); err != nil {
			if fatal(ctx, err) {
				return counts, err
			}
			bp.logger.Warn("failed to embed page", "url", content.URL, "err", err)
			counts.Failed++
			continue
		}
		counts.Embedded++
	}
	return counts, nil
}

func fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, core.ErrNotReady) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
