// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/lifecycle"
	"github.com/nomatterpluda/browser-history-search/storage"
)

// Config holds configuration for the backfill.
type Config struct {
	// BatchSize is the number of pages to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of pages)
	ReportInterval int

	// Force re-embeds pages that already have an embedding
	Force bool

	// Policy filters pages by eligibility; nil embeds every page
	Policy *lifecycle.Policy
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 10,
	}
}

// Result summarises a backfill.
type Result struct {
	Total int `json:"total"`
	Counts
	Elapsed time.Duration `json:"elapsed"`
}

// Reembedder orchestrates embedding generation for all stored pages.
type Reembedder struct {
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *ContentIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr); nil discards it
func NewReembedder(repo storage.ContentRepository, embedder Embedder, config *Config, progress io.Writer, logger *slog.Logger) (*Reembedder, error) {
	if repo == nil {
		return nil, ErrContentRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Reembedder{
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(embedder, config.Policy, config.Force, logger.With("component", "reembed")),
		iterator:  NewContentIterator(repo, config.BatchSize),
	}, nil
}

// Run embeds every stored page that needs it.
// Progress is reported to the configured writer.
func (r *Reembedder) Run(ctx context.Context) (*Result, error) {
	contents, err := r.iterator.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}

	result := &Result{Total: len(contents)}
	if result.Total == 0 {
		fmt.Fprintf(r.progress, "No stored pages found (0 pages)\n")
		return result, nil
	}

	fmt.Fprintf(r.progress, "Starting embedding backfill of %d pages (batch size: %d)\n",
		result.Total, r.iterator.batchSize)

	tracker := NewProgressTracker(r.progress, result.Total, r.config.ReportInterval)
	err = r.iterator.ForEach(ctx, func(batch []*core.ExtractedContent) error {
		counts, err := r.processor.Process(ctx, batch)
		tracker.Record(counts)
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		return nil
	})
	result.Counts = tracker.Counts()
	result.Elapsed = tracker.Elapsed()
	tracker.Finish()
	if err != nil {
		return result, err
	}

	fmt.Fprintf(r.progress, "Backfill complete. %d embedded, %d skipped, %d failed in %v\n",
		result.Embedded, result.Skipped, result.Failed, result.Elapsed.Round(time.Millisecond))

	return result, nil
}
