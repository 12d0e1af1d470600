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
	"slices"
	"strings"

	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/storage"
)

const (
	// DefaultBatchSize is the default number of pages handed out in each batch
	DefaultBatchSize = 20
)

// ContentIterator iterates over all stored pages in batches, oldest first.
type ContentIterator struct {
	repo      storage.ContentRepository
	batchSize int
}

// NewContentIterator creates a new content iterator.
// batchSize: number of pages per batch; non-positive means DefaultBatchSize
func NewContentIterator(repo storage.ContentRepository, batchSize int) *ContentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ContentIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// Load returns every stored page ordered by StoredAt, then URL.
func (it *ContentIterator) Load(ctx context.Context) ([]*core.ExtractedContent, error) {
	contents, err := it.repo.ListContent(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(contents, func(a, b *core.ExtractedContent) int {
		if c := a.StoredAt.Compare(b.StoredAt); c != 0 {
			return c
		}
		return strings.Compare(a.URL, b.URL)
	})
	return contents, nil
}

// ForEach iterates over all stored pages, calling fn for each batch.
// Iteration stops on first error from fn or when all pages are processed.
// Context cancellation is checked between batches.
func (it *ContentIterator) ForEach(ctx context.Context, fn func([]*core.ExtractedContent) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	contents, err := it.Load(ctx)
	if err != nil {
		return err
	}

	for batch := range slices.Chunk(contents, it.batchSize) {
		if err := fn(batch); err != nil {
			return err
		}

		// Check context after each batch
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}
