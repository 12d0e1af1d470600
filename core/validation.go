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

package core

import (
	"fmt"
	"time"
)

// ValidateContent validates an ExtractedContent according to domain rules.
//
// Validation rules:
//   - URL must not be empty
//   - Content must not be empty
//   - ExtractedAt must not be in the future
//
// NOT validated (populated by the store):
//   - StoredAt, Processed, EmbeddingGeneratedAt
func ValidateContent(content *ExtractedContent) error {
	if content == nil {
		return fmt.Errorf("%w: content is nil", ErrInvalidContent)
	}

	if content.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidContent, ErrEmptyURL)
	}

	if content.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidContent, ErrEmptyContent)
	}

	if !IsValidTimestamp(content.ExtractedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidContent, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateEmbedding validates an EmbeddingRecord.
func ValidateEmbedding(record *EmbeddingRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidEmbedding)
	}

	if record.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEmbedding, ErrEmptyURL)
	}

	if len(record.Embedding) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEmbedding, ErrEmptyVector)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
