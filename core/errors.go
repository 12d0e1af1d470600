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

import "errors"

// Gateway and query errors. Callers branch on these with errors.Is.
var (
	// ErrNotReady indicates the embedding gateway has no usable credential.
	// It is an expected condition, not a failure.
	ErrNotReady = errors.New("embedding gateway not ready")

	// ErrEmptyInput indicates an empty or whitespace-only text was submitted for embedding.
	ErrEmptyInput = errors.New("empty input")

	// ErrRequestFailed indicates the embedding provider kept failing after all retries.
	ErrRequestFailed = errors.New("embedding request failed")

	// ErrInvalidKey indicates the provider rejected the credential.
	ErrInvalidKey = errors.New("invalid api key")

	// ErrNetwork indicates the provider could not be reached.
	ErrNetwork = errors.New("network error")

	// ErrStorage indicates the key/value store failed.
	ErrStorage = errors.New("storage error")
)

// Domain validation errors
var (
	// ErrInvalidContent indicates an ExtractedContent failed validation.
	ErrInvalidContent = errors.New("invalid extracted content")

	// ErrInvalidEmbedding indicates an EmbeddingRecord failed validation.
	ErrInvalidEmbedding = errors.New("invalid embedding record")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyURL indicates the URL field is empty.
	ErrEmptyURL = errors.New("url cannot be empty")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyVector indicates an embedding with no components.
	ErrEmptyVector = errors.New("embedding vector cannot be empty")
)
