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

// Package storage provides the storage abstraction layer for browser history search.
//
// This package defines typed repository interfaces that decouple the key/value
// store from ranking and lifecycle logic. Key prefixes and encodings are
// private to the implementation in storage/badger.
//
// # Architecture
//
//   - ContentRepository: extracted page text, keyed by URL
//   - EmbeddingRepository: page embeddings, keyed by URL, never without content
//   - ScreenshotRepository: captured screenshots with expiry
//   - SettingsRepository: user settings and running stats
//
// # Usage
//
//	repos, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe. Concurrent writes to
// the same key are last-writer-wins.
package storage
