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

package mock

import (
	"errors"
	"sync"

	"github.com/nomatterpluda/browser-history-search/ai"
)

// MockFactory is a test double for ai.EmbedderFactory.
// Every call returns the same MockEmbedder and records the config it was given.
type MockFactory struct {
	embedder *MockEmbedder

	// Err, if set, is returned instead of an embedder.
	Err error

	mu   sync.Mutex
	keys []string
}

// NewMockFactory creates a factory handing out embedder.
// A nil embedder gets a fresh NewMockEmbedder.
func NewMockFactory(embedder *MockEmbedder) *MockFactory {
	if embedder == nil {
		embedder = NewMockEmbedder()
	}
	return &MockFactory{embedder: embedder}
}

// Factory implements ai.EmbedderFactory.
func (f *MockFactory) Factory(config *ai.Config) (ai.Embedder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, config.APIKey)
	if f.Err != nil {
		return nil, f.Err
	}
	if config.APIKey == "" {
		return nil, errors.New("mock: api key is required")
	}
	return f.embedder, nil
}

// Keys returns the API keys the factory was called with.
func (f *MockFactory) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

// GetMockEmbedder returns the embedder handed out by the factory.
func (f *MockFactory) GetMockEmbedder() *MockEmbedder {
	return f.embedder
}
