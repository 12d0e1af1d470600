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

// Package search provides hybrid semantic and lexical search over browsing history.
//
// The Searcher type runs a linear fallback chain:
//   - Semantic search over stored page embeddings, when the embedding gateway is ready
//   - Lexical search over history titles, URLs and extracted page text
//   - A recency listing of recent history when the query is empty
//
// Any unexpected failure yields a single placeholder result instead of an error,
// so callers always have something to render.
package search
