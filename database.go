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

package historysearch

import (
	"context"
	"io"
	"log/slog"

	"github.com/nomatterpluda/browser-history-search/ai"
	"github.com/nomatterpluda/browser-history-search/ai/openai"
	"github.com/nomatterpluda/browser-history-search/dispatch"
	"github.com/nomatterpluda/browser-history-search/gateway"
	"github.com/nomatterpluda/browser-history-search/history"
	"github.com/nomatterpluda/browser-history-search/ingestion"
	"github.com/nomatterpluda/browser-history-search/lifecycle"
	"github.com/nomatterpluda/browser-history-search/metrics"
	"github.com/nomatterpluda/browser-history-search/reembed"
	"github.com/nomatterpluda/browser-history-search/search"
	"github.com/nomatterpluda/browser-history-search/storage"
	"github.com/nomatterpluda/browser-history-search/storage/badger"
	"github.com/prometheus/client_golang/prometheus"
)

// Database wires storage, the embedding gateway, ingestion, retention,
// search and the command dispatcher around one Badger store.
type Database struct {
	backend    *badger.Backend
	repos      *badger.Repositories
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	gateway    *gateway.EmbeddingGateway
	policy     *lifecycle.Policy
	retainer   *lifecycle.Retainer
	pipeline   *ingestion.Pipeline
	searcher   *search.Searcher
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig     *ai.Config
	factory      ai.EmbedderFactory
	tokenCounter ai.TokenCounter
	history      history.Provider
	searchConfig *search.Config
	policy       *lifecycle.Policy
	maxItems     int
	poolSize     int
	inMemory     bool
	logger       *slog.Logger
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) { o.aiConfig = cfg }
}

// WithEmbedderFactory replaces the OpenAI embedder factory.
func WithEmbedderFactory(factory ai.EmbedderFactory) DatabaseOption {
	return func(o *databaseOptions) { o.factory = factory }
}

// WithTokenCounter replaces the model tokenizer used for token accounting.
func WithTokenCounter(counter ai.TokenCounter) DatabaseOption {
	return func(o *databaseOptions) { o.tokenCounter = counter }
}

// WithHistoryProvider sets the source of browser history.
// The default is an empty in-memory provider.
func WithHistoryProvider(p history.Provider) DatabaseOption {
	return func(o *databaseOptions) { o.history = p }
}

// WithSearchConfig tunes the searcher.
func WithSearchConfig(cfg search.Config) DatabaseOption {
	return func(o *databaseOptions) { o.searchConfig = &cfg }
}

// WithPolicy sets the embedding eligibility policy.
func WithPolicy(p *lifecycle.Policy) DatabaseOption {
	return func(o *databaseOptions) { o.policy = p }
}

// WithMaxContentItems caps the number of stored pages.
func WithMaxContentItems(n int) DatabaseOption {
	return func(o *databaseOptions) { o.maxItems = n }
}

// WithPoolSize sets the number of embedding workers.
func WithPoolSize(n int) DatabaseOption {
	return func(o *databaseOptions) { o.poolSize = n }
}

// WithInMemory keeps everything in memory; the path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) { o.inMemory = true }
}

// WithLogger sets the logger shared by all components.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) { o.logger = logger }
}

// NewDatabase opens the store at filePath and wires every component.
// A key stored by an earlier SetKey is loaded into the gateway.
func NewDatabase(ctx context.Context, filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		factory:  openai.NewEmbedder,
		maxItems: lifecycle.DefaultMaxContentItems,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.history == nil {
		options.history = history.NewStaticProvider()
	}
	if options.tokenCounter == nil {
		options.tokenCounter = openai.NewTokenCounter(options.aiConfig.EmbeddingModel)
	}
	logger := options.logger

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}
	db := &Database{
		backend:  backend,
		repos:    badger.NewRepositories(backend),
		registry: prometheus.NewRegistry(),
		logger:   logger,
	}
	if err := db.wire(ctx, options); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (db *Database) wire(ctx context.Context, o *databaseOptions) error {
	var err error
	if db.metrics, err = metrics.New(db.registry); err != nil {
		return err
	}

	db.gateway, err = gateway.New(o.aiConfig, o.factory,
		gateway.WithLogger(db.logger),
		gateway.WithSettingsRepository(db.repos.Settings),
		gateway.WithTokenCounter(o.tokenCounter),
		gateway.WithMetrics(db.metrics),
	)
	if err != nil {
		return err
	}
	if err := db.gateway.Initialize(ctx); err != nil {
		db.logger.Warn("could not load stored api key", "err", err)
	}

	db.policy = o.policy
	if db.policy == nil {
		if db.policy, err = lifecycle.NewPolicy(); err != nil {
			return err
		}
	}

	db.retainer, err = lifecycle.NewRetainer(db.repos.Content,
		lifecycle.WithMaxItems(o.maxItems),
		lifecycle.WithScreenshots(db.repos.Screenshots),
		lifecycle.WithMetrics(db.metrics),
		lifecycle.WithLogger(db.logger),
	)
	if err != nil {
		return err
	}

	pipelineOpts := []ingestion.Option{
		ingestion.WithLogger(db.logger),
		ingestion.WithPolicy(db.policy),
		ingestion.WithRetainer(db.retainer),
		ingestion.WithScreenshots(db.repos.Screenshots),
		ingestion.WithSettings(db.repos.Settings),
		ingestion.WithMetrics(db.metrics),
	}
	if o.poolSize > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(o.poolSize))
	}
	if db.pipeline, err = ingestion.NewPipeline(db.repos.Content, db.repos.Embeddings, db.gateway, pipelineOpts...); err != nil {
		return err
	}

	searchOpts := []search.Option{search.WithLogger(db.logger), search.WithMetrics(db.metrics)}
	if o.searchConfig != nil {
		searchOpts = append(searchOpts, search.WithConfig(*o.searchConfig))
	}
	if db.searcher, err = search.NewSearcher(o.history, db.repos.Content, db.repos.Embeddings, db.gateway, searchOpts...); err != nil {
		return err
	}

	db.dispatcher, err = dispatch.NewDispatcher(db.searcher, db.pipeline, db.gateway,
		db.repos.Content, db.repos.Settings,
		dispatch.WithLogger(db.logger),
		dispatch.WithKeyCounter(db.backend))
	return err
}

// Close waits for pending embeddings, then closes the store.
func (db *Database) Close() error {
	if db.pipeline != nil {
		db.pipeline.Wait()
		db.pipeline.Release()
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ContentRepository() storage.ContentRepository {
	return db.repos.Content
}

func (db *Database) EmbeddingRepository() storage.EmbeddingRepository {
	return db.repos.Embeddings
}

func (db *Database) ScreenshotRepository() storage.ScreenshotRepository {
	return db.repos.Screenshots
}

func (db *Database) SettingsRepository() storage.SettingsRepository {
	return db.repos.Settings
}

func (db *Database) Gateway() *gateway.EmbeddingGateway {
	return db.gateway
}

func (db *Database) Pipeline() *ingestion.Pipeline {
	return db.pipeline
}

func (db *Database) Searcher() *search.Searcher {
	return db.searcher
}

func (db *Database) Retainer() *lifecycle.Retainer {
	return db.retainer
}

func (db *Database) Dispatcher() *dispatch.Dispatcher {
	return db.dispatcher
}

// Gatherer exposes the database's metrics.
func (db *Database) Gatherer() prometheus.Gatherer {
	return db.registry
}

// NewReembedder creates a backfill over the stored pages using the
// database's pipeline. A nil config uses the database's policy.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	if config == nil {
		config = reembed.DefaultConfig()
		config.Policy = db.policy
	}
	return reembed.NewReembedder(db.repos.Content, db.pipeline, config, progress, db.logger)
}
