package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/gateway"
	"github.com/nomatterpluda/browser-history-search/search"
	"github.com/nomatterpluda/browser-history-search/storage"
)

// Searcher answers search queries.
type Searcher interface {
	Search(ctx context.Context, req search.Request) search.Response
}

// Ingester stores extracted pages and generates their embeddings.
type Ingester interface {
	Ingest(ctx context.Context, content *core.ExtractedContent, shot *core.Screenshot) error
	GenerateEmbedding(ctx context.Context, url string) (*core.EmbeddingRecord, error)
}

// KeyManager configures the embedding credential.
type KeyManager interface {
	SetKey(ctx context.Context, key string) error
	Status() gateway.Status
}

var _ KeyManager = (*gateway.EmbeddingGateway)(nil)

// KeyCounter reports how many keys the store holds per record prefix.
type KeyCounter interface {
	KeyCounts() (map[string]int, error)
}

// contentKeyPrefix is accepted in front of URLs for GENERATE_EMBEDDINGS.
const contentKeyPrefix = "content_"

type handlerFunc func(ctx context.Context, cmd Command) Result

// Dispatcher routes commands to their handler.
type Dispatcher struct {
	searcher Searcher
	ingester Ingester
	keys     KeyManager
	contents storage.ContentRepository
	settings storage.SettingsRepository
	keyCount KeyCounter
	handlers map[CommandType]handlerFunc
	logger   *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher) error

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger.With("component", "dispatch")
		return nil
	}
}

// WithKeyCounter adds per-prefix key counts to DEBUG_STORAGE results.
func WithKeyCounter(counter KeyCounter) Option {
	return func(d *Dispatcher) error {
		d.keyCount = counter
		return nil
	}
}

// NewDispatcher creates a Dispatcher over its collaborators.
func NewDispatcher(
	searcher Searcher,
	ingester Ingester,
	keys KeyManager,
	contents storage.ContentRepository,
	settings storage.SettingsRepository,
	opts ...Option,
) (*Dispatcher, error) {
	switch {
	case searcher == nil:
		return nil, ErrSearcherRequired
	case ingester == nil:
		return nil, ErrIngesterRequired
	case keys == nil:
		return nil, ErrKeyManagerRequired
	case contents == nil:
		return nil, ErrContentRepositoryRequired
	case settings == nil:
		return nil, ErrSettingsRepositoryRequired
	}

	d := &Dispatcher{
		searcher: searcher,
		ingester: ingester,
		keys:     keys,
		contents: contents,
		settings: settings,
		logger:   slog.Default().With("component", "dispatch"),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	d.handlers = map[CommandType]handlerFunc{
		SearchHistory:      d.searchHistory,
		GetSettings:        d.getSettings,
		UpdateSettings:     d.updateSettings,
		GetStats:           d.getStats,
		SetAPIKey:          d.setAPIKey,
		GetEmbeddingStatus: d.embeddingStatus,
		GenerateEmbeddings: d.generateEmbeddings,
		ContentExtracted:   d.contentExtracted,
		GetStoredContent:   d.storedContent,
		DebugStorage:       d.debugStorage,
		Ping:               d.ping,
	}
	return d, nil
}

// Dispatch runs the handler for cmd.Type.
// It never panics; a failing handler yields Success=false.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (result Result) {
	handler, found := d.handlers[cmd.Type]
	if !found {
		d.logger.Warn("unknown command type", "type", cmd.Type)
		return failure(ErrUnknownCommand)
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("command handler panicked", "type", cmd.Type, "panic", r)
			result = failure(fmt.Errorf("internal error handling %s", cmd.Type))
		}
	}()

	d.logger.Debug("dispatching command", "type", cmd.Type)
	return handler(ctx, cmd)
}

func (d *Dispatcher) searchHistory(ctx context.Context, cmd Command) Result {
	resp := d.searcher.Search(ctx, search.Request{Query: cmd.Query, Page: cmd.Page, Limit: cmd.Limit})
	if !resp.Success {
		return Result{Error: resp.Error}
	}
	return Result{Success: true, Results: resp.Results}
}

func (d *Dispatcher) getSettings(ctx context.Context, _ Command) Result {
	return Result{Success: true, Settings: d.loadSettings(ctx)}
}

// loadSettings falls back to defaults when the store cannot be read.
func (d *Dispatcher) loadSettings(ctx context.Context) *core.Settings {
	settings, err := d.settings.LoadSettings(ctx)
	if err != nil {
		d.logger.Warn("error loading settings, using defaults", "err", err)
		return core.DefaultSettings()
	}
	return settings
}

func (d *Dispatcher) updateSettings(ctx context.Context, cmd Command) Result {
	if cmd.Settings == nil {
		return failure(fmt.Errorf("%w: settings", ErrMissingField))
	}
	settings, err := d.settings.LoadSettings(ctx)
	if err != nil {
		return failure(err)
	}
	if err := cmd.Settings.Apply(settings); err != nil {
		return failure(err)
	}
	if err := d.settings.SaveSettings(ctx, settings); err != nil {
		return failure(err)
	}
	d.logger.Info("settings updated")
	return Result{Success: true, Settings: settings}
}

func (d *Dispatcher) getStats(ctx context.Context, _ Command) Result {
	stats, err := d.settings.LoadStats(ctx)
	if err != nil {
		d.logger.Warn("error loading stats, using defaults", "err", err)
		stats = &core.Stats{}
	}
	return Result{Success: true, Stats: stats}
}

func (d *Dispatcher) setAPIKey(ctx context.Context, cmd Command) Result {
	if strings.TrimSpace(cmd.APIKey) == "" {
		return failure(fmt.Errorf("%w: apiKey", ErrMissingField))
	}
	if err := d.keys.SetKey(ctx, cmd.APIKey); err != nil {
		return failure(err)
	}
	status := d.keys.Status()
	return Result{Success: true, Status: &status}
}

func (d *Dispatcher) embeddingStatus(_ context.Context, _ Command) Result {
	status := d.keys.Status()
	return Result{Success: true, Status: &status}
}

func (d *Dispatcher) generateEmbeddings(ctx context.Context, cmd Command) Result {
	url := strings.TrimPrefix(cmd.URL, contentKeyPrefix)
	if url == "" {
		return failure(fmt.Errorf("%w: url", ErrMissingField))
	}
	record, err := d.ingester.GenerateEmbedding(ctx, url)
	if err != nil {
		return failure(err)
	}
	return Result{Success: true, Embedding: &EmbeddingSummary{
		URL:           record.URL,
		Dimensions:    len(record.Embedding),
		Tokens:        record.Tokens,
		ContentLength: record.ContentLength,
		GeneratedAt:   record.GeneratedAt,
	}}
}

func (d *Dispatcher) contentExtracted(ctx context.Context, cmd Command) Result {
	if cmd.Content == nil {
		return failure(fmt.Errorf("%w: content", ErrMissingField))
	}
	content, shot := cmd.Content.ToContent()
	if err := d.ingester.Ingest(ctx, content, shot); err != nil {
		return failure(err)
	}
	return ok()
}

// storedContent answers with no content, not an error, for unknown URLs.
func (d *Dispatcher) storedContent(ctx context.Context, cmd Command) Result {
	if cmd.URL == "" {
		return failure(fmt.Errorf("%w: url", ErrMissingField))
	}
	content, err := d.contents.GetContent(ctx, cmd.URL)
	if errors.Is(err, storage.ErrNotFound) {
		return ok()
	}
	if err != nil {
		d.logger.Warn("error reading stored content", "url", cmd.URL, "err", err)
		return ok()
	}
	return Result{Success: true, Content: newStoredContent(content)}
}

func (d *Dispatcher) debugStorage(ctx context.Context, _ Command) Result {
	contents, err := d.contents.ListContent(ctx)
	if err != nil {
		return failure(err)
	}
	urls := make([]string, 0, len(contents))
	for _, c := range contents {
		urls = append(urls, c.URL)
	}
	total := len(urls)
	result := Result{Success: true, StoredURLs: urls, TotalItems: &total}
	if d.keyCount != nil {
		counts, err := d.keyCount.KeyCounts()
		if err != nil {
			d.logger.Warn("error counting stored keys", "err", err)
		} else {
			result.KeyCounts = counts
		}
	}
	return result
}

func (d *Dispatcher) ping(_ context.Context, _ Command) Result {
	return Result{Success: true, State: "ready"}
}
