package search

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/gateway"
	"github.com/nomatterpluda/browser-history-search/history"
	"github.com/nomatterpluda/browser-history-search/metrics"
	"github.com/nomatterpluda/browser-history-search/storage"
	"golang.org/x/sync/errgroup"
)

// State is a step of the query state machine.
type State int

const (
	StateIdle State = iota
	StateSemanticAttempt
	StateLexicalFallback
	StateRecencyListing
	StateErrorFallback
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSemanticAttempt:
		return "semantic"
	case StateLexicalFallback:
		return "lexical"
	case StateRecencyListing:
		return "recency"
	case StateErrorFallback:
		return "error_fallback"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

const (
	// ErrorFallbackID identifies the placeholder result returned when search fails.
	ErrorFallbackID = "error-fallback"

	errorFallbackTitle   = "Search temporarily unavailable"
	errorFallbackSnippet = "Please try again in a moment."
	errorFallbackFavicon = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iMTYiIGhlaWdodD0iMTYiIHZpZXdCb3g9IjAgMCAxNiAxNiIgZmlsbD0ibm9uZSIgeG1sbnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj4KPHJlY3Qgd2lkdGg9IjE2IiBoZWlnaHQ9IjE2IiBmaWxsPSIjZmY0NDQ0Ii8+Cjx0ZXh0IHg9IjgiIHk9IjEyIiBmb250LWZhbWlseT0iQXJpYWwiIGZvbnQtc2l6ZT0iMTIiIGZpbGw9IndoaXRlIiB0ZXh0LWFuY2hvcj0ibWlkZGxlIj4hPC90ZXh0Pgo8L3N2Zz4K"
)

// Config tunes the Searcher.
type Config struct {
	// HistoryWindow limits history to visits within this long of now.
	HistoryWindow time.Duration
	// MinHistoryFetch is the fewest history records requested per query.
	MinHistoryFetch int
	// FetchMultiplier scales (page+1)*limit into the history over-fetch.
	FetchMultiplier int
	DefaultLimit    int
	MaxLimit        int
	// SimilarityThreshold is the cosine similarity a page must exceed.
	SimilarityThreshold float64
}

// DefaultConfig returns the standard searcher configuration.
func DefaultConfig() Config {
	return Config{
		HistoryWindow:       7 * 24 * time.Hour,
		MinHistoryFetch:     500,
		FetchMultiplier:     3,
		DefaultLimit:        DefaultTopK,
		MaxLimit:            50,
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
}

// Request is a search query with optional paging.
type Request struct {
	Query string `json:"query"`
	Page  int    `json:"page,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// Response carries the results of a Request.
type Response struct {
	Success bool                 `json:"success"`
	Results []*core.SearchResult `json:"results,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// Searcher answers queries using semantic, lexical and recency tiers.
type Searcher struct {
	history    history.Provider
	contents   storage.ContentRepository
	embeddings storage.EmbeddingRepository
	gateway    gateway.Gateway
	config     Config
	metrics    *metrics.Metrics
	monitor    SearchMonitor
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "searcher")
		return nil
	}
}

// WithMetrics records served tiers, fallbacks and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Searcher) error {
		s.metrics = m
		return nil
	}
}

// WithMonitor installs a monitor that observes every search.
func WithMonitor(monitor SearchMonitor) Option {
	return func(s *Searcher) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Searcher) error {
		if now == nil {
			return errors.New("clock must not be nil")
		}
		s.now = now
		return nil
	}
}

// WithConfig replaces the default configuration.
func WithConfig(config Config) Option {
	return func(s *Searcher) error {
		if config.DefaultLimit <= 0 || config.MaxLimit < config.DefaultLimit {
			return fmt.Errorf("invalid result limits %d/%d", config.DefaultLimit, config.MaxLimit)
		}
		if config.FetchMultiplier <= 0 {
			return fmt.Errorf("fetch multiplier must be positive, got %d", config.FetchMultiplier)
		}
		s.config = config
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	historyProvider history.Provider,
	contents storage.ContentRepository,
	embeddings storage.EmbeddingRepository,
	gw gateway.Gateway,
	opts ...Option,
) (*Searcher, error) {
	if historyProvider == nil {
		return nil, ErrHistoryProviderRequired
	}
	if contents == nil {
		return nil, ErrContentRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if gw == nil {
		return nil, ErrGatewayRequired
	}

	s := &Searcher{
		history:    historyProvider,
		contents:   contents,
		embeddings: embeddings,
		gateway:    gw,
		config:     DefaultConfig(),
		monitor:    &noopMonitor{},
		now:        time.Now,
		logger:     slog.Default().With("component", "searcher"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// run tracks the state of one query.
type run struct {
	s       *Searcher
	monitor SearchMonitor
	state   State
}

func (r *run) enter(next State) {
	r.monitor.Transition(r.state, next)
	r.state = next
}

// Search runs req through the fallback chain. It never returns an error:
// a failure of the whole chain produces a single placeholder result.
func (s *Searcher) Search(ctx context.Context, req Request) Response {
	return s.SearchWithMonitor(ctx, req, nil)
}

// SearchWithMonitor is Search observed by monitor instead of the configured one.
func (s *Searcher) SearchWithMonitor(ctx context.Context, req Request, monitor SearchMonitor) (resp Response) {
	if monitor == nil {
		monitor = s.monitor
	}
	r := &run{s: s, monitor: monitor, state: StateIdle}
	started := time.Now()
	monitor.Start(req.Query)

	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("search panicked", "query", req.Query, "panic", p)
			resp = r.errorFallback(fmt.Errorf("panic: %v", p))
		}
		served := r.state
		r.enter(StateDone)
		monitor.Finish(served, resp.Results)
		s.metrics.ObserveQuery(time.Since(started))
	}()

	results, err := r.execute(ctx, req)
	if err != nil {
		s.logger.Error("search failed", "query", req.Query, "state", r.state.String(), "err", err)
		return r.errorFallback(err)
	}
	s.metrics.QueryServed(r.state.String())
	return Response{Success: true, Results: results}
}

func (r *run) execute(ctx context.Context, req Request) ([]*core.SearchResult, error) {
	s := r.s
	page, limit := s.pageAndLimit(req)
	now := s.now()

	if strings.TrimSpace(req.Query) == "" {
		r.enter(StateRecencyListing)
		records, err := s.loadHistory(ctx, page, limit, now)
		if err != nil {
			return nil, err
		}
		r.monitor.AfterHistoryLoad(records)
		return s.recencyListing(records, page, limit, now), nil
	}

	if s.gateway.IsReady() {
		r.enter(StateSemanticAttempt)
		outcome := SearchSemantic(ctx, req.Query, s.gateway, s.embeddings, s.contents, SemanticOptions{
			Threshold: s.config.SimilarityThreshold,
			TopK:      (page + 1) * limit,
		})
		r.monitor.AfterSemanticSearch(outcome)
		switch outcome.Status {
		case SemanticHits:
			return paginate(outcome.Results, page, limit), nil
		case SemanticEmpty:
			s.metrics.Fallback(StateSemanticAttempt.String(), "no_results")
		case SemanticUnavailable:
			s.metrics.Fallback(StateSemanticAttempt.String(), outcome.Reason)
			if outcome.Reason == ReasonNotReady {
				s.logger.Debug("semantic search not ready", "err", outcome.Err)
			} else {
				s.logger.Warn("semantic search failed, falling back to text search", "reason", outcome.Reason, "err", outcome.Err)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.enter(StateLexicalFallback)
	var (
		records  []*core.HistoryRecord
		contents []*core.ExtractedContent
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer capturePanic(&err)
		records, err = s.loadHistory(gctx, page, limit, now)
		return err
	})
	g.Go(func() (err error) {
		defer capturePanic(&err)
		contents, err = s.contents.ListContent(gctx)
		if err != nil {
			return fmt.Errorf("loading stored content: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.monitor.AfterHistoryLoad(records)
	r.monitor.AfterContentLoad(contents)

	results := SearchText(req.Query, history.Eligible(records), contents, now, LexicalOptions{TopK: (page + 1) * limit})
	return paginate(results, page, limit), nil
}

// capturePanic converts a panic in a loader goroutine into an error for Wait.
func capturePanic(err *error) {
	if p := recover(); p != nil {
		*err = fmt.Errorf("panic: %v", p)
	}
}

func (r *run) errorFallback(err error) Response {
	r.enter(StateErrorFallback)
	r.s.metrics.QueryServed(StateErrorFallback.String())
	r.s.metrics.Fallback(StateErrorFallback.String(), errorReason(err))
	return Response{
		Success: true,
		Results: []*core.SearchResult{{
			ID:             ErrorFallbackID,
			Title:          errorFallbackTitle,
			URL:            "#",
			Snippet:        errorFallbackSnippet,
			VisitDate:      r.s.now(),
			Favicon:        errorFallbackFavicon,
			RelevanceScore: 0,
		}},
	}
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, core.ErrStorage):
		return "storage"
	default:
		return "internal"
	}
}

func (s *Searcher) pageAndLimit(req Request) (int, int) {
	page := max(req.Page, 0)
	limit := req.Limit
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}
	return page, min(limit, s.config.MaxLimit)
}

// loadHistory fetches the recent-history window, over-fetching for later pages.
func (s *Searcher) loadHistory(ctx context.Context, page, limit int, now time.Time) ([]*core.HistoryRecord, error) {
	fetch := max(s.config.MinHistoryFetch, s.config.FetchMultiplier*(page+1)*limit)
	q := history.Query{EndTime: now, MaxResults: fetch}
	if s.config.HistoryWindow > 0 {
		q.StartTime = now.Add(-s.config.HistoryWindow)
	}
	records, err := s.history.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return records, nil
}

func (s *Searcher) recencyListing(records []*core.HistoryRecord, page, limit int, now time.Time) []*core.SearchResult {
	eligible := history.Eligible(records)
	slices.SortStableFunc(eligible, func(a, b *core.HistoryRecord) int {
		return cmp.Compare(b.LastVisitTime.UnixNano(), a.LastVisitTime.UnixNano())
	})
	results := make([]*core.SearchResult, 0, len(eligible))
	for _, record := range eligible {
		results = append(results, FormatHistoryRecord(record, now))
	}
	return paginate(results, page, limit)
}

func paginate(results []*core.SearchResult, page, limit int) []*core.SearchResult {
	start := page * limit
	if start >= len(results) {
		return []*core.SearchResult{}
	}
	end := min(start+limit, len(results))
	return results[start:end]
}
