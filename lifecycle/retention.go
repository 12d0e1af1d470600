package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/metrics"
	"github.com/nomatterpluda/browser-history-search/storage"
)

// DefaultMaxContentItems is the number of pages kept before the oldest are evicted.
const DefaultMaxContentItems = 100

var (
	// ErrContentRepositoryRequired is returned when a content repository is not provided.
	ErrContentRepositoryRequired = errors.New("content repository required")
)

// Report summarises one retention pass.
type Report struct {
	ContentEvicted     int `json:"contentEvicted"`
	ScreenshotsExpired int `json:"screenshotsExpired"`
}

// Retainer enforces storage limits on extracted content and screenshots.
type Retainer struct {
	contents    storage.ContentRepository
	screenshots storage.ScreenshotRepository
	maxItems    int
	metrics     *metrics.Metrics
	now         func() time.Time
	logger      *slog.Logger
}

// RetainerOption configures a Retainer.
type RetainerOption func(*Retainer) error

// WithMaxItems overrides DefaultMaxContentItems.
func WithMaxItems(n int) RetainerOption {
	return func(r *Retainer) error {
		if n < 1 {
			return errors.New("max items must be positive")
		}
		r.maxItems = n
		return nil
	}
}

// WithScreenshots enables the screenshot sweep.
func WithScreenshots(repo storage.ScreenshotRepository) RetainerOption {
	return func(r *Retainer) error {
		r.screenshots = repo
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) RetainerOption {
	return func(r *Retainer) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "retainer")
		return nil
	}
}

// WithMetrics counts evictions.
func WithMetrics(m *metrics.Metrics) RetainerOption {
	return func(r *Retainer) error {
		r.metrics = m
		return nil
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) RetainerOption {
	return func(r *Retainer) error {
		if now != nil {
			r.now = now
		}
		return nil
	}
}

// NewRetainer creates a retainer over contents.
func NewRetainer(contents storage.ContentRepository, opts ...RetainerOption) (*Retainer, error) {
	if contents == nil {
		return nil, ErrContentRepositoryRequired
	}
	r := &Retainer{
		contents: contents,
		maxItems: DefaultMaxContentItems,
		now:      time.Now,
		logger:   slog.Default().With("component", "retainer"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// EnforceContentCap deletes the oldest stored pages beyond the item cap.
// Deleting a page also deletes its embedding and screenshot.
func (r *Retainer) EnforceContentCap(ctx context.Context) (int, error) {
	contents, err := r.contents.ListContent(ctx)
	if err != nil {
		return 0, err
	}
	if len(contents) <= r.maxItems {
		return 0, nil
	}

	// Newest first; URL breaks ties so eviction is deterministic.
	slices.SortFunc(contents, func(a, b *core.ExtractedContent) int {
		if c := b.StoredAt.Compare(a.StoredAt); c != 0 {
			return c
		}
		return strings.Compare(a.URL, b.URL)
	})

	evict := contents[r.maxItems:]
	urls := make([]string, len(evict))
	for i, c := range evict {
		urls[i] = c.URL
	}
	if err := r.contents.DeleteContent(ctx, urls...); err != nil {
		return 0, err
	}

	r.metrics.Evicted("content", len(urls))
	r.logger.Info("evicted old content", "count", len(urls), "kept", r.maxItems)
	return len(urls), nil
}

// SweepScreenshots deletes screenshots past their expiry.
func (r *Retainer) SweepScreenshots(ctx context.Context) (int, error) {
	if r.screenshots == nil {
		return 0, nil
	}
	shots, err := r.screenshots.ListScreenshots(ctx)
	if err != nil {
		return 0, err
	}

	now := r.now()
	expired := make([]string, 0)
	for _, shot := range shots {
		if shot.Expired(now) {
			expired = append(expired, shot.URL)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}
	if err := r.screenshots.DeleteScreenshots(ctx, expired...); err != nil {
		return 0, err
	}

	r.metrics.Evicted("screenshot", len(expired))
	r.logger.Info("removed expired screenshots", "count", len(expired))
	return len(expired), nil
}

// Run performs a full retention pass. Both steps run even if the first fails.
func (r *Retainer) Run(ctx context.Context) (Report, error) {
	var report Report
	evicted, contentErr := r.EnforceContentCap(ctx)
	report.ContentEvicted = evicted
	expired, shotErr := r.SweepScreenshots(ctx)
	report.ScreenshotsExpired = expired
	return report, errors.Join(contentErr, shotErr)
}

// ScreenshotExpiry returns when a screenshot captured at capturedAt expires.
// A non-positive retention means the screenshot never expires.
func ScreenshotExpiry(capturedAt time.Time, retentionDays int) time.Time {
	if retentionDays <= 0 {
		return time.Time{}
	}
	return capturedAt.AddDate(0, 0, retentionDays)
}
