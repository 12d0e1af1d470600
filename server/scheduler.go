package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/nomatterpluda/browser-history-search/lifecycle"
)

// Sweeper enforces retention. *lifecycle.Retainer implements it.
type Sweeper interface {
	Run(ctx context.Context) (lifecycle.Report, error)
}

var _ Sweeper = (*lifecycle.Retainer)(nil)

// Scheduler runs retention sweeps on a cron schedule.
type Scheduler struct {
	expr    *cronexpr.Expression
	sweeper Sweeper
	now     func() time.Time
	logger  *slog.Logger
}

// NewScheduler parses spec, a standard cron expression or one of the
// @hourly / @daily shorthands.
func NewScheduler(spec string, sweeper Sweeper, logger *slog.Logger) (*Scheduler, error) {
	if sweeper == nil {
		return nil, ErrSweeperRequired
	}
	expr, err := cronexpr.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", spec, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		expr:    expr,
		sweeper: sweeper,
		now:     time.Now,
		logger:  logger.With("component", "retention-scheduler"),
	}, nil
}

// Next returns the first scheduled sweep strictly after t.
// The zero time means the schedule never fires again.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.expr.Next(t)
}

// Run sweeps at every scheduled time until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next := s.Next(s.now())
		if next.IsZero() {
			s.logger.Warn("retention schedule has no future runs")
			<-ctx.Done()
			return ctx.Err()
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one retention pass and logs its outcome.
func (s *Scheduler) Sweep(ctx context.Context) lifecycle.Report {
	report, err := s.sweeper.Run(ctx)
	if err != nil {
		s.logger.Warn("retention sweep failed", "err", err)
	}
	s.logger.Info("retention sweep complete",
		"content_evicted", report.ContentEvicted,
		"screenshots_expired", report.ScreenshotsExpired)
	return report
}
