package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports how a backfill is going, broken down by outcome.
// Only embedded pages count toward the rate; skips cost no provider call.
type ProgressTracker struct {
	mu         sync.Mutex
	out        io.Writer
	total      int
	every      int
	done       Counts
	lastReport int
	start      time.Time
}

// NewProgressTracker starts the clock on a backfill of total pages.
// A line is written whenever at least every pages have been handled since the
// previous one; every < 1 reports after each Record.
func NewProgressTracker(out io.Writer, total, every int) *ProgressTracker {
	if every < 1 {
		every = 1
	}
	return &ProgressTracker{
		out:   out,
		total: total,
		every: every,
		start: time.Now(),
	}
}

// Record adds the outcome of a batch of pages.
func (p *ProgressTracker) Record(c Counts) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done.add(c)
	if p.done.Pages()-p.lastReport >= p.every {
		p.report()
	}
}

// Counts returns the outcomes recorded so far.
func (p *ProgressTracker) Counts() Counts {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Elapsed returns the time since the tracker was created.
func (p *ProgressTracker) Elapsed() time.Duration {
	return time.Since(p.start)
}

// Finish writes the final tally and ends the progress line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.report()
	fmt.Fprintln(p.out)
}

// report must be called with mu held.
func (p *ProgressTracker) report() {
	seen := p.done.Pages()
	p.lastReport = seen

	percent := 100.0
	if p.total > 0 {
		percent = float64(seen) / float64(p.total) * 100
	}
	rate := 0.0
	if secs := time.Since(p.start).Seconds(); secs > 0 {
		rate = float64(p.done.Embedded) / secs
	}

	fmt.Fprintf(p.out, "\rEmbedding: %d/%d pages (%.0f%%) %d embedded, %d skipped, %d failed - %.1f embedded/s",
		seen, p.total, percent, p.done.Embedded, p.done.Skipped, p.done.Failed, rate)
}
