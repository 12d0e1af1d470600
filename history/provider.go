// Package history supplies browser history records to the search engine.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/nomatterpluda/browser-history-search/core"
)

// DefaultMaxResults is used when a Query leaves MaxResults unset.
const DefaultMaxResults = 100

// Query selects history records.
type Query struct {
	Text       string    // Case-insensitive substring of title or URL; empty matches all
	StartTime  time.Time // Inclusive lower bound on last visit; zero means unbounded
	EndTime    time.Time // Inclusive upper bound on last visit; zero means unbounded
	MaxResults int
}

// Provider returns history records, most recent visit first.
type Provider interface {
	Search(ctx context.Context, q Query) ([]*core.HistoryRecord, error)
}

// StaticProvider serves an in-memory set of records.
type StaticProvider struct {
	mu      sync.RWMutex
	records []*core.HistoryRecord
}

var _ Provider = (*StaticProvider)(nil)

// NewStaticProvider creates a provider over records.
func NewStaticProvider(records ...*core.HistoryRecord) *StaticProvider {
	p := &StaticProvider{}
	p.Add(records...)
	return p
}

// Add appends records.
func (p *StaticProvider) Add(records ...*core.HistoryRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, records...)
}

// Len returns the number of records held.
func (p *StaticProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.records)
}

func (p *StaticProvider) Search(ctx context.Context, q Query) ([]*core.HistoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := q.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	text := strings.ToLower(q.Text)

	p.mu.RLock()
	matched := make([]*core.HistoryRecord, 0, len(p.records))
	for _, r := range p.records {
		if !q.StartTime.IsZero() && r.LastVisitTime.Before(q.StartTime) {
			continue
		}
		if !q.EndTime.IsZero() && r.LastVisitTime.After(q.EndTime) {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(r.Title), text) &&
			!strings.Contains(strings.ToLower(r.URL), text) {
			continue
		}
		matched = append(matched, r)
	}
	p.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b *core.HistoryRecord) int {
		return b.LastVisitTime.Compare(a.LastVisitTime)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// exportedItem is one entry of a browser history export.
// lastVisitTime is milliseconds since the Unix epoch.
type exportedItem struct {
	ID            string  `json:"id"`
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	LastVisitTime float64 `json:"lastVisitTime"`
	VisitCount    int     `json:"visitCount"`
}

// LoadFile reads a JSON array of exported history items.
func LoadFile(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []exportedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse history export %s: %w", path, err)
	}

	records := make([]*core.HistoryRecord, 0, len(items))
	for _, item := range items {
		if item.URL == "" {
			continue
		}
		record := &core.HistoryRecord{
			ID:         item.ID,
			URL:        item.URL,
			Title:      item.Title,
			VisitCount: item.VisitCount,
		}
		if item.LastVisitTime > 0 {
			record.LastVisitTime = time.UnixMilli(int64(item.LastVisitTime))
		}
		records = append(records, record)
	}
	return NewStaticProvider(records...), nil
}

// SaveFile writes records as a JSON history export readable by LoadFile.
func SaveFile(path string, records []*core.HistoryRecord) error {
	items := make([]exportedItem, 0, len(records))
	for _, r := range records {
		item := exportedItem{ID: r.ID, URL: r.URL, Title: r.Title, VisitCount: r.VisitCount}
		if !r.LastVisitTime.IsZero() {
			item.LastVisitTime = float64(r.LastVisitTime.UnixMilli())
		}
		items = append(items, item)
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
