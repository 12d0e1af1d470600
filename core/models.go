package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Dwell is time spent on a page at millisecond resolution.
type Dwell int64

// DwellOf converts d to a Dwell, dropping sub-millisecond precision.
func DwellOf(d time.Duration) Dwell {
	return Dwell(d.Milliseconds())
}

// Duration returns the dwell as a time.Duration.
func (d Dwell) Duration() time.Duration {
	return time.Duration(d) * time.Millisecond
}

// MatchType records which tier produced a search result.
type MatchType string

const (
	MatchTypeTitle    MatchType = "title"
	MatchTypeContent  MatchType = "content"
	MatchTypeSemantic MatchType = "semantic"
)

// HistoryRecord is a single entry supplied by the browser history provider.
type HistoryRecord struct {
	ID            string
	URL           string
	Title         string
	LastVisitTime time.Time
	VisitCount    int
}

// ExtractedContent is the cleaned main text of a visited page.
// Keyed by URL; a later extraction of the same URL replaces the earlier one.
type ExtractedContent struct {
	URL                  string
	Title                string
	Content              string
	ExtractedAt          time.Time // When the page text was captured
	StoredAt             time.Time // When the record was written; drives retention
	TimeOnPage           Dwell     // Reported by the extractor
	Processed            bool      // True once an embedding exists
	EmbeddingGeneratedAt time.Time
}

// WordCount returns the number of whitespace-separated words in the content.
func (c *ExtractedContent) WordCount() int {
	return WordCount(c.Content)
}

// EmbeddingRecord holds the vector generated for a stored page.
// An embedding never exists without its ExtractedContent counterpart.
type EmbeddingRecord struct {
	URL           string
	Embedding     []float32
	Tokens        int
	GeneratedAt   time.Time
	ContentLength int
}

// Screenshot is an image captured alongside extracted content.
type Screenshot struct {
	URL        string
	Data       []byte
	CapturedAt time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the screenshot has passed its expiry at now.
func (s *Screenshot) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !s.ExpiresAt.After(now)
}

// SearchResult is one ranked entry returned by a query.
type SearchResult struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	Snippet        string    `json:"snippet"`
	VisitDate      time.Time `json:"visitDate"`
	VisitCount     int       `json:"visitCount"`
	Favicon        string    `json:"favicon,omitempty"`
	RelevanceScore float64   `json:"relevanceScore"`
	MatchScore     float64   `json:"matchScore,omitempty"`
	MatchType      MatchType `json:"matchType,omitempty"`
}

// Settings are the user-adjustable preferences.
type Settings struct {
	DataRetentionDays       int       `json:"dataRetentionDays"`
	MaxResults              int       `json:"maxResults"`
	EnablePreview           bool      `json:"enablePreview"`
	ScreenshotRetentionDays int       `json:"screenshotRetentionDays"`
	APIKey                  string    `json:"-"`
	LastProcessedDate       time.Time `json:"lastProcessedDate,omitempty"`
}

// DefaultSettings returns the settings used when none have been saved.
func DefaultSettings() *Settings {
	return &Settings{
		DataRetentionDays:       180,
		MaxResults:              10,
		EnablePreview:           true,
		ScreenshotRetentionDays: 7,
	}
}

// Stats are the running counters shown to the user.
type Stats struct {
	TotalPages int       `json:"totalPages"`
	LastUpdate time.Time `json:"lastUpdate,omitempty"`
}

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
