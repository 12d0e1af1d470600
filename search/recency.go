package search

import (
	"encoding/base64"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nomatterpluda/browser-history-search/core"
)

const (
	visitWeight   = 0.6
	recencyWeight = 0.4

	// visitSaturation is the visit count at which the visit component peaks.
	visitSaturation = 10
	// recencyHorizon is the age at which the recency component reaches zero.
	recencyHorizon = 30 * 24 * time.Hour

	historyTitleLength = 50

	// UntitledPage replaces empty titles in results.
	UntitledPage = "Untitled Page"
)

// RecencyScore blends visit frequency and recency into [0, 1].
// A visit count below one counts as one; a zero last visit has no recency.
func RecencyScore(visitCount int, lastVisit, now time.Time) float64 {
	if visitCount < 1 {
		visitCount = 1
	}
	visit := math.Min(float64(visitCount)/visitSaturation, 1)

	recency := 0.0
	if !lastVisit.IsZero() {
		age := now.Sub(lastVisit)
		recency = math.Max(0, 1-float64(age)/float64(recencyHorizon))
		recency = math.Min(recency, 1)
	}
	return visit*visitWeight + recency*recencyWeight
}

// FormatHistoryRecord converts a history record into a result scored by RecencyScore.
func FormatHistoryRecord(r *core.HistoryRecord, now time.Time) *core.SearchResult {
	id := r.ID
	if id == "" {
		id = fmt.Sprintf("history-%d", core.IDFromContent(r.URL))
	}
	title := r.Title
	if title == "" {
		title = UntitledPage
	}
	visitDate := r.LastVisitTime
	if visitDate.IsZero() {
		visitDate = now
	}
	visitCount := r.VisitCount
	if visitCount < 1 {
		visitCount = 1
	}
	return &core.SearchResult{
		ID:             id,
		Title:          title,
		URL:            r.URL,
		Snippet:        historySnippet(r.Title, r.URL),
		VisitDate:      visitDate,
		VisitCount:     visitCount,
		Favicon:        Favicon(r.URL),
		RelevanceScore: RecencyScore(r.VisitCount, r.LastVisitTime, now),
	}
}

// historySnippet renders "title • domain", shortening long titles.
func historySnippet(title, rawURL string) string {
	domain := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		domain = u.Hostname()
	}
	if utf8.RuneCountInString(title) > historyTitleLength {
		title = string([]rune(title)[:historyTitleLength]) + ellipsis
	}
	return title + " • " + domain
}

// Favicon returns an icon URL for the page's host, or an inline
// placeholder when the URL has no host.
func Favicon(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return genericFavicon("?")
	}
	return "https://www.google.com/s2/favicons?domain=" + u.Hostname() + "&sz=16"
}

func genericFavicon(letter string) string {
	svg := `<svg width="16" height="16" viewBox="0 0 16 16" xmlns="http://www.w3.org/2000/svg">` +
		`<rect width="16" height="16" fill="#1a73e8"/>` +
		`<text x="8" y="12" font-family="Arial, sans-serif" font-size="10" fill="white" text-anchor="middle">` +
		strings.ToUpper(letter) + `</text></svg>`
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}
