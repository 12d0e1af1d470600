package search

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lexicalNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func historyRecord(url, title string, visits int, age time.Duration) *core.HistoryRecord {
	return &core.HistoryRecord{
		URL:           url,
		Title:         title,
		VisitCount:    visits,
		LastVisitTime: lexicalNow.Add(-age),
	}
}

func TestSearchText_ExactTitleMatch(t *testing.T) {
	history := []*core.HistoryRecord{
		historyRecord("https://example.com/ml", "Intro to Machine Learning", 2, time.Hour),
	}

	results := SearchText("machine learning", history, nil, lexicalNow, LexicalOptions{})

	require.Len(t, results, 1)
	assert.GreaterOrEqual(t, results[0].MatchScore, 20.0)
	assert.Equal(t, core.MatchTypeTitle, results[0].MatchType)
}

func TestSearchText_NoSearchableTerms(t *testing.T) {
	history := []*core.HistoryRecord{
		historyRecord("https://example.com/the", "The And Of", 2, time.Hour),
	}
	assert.Empty(t, SearchText("the and of", history, nil, lexicalNow, LexicalOptions{}))
	assert.Empty(t, SearchText("", history, nil, lexicalNow, LexicalOptions{}))
}

func TestSearchText_Thresholds(t *testing.T) {
	history := []*core.HistoryRecord{
		// Exact title word plus URL substring: 10 + 5*0.5, kept.
		historyRecord("https://rust.example/book", "Rust Book", 1, time.Hour),
		// Substring-only title hit: 5, kept.
		historyRecord("https://a.example", "Rustaceans unite", 1, time.Hour),
		// URL-only hit: 5*0.5, dropped.
		historyRecord("https://b.example/rusty", "Unrelated", 1, time.Hour),
	}
	contents := []*core.ExtractedContent{
		// Substring-only content hit: 5 < 8, dropped.
		{URL: "https://c.example", Title: "Notes", Content: "rustacean notes"},
		// Empty content is never scored.
		{URL: "https://d.example", Title: "Rust", Content: ""},
	}

	results := SearchText("rust", history, contents, lexicalNow, LexicalOptions{})

	urls := make([]string, 0, len(results))
	for _, r := range results {
		urls = append(urls, r.URL)
	}
	assert.ElementsMatch(t, []string{"https://rust.example/book", "https://a.example"}, urls)
}

func TestSearchText_MergesContentIntoHistory(t *testing.T) {
	url := "https://go.dev/blog/pipelines"
	history := []*core.HistoryRecord{
		historyRecord(url, "Go Concurrency Patterns", 5, 0),
	}
	contents := []*core.ExtractedContent{
		{
			URL:         url,
			Title:       "Go Concurrency Patterns",
			Content:     "This article explains concurrency patterns in Go.",
			ExtractedAt: lexicalNow.Add(-time.Hour),
		},
		{
			URL:         "https://notes.example/go",
			Title:       "Notes",
			Content:     "Some concurrency patterns I keep forgetting.",
			ExtractedAt: lexicalNow.Add(-2 * time.Hour),
		},
	}

	results := SearchText("concurrency patterns", history, contents, lexicalNow, LexicalOptions{})

	require.Len(t, results, 2)

	merged := results[0]
	assert.Equal(t, url, merged.URL)
	assert.Equal(t, core.MatchTypeContent, merged.MatchType)
	assert.Equal(t, 60.0, merged.MatchScore)
	assert.Equal(t, "This article explains concurrency patterns in Go.", merged.Snippet)
	assert.InDelta(t, 0.7, merged.RelevanceScore, 1e-9)

	contentOnly := results[1]
	assert.Equal(t, "https://notes.example/go", contentOnly.URL)
	assert.True(t, strings.HasPrefix(contentOnly.ID, "content-"))
	assert.Equal(t, 20.0, contentOnly.MatchScore)
	assert.InDelta(t, 1.0, contentOnly.RelevanceScore, 1e-9)
	assert.Equal(t, contents[1].ExtractedAt, contentOnly.VisitDate)
}

func TestSearchText_OneEntryPerURL(t *testing.T) {
	url := "https://example.com/dup"
	history := []*core.HistoryRecord{
		historyRecord(url, "Kubernetes basics", 1, time.Hour),
		historyRecord(url, "Kubernetes basics and operators", 1, 2*time.Hour),
	}
	contents := []*core.ExtractedContent{
		{URL: url, Title: "Kubernetes", Content: "kubernetes kubernetes"},
	}

	results := SearchText("kubernetes", history, contents, lexicalNow, LexicalOptions{})

	require.Len(t, results, 1)
	// Content: title 10*2 + content 10 = 30, above both history scores.
	assert.Equal(t, 30.0, results[0].MatchScore)
}

func TestSearchText_UntitledContent(t *testing.T) {
	contents := []*core.ExtractedContent{
		{URL: "https://example.com/x", Content: "a page about sourdough bread baking"},
	}

	results := SearchText("sourdough", nil, contents, lexicalNow, LexicalOptions{})

	require.Len(t, results, 1)
	assert.Equal(t, UntitledPage, results[0].Title)
}

func TestSearchText_SkipsOnlyEmptyContent(t *testing.T) {
	contents := []*core.ExtractedContent{
		{URL: "https://example.com/empty", Title: "Sourdough starter", Content: ""},
		{URL: "https://example.com/blank", Title: "Sourdough starter", Content: " \n\t "},
	}

	results := SearchText("sourdough", nil, contents, lexicalNow, LexicalOptions{})

	require.Len(t, results, 1)
	assert.Equal(t, "https://example.com/blank", results[0].URL)
	assert.Equal(t, 20.0, results[0].MatchScore)
}

func TestSearchText_TruncatesToTopK(t *testing.T) {
	var history []*core.HistoryRecord
	for i := range 25 {
		history = append(history, historyRecord(fmt.Sprintf("https://example.com/%d", i), "Golang tips", 1, time.Duration(i)*time.Hour))
	}

	assert.Len(t, SearchText("golang", history, nil, lexicalNow, LexicalOptions{}), DefaultTopK)
	assert.Len(t, SearchText("golang", history, nil, lexicalNow, LexicalOptions{TopK: 20}), 20)
}

func TestSearchText_RanksByScoreTimesRelevance(t *testing.T) {
	history := []*core.HistoryRecord{
		// 10 * RecencyScore(1 visit, 29 days) is small.
		historyRecord("https://old.example", "Terraform", 1, 29*24*time.Hour),
		// 10 * RecencyScore(10 visits, now) = 10.
		historyRecord("https://fresh.example", "Terraform", 10, 0),
	}

	results := SearchText("terraform", history, nil, lexicalNow, LexicalOptions{})

	require.Len(t, results, 2)
	assert.Equal(t, "https://fresh.example", results[0].URL)
}
