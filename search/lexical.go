package search

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/nomatterpluda/browser-history-search/core"
)

const (
	// DefaultTopK bounds the results of each ranking tier.
	DefaultTopK = 10

	minHistoryScore = 5
	minContentScore = 8

	urlWeight          = 0.5
	contentTitleWeight = 2

	// contentScoreScale maps a content match score onto a relevance near [0, 1].
	contentScoreScale = 20.0

	neutralRelevance = 0.5
)

// LexicalOptions tunes SearchText.
type LexicalOptions struct {
	TopK int
}

// SearchText scores history records and extracted contents against the
// query terms, merges hits that share a URL and returns the best TopK.
// A query with no searchable terms yields no results.
func SearchText(query string, history []*core.HistoryRecord, contents []*core.ExtractedContent, now time.Time, opts LexicalOptions) []*core.SearchResult {
	terms := Tokenize(query)
	if len(terms) == 0 {
		return []*core.SearchResult{}
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	results := make([]*core.SearchResult, 0)
	byURL := make(map[string]*core.SearchResult)

	for _, record := range history {
		if record == nil {
			continue
		}
		total := float64(ScoreMatch(record.Title, terms)) + float64(ScoreMatch(record.URL, terms))*urlWeight
		if total < minHistoryScore {
			continue
		}
		if existing, ok := byURL[record.URL]; ok {
			existing.MatchScore = max(existing.MatchScore, total)
			continue
		}
		result := FormatHistoryRecord(record, now)
		result.MatchScore = total
		result.MatchType = core.MatchTypeTitle
		results = append(results, result)
		byURL[record.URL] = result
	}

	for _, content := range contents {
		if content == nil || content.Content == "" {
			continue
		}
		total := float64(ScoreMatch(content.Title, terms)*contentTitleWeight + ScoreMatch(content.Content, terms))
		if total < minContentScore {
			continue
		}

		if existing, ok := byURL[content.URL]; ok {
			existing.MatchScore = max(existing.MatchScore, total)
			existing.MatchType = core.MatchTypeContent
			existing.Snippet = ContentSnippet(content.Content, terms)
			continue
		}

		title := content.Title
		if title == "" {
			title = UntitledPage
		}
		result := &core.SearchResult{
			ID:             "content-" + uuid.NewString(),
			Title:          title,
			URL:            content.URL,
			Snippet:        ContentSnippet(content.Content, terms),
			VisitDate:      content.ExtractedAt,
			VisitCount:     1,
			Favicon:        Favicon(content.URL),
			RelevanceScore: total / contentScoreScale,
			MatchScore:     total,
			MatchType:      core.MatchTypeContent,
		}
		results = append(results, result)
		byURL[content.URL] = result
	}

	slices.SortStableFunc(results, func(a, b *core.SearchResult) int {
		return cmp.Compare(rankKey(b), rankKey(a))
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

func rankKey(r *core.SearchResult) float64 {
	relevance := r.RelevanceScore
	if relevance == 0 {
		relevance = neutralRelevance
	}
	return r.MatchScore * relevance
}
