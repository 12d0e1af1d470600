package search

import (
	"cmp"
	"context"
	"errors"
	"math"
	"slices"

	"github.com/google/uuid"
	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/gateway"
	"github.com/nomatterpluda/browser-history-search/storage"
)

const (
	// DefaultSimilarityThreshold is the similarity a stored page must exceed to match.
	DefaultSimilarityThreshold = 0.8

	// NominalSimilarityThreshold is the advertised configuration value.
	// Matching uses the stricter DefaultSimilarityThreshold.
	NominalSimilarityThreshold = 0.7
)

// SemanticStatus classifies the outcome of a semantic search.
type SemanticStatus int

const (
	// SemanticHits means at least one stored page matched.
	SemanticHits SemanticStatus = iota
	// SemanticEmpty means the search ran and nothing cleared the threshold.
	SemanticEmpty
	// SemanticUnavailable means the search could not run.
	SemanticUnavailable
)

func (s SemanticStatus) String() string {
	switch s {
	case SemanticHits:
		return "hits"
	case SemanticEmpty:
		return "empty"
	case SemanticUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Reasons reported with SemanticUnavailable.
const (
	ReasonNotReady        = "not_ready"
	ReasonEmbeddingFailed = "embedding_failed"
	ReasonStorageError    = "storage_error"
)

// SemanticOutcome is the result of SearchSemantic.
type SemanticOutcome struct {
	Status  SemanticStatus
	Results []*core.SearchResult
	Reason  string
	Err     error
}

func unavailable(reason string, err error) SemanticOutcome {
	return SemanticOutcome{Status: SemanticUnavailable, Reason: reason, Err: err}
}

// SemanticOptions tunes SearchSemantic.
type SemanticOptions struct {
	Threshold float64
	TopK      int
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Vectors of different length or zero magnitude have similarity 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

type scoredEmbedding struct {
	url        string
	similarity float64
}

// SearchSemantic embeds query and ranks stored page embeddings against it.
// Pages whose content is gone are skipped.
func SearchSemantic(
	ctx context.Context,
	query string,
	gw gateway.Gateway,
	embeddings storage.EmbeddingRepository,
	contents storage.ContentRepository,
	opts SemanticOptions,
) SemanticOutcome {
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = DefaultSimilarityThreshold
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	if gw == nil || !gw.IsReady() {
		return unavailable(ReasonNotReady, core.ErrNotReady)
	}
	queryEmbedding, err := gw.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, core.ErrNotReady) {
			return unavailable(ReasonNotReady, err)
		}
		return unavailable(ReasonEmbeddingFailed, err)
	}

	records, err := embeddings.ListEmbeddings(ctx)
	if err != nil {
		return unavailable(ReasonStorageError, err)
	}

	matches := make([]scoredEmbedding, 0)
	for _, record := range records {
		similarity := CosineSimilarity(queryEmbedding.Vector, record.Embedding)
		if similarity > threshold {
			matches = append(matches, scoredEmbedding{url: record.URL, similarity: similarity})
		}
	}
	slices.SortStableFunc(matches, func(a, b scoredEmbedding) int {
		return cmp.Compare(b.similarity, a.similarity)
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		content, err := contents.GetContent(ctx, match.url)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return unavailable(ReasonStorageError, err)
		}
		title := content.Title
		if title == "" {
			title = UntitledPage
		}
		results = append(results, &core.SearchResult{
			ID:             "semantic-" + uuid.NewString(),
			Title:          title,
			URL:            content.URL,
			Snippet:        LeadSnippet(content.Content),
			VisitDate:      content.ExtractedAt,
			VisitCount:     1,
			Favicon:        Favicon(content.URL),
			RelevanceScore: match.similarity,
			MatchType:      core.MatchTypeSemantic,
		})
	}

	if len(results) == 0 {
		return SemanticOutcome{Status: SemanticEmpty, Results: results}
	}
	return SemanticOutcome{Status: SemanticHits, Results: results}
}
