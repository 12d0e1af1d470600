package search

import (
	"github.com/nomatterpluda/browser-history-search/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to follow state transitions and intermediate results.
type SearchMonitor interface {
	Start(query string)
	Transition(from, to State)
	AfterSemanticSearch(outcome SemanticOutcome)
	AfterHistoryLoad(records []*core.HistoryRecord)
	AfterContentLoad(contents []*core.ExtractedContent)
	Finish(state State, results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                              {}
func (n *noopMonitor) Transition(_, _ State)                       {}
func (n *noopMonitor) AfterSemanticSearch(_ SemanticOutcome)       {}
func (n *noopMonitor) AfterHistoryLoad(_ []*core.HistoryRecord)    {}
func (n *noopMonitor) AfterContentLoad(_ []*core.ExtractedContent) {}
func (n *noopMonitor) Finish(_ State, _ []*core.SearchResult)      {}
