package history

import (
	"regexp"
	"unicode/utf8"

	"github.com/nomatterpluda/browser-history-search/core"
)

// MinTitleLength is the shortest title an eligible record may carry.
const MinTitleLength = 3

// Browser-internal and local addresses never appear in results.
var excludedURLs = []*regexp.Regexp{
	regexp.MustCompile(`^chrome:`),
	regexp.MustCompile(`^chrome-extension:`),
	regexp.MustCompile(`^moz-extension:`),
	regexp.MustCompile(`^about:`),
	regexp.MustCompile(`^file:`),
	regexp.MustCompile(`localhost`),
	regexp.MustCompile(`127\.0\.0\.1`),
	regexp.MustCompile(`\.local$`),
}

// IsEligible reports whether a record may be shown in results.
func IsEligible(r *core.HistoryRecord) bool {
	if r == nil || utf8.RuneCountInString(r.Title) < MinTitleLength {
		return false
	}
	if r.VisitCount < 1 {
		return false
	}
	for _, pattern := range excludedURLs {
		if pattern.MatchString(r.URL) {
			return false
		}
	}
	return true
}

// Eligible returns the records that pass IsEligible, preserving order.
func Eligible(records []*core.HistoryRecord) []*core.HistoryRecord {
	out := make([]*core.HistoryRecord, 0, len(records))
	for _, r := range records {
		if IsEligible(r) {
			out = append(out, r)
		}
	}
	return out
}
