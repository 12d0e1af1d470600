package search

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Stop words dropped from queries before lexical scoring.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true,
}

const (
	minTermLength = 2

	// Per-term score tiers; a term scores only its first matching tier.
	scoreExactWord = 10
	scoreSubstring = 5
	scorePrefix    = 2
	scorePartial   = 1

	minPrefixTermLength  = 3
	minPartialTermLength = 4

	snippetLength = 150
	snippetLead   = 50
	ellipsis      = "..."

	// NoContentSnippet is shown for semantic hits whose page text is empty.
	NoContentSnippet = "No content available"
)

var nonWordChars = regexp.MustCompile(`[^\w]`)

// Tokenize lowercases query, splits it on whitespace and drops
// stop words and terms shorter than two characters.
func Tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, term := range fields {
		if utf8.RuneCountInString(term) < minTermLength || stopWords[term] {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// ScoreMatch sums the per-term tier scores of terms against text.
func ScoreMatch(text string, terms []string) int {
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	fields := strings.Fields(lower)
	words := make([]string, len(fields))
	for i, f := range fields {
		words[i] = stripNonWord(f)
	}

	score := 0
	for _, term := range terms {
		termLower := strings.ToLower(term)
		clean := stripNonWord(termLower)
		length := utf8.RuneCountInString(termLower)

		switch {
		case anyWord(words, func(w string) bool { return w == clean }):
			score += scoreExactWord
		case strings.Contains(lower, termLower):
			score += scoreSubstring
		case length >= minPrefixTermLength && anyWord(words, func(w string) bool { return strings.HasPrefix(w, clean) }):
			score += scorePrefix
		case length >= minPartialTermLength && anyWord(words, func(w string) bool { return strings.Contains(w, clean) }):
			score += scorePartial
		}
	}
	return score
}

// ContentSnippet returns a window of content around the earliest
// occurrence of any term, or the opening of content when no term occurs.
func ContentSnippet(content string, terms []string) string {
	runes := []rune(content)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}

	best := -1
	for _, term := range terms {
		idx := indexRunes(lower, []rune(strings.ToLower(term)))
		if idx != -1 && (best == -1 || idx < best) {
			best = idx
		}
	}

	if best == -1 {
		if len(runes) > snippetLength {
			return string(runes[:snippetLength]) + ellipsis
		}
		return content
	}

	start := max(0, best-snippetLead)
	end := min(len(runes), start+snippetLength)
	snippet := string(runes[start:end])
	if start > 0 {
		snippet = ellipsis + snippet
	}
	if end < len(runes) {
		snippet += ellipsis
	}
	return snippet
}

// LeadSnippet returns the opening of content for semantic hits.
func LeadSnippet(content string) string {
	if content == "" {
		return NoContentSnippet
	}
	runes := []rune(content)
	if len(runes) > snippetLength {
		return string(runes[:snippetLength]) + ellipsis
	}
	return content
}

func stripNonWord(s string) string {
	return nonWordChars.ReplaceAllString(s, "")
}

func anyWord(words []string, match func(string) bool) bool {
	for _, w := range words {
		if match(w) {
			return true
		}
	}
	return false
}

// indexRunes returns the index of the first occurrence of needle in haystack, or -1.
func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, r := range needle {
			if haystack[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
