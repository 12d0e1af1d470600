package search

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"lowercases and splits", "Machine  Learning", []string{"machine", "learning"}},
		{"drops stop words", "the art of war", []string{"art", "war"}},
		{"drops short terms", "a b go x", []string{"go"}},
		{"only stop words", "the and of", []string{}},
		{"empty", "   ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.query))
		})
	}
}

func TestTokenize_Idempotent(t *testing.T) {
	for _, q := range []string{"Intro to Machine Learning", "the Go programming language", "x y zz"} {
		once := Tokenize(q)
		assert.Equal(t, once, Tokenize(strings.Join(once, " ")), q)
	}
}

func TestScoreMatch_Tiers(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		terms []string
		want  int
	}{
		{"exact word", "Go is great", []string{"go"}, scoreExactWord},
		{"exact word ignores punctuation", "Hello, world!", []string{"world"}, scoreExactWord},
		{"substring", "JavaScript tutorial", []string{"java"}, scoreSubstring},
		{"prefix", "compilers explained", []string{"c++"}, scorePrefix},
		{"partial", "mynodejs project", []string{"node.js"}, scorePartial},
		{"no match", "completely unrelated", []string{"kubernetes"}, 0},
		{"multiple exact words", "Intro to Machine Learning", []string{"machine", "learning"}, 2 * scoreExactWord},
		{"no terms", "anything", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreMatch(tt.text, tt.terms))
		})
	}
}

func TestScoreMatch_OneTierPerTerm(t *testing.T) {
	// "go" matches as an exact word and as a substring of "golang"; only the first tier counts.
	assert.Equal(t, scoreExactWord, ScoreMatch("go and golang", []string{"go"}))
}

func TestScoreMatch_MonotonicInMatchingTerms(t *testing.T) {
	text := "A practical guide to distributed systems design"
	terms := []string{"practical", "distributed", "systems", "design"}

	prev := 0
	for i := range terms {
		score := ScoreMatch(text, terms[:i+1])
		assert.GreaterOrEqual(t, score, prev)
		prev = score
	}
}

func TestContentSnippet_Window(t *testing.T) {
	content := strings.Repeat("a ", 100) + "golang " + strings.Repeat("b ", 100)

	snippet := ContentSnippet(content, []string{"golang"})

	assert.True(t, strings.HasPrefix(snippet, ellipsis))
	assert.True(t, strings.HasSuffix(snippet, ellipsis))
	assert.Contains(t, snippet, "golang")
	assert.Equal(t, snippetLength+2*len(ellipsis), utf8.RuneCountInString(snippet))
}

func TestContentSnippet_EarliestTerm(t *testing.T) {
	content := "Rust comes first, then Go appears later."
	assert.Equal(t, content, ContentSnippet(content, []string{"go", "rust"}))
}

func TestContentSnippet_NoMatch(t *testing.T) {
	long := strings.Repeat("x", 400)
	assert.Equal(t, strings.Repeat("x", snippetLength)+ellipsis, ContentSnippet(long, []string{"golang"}))
	assert.Equal(t, "short text", ContentSnippet("short text", []string{"golang"}))
}

func TestContentSnippet_MultibyteSafe(t *testing.T) {
	content := strings.Repeat("é", 300) + "café"
	snippet := ContentSnippet(content, []string{"café"})
	assert.True(t, utf8.ValidString(snippet))
	assert.Contains(t, snippet, "café")
}

func TestLeadSnippet(t *testing.T) {
	assert.Equal(t, NoContentSnippet, LeadSnippet(""))
	assert.Equal(t, "short", LeadSnippet("short"))
	assert.Equal(t, strings.Repeat("y", snippetLength)+ellipsis, LeadSnippet(strings.Repeat("y", 200)))
}
