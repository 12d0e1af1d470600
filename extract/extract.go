package extract

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/nomatterpluda/browser-history-search/core"
)

const (
	// MinTextLength is the shortest cleaned text worth storing.
	MinTextLength = 50
	// MaxTextLength bounds stored text; longer text is cut and marked with "...".
	MaxTextLength = 5000
)

var (
	// ErrContentTooShort indicates the page had less than MinTextLength characters of text.
	ErrContentTooShort = errors.New("page content too short")

	// ErrSkippedURL indicates the URL is not a page that should be processed.
	ErrSkippedURL = errors.New("url not suitable for processing")
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	specials    = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:()\-]`)
	multiSpaces = regexp.MustCompile(`\s{2,}`)
)

var skipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^chrome:`),
	regexp.MustCompile(`^chrome-extension:`),
	regexp.MustCompile(`^moz-extension:`),
	regexp.MustCompile(`^about:`),
	regexp.MustCompile(`^file:`),
	regexp.MustCompile(`localhost`),
	regexp.MustCompile(`127\.0\.0\.1`),
	regexp.MustCompile(`\.local$`),
	regexp.MustCompile(`(?i)\.(pdf|jpg|jpeg|png|gif|svg|mp4|mp3|zip|exe)$`),
}

// ShouldProcessURL reports whether pageURL points at ordinary web content.
// Browser-internal pages, local hosts and binary downloads are skipped.
func ShouldProcessURL(pageURL string) bool {
	if strings.TrimSpace(pageURL) == "" {
		return false
	}
	for _, re := range skipPatterns {
		if re.MatchString(pageURL) {
			return false
		}
	}
	return true
}

// CleanText collapses whitespace and replaces everything except letters,
// digits and basic punctuation with spaces.
func CleanText(text string) string {
	text = whitespace.ReplaceAllString(text, " ")
	text = specials.ReplaceAllString(text, " ")
	text = multiSpaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Truncate cuts text to MaxTextLength characters, appending "..." when cut.
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxTextLength {
		return text
	}
	return string(runes[:MaxTextLength]) + "..."
}

// FromHTML extracts the main content of an HTML page.
// The stored text combines the title, the excerpt and the article body.
func FromHTML(r io.Reader, pageURL string, timeOnPage time.Duration) (*core.ExtractedContent, error) {
	if !ShouldProcessURL(pageURL) {
		return nil, fmt.Errorf("%w: %s", ErrSkippedURL, pageURL)
	}
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}

	article, err := readability.FromReader(r, parsed)
	if err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}

	title := strings.TrimSpace(article.Title)
	combined := strings.Join([]string{title, article.Excerpt, article.TextContent}, " ")
	return FromText(pageURL, title, combined, timeOnPage)
}

// FromText builds an ExtractedContent from text that was already extracted,
// applying the same cleaning and length rules as FromHTML.
func FromText(pageURL, title, text string, timeOnPage time.Duration) (*core.ExtractedContent, error) {
	cleaned := CleanText(text)
	if len([]rune(cleaned)) < MinTextLength {
		return nil, ErrContentTooShort
	}
	return &core.ExtractedContent{
		URL:         pageURL,
		Title:       strings.TrimSpace(title),
		Content:     Truncate(cleaned),
		ExtractedAt: time.Now().UTC(),
		TimeOnPage:  core.DwellOf(timeOnPage),
	}, nil
}
