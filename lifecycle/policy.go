package lifecycle

import (
	"fmt"
	"regexp"
	"time"

	"github.com/nomatterpluda/browser-history-search/core"
)

const (
	// DefaultMinDwell is the time a page must stay open before it is embedded.
	DefaultMinDwell = 30 * time.Second
	// LegacyMinDwell is the shorter threshold used by earlier extractor builds.
	LegacyMinDwell = 15 * time.Second
	// DefaultMinWords is the smallest page worth embedding.
	DefaultMinWords = 500
)

// ExclusionGroup names a family of URLs that are never embedded.
type ExclusionGroup string

const (
	GroupNavigation     ExclusionGroup = "navigation"
	GroupSearchResults  ExclusionGroup = "search-results"
	GroupAuth           ExclusionGroup = "auth"
	GroupSocialFeed     ExclusionGroup = "social-feed"
	GroupNewsAggregator ExclusionGroup = "news-aggregator"
)

var defaultExclusions = []exclusion{
	{GroupNavigation, compile(
		`^https?://[^/]+/?$`,
		`/(category|categories|tag|tags|archive|sitemap)(/|$)`,
		`/page/\d+/?$`,
		`/index\.html?$`,
	)},
	{GroupSearchResults, compile(
		`^https?://(www\.)?(google|bing|yahoo|baidu|yandex)\.[a-z.]+/search`,
		`^https?://(www\.)?duckduckgo\.com/.*[?&]q=`,
		`/search(/|\?|$)`,
		`[?&](q|query|search|s)=`,
	)},
	{GroupAuth, compile(
		`/(login|logout|signin|sign-in|signup|sign-up|register|oauth2?|auth|sso)(/|\?|$)`,
		`/(password|forgot|reset)[-_/]?`,
		`^https?://(accounts|login|auth|id)\.`,
	)},
	{GroupSocialFeed, compile(
		`^https?://(www\.)?(facebook|instagram|tiktok|threads)\.(com|net)/?(\?.*)?$`,
		`^https?://(www\.)?(twitter|x)\.com/(home|explore)`,
		`^https?://(www\.)?linkedin\.com/feed`,
		`^https?://(www\.|old\.)?reddit\.com/?(r/[^/]+/?)?(\?.*)?$`,
		`^https?://(www\.)?tiktok\.com/foryou`,
	)},
	{GroupNewsAggregator, compile(
		`^https?://news\.google\.`,
		`^https?://news\.ycombinator\.com/(news|newest|front)?(\?.*)?$`,
		`^https?://(www\.)?(flipboard|feedly|drudgereport|techmeme|newsnow)\.`,
		`^https?://(www\.)?msn\.com/[a-z-]+/feed`,
		`^https?://news\.yahoo\.com/?$`,
	)},
}

type exclusion struct {
	group    ExclusionGroup
	patterns []*regexp.Regexp
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// Verdict explains a policy decision.
type Verdict struct {
	Eligible bool
	Reason   string
}

// Verdict reasons.
const (
	ReasonEligible   = "eligible"
	ReasonDwell      = "dwell_too_short"
	ReasonWordCount  = "too_few_words"
	reasonExcludedAs = "excluded_"
)

// Policy decides whether extracted content should be embedded.
type Policy struct {
	MinDwell   time.Duration
	MinWords   int
	exclusions []exclusion
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy) error

// WithMinDwell overrides DefaultMinDwell.
func WithMinDwell(d time.Duration) PolicyOption {
	return func(p *Policy) error {
		if d < 0 {
			return fmt.Errorf("min dwell must not be negative, got %s", d)
		}
		p.MinDwell = d
		return nil
	}
}

// WithMinWords overrides DefaultMinWords.
func WithMinWords(n int) PolicyOption {
	return func(p *Policy) error {
		if n < 0 {
			return fmt.Errorf("min words must not be negative, got %d", n)
		}
		p.MinWords = n
		return nil
	}
}

// WithExclusion adds URL patterns to group.
func WithExclusion(group ExclusionGroup, patterns ...string) PolicyOption {
	return func(p *Policy) error {
		compiled := make([]*regexp.Regexp, 0, len(patterns))
		for _, pattern := range patterns {
			re, err := regexp.Compile(`(?i)` + pattern)
			if err != nil {
				return fmt.Errorf("exclusion %s: %w", group, err)
			}
			compiled = append(compiled, re)
		}
		p.exclusions = append(p.exclusions, exclusion{group: group, patterns: compiled})
		return nil
	}
}

// NewPolicy creates a policy with the default thresholds and exclusion groups.
func NewPolicy(opts ...PolicyOption) (*Policy, error) {
	p := &Policy{
		MinDwell:   DefaultMinDwell,
		MinWords:   DefaultMinWords,
		exclusions: append([]exclusion(nil), defaultExclusions...),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Evaluate reports whether content is eligible for an embedding and why not.
func (p *Policy) Evaluate(content *core.ExtractedContent) Verdict {
	if content.TimeOnPage.Duration() < p.MinDwell {
		return Verdict{Reason: ReasonDwell}
	}
	if content.WordCount() < p.MinWords {
		return Verdict{Reason: ReasonWordCount}
	}
	if group, excluded := p.Excluded(content.URL); excluded {
		return Verdict{Reason: reasonExcludedAs + string(group)}
	}
	return Verdict{Eligible: true, Reason: ReasonEligible}
}

// ShouldEmbed reports whether content is eligible for an embedding.
func (p *Policy) ShouldEmbed(content *core.ExtractedContent) bool {
	return content != nil && p.Evaluate(content).Eligible
}

// Excluded returns the first exclusion group matching url.
func (p *Policy) Excluded(url string) (ExclusionGroup, bool) {
	for _, ex := range p.exclusions {
		for _, re := range ex.patterns {
			if re.MatchString(url) {
				return ex.group, true
			}
		}
	}
	return "", false
}
