package dispatch

import (
	"fmt"
	"time"

	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/gateway"
)

// CommandType names a command understood by the Dispatcher.
type CommandType string

const (
	SearchHistory      CommandType = "SEARCH_HISTORY"
	GetSettings        CommandType = "GET_SETTINGS"
	UpdateSettings     CommandType = "UPDATE_SETTINGS"
	GetStats           CommandType = "GET_STATS"
	SetAPIKey          CommandType = "SET_API_KEY"
	GetEmbeddingStatus CommandType = "GET_EMBEDDING_STATUS"
	GenerateEmbeddings CommandType = "GENERATE_EMBEDDINGS"
	ContentExtracted   CommandType = "CONTENT_EXTRACTED"
	GetStoredContent   CommandType = "GET_STORED_CONTENT"
	DebugStorage       CommandType = "DEBUG_STORAGE"
	Ping               CommandType = "PING"
)

// CommandTypes lists every known command type.
var CommandTypes = []CommandType{
	SearchHistory, GetSettings, UpdateSettings, GetStats, SetAPIKey,
	GetEmbeddingStatus, GenerateEmbeddings, ContentExtracted,
	GetStoredContent, DebugStorage, Ping,
}

// Command is a single request. Only the fields relevant to Type are read.
type Command struct {
	Type     CommandType     `json:"type"`
	Query    string          `json:"query,omitempty"`
	Page     int             `json:"page,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Settings *SettingsPatch  `json:"settings,omitempty"`
	APIKey   string          `json:"apiKey,omitempty"`
	URL      string          `json:"url,omitempty"`
	Content  *ContentPayload `json:"content,omitempty"`
}

// SettingsPatch carries the settings fields to change; nil fields are kept.
type SettingsPatch struct {
	DataRetentionDays       *int  `json:"dataRetentionDays,omitempty"`
	MaxResults              *int  `json:"maxResults,omitempty"`
	EnablePreview           *bool `json:"enablePreview,omitempty"`
	ScreenshotRetentionDays *int  `json:"screenshotRetentionDays,omitempty"`
}

// Apply validates the patch and merges it into s.
func (p *SettingsPatch) Apply(s *core.Settings) error {
	if p.DataRetentionDays != nil {
		if *p.DataRetentionDays < 1 {
			return fmt.Errorf("dataRetentionDays must be positive, got %d", *p.DataRetentionDays)
		}
		s.DataRetentionDays = *p.DataRetentionDays
	}
	if p.MaxResults != nil {
		if *p.MaxResults < 1 || *p.MaxResults > MaxResultsLimit {
			return fmt.Errorf("maxResults must be between 1 and %d, got %d", MaxResultsLimit, *p.MaxResults)
		}
		s.MaxResults = *p.MaxResults
	}
	if p.EnablePreview != nil {
		s.EnablePreview = *p.EnablePreview
	}
	if p.ScreenshotRetentionDays != nil {
		if *p.ScreenshotRetentionDays < 0 {
			return fmt.Errorf("screenshotRetentionDays must not be negative, got %d", *p.ScreenshotRetentionDays)
		}
		s.ScreenshotRetentionDays = *p.ScreenshotRetentionDays
	}
	return nil
}

// MaxResultsLimit is the largest page size a user may choose.
const MaxResultsLimit = 50

// ContentPayload is an extracted page as sent by the extractor.
type ContentPayload struct {
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	ExtractedAt  time.Time `json:"extractedAt,omitempty"`
	TimeOnPageMS int64     `json:"timeOnPage,omitempty"`
	Screenshot   []byte    `json:"screenshot,omitempty"`
}

// ToContent converts the payload into the stored form and its screenshot.
func (p *ContentPayload) ToContent() (*core.ExtractedContent, *core.Screenshot) {
	content := &core.ExtractedContent{
		URL:         p.URL,
		Title:       p.Title,
		Content:     p.Content,
		ExtractedAt: p.ExtractedAt,
		TimeOnPage:  core.Dwell(p.TimeOnPageMS),
	}
	if len(p.Screenshot) == 0 {
		return content, nil
	}
	return content, &core.Screenshot{URL: p.URL, Data: p.Screenshot}
}

// StoredContent is the JSON view of a stored page.
type StoredContent struct {
	URL                  string    `json:"url"`
	Title                string    `json:"title"`
	Content              string    `json:"content"`
	ExtractedAt          time.Time `json:"extractedAt"`
	StoredAt             time.Time `json:"storedAt"`
	TimeOnPageMS         int64     `json:"timeOnPage"`
	Processed            bool      `json:"processed"`
	EmbeddingGeneratedAt time.Time `json:"embeddingGeneratedAt,omitempty"`
}

func newStoredContent(c *core.ExtractedContent) *StoredContent {
	return &StoredContent{
		URL:                  c.URL,
		Title:                c.Title,
		Content:              c.Content,
		ExtractedAt:          c.ExtractedAt,
		StoredAt:             c.StoredAt,
		TimeOnPageMS:         int64(c.TimeOnPage),
		Processed:            c.Processed,
		EmbeddingGeneratedAt: c.EmbeddingGeneratedAt,
	}
}

// EmbeddingSummary describes a generated embedding without its vector.
type EmbeddingSummary struct {
	URL           string    `json:"url"`
	Dimensions    int       `json:"dimensions"`
	Tokens        int       `json:"tokens"`
	ContentLength int       `json:"contentLength"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// Result is the tagged answer to a Command. Success is false only when the
// command itself failed; Error then carries a message for the user.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Results    []*core.SearchResult `json:"results,omitempty"`
	Settings   *core.Settings       `json:"settings,omitempty"`
	Stats      *core.Stats          `json:"stats,omitempty"`
	Status     *gateway.Status      `json:"status,omitempty"`
	Embedding  *EmbeddingSummary    `json:"embedding,omitempty"`
	Content    *StoredContent       `json:"content,omitempty"`
	StoredURLs []string             `json:"storedUrls,omitempty"`
	TotalItems *int                 `json:"totalItems,omitempty"`
	KeyCounts  map[string]int       `json:"keyCounts,omitempty"`
	State      string               `json:"state,omitempty"`
}

func ok() Result {
	return Result{Success: true}
}

func failure(err error) Result {
	return Result{Error: err.Error()}
}
