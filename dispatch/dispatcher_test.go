package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nomatterpluda/browser-history-search/ai"
	"github.com/nomatterpluda/browser-history-search/ai/mock"
	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/gateway"
	"github.com/nomatterpluda/browser-history-search/history"
	"github.com/nomatterpluda/browser-history-search/ingestion"
	"github.com/nomatterpluda/browser-history-search/search"
	"github.com/nomatterpluda/browser-history-search/storage"
	"github.com/nomatterpluda/browser-history-search/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dispatcher *Dispatcher
	repos      *badger.Repositories
	gateway    *gateway.EmbeddingGateway
	pipeline   *ingestion.Pipeline
	embedder   *mock.MockEmbedder
}

func setupDispatcher(t *testing.T, key string, records ...*core.HistoryRecord) *fixture {
	t.Helper()
	repos, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	embedder := mock.NewMockEmbedder()
	cfg := ai.NewConfig(
		ai.WithAPIKey(key),
		ai.WithRetries(0, time.Millisecond),
		ai.WithRequestsPerSecond(0),
	)
	gw, err := gateway.New(cfg, mock.NewMockFactory(embedder).Factory, gateway.WithSettingsRepository(repos.Settings))
	require.NoError(t, err)

	pipeline, err := ingestion.NewPipeline(repos.Content, repos.Embeddings, gw,
		ingestion.WithSettings(repos.Settings), ingestion.WithScreenshots(repos.Screenshots))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	searcher, err := search.NewSearcher(history.NewStaticProvider(records...), repos.Content, repos.Embeddings, gw)
	require.NoError(t, err)

	d, err := NewDispatcher(searcher, pipeline, gw, repos.Content, repos.Settings, WithKeyCounter(backend))
	require.NoError(t, err)
	return &fixture{dispatcher: d, repos: repos, gateway: gw, pipeline: pipeline, embedder: embedder}
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestNewDispatcher_Validation(t *testing.T) {
	f := setupDispatcher(t, "")
	d := f.dispatcher

	_, err := NewDispatcher(nil, d.ingester, d.keys, d.contents, d.settings)
	assert.ErrorIs(t, err, ErrSearcherRequired)
	_, err = NewDispatcher(d.searcher, nil, d.keys, d.contents, d.settings)
	assert.ErrorIs(t, err, ErrIngesterRequired)
	_, err = NewDispatcher(d.searcher, d.ingester, nil, d.contents, d.settings)
	assert.ErrorIs(t, err, ErrKeyManagerRequired)
	_, err = NewDispatcher(d.searcher, d.ingester, d.keys, nil, d.settings)
	assert.ErrorIs(t, err, ErrContentRepositoryRequired)
	_, err = NewDispatcher(d.searcher, d.ingester, d.keys, d.contents, nil)
	assert.ErrorIs(t, err, ErrSettingsRepositoryRequired)
}

func TestDispatch_EveryTypeHasHandler(t *testing.T) {
	f := setupDispatcher(t, "")
	for _, ct := range CommandTypes {
		_, found := f.dispatcher.handlers[ct]
		assert.True(t, found, "no handler for %s", ct)
	}
}

func TestDispatch_Unknown(t *testing.T) {
	f := setupDispatcher(t, "")
	result := f.dispatcher.Dispatch(context.Background(), Command{Type: "EXTRACT_CONTENT_FROM_TAB"})
	assert.False(t, result.Success)
	assert.Equal(t, "unknown command type", result.Error)
}

func TestDispatch_Ping(t *testing.T) {
	f := setupDispatcher(t, "")
	result := f.dispatcher.Dispatch(context.Background(), Command{Type: Ping})
	assert.True(t, result.Success)
	assert.Equal(t, "ready", result.State)
}

func TestDispatch_SearchHistory(t *testing.T) {
	now := time.Now()
	f := setupDispatcher(t, "", &core.HistoryRecord{
		ID: "1", URL: "https://go.dev/doc", Title: "Go documentation", LastVisitTime: now.Add(-time.Hour), VisitCount: 3,
	})

	result := f.dispatcher.Dispatch(context.Background(), Command{Type: SearchHistory, Query: "documentation"})
	require.True(t, result.Success)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "https://go.dev/doc", result.Results[0].URL)

	recent := f.dispatcher.Dispatch(context.Background(), Command{Type: SearchHistory})
	require.True(t, recent.Success)
	assert.Len(t, recent.Results, 1)
}

func TestDispatch_Settings(t *testing.T) {
	f := setupDispatcher(t, "")
	ctx := context.Background()

	got := f.dispatcher.Dispatch(ctx, Command{Type: GetSettings})
	require.True(t, got.Success)
	assert.Equal(t, core.DefaultSettings().MaxResults, got.Settings.MaxResults)

	updated := f.dispatcher.Dispatch(ctx, Command{Type: UpdateSettings, Settings: &SettingsPatch{
		MaxResults:    intPtr(25),
		EnablePreview: boolPtr(false),
	}})
	require.True(t, updated.Success, updated.Error)

	got = f.dispatcher.Dispatch(ctx, Command{Type: GetSettings})
	assert.Equal(t, 25, got.Settings.MaxResults)
	assert.False(t, got.Settings.EnablePreview)
	assert.Equal(t, 180, got.Settings.DataRetentionDays, "untouched fields are kept")

	t.Run("rejects out of range", func(t *testing.T) {
		result := f.dispatcher.Dispatch(ctx, Command{Type: UpdateSettings, Settings: &SettingsPatch{MaxResults: intPtr(500)}})
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "maxResults")
	})

	t.Run("requires settings", func(t *testing.T) {
		result := f.dispatcher.Dispatch(ctx, Command{Type: UpdateSettings})
		assert.False(t, result.Success)
	})
}

// brokenSettings fails every read.
type brokenSettings struct {
	storage.SettingsRepository
}

func (brokenSettings) LoadSettings(context.Context) (*core.Settings, error) {
	return nil, core.ErrStorage
}

func (brokenSettings) LoadStats(context.Context) (*core.Stats, error) {
	return nil, core.ErrStorage
}

func TestDispatch_SafeDefaultsOnStorageFailure(t *testing.T) {
	f := setupDispatcher(t, "")
	d, err := NewDispatcher(f.dispatcher.searcher, f.pipeline, f.gateway, f.repos.Content, brokenSettings{})
	require.NoError(t, err)

	settings := d.Dispatch(context.Background(), Command{Type: GetSettings})
	assert.True(t, settings.Success)
	assert.Equal(t, core.DefaultSettings(), settings.Settings)

	stats := d.Dispatch(context.Background(), Command{Type: GetStats})
	assert.True(t, stats.Success)
	assert.Equal(t, 0, stats.Stats.TotalPages)
}

func TestDispatch_APIKey(t *testing.T) {
	f := setupDispatcher(t, "")
	ctx := context.Background()

	status := f.dispatcher.Dispatch(ctx, Command{Type: GetEmbeddingStatus})
	require.True(t, status.Success)
	assert.False(t, status.Status.Ready)

	missing := f.dispatcher.Dispatch(ctx, Command{Type: SetAPIKey})
	assert.False(t, missing.Success)

	set := f.dispatcher.Dispatch(ctx, Command{Type: SetAPIKey, APIKey: "sk-test"})
	require.True(t, set.Success, set.Error)
	assert.True(t, set.Status.Ready)

	settings, err := f.repos.Settings.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", settings.APIKey)
}

func TestDispatch_APIKeyRejected(t *testing.T) {
	f := setupDispatcher(t, "")
	f.embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return nil, errors.New("401 unauthorized")
	}

	result := f.dispatcher.Dispatch(context.Background(), Command{Type: SetAPIKey, APIKey: "sk-bad"})
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.False(t, f.gateway.IsReady())
}

func TestDispatch_ContentLifecycle(t *testing.T) {
	f := setupDispatcher(t, "sk-test")
	ctx := context.Background()
	const url = "https://blog.example/posts/generics"

	stored := f.dispatcher.Dispatch(ctx, Command{Type: ContentExtracted, Content: &ContentPayload{
		URL:          url,
		Title:        "Generics",
		Content:      strings.TrimSpace(strings.Repeat("type parameters ", 300)),
		TimeOnPageMS: (2 * time.Minute).Milliseconds(),
	}})
	require.True(t, stored.Success, stored.Error)
	f.pipeline.Wait()

	content := f.dispatcher.Dispatch(ctx, Command{Type: GetStoredContent, URL: url})
	require.True(t, content.Success)
	require.NotNil(t, content.Content)
	assert.Equal(t, "Generics", content.Content.Title)
	assert.Equal(t, int64(120000), content.Content.TimeOnPageMS)

	debug := f.dispatcher.Dispatch(ctx, Command{Type: DebugStorage})
	require.True(t, debug.Success)
	assert.Equal(t, []string{url}, debug.StoredURLs)
	assert.Equal(t, 1, *debug.TotalItems)
	assert.Equal(t, 1, debug.KeyCounts["content_"])
	assert.Equal(t, 1, debug.KeyCounts["embeddings_"])
	assert.Zero(t, debug.KeyCounts["screenshot_"])

	stats := f.dispatcher.Dispatch(ctx, Command{Type: GetStats})
	assert.Equal(t, 1, stats.Stats.TotalPages)

	embedded := f.dispatcher.Dispatch(ctx, Command{Type: GenerateEmbeddings, URL: "content_" + url})
	require.True(t, embedded.Success, embedded.Error)
	assert.Equal(t, url, embedded.Embedding.URL)
	assert.Positive(t, embedded.Embedding.Dimensions)
}

func TestDispatch_ContentExtractedInvalid(t *testing.T) {
	f := setupDispatcher(t, "")

	missing := f.dispatcher.Dispatch(context.Background(), Command{Type: ContentExtracted})
	assert.False(t, missing.Success)

	empty := f.dispatcher.Dispatch(context.Background(), Command{Type: ContentExtracted, Content: &ContentPayload{URL: "https://a.example"}})
	assert.False(t, empty.Success)
}

func TestDispatch_StoredContentMissing(t *testing.T) {
	f := setupDispatcher(t, "")
	result := f.dispatcher.Dispatch(context.Background(), Command{Type: GetStoredContent, URL: "https://nowhere.example"})
	assert.True(t, result.Success)
	assert.Nil(t, result.Content)
}

func TestDispatch_GenerateEmbeddingsNotReady(t *testing.T) {
	f := setupDispatcher(t, "")
	result := f.dispatcher.Dispatch(context.Background(), Command{Type: GenerateEmbeddings, URL: "https://a.example"})
	assert.False(t, result.Success)
	assert.Equal(t, core.ErrNotReady.Error(), result.Error)
}

type panickingSearcher struct{}

func (panickingSearcher) Search(context.Context, search.Request) search.Response {
	panic("boom")
}

func TestDispatch_RecoversFromPanic(t *testing.T) {
	f := setupDispatcher(t, "")
	d, err := NewDispatcher(panickingSearcher{}, f.pipeline, f.gateway, f.repos.Content, f.repos.Settings)
	require.NoError(t, err)

	result := d.Dispatch(context.Background(), Command{Type: SearchHistory, Query: "x"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "internal error")
}

func TestContentPayload_ToContent(t *testing.T) {
	p := &ContentPayload{URL: "https://a.example", Title: "A", Content: "text", TimeOnPageMS: 1500}
	content, shot := p.ToContent()
	assert.Equal(t, 1500*time.Millisecond, content.TimeOnPage.Duration())
	assert.Nil(t, shot)

	p.Screenshot = []byte{1, 2, 3}
	_, shot = p.ToContent()
	require.NotNil(t, shot)
	assert.Equal(t, "https://a.example", shot.URL)
}
