package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nomatterpluda/browser-history-search/ai"
	"github.com/nomatterpluda/browser-history-search/ai/mock"
	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/gateway"
	"github.com/nomatterpluda/browser-history-search/lifecycle"
	"github.com/nomatterpluda/browser-history-search/storage"
	"github.com/nomatterpluda/browser-history-search/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepositories(t *testing.T) *badger.Repositories {
	t.Helper()
	backend, err := badger.OpenBackend(t.TempDir(), false)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return badger.NewRepositories(backend)
}

func newTestGateway(t *testing.T, key string, embedder *mock.MockEmbedder) *gateway.EmbeddingGateway {
	t.Helper()
	cfg := ai.NewConfig(
		ai.WithAPIKey(key),
		ai.WithRetries(0, time.Millisecond),
		ai.WithRequestsPerSecond(0),
	)
	gw, err := gateway.New(cfg, mock.NewMockFactory(embedder).Factory)
	require.NoError(t, err)
	return gw
}

func setupTestPipeline(t *testing.T, gw gateway.Gateway, opts ...Option) (*Pipeline, *badger.Repositories) {
	t.Helper()
	repos := setupTestRepositories(t)
	base := []Option{WithSettings(repos.Settings), WithScreenshots(repos.Screenshots), WithPoolSize(2)}
	p, err := NewPipeline(repos.Content, repos.Embeddings, gw, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p, repos
}

// longPage returns content that passes the default eligibility policy.
func longPage(url string) *core.ExtractedContent {
	return &core.ExtractedContent{
		URL:         url,
		Title:       "A long read",
		Content:     strings.TrimSpace(strings.Repeat("lorem ipsum ", 300)),
		ExtractedAt: time.Now().Add(-time.Minute),
		TimeOnPage:  core.DwellOf(2 * time.Minute),
	}
}

func TestNewPipeline(t *testing.T) {
	repos := setupTestRepositories(t)
	gw := newTestGateway(t, "", nil)

	t.Run("valid configuration", func(t *testing.T) {
		p, err := NewPipeline(repos.Content, repos.Embeddings, gw)
		require.NoError(t, err)
		p.Release()
	})

	t.Run("nil content repository", func(t *testing.T) {
		_, err := NewPipeline(nil, repos.Embeddings, gw)
		assert.Equal(t, ErrContentRepositoryRequired, err)
	})

	t.Run("nil embedding repository", func(t *testing.T) {
		_, err := NewPipeline(repos.Content, nil, gw)
		assert.Equal(t, ErrEmbeddingRepositoryRequired, err)
	})

	t.Run("nil gateway", func(t *testing.T) {
		_, err := NewPipeline(repos.Content, repos.Embeddings, nil)
		assert.Equal(t, ErrGatewayRequired, err)
	})

	t.Run("failing option releases pool", func(t *testing.T) {
		failing := func(*Pipeline) error { return errors.New("boom") }
		_, err := NewPipeline(repos.Content, repos.Embeddings, gw, failing)
		assert.EqualError(t, err, "boom")
	})
}

func TestIngest_StoresContentAndStats(t *testing.T) {
	p, repos := setupTestPipeline(t, newTestGateway(t, "", nil))
	ctx := context.Background()

	page := longPage("https://example.com/a")
	page.Processed = true
	require.NoError(t, p.Ingest(ctx, page, nil))
	require.NoError(t, p.Ingest(ctx, longPage("https://example.com/b"), nil))
	p.Wait()

	got, err := repos.Content.GetContent(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.False(t, got.Processed)
	assert.False(t, got.StoredAt.IsZero())
	assert.Equal(t, page.Content, got.Content)

	stats, err := repos.Settings.LoadStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalPages)
	assert.False(t, stats.LastUpdate.IsZero())

	// Gateway not ready: no embedding.
	_, err = repos.Embeddings.GetEmbedding(ctx, "https://example.com/a")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIngest_ConcurrentStatsAreNotLost(t *testing.T) {
	p, repos := setupTestPipeline(t, newTestGateway(t, "", nil))
	ctx := context.Background()

	const pages = 50
	var wg sync.WaitGroup
	errs := make(chan error, pages)
	for i := 0; i < pages; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- p.Ingest(ctx, longPage(fmt.Sprintf("https://example.com/%02d", i)), nil)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	p.Wait()

	stored, err := repos.Content.CountContent(ctx)
	require.NoError(t, err)
	stats, err := repos.Settings.LoadStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, pages, stored)
	assert.Equal(t, stored, stats.TotalPages)
}

func TestIngest_InvalidContent(t *testing.T) {
	p, _ := setupTestPipeline(t, newTestGateway(t, "", nil))

	err := p.Ingest(context.Background(), &core.ExtractedContent{URL: "https://example.com"}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidContent)
}

func TestIngest_GeneratesEmbeddingForEligiblePage(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	p, repos := setupTestPipeline(t, newTestGateway(t, "sk-test", embedder))
	ctx := context.Background()

	require.NoError(t, p.Ingest(ctx, longPage("https://example.com/article"), nil))
	p.Wait()

	record, err := repos.Embeddings.GetEmbedding(ctx, "https://example.com/article")
	require.NoError(t, err)
	assert.Len(t, record.Embedding, 8)
	assert.Greater(t, record.Tokens, 0)
	assert.Equal(t, len(longPage("").Content), record.ContentLength)

	content, err := repos.Content.GetContent(ctx, "https://example.com/article")
	require.NoError(t, err)
	assert.True(t, content.Processed)
	assert.False(t, content.EmbeddingGeneratedAt.IsZero())

	settings, err := repos.Settings.LoadSettings(ctx)
	require.NoError(t, err)
	assert.False(t, settings.LastProcessedDate.IsZero())
}

func TestIngest_SkipsIneligiblePage(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	p, repos := setupTestPipeline(t, newTestGateway(t, "sk-test", embedder))
	ctx := context.Background()

	brief := longPage("https://example.com/brief")
	brief.TimeOnPage = core.DwellOf(5 * time.Second)
	require.NoError(t, p.Ingest(ctx, brief, nil))
	require.NoError(t, p.Ingest(ctx, longPage("https://accounts.example.com/login"), nil))
	p.Wait()

	assert.Zero(t, embedder.CallCount())
	embeddings, err := repos.Embeddings.ListEmbeddings(ctx)
	require.NoError(t, err)
	assert.Empty(t, embeddings)
}

func TestIngest_EmbeddingFailureIsNonFatal(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("upstream unavailable")
	}
	p, repos := setupTestPipeline(t, newTestGateway(t, "sk-test", embedder))
	ctx := context.Background()

	require.NoError(t, p.Ingest(ctx, longPage("https://example.com/article"), nil))
	p.Wait()

	content, err := repos.Content.GetContent(ctx, "https://example.com/article")
	require.NoError(t, err)
	assert.False(t, content.Processed)
	_, err = repos.Embeddings.GetEmbedding(ctx, "https://example.com/article")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIngest_StoresScreenshotWithExpiry(t *testing.T) {
	p, repos := setupTestPipeline(t, newTestGateway(t, "", nil))
	ctx := context.Background()

	settings := core.DefaultSettings()
	settings.ScreenshotRetentionDays = 3
	require.NoError(t, repos.Settings.SaveSettings(ctx, settings))

	captured := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	shot := &core.Screenshot{Data: []byte{0x89, 0x50, 0x4e, 0x47}, CapturedAt: captured}
	require.NoError(t, p.Ingest(ctx, longPage("https://example.com/pic"), shot))

	stored, err := repos.Screenshots.GetScreenshot(ctx, "https://example.com/pic")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/pic", stored.URL)
	assert.True(t, stored.ExpiresAt.Equal(captured.AddDate(0, 0, 3)))
}

func TestIngest_PreviewDisabledSkipsScreenshot(t *testing.T) {
	p, repos := setupTestPipeline(t, newTestGateway(t, "", nil))
	ctx := context.Background()

	settings := core.DefaultSettings()
	settings.EnablePreview = false
	require.NoError(t, repos.Settings.SaveSettings(ctx, settings))

	require.NoError(t, p.Ingest(ctx, longPage("https://example.com/pic"), &core.Screenshot{Data: []byte{1}}))

	_, err := repos.Screenshots.GetScreenshot(ctx, "https://example.com/pic")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIngest_EnforcesRetention(t *testing.T) {
	repos := setupTestRepositories(t)
	retainer, err := lifecycle.NewRetainer(repos.Content, lifecycle.WithMaxItems(2))
	require.NoError(t, err)

	clock := time.Now().Add(-time.Hour)
	tick := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	p, err := NewPipeline(repos.Content, repos.Embeddings, newTestGateway(t, "", nil),
		WithRetainer(retainer), WithClock(tick), WithPoolSize(1))
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()
	for _, url := range []string{"https://example.com/1", "https://example.com/2", "https://example.com/3"} {
		require.NoError(t, p.Ingest(ctx, longPage(url), nil))
	}

	count, err := repos.Content.CountContent(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	_, err = repos.Content.GetContent(ctx, "https://example.com/1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGenerateEmbedding(t *testing.T) {
	ctx := context.Background()

	t.Run("not ready", func(t *testing.T) {
		p, _ := setupTestPipeline(t, newTestGateway(t, "", nil))
		_, err := p.GenerateEmbedding(ctx, "https://example.com")
		assert.ErrorIs(t, err, core.ErrNotReady)
	})

	t.Run("ignores eligibility policy", func(t *testing.T) {
		p, repos := setupTestPipeline(t, newTestGateway(t, "sk-test", nil))
		short := &core.ExtractedContent{URL: "https://example.com/short", Title: "Short", Content: "just a few words"}
		require.NoError(t, repos.Content.PutContent(ctx, short))

		record, err := p.GenerateEmbedding(ctx, short.URL)
		require.NoError(t, err)
		assert.Equal(t, short.URL, record.URL)
		assert.Equal(t, len(short.Content), record.ContentLength)

		stored, err := repos.Embeddings.GetEmbedding(ctx, short.URL)
		require.NoError(t, err)
		assert.Equal(t, record.Embedding, stored.Embedding)
	})

	t.Run("missing content", func(t *testing.T) {
		p, _ := setupTestPipeline(t, newTestGateway(t, "sk-test", nil))
		_, err := p.GenerateEmbedding(ctx, "https://example.com/missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
