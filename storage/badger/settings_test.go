package badger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository_Defaults(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	settings, err := repos.Settings.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultSettings(), settings)

	stats, err := repos.Settings.LoadStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalPages)
	assert.True(t, stats.LastUpdate.IsZero())
}

func TestSettingsRepository_SaveLoad(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	settings := core.DefaultSettings()
	settings.MaxResults = 25
	settings.APIKey = "sk-abc"
	require.NoError(t, repos.Settings.SaveSettings(ctx, settings))

	loaded, err := repos.Settings.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, loaded.MaxResults)
	assert.Equal(t, "sk-abc", loaded.APIKey)

	now := time.Now()
	require.NoError(t, repos.Settings.SaveStats(ctx, &core.Stats{TotalPages: 7, LastUpdate: now}))
	stats, err := repos.Settings.LoadStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalPages)
	assert.WithinDuration(t, now, stats.LastUpdate, time.Millisecond)
}

func TestSettingsRepository_IncrementStats(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	first := time.Now().Add(-time.Minute)
	stats, err := repos.Settings.IncrementStats(ctx, 1, first)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalPages)

	second := time.Now()
	stats, err = repos.Settings.IncrementStats(ctx, 2, second)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalPages)

	loaded, err := repos.Settings.LoadStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.TotalPages)
	assert.WithinDuration(t, second, loaded.LastUpdate, time.Millisecond)
}

func TestSettingsRepository_IncrementStatsConcurrent(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repos.Settings.IncrementStats(ctx, 1, time.Now())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stats, err := repos.Settings.LoadStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers, stats.TotalPages)
}

func TestSettingsRepository_IncrementStatsCancelled(t *testing.T) {
	repos := newTestRepos(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repos.Settings.IncrementStats(ctx, 1, time.Now())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScreenshotRepository(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	shot := &core.Screenshot{
		URL:        "https://example.com",
		Data:       []byte{0xff, 0xd8},
		CapturedAt: time.Now(),
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, repos.Screenshots.PutScreenshot(ctx, shot))

	got, err := repos.Screenshots.GetScreenshot(ctx, shot.URL)
	require.NoError(t, err)
	assert.Equal(t, shot.Data, got.Data)

	list, err := repos.Screenshots.ListScreenshots(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repos.Screenshots.DeleteScreenshots(ctx, shot.URL))
	list, err = repos.Screenshots.ListScreenshots(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.Error(t, repos.Screenshots.PutScreenshot(ctx, &core.Screenshot{}))
}
