package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nomatterpluda/browser-history-search/config"
	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/extract"
	"github.com/nomatterpluda/browser-history-search/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const pageHTML = `<html><head><title>Badger internals</title></head><body><article>
<p>Badger is an embeddable key value store written in Go. It separates keys from values
so that the LSM tree stays small and fits in memory, while values live in a value log.</p>
<p>Compactions keep read amplification low, and transactions give snapshot isolation
to readers while writers commit atomically.</p>
</article></body></html>`

// runApp runs the CLI with args and returns what it printed.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvDatabase, "")
	t.Setenv(config.EnvLogLevel, "")

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"histsearch", "--log-level", "error"}, args...))
	return out.String(), err
}

func findFlag[T cli.Flag](t *testing.T, cmd *cli.Command, name string) T {
	t.Helper()
	for _, flag := range cmd.Flags {
		if f, ok := flag.(T); ok && flag.Names()[0] == name {
			return f
		}
	}
	t.Fatalf("flag %s not found on %s", name, cmd.Name)
	var zero T
	return zero
}

func command(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	cmd := app.Command(name)
	require.NotNil(t, cmd, "command %s", name)
	return cmd
}

func TestCommands(t *testing.T) {
	app := newApp()
	for _, name := range []string{"search", "ingest", "reembed", "cleanup", "set-key", "stats", "serve"} {
		command(t, app, name)
	}
}

func TestReembedCommandFlags(t *testing.T) {
	cmd := command(t, newApp(), "reembed")

	t.Run("batch-size has default value of 20", func(t *testing.T) {
		assert.Equal(t, 20, findFlag[*cli.IntFlag](t, cmd, "batch-size").Value)
	})

	t.Run("report-interval has default value of 10", func(t *testing.T) {
		assert.Equal(t, 10, findFlag[*cli.IntFlag](t, cmd, "report-interval").Value)
	})

	t.Run("db has no EnvVars", func(t *testing.T) {
		assert.Empty(t, findFlag[*cli.StringFlag](t, cmd, "db").EnvVars)
	})
}

func TestReembedCommandValidation(t *testing.T) {
	dir := t.TempDir()

	t.Run("batch-size must be positive", func(t *testing.T) {
		_, err := runApp(t, "reembed", "--db", dir, "--batch-size", "0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch-size")
	})

	t.Run("report-interval must be positive", func(t *testing.T) {
		_, err := runApp(t, "reembed", "--db", dir, "--report-interval", "-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "report-interval")
	})

	t.Run("requires an api key", func(t *testing.T) {
		_, err := runApp(t, "reembed", "--db", dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "set-key")
	})
}

func TestSetupLogger(t *testing.T) {
	assert.NoError(t, setupLogger("debug"))
	assert.Error(t, setupLogger("chatty"))

	_, err := runApp(t, "--log-level", "chatty", "stats", "--db", t.TempDir())
	assert.Error(t, err)
}

func TestSearchCommand(t *testing.T) {
	historyFile := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, history.SaveFile(historyFile, []*core.HistoryRecord{
		{ID: "1", URL: "https://dgraph.io/docs/badger", Title: "Badger documentation", LastVisitTime: time.Now().Add(-time.Hour), VisitCount: 5},
		{ID: "2", URL: "https://example.com/cats", Title: "Cat pictures", LastVisitTime: time.Now().Add(-2 * time.Hour), VisitCount: 1},
	}))
	dir := t.TempDir()

	out, err := runApp(t, "search", "--db", dir, "--history", historyFile, "badger")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 results")
	assert.Contains(t, out, "Badger documentation")

	recent, err := runApp(t, "search", "--db", dir, "--history", historyFile)
	require.NoError(t, err)
	assert.Contains(t, recent, "Found 2 results")

	asJSON, err := runApp(t, "search", "--db", dir, "--history", historyFile, "--json", "cat")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(asJSON), "["))
	assert.Contains(t, asJSON, `"url": "https://example.com/cats"`)
}

func TestIngestAndStats(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(page, []byte(pageHTML), 0o644))

	out, err := runApp(t, "ingest", "--db", dir, "--url", "https://blog.example/badger", "--dwell", "1m", page)
	require.NoError(t, err)
	assert.Contains(t, out, "Stored https://blog.example/badger")

	stats, err := runApp(t, "stats", "--db", dir)
	require.NoError(t, err)
	assert.Contains(t, stats, "Pages ingested:")
	assert.Regexp(t, `Pages stored:\s+1`, stats)
	assert.Regexp(t, `Embeddings enabled:\s+false`, stats)

	cleaned, err := runApp(t, "cleanup", "--db", dir)
	require.NoError(t, err)
	assert.Contains(t, cleaned, "Evicted 0 pages")
}

func TestIngestCommand_Errors(t *testing.T) {
	_, err := runApp(t, "ingest", "--db", t.TempDir(), "--url", "https://a.example")
	assert.Error(t, err, "file argument is required")

	_, err = runApp(t, "ingest", "--db", t.TempDir(), "page.html")
	assert.Error(t, err, "url is required")

	page := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(page, []byte(pageHTML), 0o644))
	_, err = runApp(t, "ingest", "--db", t.TempDir(), "--url", "chrome://settings", page)
	assert.ErrorIs(t, err, extract.ErrSkippedURL)
}

func TestSetKeyCommand_NoKey(t *testing.T) {
	_, err := runApp(t, "set-key", "--db", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvAPIKey)
}
