package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/nomatterpluda/browser-history-search/config"
	"github.com/nomatterpluda/browser-history-search/dispatch"
	"github.com/nomatterpluda/browser-history-search/extract"
	"github.com/nomatterpluda/browser-history-search/reembed"
	"github.com/nomatterpluda/browser-history-search/server"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func searchCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	result := db.Dispatcher().Dispatch(c.Context, dispatch.Command{
		Type:  dispatch.SearchHistory,
		Query: strings.Join(c.Args().Slice(), " "),
		Page:  c.Int("page"),
		Limit: c.Int("limit"),
	})
	if !result.Success {
		return fmt.Errorf("search failed: %s", result.Error)
	}

	out := c.App.Writer
	if c.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Results)
	}

	fmt.Fprintf(out, "Found %d results\n", len(result.Results))
	for i, r := range result.Results {
		fmt.Fprintf(out, "%d: %s [%s %.3f]\n   %s\n   %s\n", i+1, r.Title, r.MatchType, r.RelevanceScore, r.URL, r.Snippet)
	}
	return nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected one HTML file (or - for stdin)")
	}
	var in io.Reader = os.Stdin
	if name := c.Args().First(); name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	content, err := extract.FromHTML(in, c.String("url"), c.Duration("dwell"))
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Pipeline().Ingest(c.Context, content, nil); err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	db.Pipeline().Wait()

	fmt.Fprintf(c.App.Writer, "Stored %s (%d words)\n", content.URL, content.WordCount())
	return nil
}

func reembedCommand(c *cli.Context) error {
	// Validate flags
	if c.Int("batch-size") <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if c.Int("report-interval") <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if !db.Gateway().IsReady() {
		return fmt.Errorf("no API key configured; run set-key first")
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		Force:          c.Bool("force"),
	}
	if !c.Bool("all") {
		if reembedConfig.Policy, err = loadedConfig(c).Policy(); err != nil {
			return err
		}
	}

	reembedder, err := db.NewReembedder(reembedConfig, c.App.ErrWriter)
	if err != nil {
		return err
	}

	status := db.Gateway().Status()
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n\n", status.Model)

	if _, err := reembedder.Run(c.Context); err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	return nil
}

func cleanupCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := db.Retainer().Run(c.Context)
	fmt.Fprintf(c.App.Writer, "Evicted %d pages, removed %d expired screenshots\n",
		report.ContentEvicted, report.ScreenshotsExpired)
	return err
}

func setKeyCommand(c *cli.Context) error {
	key := c.Args().First()
	if key == "" {
		key = os.Getenv(config.EnvAPIKey)
	}
	if key == "" {
		return fmt.Errorf("no key given and %s is not set", config.EnvAPIKey)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	result := db.Dispatcher().Dispatch(c.Context, dispatch.Command{Type: dispatch.SetAPIKey, APIKey: key})
	if !result.Success {
		return fmt.Errorf("key rejected: %s", result.Error)
	}
	fmt.Fprintf(c.App.Writer, "API key stored; embeddings enabled with %s\n", result.Status.Model)
	return nil
}

func statsCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	d := db.Dispatcher()
	stats := d.Dispatch(c.Context, dispatch.Command{Type: dispatch.GetStats}).Stats
	status := d.Dispatch(c.Context, dispatch.Command{Type: dispatch.GetEmbeddingStatus}).Status
	stored, err := db.ContentRepository().CountContent(c.Context)
	if err != nil {
		return err
	}
	embeddings, err := db.EmbeddingRepository().ListEmbeddings(c.Context)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Pages ingested:\t%d\n", stats.TotalPages)
	fmt.Fprintf(w, "Pages stored:\t%d\n", stored)
	fmt.Fprintf(w, "Embeddings:\t%d\n", len(embeddings))
	if !stats.LastUpdate.IsZero() {
		fmt.Fprintf(w, "Last update:\t%s\n", stats.LastUpdate.Local().Format(time.RFC1123))
	}
	fmt.Fprintf(w, "Embeddings enabled:\t%t\n", status.Ready)
	fmt.Fprintf(w, "Embedding model:\t%s\n", status.Model)
	return w.Flush()
}

func serveCommand(c *cli.Context) error {
	cfg := loadedConfig(c)
	listen := cfg.Server.Listen
	if c.IsSet("listen") {
		listen = c.String("listen")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	srv, err := server.New(db.Dispatcher(),
		server.WithGatherer(db.Gatherer()),
		server.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx, listen)
	})
	if spec := cfg.Content.RetentionSchedule; spec != "" {
		scheduler, err := server.NewScheduler(spec, db.Retainer(), nil)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := scheduler.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
