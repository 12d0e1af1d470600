package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	historysearch "github.com/nomatterpluda/browser-history-search"
	"github.com/nomatterpluda/browser-history-search/ai"
	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/nomatterpluda/browser-history-search/history"
)

var sentences = []string{
	"Goroutines are multiplexed onto a small pool of operating system threads.",
	"A buffered channel decouples the pace of senders from receivers.",
	"The context package carries deadlines and cancellation across API boundaries.",
	"Badger keeps keys in an LSM tree and values in a separate log.",
	"Cosine similarity compares the angle between two embedding vectors.",
	"Rate limiters smooth bursts of requests toward a remote API.",
	"An LRU cache evicts the entry that was used least recently.",
	"Readability strips navigation and ads to find the main article text.",
	"Prometheus scrapes counters and histograms over plain HTTP.",
	"Cron expressions describe recurring schedules in five or six fields.",
	"Sourdough needs a lively starter and a long cold proof.",
	"Espresso extraction depends on grind size, dose and water temperature.",
	"Alpine lakes stay cold well into the summer months.",
	"A good trail map shows elevation, water sources and campsites.",
	"Film photography rewards patience with grain and rich color.",
	"Houseplants in north facing rooms need less frequent watering.",
	"The night market sold grilled skewers and mango sticky rice.",
	"Chess openings trade material for tempo and central control.",
	"Watercolor paint flows differently on hot pressed paper.",
	"Bicycle chains last longer when they are cleaned and lubricated often.",
}

var (
	dbPath         = flag.String("db", "./history_db", "database directory")
	seedFileName   = flag.String("src", "", "file of seed sentences, one per line")
	historyOut     = flag.String("history", "seed_history.json", "where to write the matching history export")
	linesPerPage   = flag.Int("lines", 4, "sentences per page")
	repeat         = flag.Int("repeat", 40, "times each page's sentences are repeated")
	dwell          = flag.Duration("dwell", 2*time.Minute, "time on page recorded for every page")
	embeddingModel = flag.String("embedding-model", ai.DefaultEmbeddingModel, "embedding model")
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				if !yield(line) {
					return
				}
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// pagesFrom groups lines into synthetic pages.
func pagesFrom(source iter.Seq[string], perPage, repeat int) []*core.ExtractedContent {
	var pages []*core.ExtractedContent
	batch := make([]string, 0, perPage)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		title := strings.TrimSuffix(batch[0], ".")
		slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
		body := strings.Join(batch, " ")
		pages = append(pages, &core.ExtractedContent{
			URL:        fmt.Sprintf("https://seed.example/%03d-%s", len(pages), slug),
			Title:      title,
			Content:    strings.TrimSpace(strings.Repeat(body+" ", repeat)),
			TimeOnPage: core.DwellOf(*dwell),
		})
		batch = batch[:0]
	}

	for line := range source {
		batch = append(batch, line)
		if len(batch) == perPage {
			flush()
		}
	}
	flush()
	return pages
}

func main() {
	db, err := historysearch.NewDatabase(context.Background(), *dbPath,
		historysearch.WithAIConfig(ai.NewConfig(
			ai.WithEmbeddingModel(*embeddingModel),
			ai.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
		)),
	)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ctx := context.Background()

	// Determine source of seed data
	var source iter.Seq[string]
	if *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(sentences)
	}

	now := time.Now()
	pages := pagesFrom(source, *linesPerPage, *repeat)
	records := make([]*core.HistoryRecord, 0, len(pages))
	for i, page := range pages {
		if err := db.Pipeline().Ingest(ctx, page, nil); err != nil {
			panic(err)
		}
		records = append(records, &core.HistoryRecord{
			ID:            fmt.Sprint(i + 1),
			URL:           page.URL,
			Title:         page.Title,
			LastVisitTime: now.Add(-time.Duration(i) * time.Hour),
			VisitCount:    i%7 + 1,
		})
	}
	db.Pipeline().Wait()

	if err := history.SaveFile(*historyOut, records); err != nil {
		panic(err)
	}
	slog.Info("seeded database", "pages", len(pages), "history", *historyOut, "embeddings", db.Gateway().IsReady())
}
