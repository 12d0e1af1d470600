package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	historysearch "github.com/nomatterpluda/browser-history-search"
	"github.com/nomatterpluda/browser-history-search/config"
	"github.com/nomatterpluda/browser-history-search/history"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

// setup loads .env and the configuration, then configures logging.
func setup(c *cli.Context) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}
	if err := setupLogger(cfg.Logging.Level); err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func setupLogger(levelStr string) error {
	level, err := config.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}

func loadedConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

// openDatabase opens the database named by --db or the configuration.
func openDatabase(c *cli.Context) (*historysearch.Database, error) {
	cfg := loadedConfig(c)
	dbPath := cfg.Database.Path
	if c.IsSet("db") {
		dbPath = c.String("db")
	}
	if dbPath == "" && !cfg.Database.InMemory {
		return nil, fmt.Errorf("database path is required")
	}

	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	opts := []historysearch.DatabaseOption{
		historysearch.WithAIConfig(cfg.AIConfig()),
		historysearch.WithSearchConfig(cfg.SearcherConfig()),
		historysearch.WithPolicy(policy),
		historysearch.WithMaxContentItems(cfg.Content.MaxItems),
		historysearch.WithPoolSize(cfg.Embedding.PoolSize),
	}
	if cfg.Database.InMemory {
		opts = append(opts, historysearch.WithInMemory())
	}

	historyFile := cfg.Search.HistoryFile
	if c.IsSet("history") {
		historyFile = c.String("history")
	}
	if historyFile != "" {
		provider, err := history.LoadFile(historyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
		opts = append(opts, historysearch.WithHistoryProvider(provider))
	}

	db, err := historysearch.NewDatabase(context.Background(), dbPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
