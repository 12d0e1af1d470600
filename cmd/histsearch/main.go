// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "histsearch",
		Usage: "Hybrid semantic and keyword search over browsing history",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search history; an empty query lists recent pages",
				ArgsUsage: "[query...]",
				Action:    searchCommand,
				Flags: []cli.Flag{
					dbFlag(),
					historyFlag(),
					&cli.IntFlag{Name: "page", Usage: "Zero-based result page"},
					&cli.IntFlag{Name: "limit", Usage: "Results per page (default from config)"},
					&cli.BoolFlag{Name: "json", Usage: "Print results as JSON"},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Extract and store a page from an HTML file",
				ArgsUsage: "<file.html|->",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{Name: "url", Usage: "URL the page was loaded from", Required: true},
					&cli.DurationFlag{Name: "dwell", Usage: "Time spent on the page"},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Generate embeddings for stored pages that lack one",
				Action: reembedCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of pages to process in each batch",
						Value: 20,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N pages",
						Value: 10,
					},
					&cli.BoolFlag{Name: "force", Usage: "Re-embed pages that already have an embedding"},
					&cli.BoolFlag{Name: "all", Usage: "Ignore the dwell, length and URL eligibility rules"},
				},
			},
			{
				Name:   "cleanup",
				Usage:  "Enforce the stored page cap and remove expired screenshots",
				Action: cleanupCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
			{
				Name:      "set-key",
				Usage:     "Validate and store the embedding API key",
				ArgsUsage: "[key]",
				Action:    setKeyCommand,
				Flags:     []cli.Flag{dbFlag()},
			},
			{
				Name:   "stats",
				Usage:  "Show storage statistics and embedding status",
				Action: statsCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API and run scheduled retention",
				Action: serveCommand,
				Flags: []cli.Flag{
					dbFlag(),
					historyFlag(),
					&cli.StringFlag{Name: "listen", Usage: "Address to listen on (default from config)"},
				},
			},
		},
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to BadgerDB database directory (overrides the config file)",
	}
}

func historyFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "history",
		Usage: "JSON browser history export to search",
	}
}
