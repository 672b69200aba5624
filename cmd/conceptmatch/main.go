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
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/poiesic/conceptmatch/config"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "conceptmatch",
		Usage: "Dictionary concept recognition over pre-labeled text",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Set logging format (text, json)",
				Value: "text",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "detect",
				Usage:  "Find dictionary concepts in JSON-lines documents",
				Action: detectCommand,
				Flags: []cli.Flag{
					dbFlag(false),
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a YAML configuration file",
					},
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Input file of JSON-lines documents, - for stdin",
						Value:   "-",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file for JSON-lines results, - for stdout",
						Value:   "-",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Number of documents matched at once (0 for half the CPUs)",
					},
					&cli.BoolFlag{
						Name:  "lowercase-single-tokens",
						Usage: "Let single tokens fall back to the lowercase index",
					},
					&cli.StringFlag{
						Name:  "metrics-addr",
						Usage: "Serve Prometheus metrics on this address",
					},
					&cli.BoolFlag{
						Name:  "fail-fast",
						Usage: "Stop at the first document that fails",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents (0 disables)",
						Value: 1000,
					},
				},
			},
			{
				Name:      "lookup",
				Usage:     "Print the dictionary records of phrases",
				ArgsUsage: "PHRASE...",
				Action:    lookupCommand,
				Flags:     []cli.Flag{dbFlag(true)},
			},
			{
				Name:      "terms",
				Usage:     "Print term ids, or every term when none are given",
				ArgsUsage: "[TERM...]",
				Action:    termsCommand,
				Flags: []cli.Flag{
					dbFlag(true),
					&cli.BoolFlag{
						Name:  "count",
						Usage: "Print only the number of terms",
					},
				},
			},
			{
				Name:   "load",
				Usage:  "Build a dictionary from prepared bar-separated rows",
				Action: loadCommand,
				Flags: []cli.Flag{
					dbFlag(true),
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "BSV file of text|sui|cui|tui|source[|norms] rows, - for stdin",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Source registration as ID=NAME (repeatable)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "sui-width",
						Usage: "Record field width for source unique identifiers",
						Value: 8,
					},
					&cli.IntFlag{
						Name:  "cui-width",
						Usage: "Record field width for concept unique identifiers",
						Value: 8,
					},
					&cli.IntFlag{
						Name:  "tui-width",
						Usage: "Record field width for type unique identifiers",
						Value: 4,
					},
					&cli.BoolFlag{
						Name:  "fit-layout",
						Usage: "Widen record fields to fit the longest identifiers",
					},
				},
			},
		},
	}
}

func dbFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB dictionary directory",
		Required: required,
	}
}

func setupLogger(c *cli.Context) error {
	return configureLogging(c.App.ErrWriter, c.String("log-level"), c.String("log-format"))
}

// configureLogging installs the default slog logger writing to w.
func configureLogging(w io.Writer, levelName, format string) error {
	level, err := config.ParseLevel(levelName)
	if err != nil {
		return err
	}
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch format {
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
