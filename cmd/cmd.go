// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/spotsearch/internal/services"
	"github.com/desertthunder/spotsearch/internal/tasks"
	"github.com/urfave/cli/v3"
)

// searchFlags are shared by every command that resolves free-form input.
func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "type",
			Aliases: []string{"t"},
			Usage:   "Entity types to search: track, artist, album, episode, playlist",
		},
		&cli.StringSliceFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "Field filter as name:value, e.g. artist:Muse or year:2009",
		},
		&cli.StringFlag{
			Name:  "market",
			Usage: "ISO 3166-1 alpha-2 market code",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum results per entity type",
		},
		&cli.IntFlag{
			Name:  "offset",
			Usage: "Index of the first result",
		},
		&cli.BoolFlag{
			Name:  "resolve-titles",
			Usage: "Search by page title instead of looking up track links",
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
		&cli.StringFlag{
			Name:    "save",
			Aliases: []string{"s"},
			Usage:   "Save the raw API response to a file",
		},
	}
}

func inputFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "file",
		Aliases: []string{"F"},
		Usage:   "Read additional inputs from a file, one per line",
	}
}

// searchCommand searches the catalog by keywords or resource link
func searchCommand(r *Runner) *cli.Command {
	flags := append(searchFlags(), outputFlags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Print the resolved query and request path without calling the API",
	})

	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "Search by keywords or look up an open.spotify.com link",
		ArgsUsage: "<keywords or link>",
		Flags:     flags,
		Action:    r.Search,
	}
}

// lookupCommand fetches one entity by type and ID
func lookupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "Fetch a single track, artist, album, episode or playlist by ID",
		ArgsUsage: "<type> <id>",
		Flags:     outputFlags(),
		Action:    r.Lookup,
	}
}

// batchCommand searches many inputs concurrently
func batchCommand(r *Runner) *cli.Command {
	flags := append(searchFlags(), inputFileFlag(),
		&cli.IntFlag{
			Name:    "concurrency",
			Aliases: []string{"n"},
			Usage:   "Maximum requests in flight",
			Value:   services.DefaultBatchConcurrency,
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	)

	return &cli.Command{
		Name:      "batch",
		Usage:     "Search many inputs with bounded concurrency",
		ArgsUsage: "[inputs...]",
		Flags:     flags,
		Action:    r.Batch,
	}
}

// exportCommand writes track lists of many inputs to disk
func exportCommand(r *Runner) *cli.Command {
	flags := append(searchFlags(), inputFileFlag(),
		&cli.StringFlag{
			Name:  "format",
			Usage: "Export format: json, csv, markdown, txt",
			Value: "json",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output directory (default: spotify_export_{epoch})",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Concurrent file writers",
			Value: 5,
		},
		&cli.FloatFlag{
			Name:  "rate",
			Usage: "Lookups per second",
			Value: 5,
		},
		&cli.BoolFlag{
			Name:  "covers",
			Usage: "Download cover images for markdown exports",
		},
	)

	return &cli.Command{
		Name:      "export",
		Usage:     "Export albums, playlists or search results to " + formatsUsage(),
		ArgsUsage: "[inputs...]",
		Flags:     flags,
		Action:    r.Export,
	}
}

// diffCommand compares two track lists
func diffCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "Compare and show missing tracks between two albums or playlists",
		ArgsUsage: "<source> <dest>",
		Flags:     searchFlags(),
		Action:    r.Diff,
	}
}

// downloadCommand saves a cover image or audio preview
func downloadCommand(r *Runner) *cli.Command {
	flags := append(searchFlags(),
		&cli.BoolFlag{
			Name:  "preview",
			Usage: "Download the audio preview instead of the cover image",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Destination file (default: derived from the entity name)",
		},
	)

	return &cli.Command{
		Name:      "download",
		Usage:     "Download the cover image or audio preview of the first match",
		ArgsUsage: "<keywords or link>",
		Flags:     flags,
		Action:    r.Download,
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Where to write the file (default: the --config path)",
					},
				},
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration with secrets masked",
				Action: r.ConfigShow,
			},
		},
	}
}

// serveCommand runs the read-only HTTP gateway.
func serveCommand(r *Runner) *cli.Command {
	flags := append(searchFlags(), &cli.StringFlag{
		Name:  "addr",
		Value: ":8080",
		Usage: "Address to listen on",
	})

	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve search and lookup over HTTP (GET /search, /lookup/{type}/{id}, /healthz, /metrics)",
		Flags:  flags,
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Launch interactive TUI for browsing the catalog",
		ArgsUsage: "[keywords or link]",
		Flags:     searchFlags(),
		Action:    r.TUI,
	}
}

func formatsUsage() string {
	return strings.Join(tasks.Formats, ", ")
}
