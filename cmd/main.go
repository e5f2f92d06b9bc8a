package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/spotsearch/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	app := newApp(NewRunner(RunnerOpts{Logger: logger}))

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrMissingCredentials) {
			logger.Fatal("no API credentials configured; run `spotsearch config init` and edit config.toml", "error", err)
		}
		logger.Fatalf("application error: %v", err)
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotsearch",
		Usage:   "Search the Spotify catalog by keywords or open.spotify.com links",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (overrides [log] level)",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Print client metrics to stderr on exit",
			},
		},
		Before:   r.setup,
		After:    r.teardown,
		Commands: r.register(),
	}
}
