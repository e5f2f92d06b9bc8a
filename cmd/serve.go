package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/spotsearch/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve exposes search and lookup over HTTP until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := r.searchOptions(cmd)
	if err != nil {
		return err
	}

	client, err := r.catalog()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := server.NewRouter(client, opts, r.registry, r.logger)
	r.logger.Debug("mounted routes", "routes", router.Routes())
	return server.Serve(ctx, cmd.String("addr"), router, r.logger)
}
