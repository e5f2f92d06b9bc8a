package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/spotsearch/internal/formatter"
	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search resolves the arguments as keywords or a resource link and prints the results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	input := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(input) == "" && len(cmd.StringSlice("filter")) == 0 {
		return fmt.Errorf("%w: search needs keywords, a link, or --filter", shared.ErrMissingArgument)
	}

	opts, err := r.searchOptions(cmd)
	if err != nil {
		return err
	}

	client, err := r.catalog()
	if err != nil {
		return err
	}

	if cmd.Bool("dry-run") {
		d, target, err := client.Plan(ctx, input, opts)
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			return r.writeJSON(map[string]any{
				"kind":   d.Kind.String(),
				"query":  d.String(),
				"target": target.String(),
			}, cmd.Bool("pretty"))
		}
		r.writePlain("Query:  %s\n", d)
		return r.writePlain("Target: %s\n", target)
	}

	r.logger.Debug("searching", "input", input, "types", opts.Types)
	rs, err := client.Search(ctx, input, opts)
	if err != nil {
		return err
	}

	if path := cmd.String("save"); path != "" {
		if err := formatter.WriteRawJSON(path, rs.Raw()); err != nil {
			return err
		}
		r.logger.Info("saved response", "path", path)
	}

	return r.writeResults(rs, cmd.Bool("json"), cmd.Bool("pretty"))
}

// Lookup fetches one entity by type and ID.
func (r *Runner) Lookup(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 2 {
		return fmt.Errorf("%w: usage: lookup <type> <id>", shared.ErrMissingArgument)
	}

	kind, err := models.ParseEntityType(cmd.Args().Get(0))
	if err != nil {
		return err
	}

	client, err := r.catalog()
	if err != nil {
		return err
	}

	opts, err := r.searchOptions(cmd)
	if err != nil {
		return err
	}

	rs, err := client.Lookup(ctx, kind, cmd.Args().Get(1), opts)
	if err != nil {
		return err
	}

	if path := cmd.String("save"); path != "" {
		if err := formatter.WriteRawJSON(path, rs.Raw()); err != nil {
			return err
		}
		r.logger.Info("saved response", "path", path)
	}

	return r.writeResults(rs, cmd.Bool("json"), cmd.Bool("pretty"))
}

type batchOutput struct {
	Input   string          `json:"input"`
	Error   string          `json:"error,omitempty"`
	Results json.RawMessage `json:"results,omitempty"`
}

// Batch searches every input concurrently and prints a summary line per input.
func (r *Runner) Batch(ctx context.Context, cmd *cli.Command) error {
	inputs, err := readInputs(cmd)
	if err != nil {
		return err
	}

	opts, err := r.searchOptions(cmd)
	if err != nil {
		return err
	}

	client, err := r.catalog()
	if err != nil {
		return err
	}

	r.logger.Info("running batch", "inputs", len(inputs), "concurrency", cmd.Int("concurrency"))
	batch, err := client.Batch(ctx, inputs, opts, cmd.Int("concurrency"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]batchOutput, len(batch))
		for i, b := range batch {
			out[i].Input = b.Input
			if b.Err != nil {
				out[i].Error = b.Err.Error()
			} else {
				out[i].Results = b.Results.Raw()
			}
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	failed := 0
	for _, b := range batch {
		if b.Err != nil {
			failed++
			r.writePlain("✗ %s: %v\n", b.Input, b.Err)
			continue
		}

		var counts []string
		for _, kind := range models.EntityTypes {
			if n := len(b.Results.Entities(kind)); n > 0 {
				counts = append(counts, fmt.Sprintf("%d %s", n, kind.Plural()))
			}
		}
		if len(counts) == 0 {
			counts = []string{"no results"}
		}
		r.writePlain("✓ %s: %s\n", b.Input, strings.Join(counts, ", "))
	}

	return r.writePlainln("%d/%d inputs succeeded", len(batch)-failed, len(batch))
}
