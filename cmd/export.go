package main

import (
	"context"
	"fmt"
	"path"

	"github.com/desertthunder/spotsearch/internal/formatter"
	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/results"
	"github.com/desertthunder/spotsearch/internal/shared"
	"github.com/desertthunder/spotsearch/internal/tasks"
	"github.com/urfave/cli/v3"
)

// engine builds the task engine over the configured client.
func (r *Runner) engine(cmd *cli.Command) (*tasks.CatalogEngine, error) {
	opts, err := r.searchOptions(cmd)
	if err != nil {
		return nil, err
	}
	client, err := r.catalog()
	if err != nil {
		return nil, err
	}
	return tasks.NewCatalogEngine(client, opts, r.logger), nil
}

// Export writes every input to disk in the requested format and prints a summary.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	inputs, err := readInputs(cmd)
	if err != nil {
		return err
	}

	engine, err := r.engine(cmd)
	if err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchInputs:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ExportResults:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := engine.BulkExport(ctx, progressCh, inputs, tasks.BulkExportOpts{
		Format:         cmd.String("format"),
		OutputDir:      cmd.String("output"),
		NumWorkers:     cmd.Int("workers"),
		RateLimit:      cmd.Float("rate"),
		DownloadCovers: cmd.Bool("covers"),
		HTTPClient:     r.httpClient,
	})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Output: %s\n", result.OutputDirectory)
	r.writePlain("Successful: %d/%d\n", result.SuccessfulExports, result.TotalInputs)
	if result.FailedExports > 0 {
		r.writePlain("Failed: %d\n", result.FailedExports)
	}
	return r.writePlain("Manifest: %s\n", result.ManifestPath)
}

// Diff compares the tracks of two inputs.
func (r *Runner) Diff(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 2 {
		return fmt.Errorf("%w: usage: diff <source> <dest>", shared.ErrMissingArgument)
	}
	source, dest := cmd.Args().Get(0), cmd.Args().Get(1)

	engine, err := r.engine(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("diff requested", "source", source, "dest", dest)
	result, err := engine.Diff(ctx, nil, source, dest)
	if err != nil {
		return err
	}

	cmp := result.Comparison
	r.writePlainHeader("Track Comparison")
	r.writePlain("Source: %s (%d tracks)\n", cmp.Source.Name, len(cmp.Source.Tracks))
	r.writePlain("Destination: %s (%d tracks)\n", cmp.Dest.Name, len(cmp.Dest.Tracks))
	r.writePlain("Matched: %d\n", cmp.MatchedCount)

	if len(cmp.MissingInDest) > 0 {
		r.writePlain("\nMissing in destination (%d):\n", len(cmp.MissingInDest))
		for _, t := range cmp.MissingInDest {
			r.writePlain("  - %s - %s\n", t.ArtistNames(), t.Name)
		}
	}
	if len(cmp.ExtraInDest) > 0 {
		r.writePlain("\nExtra in destination (%d):\n", len(cmp.ExtraInDest))
		for _, t := range cmp.ExtraInDest {
			r.writePlain("  + %s - %s\n", t.ArtistNames(), t.Name)
		}
	}
	return nil
}

// Download saves the cover image or audio preview of the first matching entity.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	input := cmd.Args().First()
	if input == "" {
		return fmt.Errorf("%w: download needs keywords or a link", shared.ErrMissingArgument)
	}

	opts, err := r.searchOptions(cmd)
	if err != nil {
		return err
	}
	client, err := r.catalog()
	if err != nil {
		return err
	}

	rs, err := client.Search(ctx, input, opts)
	if err != nil {
		return err
	}

	entity, ok := firstEntity(rs)
	if !ok {
		return fmt.Errorf("%w: no results for %q", shared.ErrMissingArgument, input)
	}

	preview := cmd.Bool("preview")
	url, ext := formatter.CoverURL(entity), ".jpg"
	if preview {
		url, ext = formatter.PreviewURL(entity), ".mp3"
	}
	if url == "" {
		what := "cover image"
		if preview {
			what = "audio preview"
		}
		return fmt.Errorf("%w: %s has no %s", shared.ErrMissingArgument, entity.Title(), what)
	}

	dest := cmd.String("output")
	if dest == "" {
		dest = formatter.SafeName(entity.Title())
		if dest == "" {
			dest = string(entity.Kind())
		}
		if e := path.Ext(url); !preview && (e == ".png" || e == ".webp") {
			ext = e
		}
		dest += ext
	}

	n, err := formatter.DownloadAsset(ctx, r.httpClient, url, dest)
	if err != nil {
		return err
	}

	r.logger.Debug("downloaded asset", "url", url, "bytes", n)
	return r.writePlain("✓ Saved %s (%d bytes)\n", dest, n)
}

// firstEntity picks the looked-up entity, or the first hit in catalog order.
func firstEntity(rs *results.ResultSet) (models.Entity, bool) {
	if rs.IsLookup() {
		if es := rs.Entities(rs.LookupKind()); len(es) > 0 {
			return es[0], true
		}
		return nil, false
	}
	for _, kind := range models.EntityTypes {
		if es := rs.Entities(kind); len(es) > 0 {
			return es[0], true
		}
	}
	return nil, false
}
