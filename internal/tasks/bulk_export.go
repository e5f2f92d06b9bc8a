package tasks

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/spotsearch/internal/formatter"
	"github.com/desertthunder/spotsearch/internal/results"
	"github.com/desertthunder/spotsearch/internal/shared"
	"golang.org/x/time/rate"
)

// ManifestName is the file written into the output directory after a bulk export.
const ManifestName = "export_manifest.json"

// Formats lists the export formats understood by BulkExport.
var Formats = []string{"json", "csv", "markdown", "txt"}

// BulkExportOpts contains configuration for bulk exports.
type BulkExportOpts struct {
	Format         string       // Export format: json, csv, markdown, txt
	OutputDir      string       // Base output directory (default: spotify_export_{epoch})
	NumWorkers     int          // Concurrent workers (default: 5)
	RateLimit      float64      // Lookups per second (default: 5)
	DownloadCovers bool         // Save cover.jpg next to markdown exports
	HTTPClient     *http.Client // Used for cover downloads
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalInputs       int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []formatter.ExportRecord
}

type exportJob struct {
	Input   string
	Base    string // file or directory name, unique within one export
	List    formatter.TrackList
	Results *results.ResultSet
}

// BulkExport exports multiple inputs concurrently with rate limiting and progress tracking.
//
// A producer resolves inputs one at a time under the rate limit and hands them to a pool of writers. Inputs that
// fail to resolve or write are recorded in the manifest and do not stop the export.
func (e *CatalogEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	inputs []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.searcher == nil {
		return nil, fmt.Errorf("%w: searcher not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = "json"
	}
	if !slices.Contains(Formats, opts.Format) {
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("spotify_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalInputs:     len(inputs),
		OutputDirectory: opts.OutputDir,
		Results:         make([]formatter.ExportRecord, 0, len(inputs)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan exportJob, len(inputs))
	records := make(chan formatter.ExportRecord, len(inputs))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, records, opts)
	}

	go func() {
		defer close(jobs)
		names := exportNames{}
		e.sendProgress(prog, fetchingInputsUpdate(len(inputs)))
		for i, input := range inputs {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			list, rs, err := e.fetchList(ctx, input)
			if err != nil {
				e.logger.Warn("failed to resolve export input", "input", input, "error", err)
				records <- formatter.ExportRecord{
					Input: input,
					Name:  input,
					Error: fmt.Errorf("failed to resolve input: %w", err),
				}
				continue
			}

			e.sendProgress(prog, foundListUpdate(i+1, len(inputs), &list))
			jobs <- exportJob{Input: input, Base: names.claim(list.ID), List: list, Results: rs}
		}
	}()

	go func() {
		wg.Wait()
		close(records)
	}()

	completed := 0
	for rec := range records {
		completed++
		result.Results = append(result.Results, rec)

		if rec.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(inputs), rec.Name, len(rec.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(inputs), rec.Name, rec.Error))
		}
	}

	// The producer may have stopped early; workers exit on cancellation without a record.
	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	if err := formatter.WriteBulkExportManifest(result.Results, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that writes exports from the jobs channel.
func (e *CatalogEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	records chan<- formatter.ExportRecord,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		records <- e.exportSingle(ctx, job, opts)
	}
}

// exportSingle writes one resolved input in the requested format.
func (e *CatalogEngine) exportSingle(ctx context.Context, j exportJob, opts BulkExportOpts) formatter.ExportRecord {
	rec := formatter.ExportRecord{
		Input: j.Input,
		Name:  j.List.Name,
		Files: []string{},
	}
	base := j.Base

	switch opts.Format {
	case "csv":
		csvRes, err := formatter.WriteCSVExport(j.List, filepath.Join(opts.OutputDir, base))
		if err != nil {
			rec.Error = fmt.Errorf("CSV export failed: %w", err)
			return rec
		}
		rec.Files = []string{csvRes.TracksFile, csvRes.MetadataFile}

	case "markdown":
		outputDir := filepath.Join(opts.OutputDir, base)

		var coverPath string
		if opts.DownloadCovers && j.List.CoverURL != "" {
			coverPath = filepath.Join(outputDir, "cover"+coverExt(j.List.CoverURL))
			if _, err := formatter.DownloadAsset(ctx, opts.HTTPClient, j.List.CoverURL, coverPath); err != nil {
				e.logger.Warn("cover download failed", "input", j.Input, "error", err)
				coverPath = ""
			}
		}

		mdRes, err := formatter.WriteMarkdownExport(j.List, outputDir, coverPath)
		if err != nil {
			rec.Error = fmt.Errorf("markdown export failed: %w", err)
			return rec
		}
		rec.Files = mdRes.Files

	case "txt":
		txtPath, err := formatter.WriteTextExport(j.List, filepath.Join(opts.OutputDir, base+"_tracks.txt"))
		if err != nil {
			rec.Error = fmt.Errorf("text export failed: %w", err)
			return rec
		}
		rec.Files = []string{txtPath}

	default:
		jsonPath := filepath.Join(opts.OutputDir, base+".json")
		if err := formatter.WriteRawJSON(jsonPath, j.Results.Raw()); err != nil {
			rec.Error = fmt.Errorf("JSON export failed: %w", err)
			return rec
		}
		rec.Files = []string{jsonPath}
	}

	rec.Success = true
	return rec
}

// exportNames hands out base names so that inputs resolving to the same list never share output files.
// Later claimants get a numeric suffix in input order.
type exportNames map[string]int

func (n exportNames) claim(id string) string {
	base := formatter.SafeName(id)
	if base == "" {
		base = "results"
	}

	for {
		n[base]++
		if n[base] == 1 {
			return base
		}
		candidate := fmt.Sprintf("%s_%d", base, n[base])
		if _, taken := n[candidate]; !taken {
			n[candidate] = 1
			return candidate
		}
	}
}

// coverExt keeps a recognizable image extension from url, defaulting to .jpg.
func coverExt(url string) string {
	switch ext := path.Ext(url); ext {
	case ".png", ".jpeg", ".webp":
		return ext
	default:
		return ".jpg"
	}
}
