package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotsearch/internal/formatter"
	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/results"
	"github.com/desertthunder/spotsearch/internal/services"
	"github.com/desertthunder/spotsearch/internal/shared"
	"golang.org/x/text/unicode/norm"
)

// ComparisonResult contains track comparison details between two track lists.
type ComparisonResult struct {
	Source        formatter.TrackList // Source list
	Dest          formatter.TrackList // Destination list
	MatchedCount  int                 // Source tracks found in dest
	MissingInDest []models.Track      // Tracks in source but not in dest
	ExtraInDest   []models.Track      // Tracks in dest but not in source
}

// DiffResult contains the results of comparing two track lists.
type DiffResult struct {
	Comparison ComparisonResult
}

// Engine defines the multi-request operations run against the catalog.
type Engine interface {
	// Diff compares the tracks of two inputs by identifying matched tracks, missing tracks, and extra tracks.
	Diff(ctx context.Context, progress chan<- ProgressUpdate, source, dest string) (*DiffResult, error)

	// BulkExport resolves every input and writes its tracks to OutputDir in the requested format.
	BulkExport(ctx context.Context, progress chan<- ProgressUpdate, inputs []string, opts BulkExportOpts) (*BulkExportResult, error)
}

// CatalogEngine implements Engine on a catalog searcher.
type CatalogEngine struct {
	searcher services.Searcher
	search   services.SearchOptions
	logger   *log.Logger
}

// NewCatalogEngine creates a CatalogEngine. search is applied to every input it resolves; a nil logger discards.
func NewCatalogEngine(searcher services.Searcher, search services.SearchOptions, logger *log.Logger) *CatalogEngine {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	return &CatalogEngine{searcher: searcher, search: search, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *CatalogEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// fetchList resolves input and collects its tracks.
func (e *CatalogEngine) fetchList(ctx context.Context, input string) (formatter.TrackList, *results.ResultSet, error) {
	rs, err := e.searcher.Search(ctx, input, e.search)
	if err != nil {
		return formatter.TrackList{}, nil, err
	}
	return formatter.FromResults(rs, input), rs, nil
}

// Diff compares two track lists and identifies differences.
func (e *CatalogEngine) Diff(ctx context.Context, progress chan<- ProgressUpdate, source, dest string) (*DiffResult, error) {
	if e.searcher == nil {
		return nil, fmt.Errorf("%w: searcher not initialized", shared.ErrServiceUnavailable)
	}

	result := &DiffResult{}

	e.sendProgress(progress, fetchSourceUpdate(1, 2, source))
	src, _, err := e.fetchList(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source tracks: %w", err)
	}

	e.sendProgress(progress, fetchDestUpdate(2, 2, dest))
	dst, _, err := e.fetchList(ctx, dest)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch destination tracks: %w", err)
	}

	result.Comparison.Source = src
	result.Comparison.Dest = dst

	e.sendProgress(progress, buildDestMapUpdate(1, 2))
	destIndex := newTrackIndex(dst.Tracks)
	sourceIndex := newTrackIndex(src.Tracks)

	e.sendProgress(progress, missingTrackUpdate(2, 2))
	for _, t := range src.Tracks {
		if destIndex.contains(t) {
			result.Comparison.MatchedCount++
		} else {
			result.Comparison.MissingInDest = append(result.Comparison.MissingInDest, t)
		}
	}

	for _, t := range dst.Tracks {
		if !sourceIndex.contains(t) {
			result.Comparison.ExtraInDest = append(result.Comparison.ExtraInDest, t)
		}
	}

	e.logger.Debug("compared track lists", "source", src.Name, "dest", dst.Name,
		"matched", result.Comparison.MatchedCount,
		"missing", len(result.Comparison.MissingInDest),
		"extra", len(result.Comparison.ExtraInDest))

	return result, nil
}

// trackIndex matches tracks by ISRC, then by normalized title and artists.
type trackIndex struct {
	isrc map[string]struct{}
	keys map[string]struct{}
}

func newTrackIndex(tracks []models.Track) trackIndex {
	idx := trackIndex{isrc: make(map[string]struct{}), keys: make(map[string]struct{})}
	for _, t := range tracks {
		if t.ISRC != "" {
			idx.isrc[t.ISRC] = struct{}{}
		}
		idx.keys[trackKey(t)] = struct{}{}
	}
	return idx
}

func (idx trackIndex) contains(t models.Track) bool {
	if t.ISRC != "" {
		if _, ok := idx.isrc[t.ISRC]; ok {
			return true
		}
	}
	_, ok := idx.keys[trackKey(t)]
	return ok
}

// trackKey folds case, width and spacing of the title and artists.
func trackKey(t models.Track) string {
	fold := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(norm.NFKC.String(s))), " ")
	}
	return fold(t.Name) + "|" + fold(t.ArtistNames())
}
