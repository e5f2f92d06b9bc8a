// package services implements the catalog API client
package services

import (
	"context"

	"github.com/desertthunder/spotsearch/internal/endpoint"
	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/query"
	"github.com/desertthunder/spotsearch/internal/results"
)

// Searcher is the read-only catalog surface used by the CLI, the TUI and bulk tasks.
type Searcher interface {
	// Search resolves free-form input (keywords or a resource link) and runs it.
	Search(ctx context.Context, input string, opts SearchOptions) (*results.ResultSet, error)

	// Lookup fetches a single entity by kind and identifier.
	Lookup(ctx context.Context, kind models.EntityType, id string, opts SearchOptions) (*results.ResultSet, error)
}

// SearchOptions are per-call search parameters. The zero value searches tracks with no filters or paging.
//
// Types and Filters apply to keyword searches only; a resource link is always looked up directly.
type SearchOptions struct {
	Types         []models.EntityType
	Filters       []query.Filter
	Market        string
	Limit         *int
	Offset        *int
	ResolveTitles bool // turn track page links into keyword searches on the page title
}

func (o SearchOptions) endpointOptions() endpoint.Options {
	return endpoint.Options{Market: o.Market, Limit: o.Limit, Offset: o.Offset}
}

var _ Searcher = (*Client)(nil)
