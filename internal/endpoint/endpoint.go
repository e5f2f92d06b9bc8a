// package endpoint builds request targets relative to the API base URL from query descriptors
package endpoint

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/query"
	"github.com/desertthunder/spotsearch/internal/shared"
)

// DefaultTypes is used when a keyword descriptor names no entity types.
var DefaultTypes = []models.EntityType{models.TypeTrack}

// Options are optional search parameters. Nil pointers and an empty Market are not emitted.
type Options struct {
	Market string
	Limit  *int
	Offset *int
}

// Int returns a pointer to v, for filling [Options].
func Int(v int) *int { return &v }

// Validate rejects negative pagination values.
func (o Options) Validate() error {
	if o.Limit != nil && *o.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative, got %d", shared.ErrInvalidArgument, *o.Limit)
	}
	if o.Offset != nil && *o.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative, got %d", shared.ErrInvalidArgument, *o.Offset)
	}
	return nil
}

// Target is a request location relative to the API base URL.
type Target struct {
	Path  string
	Query string
}

// String renders the target as "path" or "path?query". Equal targets render equal strings.
func (t Target) String() string {
	if t.Query == "" {
		return t.Path
	}
	return t.Path + "?" + t.Query
}

// Build creates the request target for a descriptor.
//
// Lookups map to "{type}s/{id}". Keyword searches map to "search?q=...&type=...[&market=][&limit=][&offset=]"
// with parameters always emitted in that order.
func Build(d query.Descriptor, opts Options) (Target, error) {
	if err := d.Validate(); err != nil {
		return Target{}, err
	}
	if err := opts.Validate(); err != nil {
		return Target{}, err
	}

	if d.Kind == query.Lookup {
		return Target{Path: d.EntityType.Plural() + "/" + url.PathEscape(d.EntityID)}, nil
	}

	types := d.EntityTypes
	if len(types) == 0 {
		types = DefaultTypes
	}

	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}

	params := []string{
		"q=" + strings.Join(Terms(d), "%20"),
		"type=" + strings.Join(names, ","),
	}
	if opts.Market != "" {
		params = append(params, "market="+escape(opts.Market))
	}
	if opts.Limit != nil {
		params = append(params, "limit="+strconv.Itoa(*opts.Limit))
	}
	if opts.Offset != nil {
		params = append(params, "offset="+strconv.Itoa(*opts.Offset))
	}

	return Target{Path: "search", Query: strings.Join(params, "&")}, nil
}

// Terms returns the escaped search terms of a keyword descriptor: the whitespace-separated words of its text
// followed by one name:value term per filter with a non-empty value.
func Terms(d query.Descriptor) []string {
	words := strings.Fields(d.Text)
	terms := make([]string, 0, len(words)+len(d.Filters))
	for _, w := range words {
		terms = append(terms, escape(w))
	}
	for _, f := range d.Filters {
		if f.Value == "" {
			continue
		}
		terms = append(terms, escape(f.Name)+":"+escape(f.Value))
	}
	return terms
}

// escape is query escaping with spaces as %20 rather than +.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
