package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/shared"
)

// DefaultDomain identifies resource references.
const DefaultDomain = "spotify.com"

// referencePriority is the order entity keywords are tried in when classifying a reference.
var referencePriority = []models.EntityType{
	models.TypeTrack,
	models.TypePlaylist,
	models.TypeAlbum,
	models.TypeArtist,
}

// Normalizer classifies raw input. The zero value is not usable; see [NewNormalizer].
type Normalizer struct {
	domain string
	titles *TitleFetcher
	logger *log.Logger
}

// NewNormalizer creates a Normalizer for the given provider domain (defaults to [DefaultDomain]).
//
// titles may be nil, in which case track references are always looked up directly.
func NewNormalizer(domain string, titles *TitleFetcher, logger *log.Logger) *Normalizer {
	if domain == "" {
		domain = DefaultDomain
	}
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	return &Normalizer{domain: strings.ToLower(domain), titles: titles, logger: logger}
}

// Normalize classifies input without any network access.
//
// Returns [shared.ErrInvalidReference] when a matched entity is not followed by a well-formed identifier and
// [shared.ErrUnsupportedReference] when the domain is present but no entity keyword is in the path.
func (n *Normalizer) Normalize(input string) (Descriptor, error) {
	idx := indexFold(input, n.domain)
	if idx < 0 {
		return NewKeywords(input, nil, nil), nil
	}

	segments := pathSegments(input[idx+len(n.domain):])
	for _, entity := range referencePriority {
		for i, seg := range segments {
			if !strings.EqualFold(seg, string(entity)) {
				continue
			}

			if i+1 >= len(segments) {
				return Descriptor{}, fmt.Errorf("%w: %s reference without an id", shared.ErrInvalidReference, entity)
			}

			d, err := NewLookup(entity, segments[i+1])
			if err != nil {
				return Descriptor{}, err
			}
			return d, nil
		}
	}

	return Descriptor{}, fmt.Errorf("%w: %s", shared.ErrUnsupportedReference, input)
}

// Resolve is [Normalizer.Normalize] with optional title resolution for track references.
//
// When resolveTitles is set and a [TitleFetcher] is configured, a track reference becomes a keyword search for
// the page title. Any fetch failure, including a timeout, is logged and the lookup descriptor is returned.
func (n *Normalizer) Resolve(ctx context.Context, input string, resolveTitles bool) (Descriptor, error) {
	d, err := n.Normalize(input)
	if err != nil || !resolveTitles || n.titles == nil {
		return d, err
	}
	if d.Kind != Lookup || d.EntityType != models.TypeTrack {
		return d, nil
	}

	title, err := n.titles.Fetch(ctx, input)
	switch {
	case err == nil && title != "":
		return NewKeywords(title, nil, nil), nil
	case errors.Is(err, shared.ErrTimeout):
		n.logger.Warn("title resolution timed out, using lookup", "input", input)
	case err != nil:
		n.logger.Warn("title resolution failed, using lookup", "input", input, "error", err)
	default:
		n.logger.Warn("page has no usable title, using lookup", "input", input)
	}
	return d, nil
}

// indexFold is a case-insensitive [strings.Index] whose result is a byte offset into s itself.
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

// pathSegments returns the non-empty path segments of the text following the domain.
func pathSegments(rest string) []string {
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}

	var segments []string
	for _, seg := range strings.Split(rest, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}
