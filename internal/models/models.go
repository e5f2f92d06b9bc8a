// package models defines the catalog entity types
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EntityType discriminates the catalog kinds.
type EntityType string

const (
	TypeTrack    EntityType = "track"
	TypeArtist   EntityType = "artist"
	TypeAlbum    EntityType = "album"
	TypeEpisode  EntityType = "episode"
	TypePlaylist EntityType = "playlist"
)

// EntityTypes lists every supported kind in a stable order.
var EntityTypes = []EntityType{TypeTrack, TypeArtist, TypeAlbum, TypeEpisode, TypePlaylist}

// ParseEntityType maps a name like "track" or "Tracks" to its [EntityType].
func ParseEntityType(s string) (EntityType, error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	for _, t := range EntityTypes {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// Plural returns the collection name used by the API for paths and result sections.
func (t EntityType) Plural() string {
	return string(t) + "s"
}

// Entity is implemented by every catalog entity.
type Entity interface {
	Kind() EntityType         // Kind returns the entity discriminant
	Title() string            // Title returns the display name, empty when absent upstream
	Link() string             // Link returns the public web URL, empty when absent upstream
	RawJSON() json.RawMessage // RawJSON returns a copy of the fragment the entity was built from
}

// Base holds the fields every entity shares.
type Base struct {
	Raw  json.RawMessage `json:"-"`
	Type EntityType      `json:"type"`
	Name string          `json:"name"`
	URL  string          `json:"url"`
	ID   string          `json:"id"`
	URI  string          `json:"uri,omitempty"`
}

func (b Base) Kind() EntityType { return b.Type }
func (b Base) Title() string    { return b.Name }
func (b Base) Link() string     { return b.URL }

func (b Base) RawJSON() json.RawMessage {
	if b.Raw == nil {
		return nil
	}
	raw := make(json.RawMessage, len(b.Raw))
	copy(raw, b.Raw)
	return raw
}

// TrackBase adds playback fields shared by [Track] and [Episode].
type TrackBase struct {
	Base
	Explicit   bool `json:"explicit"`
	DurationMS int  `json:"duration_ms"`
}

// Duration returns the formatted playback length.
func (t TrackBase) Duration() string {
	return FormatDuration(t.DurationMS)
}

// Track represents a song with its performing artists and containing album.
type Track struct {
	TrackBase
	Preview          string   `json:"preview_url"`
	Artists          []Artist `json:"artists"`
	Album            Album    `json:"album"`
	AvailableMarkets []string `json:"available_markets,omitempty"`
	DiscNumber       int      `json:"disc_number"`
	TrackNumber      int      `json:"track_number"`
	Popularity       int      `json:"popularity"`
	ISRC             string   `json:"isrc,omitempty"`
}

// ArtistNames joins the track's artist names.
func (t Track) ArtistNames() string {
	return ArtistNames(t.Artists)
}

// Album represents a release.
type Album struct {
	Base
	AlbumType        string   `json:"album_type,omitempty"`
	Images           []Cover  `json:"images"`
	Artists          []Artist `json:"artists"`
	AvailableMarkets []string `json:"available_markets,omitempty"`
	ReleaseDate      string   `json:"release_date"`
	TotalTracks      int      `json:"total_tracks"`
	Label            string   `json:"label,omitempty"`
	Popularity       int      `json:"popularity,omitempty"`
}

// Artist represents a performer. Genres, Popularity, Followers and Images are only
// populated from full artist objects, not from the simplified ones nested in tracks.
type Artist struct {
	Base
	Genres     []string `json:"genres,omitempty"`
	Popularity int      `json:"popularity,omitempty"`
	Followers  int      `json:"followers,omitempty"`
	Images     []Cover  `json:"images,omitempty"`
}

// Episode represents a podcast episode.
type Episode struct {
	TrackBase
	Preview         string   `json:"audio_preview_url"`
	Description     string   `json:"description"`
	HTMLDescription string   `json:"html_description"`
	Images          []Cover  `json:"images"`
	Language        string   `json:"language"`
	Languages       []string `json:"languages"`
	ReleaseDate     string   `json:"release_date"`
}

// Owner is the user a playlist belongs to.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Playlist represents a user-curated track list.
type Playlist struct {
	Base
	Description string  `json:"description"`
	Images      []Cover `json:"images"`
	Tracks      []Track `json:"tracks"`
	Owner       Owner   `json:"owner"`
	Public      bool    `json:"public"`
	TotalTracks int     `json:"total_tracks"`
}

// Cover is an image reference. Width and Height are zero when unknown.
type Cover struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URL    string `json:"url"`
}

// LargestCover returns the cover with the greatest area, preferring the first on ties.
func LargestCover(covers []Cover) (Cover, bool) {
	if len(covers) == 0 {
		return Cover{}, false
	}

	best := covers[0]
	for _, c := range covers[1:] {
		if c.Width*c.Height > best.Width*best.Height {
			best = c
		}
	}
	return best, true
}

// ArtistNames joins artist names with ", ", skipping unnamed entries.
func ArtistNames(artists []Artist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}

var (
	_ Entity = Track{}
	_ Entity = Album{}
	_ Entity = Artist{}
	_ Entity = Episode{}
	_ Entity = Playlist{}
)
