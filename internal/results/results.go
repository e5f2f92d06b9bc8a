// Package results wraps a catalog response and extracts typed entities from it on demand.
//
// Nothing is constructed up front. Each accessor walks only its own section of the payload and returns a
// fresh list, so repeated calls never share values. A section missing from the payload yields an empty list.
//
// Search payloads keep each kind under "<kind>s.items". Lookup payloads are the entity itself; album and
// playlist roots also expose their contained tracks.
package results

import (
	"fmt"

	"github.com/desertthunder/spotsearch/internal/mapper"
	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/shared"
	"github.com/tidwall/gjson"
)

// ResultSet holds one raw response payload.
type ResultSet struct {
	raw    []byte
	root   gjson.Result
	lookup models.EntityType
}

// Materialize wraps a search response.
func Materialize(raw []byte) (*ResultSet, error) {
	root, err := parse(raw)
	if err != nil {
		return nil, err
	}
	return &ResultSet{raw: raw, root: root}, nil
}

// MaterializeLookup wraps a direct lookup response whose root object is an entity of the given kind.
func MaterializeLookup(kind models.EntityType, raw []byte) (*ResultSet, error) {
	kind, err := models.ParseEntityType(string(kind))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	root, err := parse(raw)
	if err != nil {
		return nil, err
	}
	return &ResultSet{raw: raw, root: root, lookup: kind}, nil
}

func parse(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%w: response is not valid JSON", shared.ErrMalformedResponse)
	}

	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: response root is not an object", shared.ErrMalformedResponse)
	}
	return root, nil
}

// IsLookup reports whether the set wraps a direct lookup rather than a search.
func (rs *ResultSet) IsLookup() bool { return rs.lookup != "" }

// LookupKind returns the kind of the looked-up entity, or "" for searches.
func (rs *ResultSet) LookupKind() models.EntityType { return rs.lookup }

// Raw returns a copy of the payload.
func (rs *ResultSet) Raw() []byte {
	raw := make([]byte, len(rs.raw))
	copy(raw, rs.raw)
	return raw
}

// Tracks extracts tracks.
//
// For album lookups each track is given the root album, since the listed tracks carry none of their own.
func (rs *ResultSet) Tracks() []models.Track {
	switch rs.lookup {
	case "":
		items := section(rs.root, models.TypeTrack)
		tracks := make([]models.Track, 0, len(items))
		for _, item := range items {
			tracks = append(tracks, mapper.Track(item))
		}
		return tracks
	case models.TypeTrack:
		return []models.Track{mapper.Track(rs.root)}
	case models.TypeAlbum:
		items := objects(rs.root.Get("tracks.items"))
		tracks := make([]models.Track, 0, len(items))
		for _, item := range items {
			tracks = append(tracks, mapper.TrackWithAlbum(item, mapper.Album(rs.root)))
		}
		return tracks
	case models.TypePlaylist:
		return mapper.PlaylistTracks(rs.root.Get("tracks.items"))
	default:
		return []models.Track{}
	}
}

// Artists extracts artists. Track and album lookups yield the root's credited artists.
func (rs *ResultSet) Artists() []models.Artist {
	switch rs.lookup {
	case "":
		items := section(rs.root, models.TypeArtist)
		artists := make([]models.Artist, 0, len(items))
		for _, item := range items {
			artists = append(artists, mapper.Artist(item))
		}
		return artists
	case models.TypeArtist:
		return []models.Artist{mapper.Artist(rs.root)}
	case models.TypeTrack, models.TypeAlbum:
		return mapper.Artists(rs.root.Get("artists"))
	default:
		return []models.Artist{}
	}
}

// Albums extracts albums from the albums section of a search, or the root of an album lookup.
//
// Albums embedded in track hits are not included; see [ResultSet.TrackAlbums].
func (rs *ResultSet) Albums() []models.Album {
	switch rs.lookup {
	case "":
		items := section(rs.root, models.TypeAlbum)
		albums := make([]models.Album, 0, len(items))
		for _, item := range items {
			albums = append(albums, mapper.Album(item))
		}
		return albums
	case models.TypeAlbum:
		return []models.Album{mapper.Album(rs.root)}
	default:
		return []models.Album{}
	}
}

// TrackAlbums returns the album of each extracted track, in track order and without deduplication.
func (rs *ResultSet) TrackAlbums() []models.Album {
	tracks := rs.Tracks()
	albums := make([]models.Album, 0, len(tracks))
	for _, t := range tracks {
		albums = append(albums, t.Album)
	}
	return albums
}

// Episodes extracts podcast episodes.
func (rs *ResultSet) Episodes() []models.Episode {
	switch rs.lookup {
	case "":
		items := section(rs.root, models.TypeEpisode)
		episodes := make([]models.Episode, 0, len(items))
		for _, item := range items {
			episodes = append(episodes, mapper.Episode(item))
		}
		return episodes
	case models.TypeEpisode:
		return []models.Episode{mapper.Episode(rs.root)}
	default:
		return []models.Episode{}
	}
}

// Playlists extracts playlists.
func (rs *ResultSet) Playlists() []models.Playlist {
	switch rs.lookup {
	case "":
		items := section(rs.root, models.TypePlaylist)
		playlists := make([]models.Playlist, 0, len(items))
		for _, item := range items {
			playlists = append(playlists, mapper.Playlist(item))
		}
		return playlists
	case models.TypePlaylist:
		return []models.Playlist{mapper.Playlist(rs.root)}
	default:
		return []models.Playlist{}
	}
}

// Entities returns the extracted entities of one kind behind the [models.Entity] interface.
func (rs *ResultSet) Entities(kind models.EntityType) []models.Entity {
	var out []models.Entity
	switch kind {
	case models.TypeTrack:
		for _, e := range rs.Tracks() {
			out = append(out, e)
		}
	case models.TypeArtist:
		for _, e := range rs.Artists() {
			out = append(out, e)
		}
	case models.TypeAlbum:
		for _, e := range rs.Albums() {
			out = append(out, e)
		}
	case models.TypeEpisode:
		for _, e := range rs.Episodes() {
			out = append(out, e)
		}
	case models.TypePlaylist:
		for _, e := range rs.Playlists() {
			out = append(out, e)
		}
	}
	return out
}

// Total returns the upstream match count for a search section, or 0 when absent.
func (rs *ResultSet) Total(kind models.EntityType) int {
	return int(rs.root.Get(kind.Plural() + ".total").Int())
}

// Next returns the URL of the next page for a search section, or "" when there is none.
func (rs *ResultSet) Next(kind models.EntityType) string {
	next := rs.root.Get(kind.Plural() + ".next")
	if next.Type != gjson.String {
		return ""
	}
	return next.Str
}

func section(root gjson.Result, kind models.EntityType) []gjson.Result {
	return objects(root.Get(kind.Plural() + ".items"))
}

// objects keeps the object elements of an array; null placeholders are dropped.
func objects(r gjson.Result) []gjson.Result {
	if !r.IsArray() {
		return nil
	}

	var out []gjson.Result
	r.ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() {
			out = append(out, v)
		}
		return true
	})
	return out
}
