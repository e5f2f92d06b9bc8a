// Package mapper builds [models] entities from catalog JSON fragments.
//
// Every field is read defensively with gjson: a missing key and an explicit null both yield the zero value
// ("" / 0 / false / empty list), and a value of the wrong JSON type is treated as missing. Nested objects are
// constructed recursively and every call produces fresh values, so two entities never share a slice.
package mapper

import (
	"fmt"

	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/shared"
	"github.com/tidwall/gjson"
)

// Construct builds the entity of the given kind from a JSON object fragment.
//
// Returns [shared.ErrMalformedResponse] when the fragment is not a JSON object and
// [shared.ErrInvalidArgument] for an unknown kind.
func Construct(kind models.EntityType, fragment []byte) (models.Entity, error) {
	if !gjson.ValidBytes(fragment) {
		return nil, fmt.Errorf("%w: %s fragment is not valid JSON", shared.ErrMalformedResponse, kind)
	}

	r := gjson.ParseBytes(fragment)
	if !r.IsObject() {
		return nil, fmt.Errorf("%w: %s fragment is not an object", shared.ErrMalformedResponse, kind)
	}

	switch kind {
	case models.TypeTrack:
		return Track(r), nil
	case models.TypeAlbum:
		return Album(r), nil
	case models.TypeArtist:
		return Artist(r), nil
	case models.TypeEpisode:
		return Episode(r), nil
	case models.TypePlaylist:
		return Playlist(r), nil
	default:
		return nil, fmt.Errorf("%w: unknown entity kind %q", shared.ErrInvalidArgument, kind)
	}
}

// Track builds a [models.Track] along with its artists and album.
func Track(r gjson.Result) models.Track {
	return TrackWithAlbum(r, Album(r.Get("album")))
}

// TrackWithAlbum builds a [models.Track] whose album is supplied by the caller.
//
// Album lookups list simplified tracks without an embedded album; the root album is attached instead.
func TrackWithAlbum(r gjson.Result, album models.Album) models.Track {
	return models.Track{
		TrackBase:        trackBase(r, models.TypeTrack),
		Preview:          str(r.Get("preview_url")),
		Artists:          Artists(r.Get("artists")),
		Album:            album,
		AvailableMarkets: strs(r.Get("available_markets")),
		DiscNumber:       num(r.Get("disc_number")),
		TrackNumber:      num(r.Get("track_number")),
		Popularity:       num(r.Get("popularity")),
		ISRC:             str(r.Get("external_ids.isrc")),
	}
}

// Album builds a [models.Album]. A missing fragment yields an album with empty fields.
func Album(r gjson.Result) models.Album {
	return models.Album{
		Base:             base(r, models.TypeAlbum),
		AlbumType:        str(r.Get("album_type")),
		Images:           Covers(r.Get("images")),
		Artists:          Artists(r.Get("artists")),
		AvailableMarkets: strs(r.Get("available_markets")),
		ReleaseDate:      str(r.Get("release_date")),
		TotalTracks:      num(r.Get("total_tracks")),
		Label:            str(r.Get("label")),
		Popularity:       num(r.Get("popularity")),
	}
}

// Artist builds a [models.Artist].
func Artist(r gjson.Result) models.Artist {
	return models.Artist{
		Base:       base(r, models.TypeArtist),
		Genres:     strs(r.Get("genres")),
		Popularity: num(r.Get("popularity")),
		Followers:  num(r.Get("followers.total")),
		Images:     Covers(r.Get("images")),
	}
}

// Artists builds one [models.Artist] per object in an array.
func Artists(r gjson.Result) []models.Artist {
	list := objects(r)
	artists := make([]models.Artist, 0, len(list))
	for _, a := range list {
		artists = append(artists, Artist(a))
	}
	return artists
}

// Episode builds a [models.Episode].
func Episode(r gjson.Result) models.Episode {
	return models.Episode{
		TrackBase:       trackBase(r, models.TypeEpisode),
		Preview:         str(r.Get("audio_preview_url")),
		Description:     str(r.Get("description")),
		HTMLDescription: str(r.Get("html_description")),
		Images:          Covers(r.Get("images")),
		Language:        str(r.Get("language")),
		Languages:       strs(r.Get("languages")),
		ReleaseDate:     str(r.Get("release_date")),
	}
}

// Playlist builds a [models.Playlist], including its tracks when the fragment lists them.
//
// Search results only carry a track count; full playlist objects carry tracks.items.
func Playlist(r gjson.Result) models.Playlist {
	return models.Playlist{
		Base:        base(r, models.TypePlaylist),
		Description: str(r.Get("description")),
		Images:      Covers(r.Get("images")),
		Tracks:      PlaylistTracks(r.Get("tracks.items")),
		Owner: models.Owner{
			ID:          str(r.Get("owner.id")),
			DisplayName: str(r.Get("owner.display_name")),
		},
		Public:      r.Get("public").Type == gjson.True,
		TotalTracks: num(r.Get("tracks.total")),
	}
}

// PlaylistTracks builds tracks from playlist items.
//
// Items normally wrap the track under a "track" key; an item without that key is treated as the track itself.
// Items whose track is null (removed from the catalog) are skipped.
func PlaylistTracks(r gjson.Result) []models.Track {
	items := objects(r)
	tracks := make([]models.Track, 0, len(items))
	for _, item := range items {
		inner := item.Get("track")
		switch {
		case !inner.Exists():
			tracks = append(tracks, Track(item))
		case inner.IsObject():
			tracks = append(tracks, Track(inner))
		}
	}
	return tracks
}

// Covers builds the image list of an entity.
func Covers(r gjson.Result) []models.Cover {
	list := objects(r)
	covers := make([]models.Cover, 0, len(list))
	for _, c := range list {
		covers = append(covers, models.Cover{
			Width:  num(c.Get("width")),
			Height: num(c.Get("height")),
			URL:    str(c.Get("url")),
		})
	}
	return covers
}

func base(r gjson.Result, kind models.EntityType) models.Base {
	var raw []byte
	if r.Exists() && r.Type != gjson.Null {
		raw = []byte(r.Raw)
	}

	return models.Base{
		Raw:  raw,
		Type: kind,
		Name: str(r.Get("name")),
		URL:  str(r.Get("external_urls.spotify")),
		ID:   str(r.Get("id")),
		URI:  str(r.Get("uri")),
	}
}

func trackBase(r gjson.Result, kind models.EntityType) models.TrackBase {
	return models.TrackBase{
		Base:       base(r, kind),
		Explicit:   r.Get("explicit").Type == gjson.True,
		DurationMS: max(num(r.Get("duration_ms")), 0),
	}
}

func str(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}

func num(r gjson.Result) int {
	if r.Type != gjson.Number {
		return 0
	}
	return int(r.Int())
}

// strs returns nil when the key is absent so callers can tell "unknown" from "none".
func strs(r gjson.Result) []string {
	if !r.IsArray() {
		return nil
	}

	values := []string{}
	for _, v := range r.Array() {
		if v.Type == gjson.String {
			values = append(values, v.Str)
		}
	}
	return values
}

func objects(r gjson.Result) []gjson.Result {
	if !r.IsArray() {
		return nil
	}

	var out []gjson.Result
	for _, v := range r.Array() {
		if v.IsObject() {
			out = append(out, v)
		}
	}
	return out
}
