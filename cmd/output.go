package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/results"
)

// writeResults prints a result set as raw JSON or as numbered sections per entity type.
func (r *Runner) writeResults(rs *results.ResultSet, raw, pretty bool) error {
	if raw {
		return r.writeJSON(json.RawMessage(rs.Raw()), pretty)
	}

	printed := 0
	for _, kind := range models.EntityTypes {
		entities := rs.Entities(kind)
		if rs.IsLookup() {
			if kind != rs.LookupKind() {
				continue
			}
		} else if len(entities) == 0 {
			continue
		}

		header := capitalize(kind.Plural())
		if total := rs.Total(kind); total > 0 {
			header = fmt.Sprintf("%s (%d of %d)", header, len(entities), total)
		}
		if printed > 0 {
			r.writePlain("\n")
		}
		r.writePlainHeader(header)
		for i, e := range entities {
			if err := r.writePlain("%2d. %s\n", i+1, describe(e)); err != nil {
				return err
			}
		}
		printed++

		if rs.IsLookup() {
			r.writeLookupTracks(rs)
		}
	}

	if printed == 0 {
		return r.writePlain("No results\n")
	}
	return nil
}

// writeLookupTracks lists the tracks of an album or playlist lookup under the entity itself.
func (r *Runner) writeLookupTracks(rs *results.ResultSet) {
	switch rs.LookupKind() {
	case models.TypeAlbum, models.TypePlaylist:
	default:
		return
	}

	tracks := rs.Tracks()
	r.writePlain("\nTracks: %d • %s\n", len(tracks), models.FormatDuration(models.TotalDuration(tracks)))
	for i, t := range tracks {
		r.writePlain("  %2d. %s - %s [%s]\n", i+1, t.ArtistNames(), t.Name, t.Duration())
	}
}

// describe renders one entity on a single line.
func describe(e models.Entity) string {
	var parts []string
	switch v := e.(type) {
	case models.Track:
		parts = []string{v.ArtistNames() + " - " + v.Name, v.Album.Name, v.Duration()}
	case models.Album:
		parts = []string{models.ArtistNames(v.Artists) + " - " + v.Name, v.ReleaseDate}
	case models.Artist:
		parts = []string{v.Name, strings.Join(v.Genres, ", ")}
	case models.Episode:
		parts = []string{v.Name, v.ReleaseDate, v.Duration()}
	case models.Playlist:
		parts = []string{v.Name, v.Owner.DisplayName}
		if v.TotalTracks > 0 {
			parts = append(parts, fmt.Sprintf("%d tracks", v.TotalTracks))
		}
	default:
		parts = []string{e.Title()}
	}
	parts = append(parts, e.Link())

	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" && p != " - " {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " • ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
