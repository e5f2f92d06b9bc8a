package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/results"
)

var (
	_ list.Item = entityItem{}
)

// entityItem wraps [models.Entity] to implement [list.Item].
type entityItem struct {
	entity models.Entity
}

func (i entityItem) FilterValue() string { return i.entity.Title() }
func (i entityItem) Title() string       { return i.entity.Title() }
func (i entityItem) Description() string {
	parts := []string{kindLabel(i.entity.Kind())}

	switch e := i.entity.(type) {
	case models.Track:
		parts = append(parts, e.ArtistNames(), e.Album.Name, e.Duration())
	case models.Album:
		parts = append(parts, models.ArtistNames(e.Artists), e.ReleaseDate)
		if e.TotalTracks > 0 {
			parts = append(parts, fmt.Sprintf("%d tracks", e.TotalTracks))
		}
	case models.Artist:
		parts = append(parts, strings.Join(e.Genres, ", "))
		if e.Followers > 0 {
			parts = append(parts, fmt.Sprintf("%d followers", e.Followers))
		}
	case models.Episode:
		parts = append(parts, e.ReleaseDate, e.Duration())
	case models.Playlist:
		parts = append(parts, e.Owner.DisplayName)
		if e.TotalTracks > 0 {
			parts = append(parts, fmt.Sprintf("%d tracks", e.TotalTracks))
		}
	}

	return joinNonEmpty(parts, " • ")
}

func kindLabel(k models.EntityType) string {
	if k == "" {
		return "Item"
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

func joinNonEmpty(parts []string, sep string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// itemsFrom lists the browsable entities of a result set.
//
// Album and playlist lookups list their tracks; everything else lists each section in catalog order.
func itemsFrom(rs *results.ResultSet) []list.Item {
	var items []list.Item
	switch rs.LookupKind() {
	case models.TypeAlbum, models.TypePlaylist:
		for _, t := range rs.Tracks() {
			items = append(items, entityItem{entity: t})
		}
		return items
	}

	for _, kind := range models.EntityTypes {
		if rs.IsLookup() && kind != rs.LookupKind() {
			continue
		}
		for _, e := range rs.Entities(kind) {
			items = append(items, entityItem{entity: e})
		}
	}
	return items
}
