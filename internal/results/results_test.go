package results

import (
	"errors"
	"testing"

	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/shared"
	th "github.com/desertthunder/spotsearch/internal/testing"
)

func TestMaterialize(t *testing.T) {
	t.Run("track search", func(t *testing.T) {
		rs, err := Materialize(th.Fixture(t, "search_tracks.json"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tracks := rs.Tracks()
		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(tracks))
		}

		if tracks[0].Name != "Uprising" || tracks[0].Album.Name != "The Resistance" {
			t.Errorf("unexpected first track: %+v", tracks[0])
		}
		if tracks[1].Preview != "" || tracks[1].Popularity != 0 {
			t.Errorf("expected null fields to be zero: %+v", tracks[1])
		}
		if tracks[1].Duration() != "1:02:05" {
			t.Errorf("unexpected duration %s", tracks[1].Duration())
		}
		if tracks[1].ArtistNames() != "Muse, Queen" {
			t.Errorf("unexpected artists %q", tracks[1].ArtistNames())
		}

		if rs.IsLookup() {
			t.Error("search result should not be a lookup")
		}
		if rs.Total(models.TypeTrack) != 2 || rs.Next(models.TypeTrack) != "" {
			t.Errorf("unexpected paging: total=%d next=%q", rs.Total(models.TypeTrack), rs.Next(models.TypeTrack))
		}
	})

	t.Run("missing albums key yields empty list", func(t *testing.T) {
		rs, err := Materialize(th.Fixture(t, "search_tracks.json"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		albums := rs.Albums()
		if albums == nil || len(albums) != 0 {
			t.Errorf("expected empty album list, got %v", albums)
		}
		if len(rs.Artists()) != 0 || len(rs.Episodes()) != 0 || len(rs.Playlists()) != 0 {
			t.Error("expected empty lists for absent sections")
		}
	})

	t.Run("track albums", func(t *testing.T) {
		rs, _ := Materialize(th.Fixture(t, "search_tracks.json"))
		albums := rs.TrackAlbums()
		if len(albums) != 2 || albums[1].Name != "Uprising (Live)" {
			t.Errorf("unexpected track albums: %+v", albums)
		}
	})

	t.Run("mixed search", func(t *testing.T) {
		rs, err := Materialize(th.Fixture(t, "search_mixed.json"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if artists := rs.Artists(); len(artists) != 1 || artists[0].Followers != 8123456 {
			t.Errorf("unexpected artists: %+v", artists)
		}
		if albums := rs.Albums(); len(albums) != 1 {
			t.Errorf("expected null album item to be skipped, got %d", len(albums))
		}
		if episodes := rs.Episodes(); len(episodes) != 1 || episodes[0].Duration() != "30:00" {
			t.Errorf("unexpected episodes: %+v", episodes)
		}
		if playlists := rs.Playlists(); len(playlists) != 1 || playlists[0].TotalTracks != 50 || len(playlists[0].Tracks) != 0 {
			t.Errorf("unexpected playlists: %+v", playlists)
		}
		if len(rs.Tracks()) != 0 {
			t.Error("expected no tracks")
		}
		if got := len(rs.Entities(models.TypeArtist)); got != 1 {
			t.Errorf("expected 1 artist entity, got %d", got)
		}
	})

	t.Run("fresh lists per call", func(t *testing.T) {
		rs, _ := Materialize(th.Fixture(t, "search_tracks.json"))
		first := rs.Tracks()
		first[0].Name = "changed"
		if rs.Tracks()[0].Name != "Uprising" {
			t.Error("extraction must not return shared values")
		}
	})

	t.Run("malformed", func(t *testing.T) {
		for _, raw := range []string{`not json`, `[]`, `"tracks"`} {
			if _, err := Materialize([]byte(raw)); !errors.Is(err, shared.ErrMalformedResponse) {
				t.Errorf("Materialize(%q) expected ErrMalformedResponse, got %v", raw, err)
			}
		}
	})
}

func TestMaterializeLookup(t *testing.T) {
	t.Run("track", func(t *testing.T) {
		rs, err := MaterializeLookup(models.TypeTrack, th.Fixture(t, "track.json"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tracks := rs.Tracks()
		if len(tracks) != 1 || tracks[0].ID != "XYZ" {
			t.Fatalf("unexpected tracks: %+v", tracks)
		}
		if !rs.IsLookup() || rs.LookupKind() != models.TypeTrack {
			t.Error("expected a track lookup")
		}
		if artists := rs.Artists(); len(artists) != 1 || artists[0].Name != "Muse" {
			t.Errorf("unexpected artists: %+v", artists)
		}
		if len(rs.Albums()) != 0 {
			t.Error("track lookup should not yield albums")
		}
	})

	t.Run("album tracks receive the root album", func(t *testing.T) {
		rs, err := MaterializeLookup(models.TypeAlbum, th.Fixture(t, "album.json"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tracks := rs.Tracks()
		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(tracks))
		}
		for _, track := range tracks {
			if track.Album.ID != "0eFHYz8NmK75zSplL5qlfM" {
				t.Errorf("expected root album on %s, got %q", track.Name, track.Album.ID)
			}
		}

		tracks[0].Album.Images[0].URL = "changed"
		if tracks[1].Album.Images[0].URL == "changed" {
			t.Error("tracks must not share album covers")
		}

		if models.FormatDuration(models.TotalDuration(tracks)) != "8:52" {
			t.Errorf("unexpected total duration %s", models.FormatDuration(models.TotalDuration(tracks)))
		}

		albums := rs.Albums()
		if len(albums) != 1 || albums[0].Label != "Warner Records" {
			t.Errorf("unexpected albums: %+v", albums)
		}
	})

	t.Run("playlist tracks", func(t *testing.T) {
		rs, err := MaterializeLookup(models.TypePlaylist, th.Fixture(t, "playlist.json"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if tracks := rs.Tracks(); len(tracks) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(tracks))
		}
		if playlists := rs.Playlists(); len(playlists) != 1 || playlists[0].Name != "Drive" {
			t.Errorf("unexpected playlists: %+v", playlists)
		}
	})

	t.Run("artist", func(t *testing.T) {
		rs, err := MaterializeLookup(models.TypeArtist, th.Fixture(t, "artist.json"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if artists := rs.Artists(); len(artists) != 1 || artists[0].Name != "Muse" {
			t.Errorf("unexpected artists: %+v", artists)
		}
		if len(rs.Tracks()) != 0 {
			t.Error("artist lookup should not yield tracks")
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		if _, err := MaterializeLookup("show", []byte(`{}`)); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
