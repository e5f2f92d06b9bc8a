package formatter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/shared"
)

// DefaultDownloadTimeout bounds an asset download when ctx has no deadline of its own.
const DefaultDownloadTimeout = 30 * time.Second

// WriteRawJSON writes a JSON document to path, indented with four spaces.
func WriteRawJSON(path string, raw []byte) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: no JSON to write", shared.ErrMissingArgument)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}
	buf.WriteByte('\n')

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}

// WriteEntityJSON writes the fragment an entity was built from. The entity itself is not touched.
func WriteEntityJSON(path string, e models.Entity) error {
	return WriteRawJSON(path, e.RawJSON())
}

// DownloadAsset streams url to path and returns the number of bytes written.
//
// A nil client uses [http.DefaultClient]. Parent directories are created. A partially written file is removed on
// failure.
func DownloadAsset(ctx context.Context, client *http.Client, url, path string) (int64, error) {
	if url == "" {
		return 0, fmt.Errorf("%w: empty URL provided", shared.ErrMissingArgument)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultDownloadTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &shared.UpstreamError{Endpoint: url, StatusCode: resp.StatusCode}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to read asset data: %w", err)
	}

	return n, nil
}

// CoverURL returns the largest image of an entity, or "" when it has none.
//
// Tracks use their album's images.
func CoverURL(e models.Entity) string {
	var covers []models.Cover
	switch v := e.(type) {
	case models.Track:
		covers = v.Album.Images
	case models.Album:
		covers = v.Images
	case models.Artist:
		covers = v.Images
	case models.Episode:
		covers = v.Images
	case models.Playlist:
		covers = v.Images
	}

	c, _ := models.LargestCover(covers)
	return c.URL
}

// PreviewURL returns the audio preview of a track or episode, or "" when unavailable.
func PreviewURL(e models.Entity) string {
	switch v := e.(type) {
	case models.Track:
		return v.Preview
	case models.Episode:
		return v.Preview
	default:
		return ""
	}
}
