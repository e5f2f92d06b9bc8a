// package formatter provides functions to export track lists to various formats (CSV, Markdown, plain text, raw JSON)
// and to download cover images and audio previews
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/results"
	"github.com/desertthunder/spotsearch/internal/shared"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// TrackList is a titled list of tracks: an album, a playlist, or the track hits of a search.
type TrackList struct {
	ID          string            `json:"id"`
	Kind        models.EntityType `json:"kind,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	URL         string            `json:"url,omitempty"`
	CoverURL    string            `json:"cover_url,omitempty"`
	Tracks      []models.Track    `json:"tracks"`
}

// FromResults builds a TrackList from a result set. label names search results and is their fallback ID.
func FromResults(rs *results.ResultSet, label string) TrackList {
	list := TrackList{ID: SafeName(label), Name: label, Tracks: rs.Tracks()}

	switch rs.LookupKind() {
	case models.TypePlaylist:
		if p := rs.Playlists(); len(p) > 0 {
			list.ID, list.Kind, list.Name, list.URL = p[0].ID, models.TypePlaylist, p[0].Name, p[0].URL
			list.Description = p[0].Description
			if c, ok := models.LargestCover(p[0].Images); ok {
				list.CoverURL = c.URL
			}
		}
	case models.TypeAlbum:
		if a := rs.Albums(); len(a) > 0 {
			list.ID, list.Kind, list.Name, list.URL = a[0].ID, models.TypeAlbum, a[0].Name, a[0].URL
			list.Description = strings.TrimSpace(models.ArtistNames(a[0].Artists) + " " + a[0].ReleaseDate)
			if c, ok := models.LargestCover(a[0].Images); ok {
				list.CoverURL = c.URL
			}
		}
	case models.TypeTrack:
		if len(list.Tracks) > 0 {
			t := list.Tracks[0]
			list.ID, list.Kind, list.Name, list.URL = t.ID, models.TypeTrack, t.Name, t.URL
			if c, ok := models.LargestCover(t.Album.Images); ok {
				list.CoverURL = c.URL
			}
		}
	}

	if list.ID == "" {
		list.ID = "results"
	}
	return list
}

// SafeName reduces s to a file-name friendly token.
func SafeName(s string) string {
	name := strings.Trim(unsafeName.ReplaceAllString(s, "_"), "_")
	if len(name) > 64 {
		name = name[:64]
	}
	return name
}

// ExportToCSV converts a TrackList to CSV format with columns: ID, Title, Artist, Album, Duration, ISRC, URL
func ExportToCSV(list TrackList) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration", "ISRC", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range list.Tracks {
		record := []string{
			track.ID,
			track.Name,
			track.ArtistNames(),
			track.Album.Name,
			strconv.Itoa(track.DurationMS / 1000),
			track.ISRC,
			track.URL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a TrackList to Markdown format with optional cover image
func ExportToMarkdown(list TrackList, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", list.Name)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if list.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", list.Description)
	}

	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(list.Tracks))
	fmt.Fprintf(&buf, "**Duration**: %s\n", models.FormatDuration(models.TotalDuration(list.Tracks)))
	if list.URL != "" {
		fmt.Fprintf(&buf, "**Link**: %s\n", list.URL)
	}
	buf.WriteString("\n## Tracks\n\n")

	for i, track := range list.Tracks {
		albumPart := ""
		if track.Album.Name != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album.Name)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, track.ArtistNames(), track.Name, albumPart, track.Duration())
	}

	return buf.Bytes(), nil
}

// ExportToText converts a TrackList to plain text format
func ExportToText(list TrackList) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", list.Name)
	if list.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", list.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(list.Tracks))

	for i, track := range list.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s (%s)\n", i+1, track.ArtistNames(), track.Name, track.Duration())
	}

	return buf.Bytes(), nil
}

type listMetadata struct {
	ID         string            `json:"id"`
	Kind       models.EntityType `json:"kind,omitempty"`
	Name       string            `json:"name"`
	URL        string            `json:"url,omitempty"`
	TrackCount int               `json:"track_count"`
	Duration   string            `json:"duration"`
}

// ToMetadataJSON generates a JSON representation of list metadata (without tracks)
func ToMetadataJSON(list TrackList) ([]byte, error) {
	return shared.MarshalJSON(listMetadata{
		ID:         list.ID,
		Kind:       list.Kind,
		Name:       list.Name,
		URL:        list.URL,
		TrackCount: len(list.Tracks),
		Duration:   models.FormatDuration(models.TotalDuration(list.Tracks)),
	}, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a list to CSV format with accompanying metadata JSON file.
//
// Defaults to the list ID as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(list TrackList, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = list.ID
	}

	csvData, err := ExportToCSV(list)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(list)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a list to Markdown format in a dedicated directory.
//
// Directory name defaults to the list ID. When coverPath is set it is linked as the cover image; it should
// already exist inside outputDir.
// Creates a directory structure: {dir}/README.md
func WriteMarkdownExport(list TrackList, outputDir string, coverPath string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = list.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if coverPath != "" {
		coverImageFilename = filepath.Base(coverPath)
		result.CoverImage = coverPath
		result.Files = append(result.Files, coverPath)
	}

	mdData, err := ExportToMarkdown(list, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a list to plain text format.
//
// Defaults to {list.ID}_tracks.txt as the filename.
func WriteTextExport(list TrackList, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_tracks.txt", list.ID)
	}

	textData, err := ExportToText(list)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}
