package formatter

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/spotsearch/internal/shared"
)

// ExportRecord describes the outcome of exporting one input.
type ExportRecord struct {
	Input   string
	Name    string
	Success bool
	Files   []string
	Error   error
}

type manifestEntry struct {
	Input  string   `json:"input"`
	Name   string   `json:"name,omitempty"`
	Status string   `json:"status"`
	Files  []string `json:"files,omitempty"`
	Error  string   `json:"error,omitempty"`
}

type manifest struct {
	Format            string          `json:"format"`
	CreatedAt         string          `json:"created_at"`
	TotalInputs       int             `json:"total_inputs"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Results           []manifestEntry `json:"results"`
}

// WriteBulkExportManifest writes a JSON summary of a bulk export to path.
func WriteBulkExportManifest(records []ExportRecord, format, path string) error {
	m := manifest{
		Format:      format,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		TotalInputs: len(records),
		Results:     make([]manifestEntry, 0, len(records)),
	}

	for _, r := range records {
		entry := manifestEntry{Input: r.Input, Name: r.Name, Files: r.Files, Status: "success"}
		if r.Success {
			m.SuccessfulExports++
		} else {
			m.FailedExports++
			entry.Status = "failed"
			if r.Error != nil {
				entry.Error = r.Error.Error()
			}
		}
		m.Results = append(m.Results, entry)
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
