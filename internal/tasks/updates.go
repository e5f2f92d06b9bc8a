package tasks

import (
	"fmt"

	"github.com/desertthunder/spotsearch/internal/formatter"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	FetchDest
	Compare
	FetchInputs
	ExportResults
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case FetchDest:
		return "fetch_dest"
	case Compare:
		return "compare"
	case FetchInputs:
		return "fetch_inputs"
	case ExportResults:
		return "export_results"
	default:
		return ""
	}
}

func fetchSourceUpdate(step, total int, input string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching source tracks (%s)...", input),
	}
}

func fetchDestUpdate(step, total int, input string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDest,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching destination tracks (%s)...", input),
	}
}

func buildDestMapUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Compare,
		Step:    step,
		Total:   total,
		Message: "Building track comparison maps...",
	}
}

func missingTrackUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Compare,
		Step:    step,
		Total:   total,
		Message: "Comparing tracks...",
	}
}

func fetchingInputsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchInputs,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Resolving %d inputs...", total),
	}
}

func foundListUpdate(step, total int, list *formatter.TrackList) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchInputs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Found: %s (%d tracks)", step, total, list.Name, len(list.Tracks)),
		Data:    list,
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportResults,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportResults,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
