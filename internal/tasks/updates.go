package tasks

import (
	"fmt"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/resolve"
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
	FetchDetail Phase = iota
	FetchDiff
	FetchRevisions
	FetchHistory
	ExportCorrection
)

func (p Phase) String() string {
	switch p {
	case FetchDetail:
		return "fetch_detail"
	case FetchDiff:
		return "fetch_diff"
	case FetchRevisions:
		return "fetch_revisions"
	case FetchHistory:
		return "fetch_history"
	case ExportCorrection:
		return "export_correction"
	default:
		return ""
	}
}

// pageSteps is the number of requests a full page load issues.
const pageSteps = 4

func fetchDetailUpdate(id int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDetail,
		Step:    1,
		Total:   pageSteps,
		Message: fmt.Sprintf("Fetching correction #%d...", id),
	}
}

func fetchDiffUpdate(step int, q resolve.DiffQuery, diff *models.CorrectionDiff) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDiff,
		Step:    step,
		Total:   pageSteps,
		Message: fmt.Sprintf("Fetched %s", q),
		Data:    diff,
	}
}

func fetchRevisionsUpdate(step, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRevisions,
		Step:    step,
		Total:   pageSteps,
		Message: fmt.Sprintf("Fetched %d revisions", count),
	}
}

func fetchHistoryUpdate(step int, c *models.Correction, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchHistory,
		Step:    step,
		Total:   pageSteps,
		Message: fmt.Sprintf("Fetched %d corrections for %s #%d", count, c.EntityType.Label(), c.EntityID),
	}
}

func fetchFailedUpdate(phase Phase, step int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   pageSteps,
		Message: fmt.Sprintf("✗ %s: %v", phase, err),
	}
}

func exportingCorrectionUpdate(step, total, id int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCorrection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting correction #%d...", step, total, id),
	}
}

func exportCompletedUpdate(step, total int, res CorrectionExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCorrection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ #%d (%s)", step, total, res.CorrectionID, res.File),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, res CorrectionExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCorrection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ #%d: %v", step, total, res.CorrectionID, res.Error),
		Data:    res,
	}
}
