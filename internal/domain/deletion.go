package domain

import "context"

// DeletionProgress is emitted after each successful delete of a group deletion.
type DeletionProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// NewDeletionProgress computes Percent as completed/total rounded to the nearest integer.
// An empty deletion is reported as complete.
func NewDeletionProgress(completed, total int) DeletionProgress {
	percent := 100
	if total > 0 {
		percent = (completed*200 + total) / (2 * total)
	}
	return DeletionProgress{Completed: completed, Total: total, Percent: percent}
}

// ProgressFunc receives deletion progress. It may be nil.
type ProgressFunc func(DeletionProgress)

// FailedDeletion records one id that could not be deleted.
type FailedDeletion struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

// SelectionResult aggregates a multi-select deletion.
type SelectionResult struct {
	Succeeded int              `json:"succeeded"`
	Total     int              `json:"total"`
	Failed    []FailedDeletion `json:"failed,omitempty"`
}

// Complete reports whether every requested id was deleted.
func (r SelectionResult) Complete() bool { return r.Succeeded == r.Total }

// Partial reports whether some but not all ids were deleted.
func (r SelectionResult) Partial() bool { return r.Succeeded > 0 && r.Succeeded < r.Total }

// DeletionService runs the bulk deletion workflows.
type DeletionService interface {
	DeleteGroup(ctx context.Context, groupID int64, onProgress ProgressFunc) error
	DeleteGroupEntries(ctx context.Context, entries []ScheduleEntry, onProgress ProgressFunc) error
	DeleteSelected(ctx context.Context, ids []int64) SelectionResult
}
