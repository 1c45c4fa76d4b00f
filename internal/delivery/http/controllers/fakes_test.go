package controllers

import (
	"context"
	"io"
	"log/slog"

	"timetableadmin/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeScheduleService implements domain.ScheduleService for handler tests.
type fakeScheduleService struct {
	validateResult domain.ValidationResult
	validateErr    error
	assignResult   []domain.ScheduleEntry
	assignErr      error
	updateErr      error
	deleteErr      error
	listResult     []domain.ScheduleEntry
	listErr        error

	lastCandidate domain.ScheduleEntry
	lastAssign    domain.AssignmentRequest
	lastUpdate    *domain.ScheduleEntry
	lastDeleteID  int64
	lastFilter    domain.ScheduleFilter
}

func (f *fakeScheduleService) Validate(ctx context.Context, candidate domain.ScheduleEntry) (domain.ValidationResult, error) {
	f.lastCandidate = candidate
	return f.validateResult, f.validateErr
}

func (f *fakeScheduleService) Assign(ctx context.Context, req domain.AssignmentRequest) ([]domain.ScheduleEntry, error) {
	f.lastAssign = req
	return f.assignResult, f.assignErr
}

func (f *fakeScheduleService) Update(ctx context.Context, entry *domain.ScheduleEntry) error {
	f.lastUpdate = entry
	return f.updateErr
}

func (f *fakeScheduleService) Delete(ctx context.Context, id int64) error {
	f.lastDeleteID = id
	return f.deleteErr
}

func (f *fakeScheduleService) List(ctx context.Context, filter domain.ScheduleFilter) ([]domain.ScheduleEntry, error) {
	f.lastFilter = filter
	return f.listResult, f.listErr
}

// fakeDeletionService implements domain.DeletionService. DeleteGroup replays progress
// and then returns groupErr.
type fakeDeletionService struct {
	progress        []domain.DeletionProgress
	groupErr        error
	selectionResult domain.SelectionResult

	lastGroupID int64
	lastIDs     []int64
}

func (f *fakeDeletionService) DeleteGroup(ctx context.Context, groupID int64, onProgress domain.ProgressFunc) error {
	f.lastGroupID = groupID
	for _, p := range f.progress {
		onProgress(p)
	}
	return f.groupErr
}

func (f *fakeDeletionService) DeleteGroupEntries(ctx context.Context, entries []domain.ScheduleEntry, onProgress domain.ProgressFunc) error {
	return f.groupErr
}

func (f *fakeDeletionService) DeleteSelected(ctx context.Context, ids []int64) domain.SelectionResult {
	f.lastIDs = ids
	return f.selectionResult
}

// fakeMergedSessionService implements domain.MergedSessionService.
type fakeMergedSessionService struct {
	createErr  error
	updateErr  error
	deleteErr  error
	listResult []domain.MergedSessionDisplay
	listErr    error

	lastCreate   *domain.MergedSessionRecord
	lastUpdate   *domain.MergedSessionRecord
	lastDeleteID int64
}

func (f *fakeMergedSessionService) Create(ctx context.Context, record *domain.MergedSessionRecord) error {
	f.lastCreate = record
	if f.createErr != nil {
		return f.createErr
	}
	record.ID = 77
	return nil
}

func (f *fakeMergedSessionService) Update(ctx context.Context, record *domain.MergedSessionRecord) error {
	f.lastUpdate = record
	return f.updateErr
}

func (f *fakeMergedSessionService) Delete(ctx context.Context, id int64) error {
	f.lastDeleteID = id
	return f.deleteErr
}

func (f *fakeMergedSessionService) ListDisplay(ctx context.Context) ([]domain.MergedSessionDisplay, error) {
	return f.listResult, f.listErr
}

func ptr[T any](v T) *T { return &v }
