package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"timetableadmin/internal/domain"
)

type deletionService struct {
	entryRepo      domain.ScheduleEntryRepository
	notifier       domain.Notifier
	logger         *slog.Logger
	stepDelay      time.Duration
	contextTimeout time.Duration
}

// NewDeletionService returns the bulk deletion workflows. stepDelay paces group deletions
// for interactive progress display; pass 0 for headless callers. timeout bounds each
// individual repository call.
func NewDeletionService(entryRepo domain.ScheduleEntryRepository, notifier domain.Notifier, logger *slog.Logger, stepDelay, timeout time.Duration) domain.DeletionService {
	return &deletionService{
		entryRepo:      entryRepo,
		notifier:       notifier,
		logger:         logger,
		stepDelay:      stepDelay,
		contextTimeout: timeout,
	}
}

// DeleteGroup lists the group's entries and deletes them with DeleteGroupEntries.
// Cancelling ctx does not stop a run that has started.
func (s *deletionService) DeleteGroup(ctx context.Context, groupID int64, onProgress domain.ProgressFunc) error {
	ctx = context.WithoutCancel(ctx)
	listCtx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	entries, err := s.entryRepo.List(listCtx, domain.ScheduleFilter{GroupID: groupID})
	cancel()
	if err != nil {
		return &domain.TransportError{Op: "list group entries", ID: groupID, Err: err}
	}
	return s.DeleteGroupEntries(ctx, entries, onProgress)
}

// DeleteGroupEntries deletes entries one at a time, in order, reporting progress after
// each success. The first failure aborts the run; earlier deletions are not rolled back
// and the returned *domain.PartialDeletionError says how far it got. The run continues
// when the caller goes away; each delete is still bounded by the context timeout.
func (s *deletionService) DeleteGroupEntries(ctx context.Context, entries []domain.ScheduleEntry, onProgress domain.ProgressFunc) error {
	ctx = context.WithoutCancel(ctx)
	total := len(entries)
	if total == 0 {
		emit(onProgress, domain.NewDeletionProgress(0, 0))
		return nil
	}
	for i, e := range entries {
		if i > 0 {
			s.pause()
		}
		if err := s.deleteOne(ctx, e.ID); err != nil {
			return s.abortGroup(ctx, i, total, e.ID, err)
		}
		emit(onProgress, domain.NewDeletionProgress(i+1, total))
	}
	s.logger.InfoContext(ctx, "group entries deleted", "total", total)
	s.notifier.Display(ctx, fmt.Sprintf("Se eliminaron %d horarios del grupo", total), domain.SeveritySuccess)
	return nil
}

func (s *deletionService) abortGroup(ctx context.Context, completed, total int, failedID int64, err error) error {
	perr := &domain.PartialDeletionError{Completed: completed, Total: total, FailedID: failedID, Err: err}
	s.logger.ErrorContext(ctx, "group deletion aborted", "completed", completed, "total", total, "id", failedID, "err", err)
	s.notifier.Display(ctx, fmt.Sprintf("La eliminación del grupo quedó incompleta: %d de %d horarios eliminados", completed, total), domain.SeverityError)
	return perr
}

// DeleteSelected deletes ids one at a time. A failure is logged and counted, and the loop
// moves on to the next id.
func (s *deletionService) DeleteSelected(ctx context.Context, ids []int64) domain.SelectionResult {
	ctx = context.WithoutCancel(ctx)
	res := domain.SelectionResult{Total: len(ids)}
	for _, id := range ids {
		if err := s.deleteOne(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "delete selected entry failed", "id", id, "err", err)
			res.Failed = append(res.Failed, domain.FailedDeletion{ID: id, Error: err.Error()})
			continue
		}
		res.Succeeded++
	}

	switch {
	case res.Total == 0:
	case res.Complete():
		s.notifier.Display(ctx, fmt.Sprintf("Se eliminaron %d horarios", res.Succeeded), domain.SeveritySuccess)
	case res.Succeeded == 0:
		s.notifier.Display(ctx, "No se pudo eliminar ningún horario", domain.SeverityError)
	default:
		s.notifier.Display(ctx, fmt.Sprintf("Se eliminaron %d de %d horarios", res.Succeeded, res.Total), domain.SeverityWarning)
	}
	return res
}

func (s *deletionService) deleteOne(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	if err := s.entryRepo.Delete(ctx, id); err != nil {
		return &domain.TransportError{Op: "delete schedule entry", ID: id, Err: err}
	}
	return nil
}

func (s *deletionService) pause() {
	if s.stepDelay > 0 {
		time.Sleep(s.stepDelay)
	}
}

func emit(fn domain.ProgressFunc, p domain.DeletionProgress) {
	if fn != nil {
		fn(p)
	}
}
