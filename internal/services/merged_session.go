package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"timetableadmin/internal/domain"
)

type mergedSessionService struct {
	mergedRepo     domain.MergedSessionRepository
	entryRepo      domain.ScheduleEntryRepository
	roomRepo       domain.RoomRepository
	catalogRepo    domain.CatalogRepository
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewMergedSessionService(mergedRepo domain.MergedSessionRepository,
	entryRepo domain.ScheduleEntryRepository,
	roomRepo domain.RoomRepository,
	catalogRepo domain.CatalogRepository,
	logger *slog.Logger,
	timeout time.Duration,
) domain.MergedSessionService {
	return &mergedSessionService{
		mergedRepo:     mergedRepo,
		entryRepo:      entryRepo,
		roomRepo:       roomRepo,
		catalogRepo:    catalogRepo,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *mergedSessionService) Create(ctx context.Context, record *domain.MergedSessionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.checkRecord(ctx, record); err != nil {
		return err
	}
	now := time.Now()
	record.CreatedAt, record.UpdatedAt = now, now
	if err := s.mergedRepo.Create(ctx, record); err != nil {
		return &domain.TransportError{Op: "create merged session", Err: err}
	}
	return nil
}

func (s *mergedSessionService) Update(ctx context.Context, record *domain.MergedSessionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.checkRecord(ctx, record); err != nil {
		return err
	}
	record.UpdatedAt = time.Now()
	if err := s.mergedRepo.Update(ctx, record); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return &domain.TransportError{Op: "update merged session", ID: record.ID, Err: err}
	}
	return nil
}

func (s *mergedSessionService) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.mergedRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return &domain.TransportError{Op: "delete merged session", ID: id, Err: err}
	}
	return nil
}

// ListDisplay assembles every merged session against the current schedule entries.
// Records whose groups no longer have a matching entry are still listed, flagged as
// inconsistent.
func (s *mergedSessionService) ListDisplay(ctx context.Context) ([]domain.MergedSessionDisplay, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	records, err := s.mergedRepo.List(ctx)
	if err != nil {
		return nil, &domain.TransportError{Op: "list merged sessions", Err: err}
	}
	entries, err := s.entryRepo.List(ctx, domain.ScheduleFilter{})
	if err != nil {
		return nil, &domain.TransportError{Op: "list schedule entries", Err: err}
	}
	dir, err := loadDirectory(ctx, s.catalogRepo, s.roomRepo)
	if err != nil {
		return nil, &domain.TransportError{Op: "load catalog", Err: err}
	}

	out := make([]domain.MergedSessionDisplay, 0, len(records))
	for _, rec := range records {
		d := AssembleMergedSession(rec, entries, dir)
		if !d.Consistent {
			s.logger.DebugContext(ctx, "merged session out of sync with schedule entries", "id", rec.ID)
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *mergedSessionService) checkRecord(ctx context.Context, record *domain.MergedSessionRecord) error {
	if err := record.CheckShape(); err != nil {
		return err
	}
	if _, err := s.roomRepo.GetByID(ctx, record.RoomID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: room %d does not exist", domain.ErrInvalidInput, record.RoomID)
		}
		return &domain.TransportError{Op: "get room", ID: record.RoomID, Err: err}
	}
	return nil
}
