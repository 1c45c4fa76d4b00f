package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"timetableadmin/internal/domain"
)

type scheduleService struct {
	entryRepo      domain.ScheduleEntryRepository
	roomRepo       domain.RoomRepository
	catalogRepo    domain.CatalogRepository
	notifier       domain.Notifier
	validator      ConflictValidator
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewScheduleService(entryRepo domain.ScheduleEntryRepository,
	roomRepo domain.RoomRepository,
	catalogRepo domain.CatalogRepository,
	notifier domain.Notifier,
	validator ConflictValidator,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ScheduleService {
	return &scheduleService{
		entryRepo:      entryRepo,
		roomRepo:       roomRepo,
		catalogRepo:    catalogRepo,
		notifier:       notifier,
		validator:      validator,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *scheduleService) Validate(ctx context.Context, candidate domain.ScheduleEntry) (domain.ValidationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := candidate.CheckShape(); err != nil {
		return domain.ValidationResult{}, err
	}
	snapshot, dir, err := s.snapshot(ctx, candidate.Day)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	return domain.ResultFromError(s.check(ctx, candidate, snapshot, dir))
}

// Assign creates one entry per requested day. Every day is validated before the first
// insert, so a rejection creates nothing. The days are distinct and never collide with
// each other. If an insert fails midway the entries created so far are returned with
// the error.
func (s *scheduleService) Assign(ctx context.Context, req domain.AssignmentRequest) ([]domain.ScheduleEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if len(req.Days) == 0 {
		return nil, fmt.Errorf("%w: at least one day is required", domain.ErrInvalidInput)
	}
	seen := make(map[domain.Weekday]struct{}, len(req.Days))
	for _, d := range req.Days {
		if _, dup := seen[d]; dup {
			return nil, fmt.Errorf("%w: day %q selected twice", domain.ErrInvalidInput, d)
		}
		seen[d] = struct{}{}
	}

	candidates := req.Entries()
	for _, c := range candidates {
		if err := c.CheckShape(); err != nil {
			return nil, err
		}
	}
	for _, c := range candidates {
		snapshot, dir, err := s.snapshot(ctx, c.Day)
		if err != nil {
			return nil, err
		}
		if err := s.check(ctx, c, snapshot, dir); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	created := make([]domain.ScheduleEntry, 0, len(candidates))
	for _, c := range candidates {
		c.CreatedAt, c.UpdatedAt = now, now
		if err := s.entryRepo.Create(ctx, &c); err != nil {
			return created, &domain.TransportError{Op: "create schedule entry", Err: err}
		}
		created = append(created, c)
	}
	s.notifier.Display(ctx, fmt.Sprintf("Se asignaron %d horarios", len(created)), domain.SeveritySuccess)
	return created, nil
}

func (s *scheduleService) Update(ctx context.Context, entry *domain.ScheduleEntry) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := entry.CheckShape(); err != nil {
		return err
	}
	current, err := s.entryRepo.GetByID(ctx, entry.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return &domain.TransportError{Op: "get schedule entry", ID: entry.ID, Err: err}
	}
	snapshot, dir, err := s.snapshot(ctx, entry.Day)
	if err != nil {
		return err
	}
	if err := s.check(ctx, *entry, snapshot, dir); err != nil {
		return err
	}
	entry.CreatedAt = current.CreatedAt
	entry.UpdatedAt = time.Now()
	if err := s.entryRepo.Update(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return &domain.TransportError{Op: "update schedule entry", ID: entry.ID, Err: err}
	}
	return nil
}

func (s *scheduleService) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.entryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return &domain.TransportError{Op: "delete schedule entry", ID: id, Err: err}
	}
	return nil
}

func (s *scheduleService) List(ctx context.Context, filter domain.ScheduleFilter) ([]domain.ScheduleEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	entries, err := s.entryRepo.List(ctx, filter)
	if err != nil {
		return nil, &domain.TransportError{Op: "list schedule entries", Err: err}
	}
	if entries == nil {
		entries = []domain.ScheduleEntry{}
	}
	return entries, nil
}

// check runs the validator and forwards rejections and warnings to the notifier.
// Conflicts are routine operator feedback and go out as warnings; only an unresolvable
// room configuration is reported as an error.
func (s *scheduleService) check(ctx context.Context, candidate domain.ScheduleEntry, snapshot []domain.ScheduleEntry, dir domain.Directory) error {
	warnings, err := s.validator.Validate(candidate, snapshot, dir)
	for _, w := range warnings {
		s.logger.WarnContext(ctx, "schedule validation warning", "room_id", candidate.RoomID, "warning", w)
		s.notifier.Display(ctx, w, domain.SeverityWarning)
	}
	if err != nil {
		severity := domain.SeverityWarning
		var ce *domain.ConfigurationError
		if errors.As(err, &ce) {
			s.logger.ErrorContext(ctx, "room capacity unresolved", "room_id", ce.RoomID)
			severity = domain.SeverityError
		}
		s.notifier.Display(ctx, err.Error(), severity)
	}
	return err
}

// snapshot reads the day's entries and the reference data the validator needs.
func (s *scheduleService) snapshot(ctx context.Context, day domain.Weekday) ([]domain.ScheduleEntry, domain.Directory, error) {
	entries, err := s.entryRepo.List(ctx, domain.ScheduleFilter{Day: day})
	if err != nil {
		return nil, nil, &domain.TransportError{Op: "list schedule entries", Err: err}
	}
	dir, err := loadDirectory(ctx, s.catalogRepo, s.roomRepo)
	if err != nil {
		return nil, nil, &domain.TransportError{Op: "load catalog", Err: err}
	}
	return entries, dir, nil
}

func loadDirectory(ctx context.Context, catalogRepo domain.CatalogRepository, roomRepo domain.RoomRepository) (*domain.Catalog, error) {
	teachers, err := catalogRepo.ListTeachers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	groups, err := catalogRepo.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	subjects, err := catalogRepo.ListSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	rooms, err := roomRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return domain.NewCatalog(teachers, groups, subjects, rooms), nil
}
