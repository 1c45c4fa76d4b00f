package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"timetableadmin/internal/domain"
)

// testLogger discards output so tests don't assert on log lines.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func ptr[T any](v T) *T { return &v }

// fakeEntryRepo is an in-memory ScheduleEntryRepository for tests.
type fakeEntryRepo struct {
	entries   map[int64]domain.ScheduleEntry
	nextID    int64
	deleted   []int64 // ids passed to Delete, in call order
	deleteErr map[int64]error
	listErr   error
	createErr error
}

func newFakeEntryRepo(entries ...domain.ScheduleEntry) *fakeEntryRepo {
	f := &fakeEntryRepo{entries: make(map[int64]domain.ScheduleEntry), nextID: 1000, deleteErr: make(map[int64]error)}
	for _, e := range entries {
		f.entries[e.ID] = e
	}
	return f
}

func (f *fakeEntryRepo) Create(ctx context.Context, e *domain.ScheduleEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	e.ID = f.nextID
	f.entries[e.ID] = *e
	return nil
}

func (f *fakeEntryRepo) Update(ctx context.Context, e *domain.ScheduleEntry) error {
	if _, ok := f.entries[e.ID]; !ok {
		return domain.ErrNotFound
	}
	f.entries[e.ID] = *e
	return nil
}

func (f *fakeEntryRepo) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	if _, ok := f.entries[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeEntryRepo) GetByID(ctx context.Context, id int64) (*domain.ScheduleEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (f *fakeEntryRepo) List(ctx context.Context, filter domain.ScheduleFilter) ([]domain.ScheduleEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.ScheduleEntry
	for _, e := range f.entries {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeRoomRepo serves a fixed room list.
type fakeRoomRepo struct {
	rooms []domain.Room
}

func (f *fakeRoomRepo) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	for _, r := range f.rooms {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRoomRepo) List(ctx context.Context) ([]domain.Room, error) {
	return f.rooms, nil
}

// fakeCatalogRepo serves fixed names.
type fakeCatalogRepo struct {
	teachers, groups, subjects []domain.NamedRef
}

func (f *fakeCatalogRepo) ListTeachers(ctx context.Context) ([]domain.NamedRef, error) {
	return f.teachers, nil
}

func (f *fakeCatalogRepo) ListGroups(ctx context.Context) ([]domain.NamedRef, error) {
	return f.groups, nil
}

func (f *fakeCatalogRepo) ListSubjects(ctx context.Context) ([]domain.NamedRef, error) {
	return f.subjects, nil
}

type notification struct {
	message  string
	severity domain.Severity
}

// fakeNotifier records every Display call.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (f *fakeNotifier) Display(ctx context.Context, message string, severity domain.Severity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{message: message, severity: severity})
}

func (f *fakeNotifier) last() notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return notification{}
	}
	return f.sent[len(f.sent)-1]
}

func testCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		teachers: []domain.NamedRef{{ID: 5, Name: "Ana Torres"}, {ID: 6, Name: "Luis Rojas"}},
		groups:   []domain.NamedRef{{ID: 1, Name: "1A"}, {ID: 2, Name: "1B"}, {ID: 3, Name: "1C"}},
		subjects: []domain.NamedRef{{ID: 7, Name: "Cálculo"}, {ID: 9, Name: "Física"}, {ID: 2, Name: "Química"}},
	}
}

func testDirectory(rooms ...domain.Room) *domain.Catalog {
	c := testCatalogRepo()
	return domain.NewCatalog(c.teachers, c.groups, c.subjects, rooms)
}

// entry builds a schedule entry from compact arguments.
func entry(id, group, subject int64, teacher *int64, room int64, day domain.Weekday, start, end string, students *int) domain.ScheduleEntry {
	return domain.ScheduleEntry{
		ID:           id,
		GroupID:      group,
		SubjectID:    subject,
		TeacherID:    teacher,
		RoomID:       room,
		Day:          day,
		StartTime:    domain.MustParseClock(start),
		EndTime:      domain.MustParseClock(end),
		StudentCount: students,
	}
}
