package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"timetableadmin/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduleService(repo *fakeEntryRepo, notifier *fakeNotifier, policy CapacityPolicy, rooms ...domain.Room) domain.ScheduleService {
	return NewScheduleService(repo, &fakeRoomRepo{rooms: rooms}, testCatalogRepo(), notifier, NewConflictValidator(policy), testLogger, 5*time.Second)
}

func TestScheduleService_Validate(t *testing.T) {
	ctx := context.Background()
	room := domain.Room{ID: 3, Name: "A-101", Capacity: 30}

	t.Run("teacher conflict", func(t *testing.T) {
		repo := newFakeEntryRepo(entry(11, 2, 2, ptr(int64(5)), 4, domain.Monday, "09:00", "11:00", nil))
		notifier := &fakeNotifier{}
		svc := newTestScheduleService(repo, notifier, CapacityReject, room)

		res, err := svc.Validate(ctx, entry(0, 1, 9, ptr(int64(5)), 3, domain.Monday, "08:00", "10:00", nil))
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.Contains(t, res.Message, "09:00 a 11:00")
		assert.Equal(t, domain.SeverityWarning, notifier.last().severity)
	})

	t.Run("conflicts on a dry run send no alert mail", func(t *testing.T) {
		repo := newFakeEntryRepo(entry(11, 2, 2, ptr(int64(5)), 4, domain.Monday, "09:00", "11:00", nil))
		mailer := &fakeMailer{}
		alerts := NewAlertNotifier(mailer, &fakeRenderer{}, "ops@uni.edu", domain.SeverityError, testLogger).(*alertNotifier)
		svc := NewScheduleService(repo, &fakeRoomRepo{rooms: []domain.Room{room}}, testCatalogRepo(), alerts, NewConflictValidator(CapacityReject), testLogger, 5*time.Second)

		for range 3 {
			res, err := svc.Validate(ctx, entry(0, 1, 9, ptr(int64(5)), 3, domain.Monday, "08:00", "10:00", nil))
			require.NoError(t, err)
			assert.False(t, res.Valid)
		}
		alerts.Wait()
		assert.Zero(t, mailer.count())
	})

	t.Run("unregistered room capacity is an error notification", func(t *testing.T) {
		repo := newFakeEntryRepo(entry(11, 2, 7, ptr(int64(5)), 99, domain.Monday, "08:00", "10:00", ptr(10)))
		notifier := &fakeNotifier{}
		svc := newTestScheduleService(repo, notifier, CapacityReject, room)

		res, err := svc.Validate(ctx, entry(0, 1, 7, ptr(int64(5)), 99, domain.Monday, "08:00", "10:00", ptr(10)))
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.Equal(t, domain.SeverityError, notifier.last().severity)
	})

	t.Run("other days are not compared", func(t *testing.T) {
		repo := newFakeEntryRepo(entry(11, 2, 2, ptr(int64(5)), 3, domain.Friday, "08:00", "10:00", nil))
		svc := newTestScheduleService(repo, &fakeNotifier{}, CapacityReject, room)

		res, err := svc.Validate(ctx, entry(0, 1, 9, ptr(int64(5)), 3, domain.Monday, "08:00", "10:00", nil))
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Message)
	})

	t.Run("shape errors are invalid input", func(t *testing.T) {
		svc := newTestScheduleService(newFakeEntryRepo(), &fakeNotifier{}, CapacityReject, room)
		_, err := svc.Validate(ctx, entry(0, 0, 9, nil, 3, domain.Monday, "08:00", "10:00", nil))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("capacity warning goes to notifier", func(t *testing.T) {
		repo := newFakeEntryRepo(entry(11, 2, 7, ptr(int64(5)), 99, domain.Monday, "08:00", "10:00", ptr(10)))
		notifier := &fakeNotifier{}
		svc := newTestScheduleService(repo, notifier, CapacityWarn, room)

		res, err := svc.Validate(ctx, entry(0, 1, 7, ptr(int64(5)), 99, domain.Monday, "08:00", "10:00", ptr(10)))
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Equal(t, domain.SeverityWarning, notifier.last().severity)
	})

	t.Run("snapshot failure is a transport error", func(t *testing.T) {
		repo := newFakeEntryRepo()
		repo.listErr = errors.New("db down")
		svc := newTestScheduleService(repo, &fakeNotifier{}, CapacityReject, room)

		_, err := svc.Validate(ctx, entry(0, 1, 7, nil, 3, domain.Monday, "08:00", "10:00", nil))
		var terr *domain.TransportError
		assert.ErrorAs(t, err, &terr)
	})
}

func TestScheduleService_Assign(t *testing.T) {
	ctx := context.Background()
	room := domain.Room{ID: 3, Name: "A-101", Capacity: 30}
	req := domain.AssignmentRequest{
		GroupID:   1,
		SubjectID: 9,
		TeacherID: ptr(int64(5)),
		RoomID:    3,
		Days:      []domain.Weekday{domain.Monday, domain.Wednesday, domain.Friday},
		StartTime: domain.MustParseClock("08:00"),
		EndTime:   domain.MustParseClock("10:00"),
	}

	t.Run("one row per day", func(t *testing.T) {
		repo := newFakeEntryRepo()
		svc := newTestScheduleService(repo, &fakeNotifier{}, CapacityReject, room)

		created, err := svc.Assign(ctx, req)
		require.NoError(t, err)
		require.Len(t, created, 3)
		for i, d := range req.Days {
			assert.Equal(t, d, created[i].Day)
			assert.NotZero(t, created[i].ID)
		}
		assert.Len(t, repo.entries, 3)
	})

	t.Run("a rejected day creates nothing", func(t *testing.T) {
		repo := newFakeEntryRepo(entry(11, 2, 2, ptr(int64(6)), 3, domain.Friday, "09:00", "11:00", nil))
		svc := newTestScheduleService(repo, &fakeNotifier{}, CapacityReject, room)

		created, err := svc.Assign(ctx, req)
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, domain.ResourceRoom, ve.Resource)
		assert.Empty(t, created)
		assert.Len(t, repo.entries, 1)
	})

	t.Run("duplicate and missing days", func(t *testing.T) {
		svc := newTestScheduleService(newFakeEntryRepo(), &fakeNotifier{}, CapacityReject, room)

		dup := req
		dup.Days = []domain.Weekday{domain.Monday, domain.Monday}
		_, err := svc.Assign(ctx, dup)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		none := req
		none.Days = nil
		_, err = svc.Assign(ctx, none)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("create failure", func(t *testing.T) {
		repo := newFakeEntryRepo()
		repo.createErr = errors.New("insert failed")
		svc := newTestScheduleService(repo, &fakeNotifier{}, CapacityReject, room)

		created, err := svc.Assign(ctx, req)
		var terr *domain.TransportError
		require.ErrorAs(t, err, &terr)
		assert.Empty(t, created)
	})
}

func TestScheduleService_Update(t *testing.T) {
	ctx := context.Background()
	room := domain.Room{ID: 3, Name: "A-101", Capacity: 30}

	t.Run("editing keeps its own slot", func(t *testing.T) {
		repo := newFakeEntryRepo(entry(11, 1, 9, ptr(int64(5)), 3, domain.Monday, "08:00", "10:00", nil))
		svc := newTestScheduleService(repo, &fakeNotifier{}, CapacityReject, room)

		e := entry(11, 1, 9, ptr(int64(5)), 3, domain.Monday, "08:00", "11:00", nil)
		require.NoError(t, svc.Update(ctx, &e))
		assert.Equal(t, domain.MustParseClock("11:00"), repo.entries[11].EndTime)
		assert.False(t, e.UpdatedAt.IsZero())
	})

	t.Run("edit into a conflict", func(t *testing.T) {
		repo := newFakeEntryRepo(
			entry(11, 1, 9, ptr(int64(5)), 3, domain.Monday, "08:00", "10:00", nil),
			entry(12, 2, 2, ptr(int64(5)), 4, domain.Monday, "10:00", "12:00", nil),
		)
		svc := newTestScheduleService(repo, &fakeNotifier{}, CapacityReject, room)

		e := entry(11, 1, 9, ptr(int64(5)), 3, domain.Monday, "08:00", "11:00", nil)
		var ve *domain.ValidationError
		require.ErrorAs(t, svc.Update(ctx, &e), &ve)
		assert.Equal(t, domain.ResourceTeacher, ve.Resource)
		assert.Equal(t, domain.MustParseClock("10:00"), repo.entries[11].EndTime)
	})

	t.Run("missing entry", func(t *testing.T) {
		svc := newTestScheduleService(newFakeEntryRepo(), &fakeNotifier{}, CapacityReject, room)
		e := entry(404, 1, 9, nil, 3, domain.Monday, "08:00", "10:00", nil)
		assert.ErrorIs(t, svc.Update(ctx, &e), domain.ErrNotFound)
	})
}

func TestScheduleService_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEntryRepo(
		entry(11, 1, 9, nil, 3, domain.Monday, "08:00", "10:00", nil),
		entry(12, 2, 9, nil, 3, domain.Tuesday, "08:00", "10:00", nil),
	)
	svc := newTestScheduleService(repo, &fakeNotifier{}, CapacityReject)

	list, err := svc.List(ctx, domain.ScheduleFilter{Day: domain.Tuesday})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(12), list[0].ID)

	empty, err := svc.List(ctx, domain.ScheduleFilter{GroupID: 99})
	require.NoError(t, err)
	assert.NotNil(t, empty)

	require.NoError(t, svc.Delete(ctx, 11))
	assert.ErrorIs(t, svc.Delete(ctx, 11), domain.ErrNotFound)
}
