package domain

import (
	"context"
	"fmt"
	"time"
)

// ScheduleEntry is one weekly recurring class occurrence for one group.
type ScheduleEntry struct {
	ID           int64     `json:"id"`
	GroupID      int64     `json:"group_id"`
	SubjectID    int64     `json:"subject_id"`
	TeacherID    *int64    `json:"teacher_id"`
	RoomID       int64     `json:"room_id"`
	Day          Weekday   `json:"day_of_week"`
	StartTime    Clock     `json:"start_time"`
	EndTime      Clock     `json:"end_time"`
	StudentCount *int      `json:"student_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewScheduleEntry returns a new ScheduleEntry. ID is set by the repository on create.
func NewScheduleEntry(groupID, subjectID int64, teacherID *int64, roomID int64, day Weekday, start, end Clock, studentCount *int) *ScheduleEntry {
	return &ScheduleEntry{
		GroupID:      groupID,
		SubjectID:    subjectID,
		TeacherID:    teacherID,
		RoomID:       roomID,
		Day:          day,
		StartTime:    start,
		EndTime:      end,
		StudentCount: studentCount,
	}
}

// Students returns the student count, treating an unset count as zero.
func (e ScheduleEntry) Students() int {
	if e.StudentCount == nil {
		return 0
	}
	return *e.StudentCount
}

// HasTeacher reports whether a teacher is assigned.
func (e ScheduleEntry) HasTeacher() bool {
	return e.TeacherID != nil
}

// SameTeacher reports whether both entries have the same assigned teacher.
// Two unassigned entries do not share a teacher.
func (e ScheduleEntry) SameTeacher(o ScheduleEntry) bool {
	return e.TeacherID != nil && o.TeacherID != nil && *e.TeacherID == *o.TeacherID
}

// OverlapsWith reports whether both entries fall on the same day with overlapping times.
func (e ScheduleEntry) OverlapsWith(o ScheduleEntry) bool {
	return e.Day == o.Day && Overlaps(e.StartTime, e.EndTime, o.StartTime, o.EndTime)
}

// TimeRange renders the entry's time range as "HH:MM a HH:MM".
func (e ScheduleEntry) TimeRange() string {
	return fmt.Sprintf("%s a %s", e.StartTime, e.EndTime)
}

// CheckShape validates the fields that need no snapshot: references, day and time order.
func (e ScheduleEntry) CheckShape() error {
	if e.GroupID <= 0 || e.SubjectID <= 0 || e.RoomID <= 0 {
		return fmt.Errorf("%w: group, subject and room are required", ErrInvalidInput)
	}
	if !e.Day.Valid() {
		return fmt.Errorf("%w: invalid day %q", ErrInvalidInput, e.Day)
	}
	if e.StudentCount != nil && *e.StudentCount < 0 {
		return fmt.Errorf("%w: student count must not be negative", ErrInvalidInput)
	}
	if e.StartTime < 0 || e.EndTime > MinutesPerDay {
		return fmt.Errorf("%w: time out of range", ErrInvalidInput)
	}
	return nil
}

// IsSameSession reports whether x and y are the same physical session: same subject,
// start and end. Callers compare day and the shared resource before asking.
func IsSameSession(x, y ScheduleEntry) bool {
	return x.SubjectID == y.SubjectID && x.StartTime == y.StartTime && x.EndTime == y.EndTime
}

// ScheduleFilter narrows List results. Zero values mean "any".
type ScheduleFilter struct {
	GroupID   int64
	TeacherID int64
	RoomID    int64
	Day       Weekday
}

// Matches reports whether e satisfies every set field of f.
func (f ScheduleFilter) Matches(e ScheduleEntry) bool {
	if f.GroupID != 0 && e.GroupID != f.GroupID {
		return false
	}
	if f.TeacherID != 0 && (e.TeacherID == nil || *e.TeacherID != f.TeacherID) {
		return false
	}
	if f.RoomID != 0 && e.RoomID != f.RoomID {
		return false
	}
	if f.Day != "" && e.Day != f.Day {
		return false
	}
	return true
}

// ScheduleEntryRepository is the persistence gateway for schedule entries.
type ScheduleEntryRepository interface {
	Create(ctx context.Context, entry *ScheduleEntry) error
	Update(ctx context.Context, entry *ScheduleEntry) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*ScheduleEntry, error)
	List(ctx context.Context, filter ScheduleFilter) ([]ScheduleEntry, error)
}

// AssignmentRequest creates one entry per selected day with otherwise identical fields.
type AssignmentRequest struct {
	GroupID      int64
	SubjectID    int64
	TeacherID    *int64
	RoomID       int64
	Days         []Weekday
	StartTime    Clock
	EndTime      Clock
	StudentCount *int
}

// Entries expands the request into one candidate per day.
func (r AssignmentRequest) Entries() []ScheduleEntry {
	out := make([]ScheduleEntry, 0, len(r.Days))
	for _, d := range r.Days {
		out = append(out, *NewScheduleEntry(r.GroupID, r.SubjectID, r.TeacherID, r.RoomID, d, r.StartTime, r.EndTime, r.StudentCount))
	}
	return out
}

// ScheduleService is the business logic around validating and persisting schedule entries.
type ScheduleService interface {
	Validate(ctx context.Context, candidate ScheduleEntry) (ValidationResult, error)
	Assign(ctx context.Context, req AssignmentRequest) ([]ScheduleEntry, error)
	Update(ctx context.Context, entry *ScheduleEntry) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ScheduleFilter) ([]ScheduleEntry, error)
}
