package domain

import (
	"context"
	"fmt"
	"time"
)

// Bounds on the number of groups a merged session links.
const (
	MinMergedGroups = 2
	MaxMergedGroups = 3
)

// MergedSessionRecord describes 2 or 3 groups attending one shared session. It does not
// own the per-group schedule entries; consistency with them is checked at display time.
type MergedSessionRecord struct {
	ID           int64     `json:"id"`
	GroupIDs     []int64   `json:"group_ids"`
	SubjectID    int64     `json:"subject_id"`
	TeacherID    *int64    `json:"teacher_id"`
	RoomID       int64     `json:"room_id"`
	Day          Weekday   `json:"day_of_week"`
	StartTime    Clock     `json:"start_time"`
	EndTime      Clock     `json:"end_time"`
	StudentCount int       `json:"student_count"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CheckShape validates group count and distinctness, day and time order.
func (m MergedSessionRecord) CheckShape() error {
	if len(m.GroupIDs) < MinMergedGroups || len(m.GroupIDs) > MaxMergedGroups {
		return fmt.Errorf("%w: a merged session links %d to %d groups", ErrInvalidInput, MinMergedGroups, MaxMergedGroups)
	}
	seen := make(map[int64]struct{}, len(m.GroupIDs))
	for _, g := range m.GroupIDs {
		if g <= 0 {
			return fmt.Errorf("%w: invalid group id %d", ErrInvalidInput, g)
		}
		if _, dup := seen[g]; dup {
			return fmt.Errorf("%w: group %d listed twice", ErrInvalidInput, g)
		}
		seen[g] = struct{}{}
	}
	if m.SubjectID <= 0 || m.RoomID <= 0 {
		return fmt.Errorf("%w: subject and room are required", ErrInvalidInput)
	}
	if !m.Day.Valid() {
		return fmt.Errorf("%w: invalid day %q", ErrInvalidInput, m.Day)
	}
	if m.StartTime >= m.EndTime {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalidInput)
	}
	if m.StudentCount < 0 {
		return fmt.Errorf("%w: student count must not be negative", ErrInvalidInput)
	}
	return nil
}

// MergedGroupView is one group's slice of an assembled merged session.
type MergedGroupView struct {
	GroupID     int64  `json:"group_id"`
	GroupName   string `json:"group_name"`
	TeacherName string `json:"teacher_name"`
	RoomName    string `json:"room_name"`
	Found       bool   `json:"found"`
	// Consistent is set when the group's entry is on the record's day and time.
	Consistent bool `json:"consistent"`
}

// MergedSessionDisplay is the read-only presentation of a merged session record.
type MergedSessionDisplay struct {
	ID           int64             `json:"id"`
	SubjectName  string            `json:"subject_name"`
	Day          Weekday           `json:"day_of_week"`
	StartTime    Clock             `json:"start_time"`
	EndTime      Clock             `json:"end_time"`
	StudentCount int               `json:"student_count"`
	Comment      string            `json:"comment"`
	Groups       []MergedGroupView `json:"groups"`
	Consistent   bool              `json:"consistent"`
}

// MergedSessionRepository stores merged session records.
type MergedSessionRepository interface {
	Create(ctx context.Context, record *MergedSessionRecord) error
	Update(ctx context.Context, record *MergedSessionRecord) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]MergedSessionRecord, error)
}

// MergedSessionService manages merged session records and their display view.
type MergedSessionService interface {
	Create(ctx context.Context, record *MergedSessionRecord) error
	Update(ctx context.Context, record *MergedSessionRecord) error
	Delete(ctx context.Context, id int64) error
	ListDisplay(ctx context.Context) ([]MergedSessionDisplay, error)
}
