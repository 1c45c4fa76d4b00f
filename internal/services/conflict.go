package services

import (
	"fmt"
	"strings"

	"timetableadmin/internal/domain"
)

// CapacityPolicy decides what happens when a shared session's room capacity cannot be resolved.
type CapacityPolicy string

const (
	// CapacityReject rejects the candidate with a ConfigurationError.
	CapacityReject CapacityPolicy = "reject"
	// CapacityWarn accepts the candidate and reports a warning.
	CapacityWarn CapacityPolicy = "warn"
	// CapacitySkip accepts the candidate without pooling.
	CapacitySkip CapacityPolicy = "skip"
)

// ParseCapacityPolicy maps a config value to a policy; unknown values fall back to CapacityReject.
func ParseCapacityPolicy(s string) CapacityPolicy {
	switch CapacityPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case CapacityWarn:
		return CapacityWarn
	case CapacitySkip:
		return CapacitySkip
	default:
		return CapacityReject
	}
}

// ConflictValidator decides whether a candidate entry may coexist with a snapshot of
// existing entries. It holds no state besides its policy and is safe to share.
type ConflictValidator struct {
	Policy CapacityPolicy
}

// NewConflictValidator returns a validator using the given capacity policy.
func NewConflictValidator(policy CapacityPolicy) ConflictValidator {
	return ConflictValidator{Policy: policy}
}

// Validate checks candidate against existing. It returns nil when the candidate is
// accepted, a *domain.ValidationError for a business rejection, or a
// *domain.ConfigurationError when room capacity is needed but unresolved under
// CapacityReject. Warnings are returned for accepted candidates worth an operator's look.
//
// The result is only correct relative to the snapshot: two validations against the same
// slot can both pass if neither sees the other's row.
func (v ConflictValidator) Validate(candidate domain.ScheduleEntry, existing []domain.ScheduleEntry, dir domain.Directory) (warnings []string, err error) {
	if candidate.StartTime >= candidate.EndTime {
		return nil, &domain.ValidationError{
			Resource: domain.ResourceTime,
			Message:  "La hora de fin debe ser posterior a la hora de inicio",
		}
	}
	if err := v.checkTeacher(candidate, existing, dir); err != nil {
		return nil, err
	}
	return v.checkRoom(candidate, existing, dir)
}

func (v ConflictValidator) checkTeacher(candidate domain.ScheduleEntry, existing []domain.ScheduleEntry, dir domain.Directory) error {
	if !candidate.HasTeacher() {
		return nil
	}
	for _, e := range existing {
		if e.ID == candidate.ID || !e.SameTeacher(candidate) || !e.OverlapsWith(candidate) {
			continue
		}
		// The same lecture given to several groups at once is not a conflict.
		if domain.IsSameSession(e, candidate) {
			continue
		}
		return &domain.ValidationError{
			Resource: domain.ResourceTeacher,
			Message: fmt.Sprintf("El docente %s ya tiene clase el %s de %s con el grupo %s",
				dir.TeacherName(*candidate.TeacherID), candidate.Day, e.TimeRange(), dir.GroupName(e.GroupID)),
			Conflicts: []domain.ScheduleEntry{e},
		}
	}
	return nil
}

func (v ConflictValidator) checkRoom(candidate domain.ScheduleEntry, existing []domain.ScheduleEntry, dir domain.Directory) ([]string, error) {
	var shared []domain.ScheduleEntry
	for _, e := range existing {
		if e.ID == candidate.ID || e.RoomID != candidate.RoomID || !e.OverlapsWith(candidate) {
			continue
		}
		if domain.IsSameSession(e, candidate) && sameTeacherID(e, candidate) {
			shared = append(shared, e)
			continue
		}
		return nil, &domain.ValidationError{
			Resource: domain.ResourceRoom,
			Message: fmt.Sprintf("El aula %s ya está ocupada el %s de %s por el grupo %s",
				domain.RoomName(dir, candidate.RoomID), candidate.Day, e.TimeRange(), dir.GroupName(e.GroupID)),
			Conflicts: []domain.ScheduleEntry{e},
		}
	}
	if len(shared) == 0 {
		return nil, nil
	}
	return v.checkCapacity(candidate, shared, dir)
}

func (v ConflictValidator) checkCapacity(candidate domain.ScheduleEntry, shared []domain.ScheduleEntry, dir domain.Directory) ([]string, error) {
	room, ok := dir.Room(candidate.RoomID)
	if !ok || room.Capacity <= 0 {
		msg := fmt.Sprintf("No se pudo obtener la capacidad del aula %d para la sesión compartida", candidate.RoomID)
		switch v.Policy {
		case CapacityWarn:
			return []string{msg}, nil
		case CapacitySkip:
			return nil, nil
		default:
			return nil, &domain.ConfigurationError{RoomID: candidate.RoomID, Message: msg}
		}
	}

	pool := append([]domain.ScheduleEntry{candidate}, shared...)
	ok, total := PoolAndCheck(pool, room)
	if ok {
		return nil, nil
	}
	return nil, &domain.ValidationError{
		Resource:  domain.ResourceRoom,
		Message:   capacityMessage(pool, room, total, dir),
		Conflicts: shared,
		Total:     total,
		Capacity:  room.Capacity,
	}
}

// PoolAndCheck sums the student counts of an identical-session set (unset counts as zero)
// and reports whether the total fits the room.
func PoolAndCheck(sessions []domain.ScheduleEntry, room domain.Room) (ok bool, total int) {
	for _, s := range sessions {
		total += s.Students()
	}
	return total <= room.Capacity, total
}

func capacityMessage(pool []domain.ScheduleEntry, room domain.Room, total int, dir domain.Directory) string {
	parts := make([]string, 0, len(pool))
	for _, s := range pool {
		parts = append(parts, fmt.Sprintf("%s (%d)", dir.GroupName(s.GroupID), s.Students()))
	}
	return fmt.Sprintf("La sesión compartida excede la capacidad del aula %s: %s suman %d estudiantes y la capacidad es %d",
		room.Name, strings.Join(parts, ", "), total, room.Capacity)
}

func sameTeacherID(a, b domain.ScheduleEntry) bool {
	if a.TeacherID == nil || b.TeacherID == nil {
		return a.TeacherID == nil && b.TeacherID == nil
	}
	return *a.TeacherID == *b.TeacherID
}
