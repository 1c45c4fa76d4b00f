package helpers

import (
	"fmt"
	"net/http"
	"strconv"

	"timetableadmin/internal/domain"
)

// PathID parses a positive int64 path value. On failure it writes a 400 JSON error
// and returns false.
func PathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	s := r.PathValue(name)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("invalid %s %q", name, s))
		return 0, false
	}
	return id, true
}

// ParseScheduleFilter reads group_id, teacher_id, room_id and day from the query string.
// Missing values leave the filter field empty; malformed values are an error.
func ParseScheduleFilter(r *http.Request) (domain.ScheduleFilter, error) {
	q := r.URL.Query()
	var f domain.ScheduleFilter
	for _, p := range []struct {
		key  string
		dest *int64
	}{
		{"group_id", &f.GroupID},
		{"teacher_id", &f.TeacherID},
		{"room_id", &f.RoomID},
	} {
		s := q.Get(p.key)
		if s == "" {
			continue
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v <= 0 {
			return domain.ScheduleFilter{}, fmt.Errorf("%w: invalid %s %q", domain.ErrInvalidInput, p.key, s)
		}
		*p.dest = v
	}
	if s := q.Get("day"); s != "" {
		d, err := domain.ParseWeekday(s)
		if err != nil {
			return domain.ScheduleFilter{}, err
		}
		f.Day = d
	}
	return f, nil
}
