package services

import "timetableadmin/internal/domain"

// AssembleMergedSession builds the display view of record from the per-group entries.
// Groups with no matching entry get NotAvailable names; assembly never fails.
func AssembleMergedSession(record domain.MergedSessionRecord, entries []domain.ScheduleEntry, dir domain.Directory) domain.MergedSessionDisplay {
	out := domain.MergedSessionDisplay{
		ID:           record.ID,
		SubjectName:  dir.SubjectName(record.SubjectID),
		Day:          record.Day,
		StartTime:    record.StartTime,
		EndTime:      record.EndTime,
		StudentCount: record.StudentCount,
		Comment:      record.Comment,
		Groups:       make([]domain.MergedGroupView, 0, len(record.GroupIDs)),
		Consistent:   true,
	}
	for _, groupID := range record.GroupIDs {
		view := domain.MergedGroupView{
			GroupID:     groupID,
			GroupName:   dir.GroupName(groupID),
			TeacherName: domain.NotAvailable,
			RoomName:    domain.NotAvailable,
		}
		if e, ok := findGroupEntry(record, entries, groupID); ok {
			view.Found = true
			if e.TeacherID != nil {
				view.TeacherName = dir.TeacherName(*e.TeacherID)
			}
			view.RoomName = domain.RoomName(dir, e.RoomID)
			view.Consistent = e.Day == record.Day && e.StartTime == record.StartTime && e.EndTime == record.EndTime
		}
		if !view.Consistent {
			out.Consistent = false
		}
		out.Groups = append(out.Groups, view)
	}
	return out
}

// findGroupEntry prefers an entry on the record's own day and time, then any entry of
// the group for the subject.
func findGroupEntry(record domain.MergedSessionRecord, entries []domain.ScheduleEntry, groupID int64) (domain.ScheduleEntry, bool) {
	var fallback *domain.ScheduleEntry
	for i := range entries {
		e := entries[i]
		if e.GroupID != groupID || e.SubjectID != record.SubjectID {
			continue
		}
		if e.Day == record.Day && e.StartTime == record.StartTime && e.EndTime == record.EndTime {
			return e, true
		}
		if fallback == nil {
			fallback = &entries[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return domain.ScheduleEntry{}, false
}
