package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"timetableadmin/internal/domain"

	"github.com/lib/pq"
)

// pgForeignKeyViolation is the SQLSTATE for a foreign key violation.
const pgForeignKeyViolation = "23503"

const scheduleEntryColumns = `id, group_id, subject_id, teacher_id, room_id, day_of_week, start_time, end_time, student_count, created_at, updated_at`

type ScheduleEntryRepository struct {
	DB *sql.DB
}

func NewScheduleEntryRepository(db *sql.DB) domain.ScheduleEntryRepository {
	return &ScheduleEntryRepository{
		DB: db,
	}
}

func (r *ScheduleEntryRepository) Create(ctx context.Context, e *domain.ScheduleEntry) error {
	query := `
		INSERT INTO schedule_entries (group_id, subject_id, teacher_id, room_id, day_of_week, start_time, end_time, student_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, e.GroupID, e.SubjectID, nullInt64(e.TeacherID), e.RoomID, string(e.Day), e.StartTime, e.EndTime, nullInt(e.StudentCount), e.CreatedAt, e.UpdatedAt).Scan(&e.ID)
	return mapWriteError(err)
}

func (r *ScheduleEntryRepository) Update(ctx context.Context, e *domain.ScheduleEntry) error {
	query := `
		UPDATE schedule_entries
		SET group_id = $2, subject_id = $3, teacher_id = $4, room_id = $5, day_of_week = $6,
		    start_time = $7, end_time = $8, student_count = $9, updated_at = $10
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, e.ID, e.GroupID, e.SubjectID, nullInt64(e.TeacherID), e.RoomID, string(e.Day), e.StartTime, e.EndTime, nullInt(e.StudentCount), e.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ScheduleEntryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM schedule_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ScheduleEntryRepository) GetByID(ctx context.Context, id int64) (*domain.ScheduleEntry, error) {
	query := `SELECT ` + scheduleEntryColumns + ` FROM schedule_entries WHERE id = $1`
	e, err := scanScheduleEntry(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *ScheduleEntryRepository) List(ctx context.Context, filter domain.ScheduleFilter) ([]domain.ScheduleEntry, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.GroupID != 0 {
		add("group_id = $%d", filter.GroupID)
	}
	if filter.TeacherID != 0 {
		add("teacher_id = $%d", filter.TeacherID)
	}
	if filter.RoomID != 0 {
		add("room_id = $%d", filter.RoomID)
	}
	if filter.Day != "" {
		add("day_of_week = $%d", string(filter.Day))
	}

	query := `SELECT ` + scheduleEntryColumns + ` FROM schedule_entries`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []domain.ScheduleEntry
	for rows.Next() {
		e, err := scanScheduleEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheduleEntry(row rowScanner) (domain.ScheduleEntry, error) {
	var (
		e        domain.ScheduleEntry
		day      string
		teacher  sql.NullInt64
		students sql.NullInt64
	)
	if err := row.Scan(&e.ID, &e.GroupID, &e.SubjectID, &teacher, &e.RoomID, &day, &e.StartTime, &e.EndTime, &students, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return domain.ScheduleEntry{}, err
	}
	e.Day = domain.Weekday(day)
	if teacher.Valid {
		e.TeacherID = &teacher.Int64
	}
	if students.Valid {
		n := int(students.Int64)
		e.StudentCount = &n
	}
	return e, nil
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// mapWriteError turns a foreign key violation into domain.ErrInvalidInput.
func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgForeignKeyViolation {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, pqErr.Detail)
	}
	return err
}
