package postgres

import (
	"context"
	"database/sql"

	"timetableadmin/internal/domain"

	"github.com/lib/pq"
)

type MergedSessionRepository struct {
	DB *sql.DB
}

func NewMergedSessionRepository(db *sql.DB) domain.MergedSessionRepository {
	return &MergedSessionRepository{DB: db}
}

func (r *MergedSessionRepository) Create(ctx context.Context, m *domain.MergedSessionRecord) error {
	query := `
		INSERT INTO merged_sessions (group_ids, subject_id, teacher_id, room_id, day_of_week, start_time, end_time, student_count, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, pq.Array(m.GroupIDs), m.SubjectID, nullInt64(m.TeacherID), m.RoomID, string(m.Day), m.StartTime, m.EndTime, m.StudentCount, m.Comment, m.CreatedAt, m.UpdatedAt).Scan(&m.ID)
	return mapWriteError(err)
}

func (r *MergedSessionRepository) Update(ctx context.Context, m *domain.MergedSessionRecord) error {
	query := `
		UPDATE merged_sessions
		SET group_ids = $2, subject_id = $3, teacher_id = $4, room_id = $5, day_of_week = $6,
		    start_time = $7, end_time = $8, student_count = $9, comment = $10, updated_at = $11
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, m.ID, pq.Array(m.GroupIDs), m.SubjectID, nullInt64(m.TeacherID), m.RoomID, string(m.Day), m.StartTime, m.EndTime, m.StudentCount, m.Comment, m.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MergedSessionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM merged_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MergedSessionRepository) List(ctx context.Context) ([]domain.MergedSessionRecord, error) {
	query := `
		SELECT id, group_ids, subject_id, teacher_id, room_id, day_of_week, start_time, end_time, student_count, comment, created_at, updated_at
		FROM merged_sessions
		ORDER BY day_of_week, start_time, id
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.MergedSessionRecord
	for rows.Next() {
		var (
			m       domain.MergedSessionRecord
			groups  pq.Int64Array
			teacher sql.NullInt64
			day     string
		)
		if err := rows.Scan(&m.ID, &groups, &m.SubjectID, &teacher, &m.RoomID, &day, &m.StartTime, &m.EndTime, &m.StudentCount, &m.Comment, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.GroupIDs = []int64(groups)
		m.Day = domain.Weekday(day)
		if teacher.Valid {
			m.TeacherID = &teacher.Int64
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
