package postgres

import (
	"context"
	"database/sql"
	"errors"

	"timetableadmin/internal/domain"
)

type RoomRepository struct {
	DB *sql.DB
}

func NewRoomRepository(db *sql.DB) domain.RoomRepository {
	return &RoomRepository{DB: db}
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	room := &domain.Room{}
	err := r.DB.QueryRowContext(ctx, `SELECT id, name, capacity FROM rooms WHERE id = $1`, id).Scan(&room.ID, &room.Name, &room.Capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return room, nil
}

func (r *RoomRepository) List(ctx context.Context) ([]domain.Room, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, capacity FROM rooms ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var rooms []domain.Room
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// CatalogRepository reads teacher, group and subject names.
type CatalogRepository struct {
	DB *sql.DB
}

func NewCatalogRepository(db *sql.DB) domain.CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) ListTeachers(ctx context.Context) ([]domain.NamedRef, error) {
	return r.listNames(ctx, `SELECT id, first_name || ' ' || last_name FROM teachers ORDER BY id`)
}

func (r *CatalogRepository) ListGroups(ctx context.Context) ([]domain.NamedRef, error) {
	return r.listNames(ctx, `SELECT id, name FROM student_groups ORDER BY id`)
}

func (r *CatalogRepository) ListSubjects(ctx context.Context) ([]domain.NamedRef, error) {
	return r.listNames(ctx, `SELECT id, name FROM subjects ORDER BY id`)
}

func (r *CatalogRepository) listNames(ctx context.Context, query string) ([]domain.NamedRef, error) {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.NamedRef
	for rows.Next() {
		var ref domain.NamedRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}
