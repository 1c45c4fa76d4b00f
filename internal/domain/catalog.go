package domain

import "context"

// NotAvailable is shown wherever a referenced name cannot be resolved.
const NotAvailable = "No disponible"

// Room is reference data: a physical room and its seating capacity.
type Room struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// NamedRef is an id/name pair for catalog entities (teachers, groups, subjects).
type NamedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RoomRepository resolves rooms.
type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*Room, error)
	List(ctx context.Context) ([]Room, error)
}

// CatalogRepository lists the names of external catalog entities.
type CatalogRepository interface {
	ListTeachers(ctx context.Context) ([]NamedRef, error)
	ListGroups(ctx context.Context) ([]NamedRef, error)
	ListSubjects(ctx context.Context) ([]NamedRef, error)
}

// Directory answers name and room lookups for the validator and assembler.
type Directory interface {
	TeacherName(id int64) string
	GroupName(id int64) string
	SubjectName(id int64) string
	Room(id int64) (Room, bool)
}

// Catalog is an immutable in-memory Directory built from one read of the catalog.
type Catalog struct {
	teachers map[int64]string
	groups   map[int64]string
	subjects map[int64]string
	rooms    map[int64]Room
}

// NewCatalog indexes the given reference data.
func NewCatalog(teachers, groups, subjects []NamedRef, rooms []Room) *Catalog {
	c := &Catalog{
		teachers: index(teachers),
		groups:   index(groups),
		subjects: index(subjects),
		rooms:    make(map[int64]Room, len(rooms)),
	}
	for _, r := range rooms {
		c.rooms[r.ID] = r
	}
	return c
}

func index(refs []NamedRef) map[int64]string {
	m := make(map[int64]string, len(refs))
	for _, r := range refs {
		m[r.ID] = r.Name
	}
	return m
}

func lookup(m map[int64]string, id int64) string {
	if name, ok := m[id]; ok && name != "" {
		return name
	}
	return NotAvailable
}

func (c *Catalog) TeacherName(id int64) string { return lookup(c.teachers, id) }
func (c *Catalog) GroupName(id int64) string   { return lookup(c.groups, id) }
func (c *Catalog) SubjectName(id int64) string { return lookup(c.subjects, id) }

func (c *Catalog) Room(id int64) (Room, bool) {
	r, ok := c.rooms[id]
	return r, ok
}

// RoomName returns the room's name or NotAvailable.
func RoomName(d Directory, id int64) string {
	if r, ok := d.Room(id); ok && r.Name != "" {
		return r.Name
	}
	return NotAvailable
}
