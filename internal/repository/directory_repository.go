package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// DirectoryRepository reads the reference data used to label timetable output.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository constructs a DirectoryRepository.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// Load reads rooms, instructors and courses into a Directory.
func (r *DirectoryRepository) Load(ctx context.Context) (models.Directory, error) {
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, `SELECT id, name, building FROM rooms ORDER BY id`); err != nil {
		return models.Directory{}, fmt.Errorf("load rooms: %w", err)
	}
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, `SELECT id, full_name FROM instructors ORDER BY id`); err != nil {
		return models.Directory{}, fmt.Errorf("load instructors: %w", err)
	}
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, `SELECT id, code, name FROM courses ORDER BY id`); err != nil {
		return models.Directory{}, fmt.Errorf("load courses: %w", err)
	}
	return models.NewDirectory(rooms, instructors, courses), nil
}

// Ping checks database reachability for readiness probes.
func (r *DirectoryRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
