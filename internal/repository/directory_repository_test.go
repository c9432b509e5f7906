package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryRepositoryLoad(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDirectoryRepository(db)

	mock.ExpectQuery("SELECT id, name, building FROM rooms").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "building"}).AddRow("r1", "Hall 1", "Main"))
	mock.ExpectQuery("SELECT id, full_name FROM instructors").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name"}).AddRow("i1", "Dr. Salem"))
	mock.ExpectQuery("SELECT id, code, name FROM courses").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name"}).AddRow("c1", "CS101", "Intro"))

	dir, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hall 1 (Main)", dir.RoomName("r1"))
	assert.Equal(t, "Dr. Salem", dir.InstructorName("i1"))
	assert.Equal(t, "CS101", dir.CourseCode("c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepositoryLoadError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDirectoryRepository(db)

	mock.ExpectQuery("SELECT id, name, building FROM rooms").
		WillReturnError(errors.New("boom"))

	_, err := repo.Load(context.Background())
	assert.ErrorContains(t, err, "load rooms")
}
