package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

var rescheduleRowColumns = []string{"id", "lecture_id", "original_date", "new_date", "start_minute", "end_minute", "room_id", "reason", "created_by", "created_at"}

func fixedNow() time.Time {
	return time.Date(2024, 5, 5, 9, 0, 0, 0, time.UTC)
}

func TestRescheduleRepositoryListHidesExpired(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRescheduleRepository(db)
	repo.now = fixedNow

	rows := sqlmock.NewRows(rescheduleRowColumns).
		AddRow("x1", "l1", time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), 600, 690, "r2", "exam", "u1", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+rescheduleColumns+" FROM reschedules WHERE 1=1 AND lecture_id = $1 AND new_date >= $2 ORDER BY new_date ASC")).
		WithArgs("l1", "2024-05-05").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reschedules WHERE 1=1 AND lecture_id = $1 AND new_date >= $2")).
		WithArgs("l1", "2024-05-05").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.RescheduleFilter{LectureID: "l1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.Clock(600), items[0].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleRepositoryListIncludeExpiredWithRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRescheduleRepository(db)

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM reschedules WHERE 1=1 AND new_date >= $1 AND new_date <= $2 ORDER BY")).
		WithArgs("2024-05-01", "2024-05-31").
		WillReturnRows(sqlmock.NewRows(rescheduleRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reschedules WHERE 1=1 AND new_date >= $1 AND new_date <= $2")).
		WithArgs("2024-05-01", "2024-05-31").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	items, total, err := repo.List(context.Background(), models.RescheduleFilter{From: &from, To: &to, IncludeExpired: true})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleRepositoryFindByLectureAndDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRescheduleRepository(db)

	original := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(rescheduleRowColumns).
		AddRow("x1", "l1", original, original.AddDate(0, 0, 1), 600, 690, "r2", "", "", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE lecture_id = $1 AND original_date = $2")).
		WithArgs("l1", "2024-05-05").
		WillReturnRows(rows)

	item, err := repo.FindByLectureAndDate(context.Background(), "l1", original)
	require.NoError(t, err)
	assert.Equal(t, "x1", item.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRescheduleRepository(db)
	repo.now = fixedNow

	item := &models.Reschedule{
		LectureID:    "l1",
		OriginalDate: time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC),
		NewDate:      time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
		StartTime:    600,
		EndTime:      690,
		RoomID:       "r2",
		Reason:       "exam week",
		CreatedBy:    "u1",
	}
	mock.ExpectExec("INSERT INTO reschedules").
		WithArgs(sqlmock.AnyArg(), "l1", item.OriginalDate, item.NewDate, 600, 690, "r2", "exam week", "u1", fixedNow()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(context.Background(), item))
	assert.NotEmpty(t, item.ID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reschedules WHERE id = $1")).
		WithArgs(item.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), item.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
