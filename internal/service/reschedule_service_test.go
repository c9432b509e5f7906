package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func newRescheduleServiceFixture(checkOverrides bool, existing ...models.Reschedule) (*RescheduleService, *memRescheduleRepo, *recordingNotifier) {
	lectures := newMemLectureRepo(baseLectures()...)
	repo := newMemRescheduleRepo(existing...)
	timetableSvc, _ := newTestTimetable(lectures, repo, nil)
	notifier := &recordingNotifier{}
	svc := NewRescheduleService(repo, lectures, timetableSvc, notifier, nil, checkOverrides, validator.New(), zap.NewNop())
	return svc, repo, notifier
}

func rescheduleRequest(lectureID, original, newDate, start, end, room string) dto.RescheduleRequest {
	return dto.RescheduleRequest{
		LectureID:    lectureID,
		OriginalDate: original,
		NewDate:      newDate,
		StartTime:    start,
		EndTime:      end,
		RoomID:       room,
		Reason:       "  public holiday ",
	}
}

func TestRescheduleServiceCreate(t *testing.T) {
	svc, repo, notifier := newRescheduleServiceFixture(true)

	item, err := svc.Create(context.Background(), rescheduleRequest("A", "2024-05-05", "2024-05-07", "08:00", "09:30", "R1"), "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "user-1", item.CreatedBy)
	assert.Equal(t, "public holiday", item.Reason)
	assert.Equal(t, mustDate("2024-05-07"), item.NewDate)
	assert.Len(t, repo.items, 1)
	assert.Equal(t, 1, notifier.count())
}

func TestRescheduleServiceRejectsDuplicate(t *testing.T) {
	svc, repo, notifier := newRescheduleServiceFixture(true, movedLectureA())

	_, err := svc.Create(context.Background(), rescheduleRequest("A", "2024-05-05", "2024-05-08", "08:00", "09:30", "R1"), "user-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrScheduleConflict))

	var conflict *timetable.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, timetable.ConflictDuplicateReschedule, conflict.Kind)
	assert.Len(t, repo.items, 1)
	assert.Zero(t, notifier.count())
}

func TestRescheduleServiceRejectsOverrideCollision(t *testing.T) {
	svc, _, _ := newRescheduleServiceFixture(true)

	_, err := svc.Create(context.Background(), rescheduleRequest("A", "2024-05-05", "2024-05-06", "08:30", "09:30", "R1"), "user-1")
	var conflict *timetable.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, timetable.ConflictRoom, conflict.Kind)
	assert.Equal(t, "C", conflict.LectureID)
	require.NotNil(t, conflict.Date)
	assert.Equal(t, "2024-05-06", conflict.Date.Format(time.DateOnly))
}

func TestRescheduleServiceSkipsOverrideCheckWhenDisabled(t *testing.T) {
	svc, repo, _ := newRescheduleServiceFixture(false)

	_, err := svc.Create(context.Background(), rescheduleRequest("A", "2024-05-05", "2024-05-06", "08:30", "09:30", "R1"), "user-1")
	require.NoError(t, err)
	assert.Len(t, repo.items, 1)
}

func TestRescheduleServiceCreateRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name   string
		req    dto.RescheduleRequest
		target *appErrors.Error
	}{
		{"weekday mismatch", rescheduleRequest("A", "2024-05-06", "2024-05-07", "08:00", "09:00", "R1"), appErrors.ErrValidation},
		{"inverted range", rescheduleRequest("A", "2024-05-05", "2024-05-07", "10:00", "09:00", "R1"), appErrors.ErrValidation},
		{"bad date", rescheduleRequest("A", "05/05/2024", "2024-05-07", "08:00", "09:00", "R1"), appErrors.ErrValidation},
		{"unknown room", rescheduleRequest("A", "2024-05-05", "2024-05-07", "08:00", "09:00", "R9"), appErrors.ErrValidation},
		{"unknown lecture", rescheduleRequest("Z", "2024-05-05", "2024-05-07", "08:00", "09:00", "R1"), appErrors.ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, _ := newRescheduleServiceFixture(true)
			_, err := svc.Create(context.Background(), tc.req, "user-1")
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, tc.target), err.Error())
			assert.Empty(t, repo.items)
		})
	}
}

func TestRescheduleServiceMapsUniqueViolation(t *testing.T) {
	svc, repo, _ := newRescheduleServiceFixture(true)
	repo.createErr = &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}

	_, err := svc.Create(context.Background(), rescheduleRequest("A", "2024-05-05", "2024-05-07", "08:00", "09:00", "R1"), "user-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrScheduleConflict))

	repo.createErr = errors.New("connection refused")
	_, err = svc.Create(context.Background(), rescheduleRequest("A", "2024-05-05", "2024-05-07", "08:00", "09:00", "R1"), "user-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}

func TestRescheduleServiceListGetDelete(t *testing.T) {
	svc, repo, notifier := newRescheduleServiceFixture(true, movedLectureA())
	ctx := context.Background()

	items, pagination, err := svc.List(ctx, models.RescheduleFilter{LectureID: "A", IncludeExpired: true, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 10, pagination.PageSize)
	assert.Equal(t, "A", repo.lastList.LectureID)
	assert.True(t, repo.lastList.IncludeExpired)

	item, err := svc.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "A", item.LectureID)

	_, err = svc.Get(ctx, "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, svc.Delete(ctx, "r1"))
	assert.Empty(t, repo.items)
	assert.Equal(t, 1, notifier.count())

	err = svc.Delete(ctx, "r1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
