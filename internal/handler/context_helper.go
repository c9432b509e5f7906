package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

const snapshotHeader = "X-Snapshot-Taken-At"

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

// dateQuery reads a YYYY-MM-DD query parameter, falling back to def when absent.
func dateQuery(c *gin.Context, key string, def time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	date, err := timetable.ParseDate(raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, key+" must be a YYYY-MM-DD date")
	}
	return date, nil
}

func optionalDateQuery(c *gin.Context, key string) (*time.Time, error) {
	if strings.TrimSpace(c.Query(key)) == "" {
		return nil, nil
	}
	date, err := dateQuery(c, key, time.Time{})
	if err != nil {
		return nil, err
	}
	return &date, nil
}

// occurrenceFilter reads the view filters shared by the timetable endpoints.
func occurrenceFilter(c *gin.Context) (timetable.OccurrenceFilter, error) {
	filter := timetable.OccurrenceFilter{
		RoomID:       strings.TrimSpace(c.Query("roomId")),
		InstructorID: strings.TrimSpace(c.Query("instructorId")),
		CourseID:     strings.TrimSpace(c.Query("courseId")),
	}
	if raw := c.Query("level"); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil || level < 1 {
			return filter, appErrors.Clone(appErrors.ErrValidation, "level must be a positive number")
		}
		filter.Level = level
	}
	if raw := c.Query("kind"); raw != "" {
		filter.Kind = models.LectureKind(strings.ToUpper(raw))
		if !filter.Kind.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "kind must be THEORETICAL or PRACTICAL")
		}
	}
	if raw := c.Query("shift"); raw != "" {
		filter.Shift = models.Shift(strings.ToUpper(raw))
		if !filter.Shift.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "shift must be MORNING or EVENING")
		}
	}
	return filter, nil
}

func pageQuery(c *gin.Context) (page, size int) {
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		size = v
	}
	return page, size
}

func setSnapshotHeader(c *gin.Context, takenAt time.Time) {
	if takenAt.IsZero() {
		return
	}
	stamp := takenAt.UTC().Format(time.RFC3339)
	c.Header(snapshotHeader, stamp)
	middleware.SetMeta(c, "snapshot_taken_at", stamp)
}
