package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/export"
)

var snapshotTime = time.Date(2024, 5, 5, 9, 0, 0, 0, time.UTC)

type timetableViewerMock struct {
	today      time.Time
	date       time.Time
	filter     timetable.OccurrenceFilter
	err        error
	dayCalls   int
	weekCalls  int
	layoutDate time.Time
}

func (m *timetableViewerMock) Today() time.Time { return m.today }

func (m *timetableViewerMock) Day(ctx context.Context, date time.Time, filter timetable.OccurrenceFilter) (*service.DayView, error) {
	m.dayCalls++
	m.date, m.filter = date, filter
	if m.err != nil {
		return nil, m.err
	}
	taken := snapshotTime
	return &service.DayView{TakenAt: &taken, Date: date.Format(time.DateOnly), Weekday: int(date.Weekday())}, nil
}

func (m *timetableViewerMock) Week(ctx context.Context, date time.Time, filter timetable.OccurrenceFilter) (*service.WeekView, error) {
	m.weekCalls++
	m.date, m.filter = date, filter
	return &service.WeekView{TakenAt: snapshotTime, Start: timetable.WeekStart(date).Format(time.DateOnly)}, nil
}

func (m *timetableViewerMock) Layout(ctx context.Context, date time.Time, filter timetable.OccurrenceFilter) (*service.LayoutView, error) {
	m.layoutDate = date
	return &service.LayoutView{TakenAt: snapshotTime, Date: date.Format(time.DateOnly), Window: timetable.DefaultWindow}, nil
}

func (m *timetableViewerMock) Conflicts(ctx context.Context) (*service.ConflictReport, error) {
	return &service.ConflictReport{TakenAt: snapshotTime, Count: 2}, nil
}

type timetableExporterMock struct {
	format export.Format
	kind   string
}

func (m *timetableExporterMock) Week(ctx context.Context, date time.Time, format export.Format, filter timetable.OccurrenceFilter) (*service.ExportFile, error) {
	m.format, m.kind = format, "week"
	return &service.ExportFile{Filename: format.Filename("timetable-" + date.Format(time.DateOnly)), ContentType: format.ContentType(), Body: []byte("Date,Day\n")}, nil
}

func (m *timetableExporterMock) Conflicts(ctx context.Context, format export.Format) (*service.ExportFile, error) {
	m.format, m.kind = format, "conflicts"
	return &service.ExportFile{Filename: format.Filename("conflicts"), ContentType: format.ContentType(), Body: []byte("%PDF-1.3")}, nil
}

func timetableRouter(viewer *timetableViewerMock, exporter *timetableExporterMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTimetableHandler(viewer, exporter)
	router := gin.New()
	router.GET("/timetable/day", h.Day)
	router.GET("/timetable/week", h.Week)
	router.GET("/timetable/layout", h.Layout)
	router.GET("/timetable/conflicts", h.Conflicts)
	router.GET("/timetable/export", h.Export)
	return router
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestTimetableDayDefaultsToToday(t *testing.T) {
	viewer := &timetableViewerMock{today: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)}
	w := get(timetableRouter(viewer, nil), "/timetable/day")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, viewer.today, viewer.date)
	require.Equal(t, "2024-05-05T09:00:00Z", w.Header().Get(snapshotHeader))

	var body struct {
		Data service.DayView        `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "2024-05-06", body.Data.Date)
	require.Equal(t, "2024-05-05T09:00:00Z", body.Meta["snapshot_taken_at"])
}

func TestTimetableDayParsesFilters(t *testing.T) {
	viewer := &timetableViewerMock{}
	w := get(timetableRouter(viewer, nil), "/timetable/day?date=2024-05-05&roomId=R1&instructorId=I2&courseId=C&level=3&kind=practical&shift=evening")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2024-05-05", viewer.date.Format(time.DateOnly))
	require.Equal(t, timetable.OccurrenceFilter{
		RoomID:       "R1",
		InstructorID: "I2",
		CourseID:     "C",
		Level:        3,
		Kind:         models.LectureKindPractical,
		Shift:        models.ShiftEvening,
	}, viewer.filter)
}

func TestTimetableDayRejectsBadQuery(t *testing.T) {
	viewer := &timetableViewerMock{}
	router := timetableRouter(viewer, nil)

	for _, target := range []string{
		"/timetable/day?date=05-05-2024",
		"/timetable/day?level=zero",
		"/timetable/day?kind=lab",
		"/timetable/day?shift=night",
	} {
		w := get(router, target)
		require.Equal(t, http.StatusBadRequest, w.Code, target)
	}
	require.Zero(t, viewer.dayCalls)
}

func TestTimetableDayPropagatesUnavailable(t *testing.T) {
	viewer := &timetableViewerMock{err: appErrors.Clone(appErrors.ErrUnavailable, "timetable data unavailable")}
	w := get(timetableRouter(viewer, nil), "/timetable/day?date=2024-05-05")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTimetableWeekLayoutConflicts(t *testing.T) {
	viewer := &timetableViewerMock{today: time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)}
	router := timetableRouter(viewer, nil)

	w := get(router, "/timetable/week")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, viewer.weekCalls)
	require.NotEmpty(t, w.Header().Get(snapshotHeader))

	w = get(router, "/timetable/layout?date=2024-05-07")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2024-05-07", viewer.layoutDate.Format(time.DateOnly))

	w = get(router, "/timetable/conflicts")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"count":2`)
}

func TestTimetableExport(t *testing.T) {
	viewer := &timetableViewerMock{today: time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)}
	exporter := &timetableExporterMock{}
	router := timetableRouter(viewer, exporter)

	w := get(router, "/timetable/export")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "week", exporter.kind)
	require.Equal(t, export.FormatCSV, exporter.format)
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="timetable-2024-05-08.csv"`, w.Header().Get("Content-Disposition"))

	w = get(router, "/timetable/export?type=conflicts&format=PDF")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "conflicts", exporter.kind)
	require.Equal(t, export.FormatPDF, exporter.format)

	require.Equal(t, http.StatusBadRequest, get(router, "/timetable/export?format=docx").Code)
	require.Equal(t, http.StatusBadRequest, get(router, "/timetable/export?type=month").Code)
}
