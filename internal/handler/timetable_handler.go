package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/export"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type timetableViewer interface {
	Today() time.Time
	Day(ctx context.Context, date time.Time, filter timetable.OccurrenceFilter) (*service.DayView, error)
	Week(ctx context.Context, date time.Time, filter timetable.OccurrenceFilter) (*service.WeekView, error)
	Layout(ctx context.Context, date time.Time, filter timetable.OccurrenceFilter) (*service.LayoutView, error)
	Conflicts(ctx context.Context) (*service.ConflictReport, error)
}

type timetableExporter interface {
	Week(ctx context.Context, date time.Time, format export.Format, filter timetable.OccurrenceFilter) (*service.ExportFile, error)
	Conflicts(ctx context.Context, format export.Format) (*service.ExportFile, error)
}

// TimetableHandler serves resolved timetable views.
type TimetableHandler struct {
	timetable timetableViewer
	exports   timetableExporter
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(views timetableViewer, exports timetableExporter) *TimetableHandler {
	return &TimetableHandler{timetable: views, exports: exports}
}

// viewQuery resolves the date once per request, so a request straddling
// midnight still renders a single day.
func (h *TimetableHandler) viewQuery(c *gin.Context) (time.Time, timetable.OccurrenceFilter, bool) {
	date, err := dateQuery(c, "date", h.timetable.Today())
	if err != nil {
		response.Error(c, err)
		return time.Time{}, timetable.OccurrenceFilter{}, false
	}
	filter, err := occurrenceFilter(c)
	if err != nil {
		response.Error(c, err)
		return time.Time{}, timetable.OccurrenceFilter{}, false
	}
	return date, filter, true
}

// Day godoc
// @Summary Timetable of one day
// @Description Recurring lectures of the date's weekday with reschedules applied
// @Tags Timetable
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Param roomId query string false "Room"
// @Param instructorId query string false "Instructor or assistant"
// @Param courseId query string false "Course"
// @Param level query int false "Study level"
// @Param kind query string false "THEORETICAL or PRACTICAL"
// @Param shift query string false "MORNING or EVENING"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetable/day [get]
func (h *TimetableHandler) Day(c *gin.Context) {
	date, filter, ok := h.viewQuery(c)
	if !ok {
		return
	}
	view, err := h.timetable.Day(c.Request.Context(), date, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	if view.TakenAt != nil {
		setSnapshotHeader(c, *view.TakenAt)
	}
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// Week godoc
// @Summary Timetable of one week
// @Description Sunday to Saturday week containing the date
// @Tags Timetable
// @Produce json
// @Param date query string false "Any date in the week, defaults to today"
// @Param roomId query string false "Room"
// @Param instructorId query string false "Instructor or assistant"
// @Param courseId query string false "Course"
// @Param level query int false "Study level"
// @Param kind query string false "THEORETICAL or PRACTICAL"
// @Param shift query string false "MORNING or EVENING"
// @Success 200 {object} response.Envelope
// @Router /timetable/week [get]
func (h *TimetableHandler) Week(c *gin.Context) {
	date, filter, ok := h.viewQuery(c)
	if !ok {
		return
	}
	view, err := h.timetable.Week(c.Request.Context(), date, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	setSnapshotHeader(c, view.TakenAt)
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// Layout godoc
// @Summary Grid layout of one day
// @Description Occurrences projected onto the configured time window with lanes
// @Tags Timetable
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Param roomId query string false "Room"
// @Param instructorId query string false "Instructor or assistant"
// @Success 200 {object} response.Envelope
// @Router /timetable/layout [get]
func (h *TimetableHandler) Layout(c *gin.Context) {
	date, filter, ok := h.viewQuery(c)
	if !ok {
		return
	}
	view, err := h.timetable.Layout(c.Request.Context(), date, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	setSnapshotHeader(c, view.TakenAt)
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// Conflicts godoc
// @Summary Conflicts among recurring lectures
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/conflicts [get]
func (h *TimetableHandler) Conflicts(c *gin.Context) {
	report, err := h.timetable.Conflicts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	setSnapshotHeader(c, report.TakenAt)
	response.JSON(c, http.StatusOK, report, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export the timetable
// @Tags Timetable
// @Produce octet-stream
// @Param type query string false "week (default) or conflicts"
// @Param format query string false "csv (default), pdf or xlsx"
// @Param date query string false "Any date in the week, defaults to today"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	var file *service.ExportFile
	switch kind := strings.ToLower(c.DefaultQuery("type", "week")); kind {
	case "week":
		date, filter, ok := h.viewQuery(c)
		if !ok {
			return
		}
		file, err = h.exports.Week(c.Request.Context(), date, format, filter)
	case "conflicts":
		file, err = h.exports.Conflicts(c.Request.Context(), format)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "type must be week or conflicts"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
