package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type lectureService interface {
	List(ctx context.Context, filter models.LectureFilter) ([]models.Lecture, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Lecture, error)
	Create(ctx context.Context, req dto.LectureRequest) (*models.Lecture, error)
	Update(ctx context.Context, id string, req dto.LectureRequest) (*models.Lecture, error)
	Delete(ctx context.Context, id string) error
	Validate(ctx context.Context, req dto.ValidateLectureRequest) (*dto.ValidationResult, error)
}

// LectureHandler manages recurring lecture endpoints.
type LectureHandler struct {
	service lectureService
}

// NewLectureHandler constructs handler.
func NewLectureHandler(svc lectureService) *LectureHandler {
	return &LectureHandler{service: svc}
}

// List godoc
// @Summary List lectures
// @Tags Lectures
// @Produce json
// @Param weekday query int false "0 (Sunday) to 4 (Thursday)"
// @Param roomId query string false "Filter by room"
// @Param instructorId query string false "Filter by instructor or assistant"
// @Param courseId query string false "Filter by course"
// @Param level query int false "Filter by level"
// @Param kind query string false "THEORETICAL or PRACTICAL"
// @Param shift query string false "MORNING or EVENING"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort column"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /lectures [get]
func (h *LectureHandler) List(c *gin.Context) {
	var filter models.LectureFilter
	if raw := c.Query("weekday"); raw != "" {
		weekday, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekday must be a number"))
			return
		}
		filter.Weekday = &weekday
	}
	view, err := occurrenceFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter.RoomID = view.RoomID
	filter.InstructorID = view.InstructorID
	filter.CourseID = view.CourseID
	filter.Level = view.Level
	filter.Kind = view.Kind
	filter.Shift = view.Shift
	filter.Page, filter.PageSize = pageQuery(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = strings.ToLower(c.Query("order"))

	lectures, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lectures, pagination)
}

// Get godoc
// @Summary Get lecture
// @Tags Lectures
// @Produce json
// @Param id path string true "Lecture ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lectures/{id} [get]
func (h *LectureHandler) Get(c *gin.Context) {
	lecture, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lecture, nil)
}

// Create godoc
// @Summary Create lecture
// @Description Rejected with 409 when the room or a person is already booked
// @Tags Lectures
// @Accept json
// @Produce json
// @Param payload body dto.LectureRequest true "Lecture payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lectures [post]
func (h *LectureHandler) Create(c *gin.Context) {
	var req dto.LectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lecture, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lecture)
}

// Update godoc
// @Summary Update lecture
// @Tags Lectures
// @Accept json
// @Produce json
// @Param id path string true "Lecture ID"
// @Param payload body dto.LectureRequest true "Lecture payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lectures/{id} [put]
func (h *LectureHandler) Update(c *gin.Context) {
	var req dto.LectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lecture, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lecture, nil)
}

// Delete godoc
// @Summary Delete lecture
// @Description Also removes the lecture's reschedules
// @Tags Lectures
// @Param id path string true "Lecture ID"
// @Success 204
// @Router /lectures/{id} [delete]
func (h *LectureHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Validate godoc
// @Summary Dry-run a lecture
// @Description Reports the first conflict without storing anything
// @Tags Lectures
// @Accept json
// @Produce json
// @Param payload body dto.ValidateLectureRequest true "Lecture payload"
// @Success 200 {object} response.Envelope
// @Router /lectures/validate [post]
func (h *LectureHandler) Validate(c *gin.Context) {
	var req dto.ValidateLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
