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

type rescheduleService interface {
	List(ctx context.Context, filter models.RescheduleFilter) ([]models.Reschedule, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Reschedule, error)
	Create(ctx context.Context, req dto.RescheduleRequest, actorID string) (*models.Reschedule, error)
	Delete(ctx context.Context, id string) error
}

// RescheduleHandler manages one-off lecture reschedules.
type RescheduleHandler struct {
	service rescheduleService
}

// NewRescheduleHandler constructs handler.
func NewRescheduleHandler(svc rescheduleService) *RescheduleHandler {
	return &RescheduleHandler{service: svc}
}

// List godoc
// @Summary List reschedules
// @Description Reschedules whose new date has passed are hidden unless all=true
// @Tags Reschedules
// @Produce json
// @Param lectureId query string false "Filter by lecture"
// @Param from query string false "New date from (YYYY-MM-DD)"
// @Param to query string false "New date to (YYYY-MM-DD)"
// @Param all query bool false "Include expired reschedules"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /reschedules [get]
func (h *RescheduleHandler) List(c *gin.Context) {
	filter := models.RescheduleFilter{LectureID: strings.TrimSpace(c.Query("lectureId"))}
	var err error
	if filter.From, err = optionalDateQuery(c, "from"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.To, err = optionalDateQuery(c, "to"); err != nil {
		response.Error(c, err)
		return
	}
	if raw := c.Query("all"); raw != "" {
		all, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "all must be true or false"))
			return
		}
		filter.IncludeExpired = all
	}
	filter.Page, filter.PageSize = pageQuery(c)

	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get reschedule
// @Tags Reschedules
// @Produce json
// @Param id path string true "Reschedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reschedules/{id} [get]
func (h *RescheduleHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Reschedule one occurrence of a lecture
// @Tags Reschedules
// @Accept json
// @Produce json
// @Param payload body dto.RescheduleRequest true "Reschedule payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reschedules [post]
func (h *RescheduleHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Delete godoc
// @Summary Delete reschedule
// @Description Restores the original occurrence
// @Tags Reschedules
// @Param id path string true "Reschedule ID"
// @Success 204
// @Router /reschedules/{id} [delete]
func (h *RescheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
