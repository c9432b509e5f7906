package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type rescheduleRepository interface {
	List(ctx context.Context, filter models.RescheduleFilter) ([]models.Reschedule, int, error)
	ListAll(ctx context.Context) ([]models.Reschedule, error)
	FindByID(ctx context.Context, id string) (*models.Reschedule, error)
	Create(ctx context.Context, item *models.Reschedule) error
	Delete(ctx context.Context, id string) error
}

// RescheduleService admits and removes one-off lecture reschedules.
type RescheduleService struct {
	repo           rescheduleRepository
	lectures       LectureReader
	snapshots      snapshotSource
	notifier       changeNotifier
	metrics        *MetricsService
	validator      *validator.Validate
	logger         *zap.Logger
	checkOverrides bool
}

// NewRescheduleService constructs the reschedule service. With
// checkOverrides set, a reschedule is also rejected when its replacement
// occurrence collides with anything else happening on the new date.
func NewRescheduleService(repo rescheduleRepository, lectures LectureReader, snapshots snapshotSource, notifier changeNotifier, metrics *MetricsService, checkOverrides bool, validate *validator.Validate, logger *zap.Logger) *RescheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerTimetableValidations(validate)
	return &RescheduleService{
		repo:           repo,
		lectures:       lectures,
		snapshots:      snapshots,
		notifier:       notifier,
		metrics:        metrics,
		validator:      validate,
		logger:         logger,
		checkOverrides: checkOverrides,
	}
}

// List returns reschedules with pagination metadata. Expired reschedules are
// hidden unless the filter asks for them.
func (s *RescheduleService) List(ctx context.Context, filter models.RescheduleFilter) ([]models.Reschedule, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reschedules")
	}
	return items, paginate(filter.Page, filter.PageSize, total, 50), nil
}

// Get returns a reschedule by id.
func (s *RescheduleService) Get(ctx context.Context, id string) (*models.Reschedule, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reschedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reschedule")
	}
	return item, nil
}

// Create admits a reschedule for one occurrence of a lecture.
func (s *RescheduleService) Create(ctx context.Context, req dto.RescheduleRequest, actorID string) (*models.Reschedule, error) {
	item, err := s.build(req)
	if err != nil {
		return nil, err
	}
	item.CreatedBy = actorID

	lectures, err := s.lectures.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lectures for reschedule check")
	}
	existing, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reschedules for reschedule check")
	}

	dir := models.Directory{}
	if snap, snapErr := s.snapshots.Snapshot(ctx); snapErr == nil {
		dir = snap.Directory()
		if len(dir.Rooms) > 0 {
			if _, ok := dir.Rooms[item.RoomID]; !ok {
				s.metrics.RecordValidation("reschedule", "invalid")
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown room \""+item.RoomID+"\"")
			}
		}
	}

	err = timetable.ValidateReschedule(lectures, existing, item, dir, timetable.RescheduleOptions{CheckOverlaps: s.checkOverrides})
	s.metrics.RecordValidation("reschedule", validationOutcome(err))
	if err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.repo.Create(ctx, &item); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrScheduleConflict.Code, appErrors.ErrScheduleConflict.Status, "this occurrence has already been rescheduled")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reschedule")
	}
	s.logger.Info("reschedule created",
		zap.String("reschedule_id", item.ID),
		zap.String("lecture_id", item.LectureID),
		zap.String("original_date", item.OriginalDate.Format(time.DateOnly)),
		zap.String("new_date", item.NewDate.Format(time.DateOnly)),
	)
	s.notify("reschedule created")
	return &item, nil
}

// Delete removes a reschedule, restoring the original occurrence.
func (s *RescheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete reschedule")
	}
	s.logger.Info("reschedule deleted", zap.String("reschedule_id", id))
	s.notify("reschedule deleted")
	return nil
}

func (s *RescheduleService) build(req dto.RescheduleRequest) (models.Reschedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Reschedule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}
	original, err := timetable.ParseDate(req.OriginalDate)
	if err != nil {
		return models.Reschedule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid original_date")
	}
	newDate, err := timetable.ParseDate(req.NewDate)
	if err != nil {
		return models.Reschedule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid new_date")
	}
	start, err := models.ParseClock(req.StartTime)
	if err != nil {
		return models.Reschedule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start_time")
	}
	end, err := models.ParseClock(req.EndTime)
	if err != nil {
		return models.Reschedule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end_time")
	}
	return models.Reschedule{
		LectureID:    strings.TrimSpace(req.LectureID),
		OriginalDate: original,
		NewDate:      newDate,
		StartTime:    start,
		EndTime:      end,
		RoomID:       strings.TrimSpace(req.RoomID),
		Reason:       strings.TrimSpace(req.Reason),
	}, nil
}

func (s *RescheduleService) notify(reason string) {
	if s.notifier != nil {
		s.notifier.Notify(reason)
	}
}
