package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type lectureRepository interface {
	List(ctx context.Context, filter models.LectureFilter) ([]models.Lecture, int, error)
	ListByWeekday(ctx context.Context, weekday int) ([]models.Lecture, error)
	FindByID(ctx context.Context, id string) (*models.Lecture, error)
	Create(ctx context.Context, lecture *models.Lecture) error
	Update(ctx context.Context, lecture *models.Lecture) error
	Delete(ctx context.Context, id string) error
	CountReschedules(ctx context.Context, id string) (int, error)
}

type snapshotSource interface {
	Snapshot(ctx context.Context) (*timetable.Snapshot, error)
}

type changeNotifier interface {
	Notify(reason string)
}

// LectureService manages recurring lectures. Every write is checked against
// the lectures currently stored for the same weekday.
type LectureService struct {
	repo      lectureRepository
	snapshots snapshotSource
	notifier  changeNotifier
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLectureService constructs the lecture service.
func NewLectureService(repo lectureRepository, snapshots snapshotSource, notifier changeNotifier, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *LectureService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerTimetableValidations(validate)
	return &LectureService{repo: repo, snapshots: snapshots, notifier: notifier, metrics: metrics, validator: validate, logger: logger}
}

// List returns lectures with pagination metadata.
func (s *LectureService) List(ctx context.Context, filter models.LectureFilter) ([]models.Lecture, *models.Pagination, error) {
	lectures, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lectures")
	}
	return lectures, paginate(filter.Page, filter.PageSize, total, 50), nil
}

// Get returns a lecture by id.
func (s *LectureService) Get(ctx context.Context, id string) (*models.Lecture, error) {
	lecture, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecture not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecture")
	}
	return lecture, nil
}

// Create stores a new lecture after contract and conflict checks.
func (s *LectureService) Create(ctx context.Context, req dto.LectureRequest) (*models.Lecture, error) {
	lecture, err := s.build(req)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, lecture); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &lecture); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lecture")
	}
	s.logger.Info("lecture created", zap.String("lecture_id", lecture.ID), zap.Int("weekday", lecture.Weekday), zap.Stringer("start", lecture.StartTime))
	s.notify("lecture created")
	return &lecture, nil
}

// Update replaces an existing lecture after contract and conflict checks.
func (s *LectureService) Update(ctx context.Context, id string, req dto.LectureRequest) (*models.Lecture, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	lecture, err := s.build(req)
	if err != nil {
		return nil, err
	}
	lecture.ID = existing.ID
	lecture.CreatedAt = existing.CreatedAt
	if lecture.Weekday != existing.Weekday {
		if err := s.ensureNoReschedules(ctx, existing.ID); err != nil {
			return nil, err
		}
	}
	if err := s.check(ctx, lecture); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &lecture); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecture not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lecture")
	}
	s.logger.Info("lecture updated", zap.String("lecture_id", lecture.ID))
	s.notify("lecture updated")
	return &lecture, nil
}

// Delete removes a lecture together with its reschedules.
func (s *LectureService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lecture")
	}
	s.logger.Info("lecture deleted", zap.String("lecture_id", id))
	s.notify("lecture deleted")
	return nil
}

// Validate dry-runs a lecture without storing it. Conflicts and contract
// violations are reported in the result rather than as errors.
func (s *LectureService) Validate(ctx context.Context, req dto.ValidateLectureRequest) (*dto.ValidationResult, error) {
	lecture, err := s.build(req.LectureRequest)
	if err != nil {
		return nil, err
	}
	lecture.ID = req.LectureID

	err = s.check(ctx, lecture)
	if err == nil {
		return &dto.ValidationResult{Valid: true}, nil
	}
	result := &dto.ValidationResult{Valid: false, Message: appErrors.FromError(err).Message}
	var conflict *timetable.ConflictError
	if errors.As(err, &conflict) {
		result.Conflict = conflict
		return result, nil
	}
	if appErrors.Is(err, appErrors.ErrValidation) {
		return result, nil
	}
	return nil, err
}

func (s *LectureService) build(req dto.LectureRequest) (models.Lecture, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Lecture{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lecture payload")
	}
	start, err := models.ParseClock(req.StartTime)
	if err != nil {
		return models.Lecture{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start_time")
	}
	end, err := models.ParseClock(req.EndTime)
	if err != nil {
		return models.Lecture{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end_time")
	}

	lecture := models.Lecture{
		CourseID:     strings.TrimSpace(req.CourseID),
		InstructorID: strings.TrimSpace(req.InstructorID),
		RoomID:       strings.TrimSpace(req.RoomID),
		Weekday:      *req.Weekday,
		StartTime:    start,
		EndTime:      end,
		Level:        req.Level,
		Kind:         models.LectureKind(strings.ToUpper(req.Kind)),
		Shift:        models.Shift(strings.ToUpper(req.Shift)),
		SectionID:    trimmedOrNil(req.SectionID),
		GroupID:      trimmedOrNil(req.GroupID),
	}
	for _, a := range req.AssistantIDs {
		lecture.AssistantIDs = append(lecture.AssistantIDs, strings.TrimSpace(a))
	}
	return lecture, nil
}

// check runs the candidate against the stored lectures of its weekday.
// Labels and reference checks use the current snapshot when one is available.
func (s *LectureService) check(ctx context.Context, lecture models.Lecture) error {
	dir := models.Directory{}
	if snap, err := s.snapshots.Snapshot(ctx); err == nil {
		dir = snap.Directory()
		if err := ensureReferences(dir, lecture); err != nil {
			s.metrics.RecordValidation("lecture", "invalid")
			return err
		}
	} else {
		s.logger.Warn("validating lecture without directory", zap.Error(err))
	}

	peers, err := s.repo.ListByWeekday(ctx, lecture.Weekday)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lectures for conflict check")
	}
	err = timetable.ValidateCandidate(peers, lecture, dir)
	s.metrics.RecordValidation("lecture", validationOutcome(err))
	return mapDomainError(err)
}

// ensureNoReschedules blocks a weekday change while reschedules still point at
// dates on the old weekday.
func (s *LectureService) ensureNoReschedules(ctx context.Context, id string) error {
	total, err := s.repo.CountReschedules(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count lecture reschedules")
	}
	if total > 0 {
		return appErrors.Clone(appErrors.ErrScheduleConflict,
			fmt.Sprintf("lecture has %d reschedule(s) on its current weekday; delete them before changing the weekday", total))
	}
	return nil
}

func (s *LectureService) notify(reason string) {
	if s.notifier != nil {
		s.notifier.Notify(reason)
	}
}

// ensureReferences rejects ids unknown to a populated directory.
func ensureReferences(dir models.Directory, l models.Lecture) error {
	unknown := func(kind, id string) error {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown %s %q", kind, id))
	}
	if len(dir.Courses) > 0 && l.CourseID != "" {
		if _, ok := dir.Courses[l.CourseID]; !ok {
			return unknown("course", l.CourseID)
		}
	}
	if len(dir.Rooms) > 0 && l.RoomID != "" {
		if _, ok := dir.Rooms[l.RoomID]; !ok {
			return unknown("room", l.RoomID)
		}
	}
	if len(dir.Instructors) > 0 {
		for _, id := range l.People() {
			if id == "" {
				continue
			}
			if _, ok := dir.Instructors[id]; !ok {
				return unknown("instructor", id)
			}
		}
	}
	return nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
