package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

const pqUniqueViolation = "23505"

func registerTimetableValidations(v *validator.Validate) {
	v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := models.ParseClock(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("lecture_kind", func(fl validator.FieldLevel) bool {
		return models.LectureKind(strings.ToUpper(fl.Field().String())).Valid()
	})
	v.RegisterValidation("shift", func(fl validator.FieldLevel) bool {
		return models.Shift(strings.ToUpper(fl.Field().String())).Valid()
	})
}

var contractErrors = []error{
	timetable.ErrInvalidTimeRange,
	timetable.ErrClockOutOfRange,
	timetable.ErrInvalidWeekday,
	timetable.ErrInvalidLevel,
	timetable.ErrInvalidKind,
	timetable.ErrInvalidShift,
	timetable.ErrMissingReference,
	timetable.ErrMissingAssistants,
	timetable.ErrUnexpectedAssistants,
	timetable.ErrDuplicateAssistant,
	timetable.ErrMissingSection,
	timetable.ErrMissingGroup,
	timetable.ErrWeekdayMismatch,
	timetable.ErrMissingRoom,
}

func isContractError(err error) bool {
	for _, target := range contractErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// mapDomainError translates timetable errors into API errors. The typed
// conflict stays reachable through errors.As and is exposed as details.
func mapDomainError(err error) error {
	if err == nil {
		return nil
	}
	var conflict *timetable.ConflictError
	if errors.As(err, &conflict) {
		return appErrors.Wrap(conflict, appErrors.ErrScheduleConflict.Code, appErrors.ErrScheduleConflict.Status, conflict.Message).WithDetails(conflict)
	}
	if errors.Is(err, timetable.ErrUnknownLecture) {
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "lecture not found")
	}
	if isContractError(err) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "timetable check failed")
}

// validationOutcome labels a check result for metrics.
func validationOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	var conflict *timetable.ConflictError
	if errors.As(err, &conflict) {
		return strings.ToLower(string(conflict.Kind))
	}
	return "invalid"
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func paginate(page, size, total, defaultSize int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultSize
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
