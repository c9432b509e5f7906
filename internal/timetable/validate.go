package timetable

import (
	"errors"
	"fmt"

	"github.com/noah-isme/timetable-api/internal/models"
)

// Input contract violations. They are returned before any overlap test runs.
var (
	ErrInvalidTimeRange     = errors.New("end time must be after start time")
	ErrClockOutOfRange      = errors.New("time must fall within a single day")
	ErrInvalidWeekday       = errors.New("weekday must be between 0 (Sunday) and 4 (Thursday)")
	ErrInvalidLevel         = errors.New("level must be a positive number")
	ErrInvalidKind          = errors.New("lecture kind must be THEORETICAL or PRACTICAL")
	ErrInvalidShift         = errors.New("shift must be MORNING or EVENING")
	ErrMissingReference     = errors.New("course, instructor and room are required")
	ErrMissingAssistants    = errors.New("practical lectures require at least one assistant")
	ErrUnexpectedAssistants = errors.New("theoretical lectures cannot have assistants")
	ErrDuplicateAssistant   = errors.New("assistant listed twice or equal to the primary instructor")
	ErrMissingSection       = errors.New("theoretical lectures require a section and no group")
	ErrMissingGroup         = errors.New("practical lectures require a group and no section")
	ErrWeekdayMismatch      = errors.New("original date does not fall on the lecture weekday")
	ErrMissingRoom          = errors.New("room is required")
	ErrUnknownLecture       = errors.New("lecture not found in snapshot")
)

// ValidateTimeRange checks that start and end describe a non-empty range within one day.
func ValidateTimeRange(start, end models.Clock) error {
	if !start.Valid() || !end.Valid() {
		return ErrClockOutOfRange
	}
	if start >= end {
		return fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, start, end)
	}
	return nil
}

// ValidateLecture enforces the structural invariants of a recurring lecture.
func ValidateLecture(l models.Lecture) error {
	if l.CourseID == "" || l.InstructorID == "" || l.RoomID == "" {
		return ErrMissingReference
	}
	if l.Weekday < models.WeekdaySunday || l.Weekday > models.WeekdayThursday {
		return ErrInvalidWeekday
	}
	if err := ValidateTimeRange(l.StartTime, l.EndTime); err != nil {
		return err
	}
	if l.Level <= 0 {
		return ErrInvalidLevel
	}
	if !l.Shift.Valid() {
		return ErrInvalidShift
	}

	switch l.Kind {
	case models.LectureKindTheoretical:
		if len(l.AssistantIDs) > 0 {
			return ErrUnexpectedAssistants
		}
		if l.SectionID == nil || *l.SectionID == "" || l.GroupID != nil {
			return ErrMissingSection
		}
	case models.LectureKindPractical:
		if len(l.AssistantIDs) == 0 {
			return ErrMissingAssistants
		}
		if l.GroupID == nil || *l.GroupID == "" || l.SectionID != nil {
			return ErrMissingGroup
		}
		seen := map[string]struct{}{l.InstructorID: {}}
		for _, a := range l.AssistantIDs {
			if _, dup := seen[a]; dup || a == "" {
				return ErrDuplicateAssistant
			}
			seen[a] = struct{}{}
		}
	default:
		return ErrInvalidKind
	}
	return nil
}

// ValidateRescheduleContract checks a reschedule against its owning lecture.
func ValidateRescheduleContract(owner models.Lecture, r models.Reschedule) error {
	if r.RoomID == "" {
		return ErrMissingRoom
	}
	if err := ValidateTimeRange(r.StartTime, r.EndTime); err != nil {
		return err
	}
	if int(r.OriginalDate.Weekday()) != owner.Weekday {
		return fmt.Errorf("%w: %s is a %s", ErrWeekdayMismatch, r.OriginalDate.Format("2006-01-02"), r.OriginalDate.Weekday())
	}
	return nil
}
