package dto

import "github.com/noah-isme/timetable-api/internal/timetable"

// LectureRequest is the payload for creating, updating or dry-running a lecture.
type LectureRequest struct {
	CourseID     string   `json:"course_id" validate:"required"`
	InstructorID string   `json:"instructor_id" validate:"required"`
	AssistantIDs []string `json:"assistant_ids" validate:"omitempty,dive,required"`
	RoomID       string   `json:"room_id" validate:"required"`
	Weekday      *int     `json:"weekday" validate:"required,min=0,max=4"`
	StartTime    string   `json:"start_time" validate:"required,clock"`
	EndTime      string   `json:"end_time" validate:"required,clock"`
	Level        int      `json:"level" validate:"required,min=1"`
	Kind         string   `json:"kind" validate:"required,lecture_kind"`
	Shift        string   `json:"shift" validate:"required,shift"`
	SectionID    *string  `json:"section_id"`
	GroupID      *string  `json:"group_id"`
}

// ValidateLectureRequest dry-runs a lecture. LectureID, when set, names the
// lecture being edited so it is not compared with itself.
type ValidateLectureRequest struct {
	LectureID string `json:"lecture_id"`
	LectureRequest
}

// RescheduleRequest moves one occurrence of a lecture to another date and time.
type RescheduleRequest struct {
	LectureID    string `json:"lecture_id" validate:"required"`
	OriginalDate string `json:"original_date" validate:"required,datetime=2006-01-02"`
	NewDate      string `json:"new_date" validate:"required,datetime=2006-01-02"`
	StartTime    string `json:"start_time" validate:"required,clock"`
	EndTime      string `json:"end_time" validate:"required,clock"`
	RoomID       string `json:"room_id" validate:"required"`
	Reason       string `json:"reason" validate:"max=500"`
}

// ValidationResult reports the outcome of a dry run. Conflict is set when
// the candidate collides with an existing lecture.
type ValidationResult struct {
	Valid    bool                     `json:"valid"`
	Message  string                   `json:"message,omitempty"`
	Conflict *timetable.ConflictError `json:"conflict,omitempty"`
}
