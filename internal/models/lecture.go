package models

import (
	"time"

	"github.com/lib/pq"
)

// Weekday values used by the timetable. The academic week runs Sunday to
// Thursday and shares numbering with time.Weekday.
const (
	WeekdaySunday    = 0
	WeekdayMonday    = 1
	WeekdayTuesday   = 2
	WeekdayWednesday = 3
	WeekdayThursday  = 4

	// TeachingDays is the number of weekdays carrying lectures.
	TeachingDays = 5
)

// LectureKind distinguishes theoretical lectures from practical sessions.
type LectureKind string

const (
	LectureKindTheoretical LectureKind = "THEORETICAL"
	LectureKindPractical   LectureKind = "PRACTICAL"
)

// Valid reports whether the kind is a known variant.
func (k LectureKind) Valid() bool {
	return k == LectureKindTheoretical || k == LectureKindPractical
}

// Shift is the study track a lecture belongs to.
type Shift string

const (
	ShiftMorning Shift = "MORNING"
	ShiftEvening Shift = "EVENING"
)

// Valid reports whether the shift is a known variant.
func (s Shift) Valid() bool {
	return s == ShiftMorning || s == ShiftEvening
}

// Lecture is the recurring weekly definition of a lecture. It represents
// "every such weekday" rather than a single date.
type Lecture struct {
	ID           string         `db:"id" json:"id"`
	CourseID     string         `db:"course_id" json:"course_id"`
	InstructorID string         `db:"instructor_id" json:"instructor_id"`
	AssistantIDs pq.StringArray `db:"assistant_ids" json:"assistant_ids"`
	RoomID       string         `db:"room_id" json:"room_id"`
	Weekday      int            `db:"weekday" json:"weekday"`
	StartTime    Clock          `db:"start_minute" json:"start_time"`
	EndTime      Clock          `db:"end_minute" json:"end_time"`
	Level        int            `db:"level" json:"level"`
	Kind         LectureKind    `db:"kind" json:"kind"`
	Shift        Shift          `db:"shift" json:"shift"`
	SectionID    *string        `db:"section_id" json:"section_id,omitempty"`
	GroupID      *string        `db:"group_id" json:"group_id,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// Clone returns a copy that shares no slices or pointers with l.
func (l Lecture) Clone() Lecture {
	out := l
	if l.AssistantIDs != nil {
		out.AssistantIDs = append(pq.StringArray(nil), l.AssistantIDs...)
	}
	if l.SectionID != nil {
		v := *l.SectionID
		out.SectionID = &v
	}
	if l.GroupID != nil {
		v := *l.GroupID
		out.GroupID = &v
	}
	return out
}

// People returns the primary instructor followed by the assistants.
func (l Lecture) People() []string {
	people := make([]string, 0, len(l.AssistantIDs)+1)
	people = append(people, l.InstructorID)
	people = append(people, l.AssistantIDs...)
	return people
}

// HasAssistant reports whether id is one of the lecture's assistants.
func (l Lecture) HasAssistant(id string) bool {
	for _, a := range l.AssistantIDs {
		if a == id {
			return true
		}
	}
	return false
}

// LectureFilter describes query params for listing lectures.
type LectureFilter struct {
	Weekday      *int
	RoomID       string
	InstructorID string
	CourseID     string
	Level        int
	Kind         LectureKind
	Shift        Shift
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
