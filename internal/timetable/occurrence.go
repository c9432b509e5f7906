package timetable

import (
	"sort"
	"time"

	"github.com/noah-isme/timetable-api/internal/models"
)

// Occurrence is one dated instance of a lecture. Override occurrences come
// from a reschedule: their time and room are the reschedule's, everything
// else is the owning lecture's.
type Occurrence struct {
	models.Lecture
	Date         time.Time  `json:"date"`
	Override     bool       `json:"override"`
	RescheduleID string     `json:"reschedule_id,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	OriginalDate *time.Time `json:"original_date,omitempty"`
}

// DaySchedule groups the occurrences resolved for a single date.
type DaySchedule struct {
	Date        time.Time    `json:"date"`
	Weekday     int          `json:"weekday"`
	Occurrences []Occurrence `json:"occurrences"`
}

// ResolveOccurrences returns the lecture instances that take place on date:
// the lectures recurring on its weekday, minus those suppressed by a
// reschedule whose original date is date, plus one override occurrence per
// reschedule whose new date is date. Reschedules whose lecture is not in
// lectures are ignored.
func ResolveOccurrences(lectures []models.Lecture, reschedules []models.Reschedule, date time.Time) []Occurrence {
	day := DateOf(date)
	weekday := int(day.Weekday())

	suppressed := make(map[string]struct{})
	for _, r := range reschedules {
		if SameDate(r.OriginalDate, day) {
			suppressed[r.LectureID] = struct{}{}
		}
	}

	byID := make(map[string]models.Lecture, len(lectures))
	out := make([]Occurrence, 0)
	for _, l := range lectures {
		byID[l.ID] = l
		if l.Weekday != weekday {
			continue
		}
		if _, skip := suppressed[l.ID]; skip {
			continue
		}
		out = append(out, Occurrence{Lecture: l.Clone(), Date: day})
	}

	for _, r := range reschedules {
		if !SameDate(r.NewDate, day) {
			continue
		}
		owner, ok := byID[r.LectureID]
		if !ok {
			continue
		}
		out = append(out, overrideOccurrence(owner, r))
	}

	sortOccurrences(out)
	return out
}

// ResolveRange resolves days consecutive dates starting at from.
func ResolveRange(lectures []models.Lecture, reschedules []models.Reschedule, from time.Time, days int) []DaySchedule {
	if days <= 0 {
		return []DaySchedule{}
	}
	start := DateOf(from)
	out := make([]DaySchedule, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		out = append(out, DaySchedule{
			Date:        day,
			Weekday:     int(day.Weekday()),
			Occurrences: ResolveOccurrences(lectures, reschedules, day),
		})
	}
	return out
}

// ResolveWeek resolves the Sunday-to-Saturday week containing date. Friday
// and Saturday carry no recurring lectures but may hold override occurrences.
func ResolveWeek(lectures []models.Lecture, reschedules []models.Reschedule, date time.Time) []DaySchedule {
	return ResolveRange(lectures, reschedules, WeekStart(date), 7)
}

func overrideOccurrence(owner models.Lecture, r models.Reschedule) Occurrence {
	lecture := owner.Clone()
	lecture.StartTime = r.StartTime
	lecture.EndTime = r.EndTime
	lecture.RoomID = r.RoomID
	original := DateOf(r.OriginalDate)
	return Occurrence{
		Lecture:      lecture,
		Date:         DateOf(r.NewDate),
		Override:     true,
		RescheduleID: r.ID,
		Reason:       r.Reason,
		OriginalDate: &original,
	}
}

func sortOccurrences(items []Occurrence) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		if a.EndTime != b.EndTime {
			return a.EndTime < b.EndTime
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.RescheduleID < b.RescheduleID
	})
}

// OccurrenceFilter narrows resolved occurrences for a particular view.
// Zero-valued fields match everything.
type OccurrenceFilter struct {
	RoomID       string
	InstructorID string
	CourseID     string
	Level        int
	Kind         models.LectureKind
	Shift        models.Shift
}

// Match reports whether o passes the filter. InstructorID matches both the
// primary instructor and the assistants.
func (f OccurrenceFilter) Match(o Occurrence) bool {
	if f.RoomID != "" && o.RoomID != f.RoomID {
		return false
	}
	if f.InstructorID != "" && o.InstructorID != f.InstructorID && !o.HasAssistant(f.InstructorID) {
		return false
	}
	if f.CourseID != "" && o.CourseID != f.CourseID {
		return false
	}
	if f.Level > 0 && o.Level != f.Level {
		return false
	}
	if f.Kind != "" && o.Kind != f.Kind {
		return false
	}
	if f.Shift != "" && o.Shift != f.Shift {
		return false
	}
	return true
}

// Apply returns the occurrences that match the filter.
func (f OccurrenceFilter) Apply(items []Occurrence) []Occurrence {
	out := make([]Occurrence, 0, len(items))
	for _, o := range items {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	return out
}
