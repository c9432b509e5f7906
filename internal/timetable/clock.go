// Package timetable resolves weekly lecture timetables. Every function in
// the package is pure: callers hand in an immutable snapshot of lectures and
// reschedules and receive derived views back.
package timetable

import (
	"time"

	"github.com/noah-isme/timetable-api/internal/models"
)

// ToMinutes parses "HH:MM" into minutes since midnight.
func ToMinutes(raw string) (int, error) {
	c, err := models.ParseClock(raw)
	if err != nil {
		return 0, err
	}
	return c.Minutes(), nil
}

// FromMinutes renders minutes since midnight as "HH:MM".
func FromMinutes(minutes int) string {
	return models.Clock(minutes).String()
}

// Overlaps reports whether [startA,endA) and [startB,endB) intersect.
// Back-to-back ranges, where one ends exactly when the other starts, do not overlap.
func Overlaps(startA, endA, startB, endB models.Clock) bool {
	return startA < endB && startB < endA
}

// DateOf truncates t to its calendar date, keeping the wall date of t's own
// location and normalising the result to UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate compares two instants by calendar date only.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// WeekStart returns the Sunday on or before t.
func WeekStart(t time.Time) time.Time {
	day := DateOf(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// ParseDate parses a "YYYY-MM-DD" calendar date.
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(time.DateOnly, raw)
}
