package models

import "time"

// Reschedule is a one-shot override that suppresses the occurrence of a
// lecture on OriginalDate and replaces it with one on NewDate. Course,
// instructors, kind and shift are inherited from the owning lecture.
type Reschedule struct {
	ID           string    `db:"id" json:"id"`
	LectureID    string    `db:"lecture_id" json:"lecture_id"`
	OriginalDate time.Time `db:"original_date" json:"original_date"`
	NewDate      time.Time `db:"new_date" json:"new_date"`
	StartTime    Clock     `db:"start_minute" json:"start_time"`
	EndTime      Clock     `db:"end_minute" json:"end_time"`
	RoomID       string    `db:"room_id" json:"room_id"`
	Reason       string    `db:"reason" json:"reason"`
	CreatedBy    string    `db:"created_by" json:"created_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the replacement occurrence lies entirely before
// the calendar day of now. Expiry only affects listings; the resolver uses
// every reschedule it is given.
func (r Reschedule) Expired(now time.Time) bool {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ny, nm, nd := r.NewDate.Date()
	return time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC).Before(today)
}

// RescheduleFilter narrows down reschedule listings.
type RescheduleFilter struct {
	LectureID      string
	From           *time.Time
	To             *time.Time
	IncludeExpired bool
	Page           int
	PageSize       int
}
