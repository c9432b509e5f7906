package timetable

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/timetable-api/internal/models"
)

// ConflictKind tags the resource a conflict is about.
type ConflictKind string

const (
	ConflictRoom                ConflictKind = "ROOM"
	ConflictInstructor          ConflictKind = "INSTRUCTOR"
	ConflictAssistant           ConflictKind = "ASSISTANT"
	ConflictDuplicateReschedule ConflictKind = "DUPLICATE_RESCHEDULE"
)

// Conflict is one reason a lecture collides with another lecture.
type Conflict struct {
	Kind           ConflictKind `json:"kind"`
	OtherLectureID string       `json:"other_lecture_id"`
	CourseCode     string       `json:"course_code"`
	PersonID       string       `json:"person_id,omitempty"`
	Start          models.Clock `json:"start_time"`
	End            models.Clock `json:"end_time"`
	Message        string       `json:"message"`
}

// ConflictMap maps a lecture id to its conflicts. A lecture absent from the
// map has none.
type ConflictMap map[string][]Conflict

// Messages flattens the map to lecture id -> human readable reasons.
func (m ConflictMap) Messages() map[string][]string {
	out := make(map[string][]string, len(m))
	for id, conflicts := range m {
		msgs := make([]string, len(conflicts))
		for i, c := range conflicts {
			msgs[i] = c.Message
		}
		out[id] = msgs
	}
	return out
}

// Has reports whether the lecture has at least one conflict of any of the given kinds.
// Without kinds it reports whether the lecture has any conflict.
func (m ConflictMap) Has(lectureID string, kinds ...ConflictKind) bool {
	conflicts := m[lectureID]
	if len(kinds) == 0 {
		return len(conflicts) > 0
	}
	for _, c := range conflicts {
		for _, k := range kinds {
			if c.Kind == k {
				return true
			}
		}
	}
	return false
}

// Count returns the number of conflict records across all lectures.
func (m ConflictMap) Count() int {
	total := 0
	for _, conflicts := range m {
		total += len(conflicts)
	}
	return total
}

func (m ConflictMap) add(lectureID string, c Conflict) {
	m[lectureID] = append(m[lectureID], c)
}

// DetectConflicts compares every pair of lectures that share a weekday and
// records room and instructor conflicts on both lectures of an overlapping
// pair. Reschedules are not consulted. Lectures are bucketed by weekday, which
// only prunes pairs that could never overlap.
func DetectConflicts(lectures []models.Lecture, dir models.Directory) ConflictMap {
	buckets := make(map[int][]models.Lecture)
	for _, l := range lectures {
		buckets[l.Weekday] = append(buckets[l.Weekday], l)
	}
	weekdays := make([]int, 0, len(buckets))
	for wd := range buckets {
		weekdays = append(weekdays, wd)
	}
	sort.Ints(weekdays)

	result := ConflictMap{}
	for _, wd := range weekdays {
		day := buckets[wd]
		for i := 0; i < len(day); i++ {
			for j := i + 1; j < len(day); j++ {
				a, b := day[i], day[j]
				if a.ID == b.ID {
					continue
				}
				if !Overlaps(a.StartTime, a.EndTime, b.StartTime, b.EndTime) {
					continue
				}
				if a.RoomID != "" && a.RoomID == b.RoomID {
					result.add(a.ID, roomConflict(b, dir))
					result.add(b.ID, roomConflict(a, dir))
				}
				for _, person := range sharedInstructors(a, b) {
					result.add(a.ID, instructorConflict(b, person, dir))
					result.add(b.ID, instructorConflict(a, person, dir))
				}
			}
		}
	}
	return result
}

// sharedInstructors lists the people committed to both lectures as primary
// instructor, or as primary on one and assistant on the other.
func sharedInstructors(a, b models.Lecture) []string {
	var shared []string
	seen := make(map[string]struct{})
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		shared = append(shared, id)
	}
	if a.InstructorID == b.InstructorID {
		add(a.InstructorID)
	}
	if b.HasAssistant(a.InstructorID) {
		add(a.InstructorID)
	}
	if a.HasAssistant(b.InstructorID) {
		add(b.InstructorID)
	}
	return shared
}

func roomConflict(other models.Lecture, dir models.Directory) Conflict {
	code := dir.CourseCode(other.CourseID)
	return Conflict{
		Kind:           ConflictRoom,
		OtherLectureID: other.ID,
		CourseCode:     code,
		Start:          other.StartTime,
		End:            other.EndTime,
		Message: fmt.Sprintf("room %s is also booked by %s (%s-%s)",
			dir.RoomName(other.RoomID), code, other.StartTime, other.EndTime),
	}
}

func instructorConflict(other models.Lecture, person string, dir models.Directory) Conflict {
	code := dir.CourseCode(other.CourseID)
	return Conflict{
		Kind:           ConflictInstructor,
		OtherLectureID: other.ID,
		CourseCode:     code,
		PersonID:       person,
		Start:          other.StartTime,
		End:            other.EndTime,
		Message: fmt.Sprintf("instructor %s is also assigned to %s (%s-%s)",
			dir.InstructorName(person), code, other.StartTime, other.EndTime),
	}
}

// ConflictError is the attributable reason a candidate lecture or reschedule
// was rejected.
type ConflictError struct {
	Kind       ConflictKind `json:"kind"`
	LectureID  string       `json:"lecture_id"`
	CourseCode string       `json:"course_code"`
	RoomID     string       `json:"room_id,omitempty"`
	PersonID   string       `json:"person_id,omitempty"`
	PersonName string       `json:"person_name,omitempty"`
	Date       *time.Time   `json:"date,omitempty"`
	Start      models.Clock `json:"start_time"`
	End        models.Clock `json:"end_time"`
	Message    string       `json:"message"`
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// ValidateCandidate checks a lecture about to be created or edited against
// the existing lectures. The candidate's own id, when set, is skipped so an
// edit never collides with its previous version. It returns the first
// conflict found, or a contract error when the candidate itself is malformed.
func ValidateCandidate(lectures []models.Lecture, candidate models.Lecture, dir models.Directory) error {
	if err := ValidateLecture(candidate); err != nil {
		return err
	}

	existing := make([]models.Lecture, 0)
	for _, l := range lectures {
		if l.Weekday != candidate.Weekday {
			continue
		}
		if candidate.ID != "" && l.ID == candidate.ID {
			continue
		}
		existing = append(existing, l)
	}
	sort.SliceStable(existing, func(i, j int) bool {
		if existing[i].StartTime != existing[j].StartTime {
			return existing[i].StartTime < existing[j].StartTime
		}
		return existing[i].ID < existing[j].ID
	})

	for _, other := range existing {
		if !Overlaps(candidate.StartTime, candidate.EndTime, other.StartTime, other.EndTime) {
			continue
		}
		if err := collide(candidate, other, dir, nil); err != nil {
			return err
		}
	}
	return nil
}

// collide returns the first resource candidate and other both claim. The
// caller has already established that their time ranges overlap.
func collide(candidate, other models.Lecture, dir models.Directory, date *time.Time) *ConflictError {
	code := dir.CourseCode(other.CourseID)
	window := fmt.Sprintf("%s-%s", other.StartTime, other.EndTime)
	base := ConflictError{
		LectureID:  other.ID,
		CourseCode: code,
		Date:       date,
		Start:      other.StartTime,
		End:        other.EndTime,
	}

	if candidate.RoomID == other.RoomID {
		e := base
		e.Kind = ConflictRoom
		e.RoomID = other.RoomID
		e.Message = fmt.Sprintf("room %s is booked by %s from %s", dir.RoomName(other.RoomID), code, window)
		return &e
	}

	if candidate.InstructorID == other.InstructorID || other.HasAssistant(candidate.InstructorID) {
		role := "teaching"
		if candidate.InstructorID != other.InstructorID {
			role = "assisting"
		}
		e := base
		e.Kind = ConflictInstructor
		e.PersonID = candidate.InstructorID
		e.PersonName = dir.InstructorName(candidate.InstructorID)
		e.Message = fmt.Sprintf("instructor %s is already %s %s from %s", e.PersonName, role, code, window)
		return &e
	}

	for _, assistant := range candidate.AssistantIDs {
		if assistant != other.InstructorID && !other.HasAssistant(assistant) {
			continue
		}
		role := "teaching"
		if assistant != other.InstructorID {
			role = "assisting"
		}
		e := base
		e.Kind = ConflictAssistant
		e.PersonID = assistant
		e.PersonName = dir.InstructorName(assistant)
		e.Message = fmt.Sprintf("assistant %s is already %s %s from %s", e.PersonName, role, code, window)
		return &e
	}
	return nil
}

// RescheduleOptions tunes ValidateReschedule.
type RescheduleOptions struct {
	// CheckOverlaps compares the replacement occurrence against every other
	// occurrence resolved for the new date.
	CheckOverlaps bool
}

// ValidateReschedule admits or rejects a new reschedule. It enforces the
// input contract, rejects a second reschedule of the same lecture and
// original date, and optionally checks the replacement occurrence for room
// and people collisions on its new date.
func ValidateReschedule(lectures []models.Lecture, reschedules []models.Reschedule, r models.Reschedule, dir models.Directory, opts RescheduleOptions) error {
	var owner models.Lecture
	found := false
	for _, l := range lectures {
		if l.ID == r.LectureID {
			owner, found = l, true
			break
		}
	}
	if !found {
		return ErrUnknownLecture
	}
	if err := ValidateRescheduleContract(owner, r); err != nil {
		return err
	}

	for _, existing := range reschedules {
		if existing.ID == r.ID && r.ID != "" {
			continue
		}
		if existing.LectureID == r.LectureID && SameDate(existing.OriginalDate, r.OriginalDate) {
			original := DateOf(r.OriginalDate)
			return &ConflictError{
				Kind:       ConflictDuplicateReschedule,
				LectureID:  owner.ID,
				CourseCode: dir.CourseCode(owner.CourseID),
				Date:       &original,
				Start:      owner.StartTime,
				End:        owner.EndTime,
				Message: fmt.Sprintf("%s on %s has already been rescheduled to %s",
					dir.CourseCode(owner.CourseID), original.Format(time.DateOnly), DateOf(existing.NewDate).Format(time.DateOnly)),
			}
		}
	}

	if !opts.CheckOverlaps {
		return nil
	}
	return CheckOverride(lectures, reschedules, r, dir)
}

// CheckOverride resolves the new date with r applied and tests the
// replacement occurrence against every other occurrence of that date.
// Unlike DetectConflicts it also sees override occurrences.
func CheckOverride(lectures []models.Lecture, reschedules []models.Reschedule, r models.Reschedule, dir models.Directory) error {
	pending := r
	if pending.ID == "" {
		pending.ID = "pending"
	}
	applied := make([]models.Reschedule, 0, len(reschedules)+1)
	for _, existing := range reschedules {
		if existing.ID == pending.ID {
			continue
		}
		applied = append(applied, existing)
	}
	applied = append(applied, pending)

	day := DateOf(r.NewDate)
	occurrences := ResolveOccurrences(lectures, applied, day)

	var moved *Occurrence
	for i := range occurrences {
		if occurrences[i].Override && occurrences[i].RescheduleID == pending.ID {
			moved = &occurrences[i]
			break
		}
	}
	if moved == nil {
		return ErrUnknownLecture
	}

	for _, other := range occurrences {
		if other.Override && other.RescheduleID == pending.ID {
			continue
		}
		if !Overlaps(moved.StartTime, moved.EndTime, other.StartTime, other.EndTime) {
			continue
		}
		if err := collide(moved.Lecture, other.Lecture, dir, &day); err != nil {
			return err
		}
	}
	return nil
}
