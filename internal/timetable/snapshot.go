package timetable

import (
	"sync/atomic"
	"time"

	"github.com/noah-isme/timetable-api/internal/models"
)

// Snapshot is an immutable view of the timetable at one instant. It copies
// its inputs on construction, so later changes to the source slices never
// reach an in-flight resolution or detection pass.
type Snapshot struct {
	lectures    []models.Lecture
	reschedules []models.Reschedule
	directory   models.Directory
	conflicts   ConflictMap
	takenAt     time.Time
}

// NewSnapshot builds a snapshot from freshly loaded data.
func NewSnapshot(lectures []models.Lecture, reschedules []models.Reschedule, dir models.Directory, takenAt time.Time) *Snapshot {
	s := &Snapshot{
		lectures:    make([]models.Lecture, len(lectures)),
		reschedules: append([]models.Reschedule(nil), reschedules...),
		directory:   copyDirectory(dir),
		takenAt:     takenAt,
	}
	for i, l := range lectures {
		s.lectures[i] = l.Clone()
	}
	s.conflicts = DetectConflicts(s.lectures, s.directory)
	return s
}

func copyDirectory(dir models.Directory) models.Directory {
	out := models.Directory{
		Rooms:       make(map[string]models.Room, len(dir.Rooms)),
		Instructors: make(map[string]models.Instructor, len(dir.Instructors)),
		Courses:     make(map[string]models.Course, len(dir.Courses)),
	}
	for k, v := range dir.Rooms {
		out.Rooms[k] = v
	}
	for k, v := range dir.Instructors {
		out.Instructors[k] = v
	}
	for k, v := range dir.Courses {
		out.Courses[k] = v
	}
	return out
}

// TakenAt returns when the snapshot data was loaded.
func (s *Snapshot) TakenAt() time.Time {
	return s.takenAt
}

// Lectures returns a copy of the recurring lectures.
func (s *Snapshot) Lectures() []models.Lecture {
	out := make([]models.Lecture, len(s.lectures))
	for i, l := range s.lectures {
		out[i] = l.Clone()
	}
	return out
}

// Reschedules returns a copy of the reschedules.
func (s *Snapshot) Reschedules() []models.Reschedule {
	return append([]models.Reschedule(nil), s.reschedules...)
}

// Directory returns a copy of the reference data.
func (s *Snapshot) Directory() models.Directory {
	return copyDirectory(s.directory)
}

// Lecture looks up a lecture by id.
func (s *Snapshot) Lecture(id string) (models.Lecture, bool) {
	for _, l := range s.lectures {
		if l.ID == id {
			return l.Clone(), true
		}
	}
	return models.Lecture{}, false
}

// Day resolves the occurrences of date.
func (s *Snapshot) Day(date time.Time) []Occurrence {
	return ResolveOccurrences(s.lectures, s.reschedules, date)
}

// Week resolves the Sunday-to-Saturday week containing date.
func (s *Snapshot) Week(date time.Time) []DaySchedule {
	return ResolveWeek(s.lectures, s.reschedules, date)
}

// Conflicts returns a copy of the conflicts detected among the recurring
// lectures when the snapshot was built.
func (s *Snapshot) Conflicts() ConflictMap {
	out := make(ConflictMap, len(s.conflicts))
	for id, conflicts := range s.conflicts {
		out[id] = append([]Conflict(nil), conflicts...)
	}
	return out
}

// Validate checks a candidate lecture against the snapshot.
func (s *Snapshot) Validate(candidate models.Lecture) error {
	return ValidateCandidate(s.lectures, candidate, s.directory)
}

// ValidateReschedule checks a candidate reschedule against the snapshot.
func (s *Snapshot) ValidateReschedule(r models.Reschedule, opts RescheduleOptions) error {
	return ValidateReschedule(s.lectures, s.reschedules, r, s.directory, opts)
}

var emptySnapshot = NewSnapshot(nil, nil, models.Directory{}, time.Time{})

// Store holds the current snapshot. Readers always get a complete snapshot;
// a refresh replaces it wholesale.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// Load returns the current snapshot, or an empty one before the first Swap.
func (st *Store) Load() *Snapshot {
	if s := st.current.Load(); s != nil {
		return s
	}
	return emptySnapshot
}

// Loaded reports whether a snapshot has been stored.
func (st *Store) Loaded() bool {
	return st.current.Load() != nil
}

// Swap installs next and returns the previous snapshot, if any.
func (st *Store) Swap(next *Snapshot) *Snapshot {
	return st.current.Swap(next)
}

// Reset drops the current snapshot so the next reader reloads.
func (st *Store) Reset() {
	st.current.Store(nil)
}
