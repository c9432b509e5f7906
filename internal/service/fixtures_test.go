package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func mustDate(raw string) time.Time {
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		panic(err)
	}
	return d
}

func mustClock(raw string) models.Clock {
	c, err := models.ParseClock(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func theoryLecture(id string, weekday int, start, end, room, instructor, course string) models.Lecture {
	return models.Lecture{
		ID:           id,
		CourseID:     course,
		InstructorID: instructor,
		RoomID:       room,
		Weekday:      weekday,
		StartTime:    mustClock(start),
		EndTime:      mustClock(end),
		Level:        1,
		Kind:         models.LectureKindTheoretical,
		Shift:        models.ShiftMorning,
		SectionID:    strPtr("sec-a"),
	}
}

func testDirectory() models.Directory {
	return models.NewDirectory(
		[]models.Room{{ID: "R1", Name: "Hall 1", Building: "Main"}, {ID: "R2", Name: "Lab 2"}},
		[]models.Instructor{{ID: "I1", FullName: "Dr. Salem"}, {ID: "I2", FullName: "Dr. Noor"}, {ID: "I3", FullName: "Eng. Rami"}},
		[]models.Course{{ID: "A", Code: "CS101"}, {ID: "B", Code: "CS102"}, {ID: "C", Code: "MA201"}},
	)
}

// baseLectures: A Sun 08:00-09:30 R1 I1, B Sun 10:00-11:00 R1 I2, C Mon 08:00-09:00 R1 I2.
func baseLectures() []models.Lecture {
	return []models.Lecture{
		theoryLecture("A", models.WeekdaySunday, "08:00", "09:30", "R1", "I1", "A"),
		theoryLecture("B", models.WeekdaySunday, "10:00", "11:00", "R1", "I2", "B"),
		theoryLecture("C", models.WeekdayMonday, "08:00", "09:00", "R1", "I2", "C"),
	}
}

func lectureRequest(weekday int, start, end, room, instructor, course string) dto.LectureRequest {
	return dto.LectureRequest{
		CourseID:     course,
		InstructorID: instructor,
		RoomID:       room,
		Weekday:      intPtr(weekday),
		StartTime:    start,
		EndTime:      end,
		Level:        1,
		Kind:         "THEORETICAL",
		Shift:        "MORNING",
		SectionID:    strPtr("sec-a"),
	}
}

type memLectureRepo struct {
	mu       sync.Mutex
	items    map[string]models.Lecture
	listErr  error
	loads    atomic.Int32
	deleted  []string
	sequence int
	// reschedules counts reschedules per lecture id.
	reschedules map[string]int
}

func newMemLectureRepo(lectures ...models.Lecture) *memLectureRepo {
	repo := &memLectureRepo{items: make(map[string]models.Lecture)}
	for _, l := range lectures {
		repo.items[l.ID] = l.Clone()
	}
	return repo
}

func (m *memLectureRepo) sorted() []models.Lecture {
	out := make([]models.Lecture, 0, len(m.items))
	for _, l := range m.items {
		out = append(out, l.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weekday != out[j].Weekday {
			return out[i].Weekday < out[j].Weekday
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *memLectureRepo) List(ctx context.Context, filter models.LectureFilter) ([]models.Lecture, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	all := m.sorted()
	return all, len(all), nil
}

func (m *memLectureRepo) ListAll(ctx context.Context) ([]models.Lecture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads.Add(1)
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sorted(), nil
}

func (m *memLectureRepo) ListByWeekday(ctx context.Context, weekday int) ([]models.Lecture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Lecture
	for _, l := range m.sorted() {
		if l.Weekday == weekday {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memLectureRepo) FindByID(ctx context.Context, id string) (*models.Lecture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := l.Clone()
	return &cp, nil
}

func (m *memLectureRepo) Create(ctx context.Context, lecture *models.Lecture) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lecture.ID == "" {
		m.sequence++
		lecture.ID = fmt.Sprintf("new-%d", m.sequence)
	}
	m.items[lecture.ID] = lecture.Clone()
	return nil
}

func (m *memLectureRepo) Update(ctx context.Context, lecture *models.Lecture) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[lecture.ID]; !ok {
		return sql.ErrNoRows
	}
	m.items[lecture.ID] = lecture.Clone()
	return nil
}

func (m *memLectureRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type memRescheduleRepo struct {
	mu        sync.Mutex
	items     map[string]models.Reschedule
	createErr error
	listErr   error
	lastList  models.RescheduleFilter
}

func newMemRescheduleRepo(items ...models.Reschedule) *memRescheduleRepo {
	repo := &memRescheduleRepo{items: make(map[string]models.Reschedule)}
	for _, r := range items {
		repo.items[r.ID] = r
	}
	return repo
}

func (m *memRescheduleRepo) all() []models.Reschedule {
	out := make([]models.Reschedule, 0, len(m.items))
	for _, r := range m.items {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memRescheduleRepo) List(ctx context.Context, filter models.RescheduleFilter) ([]models.Reschedule, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastList = filter
	all := m.all()
	return all, len(all), nil
}

func (m *memRescheduleRepo) ListAll(ctx context.Context) ([]models.Reschedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.all(), nil
}

func (m *memRescheduleRepo) FindByID(ctx context.Context, id string) (*models.Reschedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (m *memRescheduleRepo) Create(ctx context.Context, item *models.Reschedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if item.ID == "" {
		item.ID = "x-" + item.LectureID + "-" + item.OriginalDate.Format(time.DateOnly)
	}
	m.items[item.ID] = *item
	return nil
}

func (m *memRescheduleRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

type stubDirectory struct {
	dir models.Directory
	err error
}

func (s stubDirectory) Load(ctx context.Context) (models.Directory, error) {
	return s.dir, s.err
}

type recordingNotifier struct {
	mu      sync.Mutex
	reasons []string
}

func (n *recordingNotifier) Notify(reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reasons = append(n.reasons, reason)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.reasons)
}

type memCacheRepo struct {
	mu       sync.Mutex
	entries  map[string][]byte
	gets     int
	patterns []string
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{entries: make(map[string][]byte)}
}

func (m *memCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, pattern)
	m.entries = make(map[string][]byte)
	return nil
}

// newTestTimetable wires a TimetableService over in-memory repositories
// with a controllable clock.
func newTestTimetable(lectures *memLectureRepo, reschedules *memRescheduleRepo, cache *CacheService) (*TimetableService, *time.Time) {
	now := time.Date(2024, 5, 5, 9, 0, 0, 0, time.UTC)
	svc := NewTimetableService(lectures, reschedules, stubDirectory{dir: testDirectory()}, cache, nil, TimetableServiceConfig{SnapshotTTL: time.Minute}, nil)
	svc.nowFunc = func() time.Time { return now }
	return svc, &now
}

func (m *memLectureRepo) CountReschedules(ctx context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reschedules[id], nil
}
