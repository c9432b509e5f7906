package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

const timetableCachePattern = "timetable:*"

// LectureReader loads the recurring lectures.
type LectureReader interface {
	ListAll(ctx context.Context) ([]models.Lecture, error)
}

// RescheduleReader loads every stored reschedule.
type RescheduleReader interface {
	ListAll(ctx context.Context) ([]models.Reschedule, error)
}

// DirectoryReader loads labels for rooms, instructors and courses.
type DirectoryReader interface {
	Load(ctx context.Context) (models.Directory, error)
}

// TimetableServiceConfig tunes snapshot freshness and rendering.
type TimetableServiceConfig struct {
	Window      timetable.Window
	Location    *time.Location
	SnapshotTTL time.Duration
	CacheTTL    time.Duration
}

// OccurrenceView is an occurrence decorated with display labels and, for
// recurring occurrences, the conflict markers of its lecture.
type OccurrenceView struct {
	timetable.Occurrence
	CourseCode     string   `json:"course_code"`
	RoomName       string   `json:"room_name"`
	InstructorName string   `json:"instructor_name"`
	AssistantNames []string `json:"assistant_names,omitempty"`
	Conflicts      []string `json:"conflicts,omitempty"`
}

// DayView lists the occurrences of one date.
type DayView struct {
	TakenAt     *time.Time       `json:"taken_at,omitempty"`
	Date        string           `json:"date"`
	Weekday     int              `json:"weekday"`
	Occurrences []OccurrenceView `json:"occurrences"`
}

// WeekView lists seven consecutive days starting on a Sunday.
type WeekView struct {
	TakenAt time.Time `json:"taken_at"`
	Start   string    `json:"start"`
	End     string    `json:"end"`
	Days    []DayView `json:"days"`
}

// LectureConflicts groups the conflicts of one recurring lecture.
type LectureConflicts struct {
	LectureID  string               `json:"lecture_id"`
	CourseCode string               `json:"course_code"`
	Weekday    int                  `json:"weekday"`
	StartTime  models.Clock         `json:"start_time"`
	EndTime    models.Clock         `json:"end_time"`
	RoomName   string               `json:"room_name"`
	Conflicts  []timetable.Conflict `json:"conflicts"`
}

// ConflictReport is the conflict overview of the recurring timetable.
type ConflictReport struct {
	TakenAt  time.Time          `json:"taken_at"`
	Count    int                `json:"count"`
	Lectures []LectureConflicts `json:"lectures"`
}

// BlockView is a labelled grid block.
type BlockView struct {
	OccurrenceView
	timetable.Placement
	Lane    int  `json:"lane"`
	Visible bool `json:"visible"`
}

// LayoutView is the renderable grid of one date.
type LayoutView struct {
	TakenAt time.Time        `json:"taken_at"`
	Date    string           `json:"date"`
	Window  timetable.Window `json:"window"`
	Lanes   int              `json:"lanes"`
	Ticks   []timetable.Tick `json:"ticks"`
	Blocks  []BlockView      `json:"blocks"`
}

// TimetableService serves resolved timetable views from an in-memory
// snapshot that is reloaded once it is older than the configured TTL or
// after a mutation marked it stale.
type TimetableService struct {
	lectures    LectureReader
	reschedules RescheduleReader
	directory   DirectoryReader
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
	cfg         TimetableServiceConfig

	store   timetable.Store
	stale   atomic.Bool
	reload  sync.Mutex
	nowFunc func() time.Time
}

// NewTimetableService constructs the timetable service.
func NewTimetableService(lectures LectureReader, reschedules RescheduleReader, directory DirectoryReader, cache *CacheService, metrics *MetricsService, cfg TimetableServiceConfig, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Window.Span() <= 0 {
		cfg.Window = timetable.DefaultWindow
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = time.Minute
	}
	return &TimetableService{
		lectures:    lectures,
		reschedules: reschedules,
		directory:   directory,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
		nowFunc:     time.Now,
	}
}

// Today returns the current calendar date in the configured zone.
func (s *TimetableService) Today() time.Time {
	return timetable.DateOf(s.nowFunc().In(s.cfg.Location))
}

// Window returns the configured grid window.
func (s *TimetableService) Window() timetable.Window {
	return s.cfg.Window
}

// Invalidate marks the current snapshot stale so the next read reloads it.
func (s *TimetableService) Invalidate() {
	s.stale.Store(true)
}

// Snapshot returns a snapshot no older than the TTL. When a reload fails
// and an older snapshot exists, the older one is served.
func (s *TimetableService) Snapshot(ctx context.Context) (*timetable.Snapshot, error) {
	if snap, ok := s.fresh(); ok {
		return snap, nil
	}

	snap, err := s.Refresh(ctx)
	if err == nil {
		return snap, nil
	}
	if s.store.Loaded() {
		current := s.store.Load()
		s.logger.Warn("serving stale timetable snapshot", zap.Time("taken_at", current.TakenAt()), zap.Error(err))
		return current, nil
	}
	return nil, err
}

func (s *TimetableService) fresh() (*timetable.Snapshot, bool) {
	if !s.store.Loaded() || s.stale.Load() {
		return nil, false
	}
	snap := s.store.Load()
	if s.nowFunc().Sub(snap.TakenAt()) >= s.cfg.SnapshotTTL {
		return nil, false
	}
	return snap, true
}

// Refresh reloads the snapshot from storage and swaps it in. Concurrent
// callers share one reload.
func (s *TimetableService) Refresh(ctx context.Context) (*timetable.Snapshot, error) {
	s.reload.Lock()
	defer s.reload.Unlock()

	// Another caller may have reloaded while this one waited for the lock.
	if snap, ok := s.fresh(); ok {
		return snap, nil
	}

	s.stale.Store(false)
	start := s.nowFunc()
	snap, err := s.load(ctx, start)
	duration := time.Since(start)
	if err != nil {
		s.stale.Store(true)
		s.metrics.ObserveSnapshotRefresh(err, duration, time.Time{}, 0, 0, 0)
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "timetable data unavailable")
	}

	s.store.Swap(snap)
	conflicts := snap.Conflicts()
	s.metrics.ObserveSnapshotRefresh(nil, duration, snap.TakenAt(), len(snap.Lectures()), len(snap.Reschedules()), len(conflicts))
	s.cache.Invalidate(ctx, timetableCachePattern)
	s.logger.Info("timetable snapshot refreshed",
		zap.Int("lectures", len(snap.Lectures())),
		zap.Int("reschedules", len(snap.Reschedules())),
		zap.Int("conflicted_lectures", len(conflicts)),
		zap.Duration("duration", duration),
	)
	return snap, nil
}

func (s *TimetableService) load(ctx context.Context, takenAt time.Time) (*timetable.Snapshot, error) {
	lectures, err := s.lectures.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	reschedules, err := s.reschedules.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	dir, err := s.directory.Load(ctx)
	if err != nil {
		return nil, err
	}
	return timetable.NewSnapshot(lectures, reschedules, dir, takenAt), nil
}

// Day returns the occurrences of date that pass filter.
func (s *TimetableService) Day(ctx context.Context, date time.Time, filter timetable.OccurrenceFilter) (*DayView, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	day := timetable.DateOf(date)
	key := s.cacheKey(snap, "day", day, filter)

	var cached DayView
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	view := buildDayView(snap, day, filter.Apply(snap.Day(day)), snap.Conflicts())
	takenAt := snap.TakenAt()
	view.TakenAt = &takenAt
	s.cache.Set(ctx, key, view, s.cfg.CacheTTL)
	return &view, nil
}

// Week returns the Sunday-to-Saturday week containing date.
func (s *TimetableService) Week(ctx context.Context, date time.Time, filter timetable.OccurrenceFilter) (*WeekView, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	start := timetable.WeekStart(date)
	key := s.cacheKey(snap, "week", start, filter)

	var cached WeekView
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	conflicts := snap.Conflicts()
	days := snap.Week(start)
	view := WeekView{
		TakenAt: snap.TakenAt(),
		Start:   start.Format(time.DateOnly),
		End:     start.AddDate(0, 0, len(days)-1).Format(time.DateOnly),
		Days:    make([]DayView, 0, len(days)),
	}
	for _, d := range days {
		view.Days = append(view.Days, buildDayView(snap, d.Date, filter.Apply(d.Occurrences), conflicts))
	}
	s.cache.Set(ctx, key, view, s.cfg.CacheTTL)
	return &view, nil
}

// Conflicts reports the conflicts among recurring lectures.
func (s *TimetableService) Conflicts(ctx context.Context) (*ConflictReport, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("timetable:conflicts:%d", snap.TakenAt().UnixNano())

	var cached ConflictReport
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	conflicts := snap.Conflicts()
	dir := snap.Directory()
	report := ConflictReport{TakenAt: snap.TakenAt(), Lectures: make([]LectureConflicts, 0, len(conflicts))}
	for _, l := range snap.Lectures() {
		list, ok := conflicts[l.ID]
		if !ok {
			continue
		}
		report.Count += len(list)
		report.Lectures = append(report.Lectures, LectureConflicts{
			LectureID:  l.ID,
			CourseCode: dir.CourseCode(l.CourseID),
			Weekday:    l.Weekday,
			StartTime:  l.StartTime,
			EndTime:    l.EndTime,
			RoomName:   dir.RoomName(l.RoomID),
			Conflicts:  list,
		})
	}
	s.cache.Set(ctx, key, report, s.cfg.CacheTTL)
	return &report, nil
}

// Layout projects the occurrences of date onto the configured grid window.
func (s *TimetableService) Layout(ctx context.Context, date time.Time, filter timetable.OccurrenceFilter) (*LayoutView, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	day := timetable.DateOf(date)
	conflicts := snap.Conflicts()
	dir := snap.Directory()

	layout := timetable.LayoutDay(day, filter.Apply(snap.Day(day)), s.cfg.Window)
	view := LayoutView{
		TakenAt: snap.TakenAt(),
		Date:    day.Format(time.DateOnly),
		Window:  layout.Window,
		Lanes:   layout.Lanes,
		Ticks:   layout.Ticks,
		Blocks:  make([]BlockView, 0, len(layout.Blocks)),
	}
	for _, b := range layout.Blocks {
		view.Blocks = append(view.Blocks, BlockView{
			OccurrenceView: decorate(dir, b.Occurrence, conflicts),
			Placement:      b.Placement,
			Lane:           b.Lane,
			Visible:        b.Visible,
		})
	}
	return &view, nil
}

func (s *TimetableService) cacheKey(snap *timetable.Snapshot, view string, date time.Time, f timetable.OccurrenceFilter) string {
	parts := []string{
		"timetable", view,
		fmt.Sprint(snap.TakenAt().UnixNano()),
		date.Format(time.DateOnly),
		f.RoomID, f.InstructorID, f.CourseID,
		fmt.Sprint(f.Level), string(f.Kind), string(f.Shift),
	}
	return strings.Join(parts, ":")
}

func buildDayView(snap *timetable.Snapshot, day time.Time, occurrences []timetable.Occurrence, conflicts timetable.ConflictMap) DayView {
	dir := snap.Directory()
	view := DayView{
		Date:        day.Format(time.DateOnly),
		Weekday:     int(day.Weekday()),
		Occurrences: make([]OccurrenceView, 0, len(occurrences)),
	}
	for _, o := range occurrences {
		view.Occurrences = append(view.Occurrences, decorate(dir, o, conflicts))
	}
	return view
}

func decorate(dir models.Directory, o timetable.Occurrence, conflicts timetable.ConflictMap) OccurrenceView {
	v := OccurrenceView{
		Occurrence:     o,
		CourseCode:     dir.CourseCode(o.CourseID),
		RoomName:       dir.RoomName(o.RoomID),
		InstructorName: dir.InstructorName(o.InstructorID),
	}
	for _, a := range o.AssistantIDs {
		v.AssistantNames = append(v.AssistantNames, dir.InstructorName(a))
	}
	if !o.Override {
		for _, c := range conflicts[o.ID] {
			v.Conflicts = append(v.Conflicts, c.Message)
		}
	}
	return v
}

// Ping reports whether a snapshot can be served, loading one if needed.
func (s *TimetableService) Ping(ctx context.Context) error {
	_, err := s.Snapshot(ctx)
	return err
}
