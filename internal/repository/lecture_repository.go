package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

const lectureColumns = "id, course_id, instructor_id, assistant_ids, room_id, weekday, start_minute, end_minute, level, kind, shift, section_id, group_id, created_at, updated_at"

// LectureRepository manages persistence for recurring lectures.
type LectureRepository struct {
	db *sqlx.DB
}

// NewLectureRepository constructs a LectureRepository.
func NewLectureRepository(db *sqlx.DB) *LectureRepository {
	return &LectureRepository{db: db}
}

// List returns lectures matching filters along with total count.
func (r *LectureRepository) List(ctx context.Context, filter models.LectureFilter) ([]models.Lecture, int, error) {
	base := "FROM lectures WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Weekday != nil {
		conditions = append(conditions, fmt.Sprintf("weekday = $%d", len(args)+1))
		args = append(args, *filter.Weekday)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("(instructor_id = $%d OR $%d = ANY(assistant_ids))", len(args)+1, len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Level > 0 {
		conditions = append(conditions, fmt.Sprintf("level = $%d", len(args)+1))
		args = append(args, filter.Level)
	}
	if filter.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)+1))
		args = append(args, string(filter.Kind))
	}
	if filter.Shift != "" {
		conditions = append(conditions, fmt.Sprintf("shift = $%d", len(args)+1))
		args = append(args, string(filter.Shift))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"weekday":    "weekday, start_minute",
		"start_time": "start_minute",
		"level":      "level",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "weekday, start_minute"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, id ASC LIMIT %d OFFSET %d", lectureColumns, base, column, order, size, offset)
	var lectures []models.Lecture
	if err := r.db.SelectContext(ctx, &lectures, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list lectures: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count lectures: %w", err)
	}

	return lectures, total, nil
}

// ListAll returns every recurring lecture, used to build timetable snapshots.
func (r *LectureRepository) ListAll(ctx context.Context) ([]models.Lecture, error) {
	query := fmt.Sprintf("SELECT %s FROM lectures ORDER BY weekday, start_minute, id", lectureColumns)
	var lectures []models.Lecture
	if err := r.db.SelectContext(ctx, &lectures, query); err != nil {
		return nil, fmt.Errorf("list all lectures: %w", err)
	}
	return lectures, nil
}

// ListByWeekday returns the lectures recurring on weekday.
func (r *LectureRepository) ListByWeekday(ctx context.Context, weekday int) ([]models.Lecture, error) {
	query := fmt.Sprintf("SELECT %s FROM lectures WHERE weekday = $1 ORDER BY start_minute, id", lectureColumns)
	var lectures []models.Lecture
	if err := r.db.SelectContext(ctx, &lectures, query, weekday); err != nil {
		return nil, fmt.Errorf("list lectures for weekday %d: %w", weekday, err)
	}
	return lectures, nil
}

// FindByID fetches a lecture by ID.
func (r *LectureRepository) FindByID(ctx context.Context, id string) (*models.Lecture, error) {
	query := fmt.Sprintf("SELECT %s FROM lectures WHERE id = $1", lectureColumns)
	var lecture models.Lecture
	if err := r.db.GetContext(ctx, &lecture, query, id); err != nil {
		return nil, err
	}
	return &lecture, nil
}

// Create inserts a new lecture.
func (r *LectureRepository) Create(ctx context.Context, lecture *models.Lecture) error {
	if lecture.ID == "" {
		lecture.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lecture.CreatedAt.IsZero() {
		lecture.CreatedAt = now
	}
	lecture.UpdatedAt = now
	if lecture.AssistantIDs == nil {
		lecture.AssistantIDs = []string{}
	}

	const query = `INSERT INTO lectures (id, course_id, instructor_id, assistant_ids, room_id, weekday, start_minute, end_minute, level, kind, shift, section_id, group_id, created_at, updated_at)
		VALUES (:id, :course_id, :instructor_id, :assistant_ids, :room_id, :weekday, :start_minute, :end_minute, :level, :kind, :shift, :section_id, :group_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lecture); err != nil {
		return fmt.Errorf("create lecture: %w", err)
	}
	return nil
}

// Update modifies an existing lecture.
func (r *LectureRepository) Update(ctx context.Context, lecture *models.Lecture) error {
	lecture.UpdatedAt = time.Now().UTC()
	if lecture.AssistantIDs == nil {
		lecture.AssistantIDs = []string{}
	}
	const query = `UPDATE lectures SET course_id = :course_id, instructor_id = :instructor_id, assistant_ids = :assistant_ids, room_id = :room_id, weekday = :weekday,
		start_minute = :start_minute, end_minute = :end_minute, level = :level, kind = :kind, shift = :shift, section_id = :section_id, group_id = :group_id, updated_at = :updated_at
		WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, lecture)
	if err != nil {
		return fmt.Errorf("update lecture: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lecture rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountReschedules returns how many reschedules reference the lecture.
func (r *LectureRepository) CountReschedules(ctx context.Context, id string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reschedules WHERE lecture_id = $1`, id); err != nil {
		return 0, fmt.Errorf("count lecture reschedules: %w", err)
	}
	return total, nil
}

// Delete removes a lecture and every reschedule attached to it.
func (r *LectureRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete lecture: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM reschedules WHERE lecture_id = $1`, id); err != nil {
		return fmt.Errorf("delete lecture reschedules: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM lectures WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lecture: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete lecture: %w", err)
	}
	return nil
}
