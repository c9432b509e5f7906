package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

const rescheduleColumns = "id, lecture_id, original_date, new_date, start_minute, end_minute, room_id, reason, created_by, created_at"

// RescheduleRepository manages persistence for one-off lecture reschedules.
type RescheduleRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewRescheduleRepository constructs a RescheduleRepository.
func NewRescheduleRepository(db *sqlx.DB) *RescheduleRepository {
	return &RescheduleRepository{db: db, now: time.Now}
}

// List returns reschedules matching filters along with total count. Expired
// reschedules are hidden unless filter.IncludeExpired is set.
func (r *RescheduleRepository) List(ctx context.Context, filter models.RescheduleFilter) ([]models.Reschedule, int, error) {
	base := "FROM reschedules WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.LectureID != "" {
		conditions = append(conditions, fmt.Sprintf("lecture_id = $%d", len(args)+1))
		args = append(args, filter.LectureID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("new_date >= $%d", len(args)+1))
		args = append(args, filter.From.Format(time.DateOnly))
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("new_date <= $%d", len(args)+1))
		args = append(args, filter.To.Format(time.DateOnly))
	}
	if !filter.IncludeExpired {
		conditions = append(conditions, fmt.Sprintf("new_date >= $%d", len(args)+1))
		args = append(args, r.now().UTC().Format(time.DateOnly))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY new_date ASC, start_minute ASC, id ASC LIMIT %d OFFSET %d", rescheduleColumns, base, size, offset)
	var items []models.Reschedule
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reschedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reschedules: %w", err)
	}

	return items, total, nil
}

// ListAll returns every stored reschedule, expired ones included.
func (r *RescheduleRepository) ListAll(ctx context.Context) ([]models.Reschedule, error) {
	query := fmt.Sprintf("SELECT %s FROM reschedules ORDER BY new_date, start_minute, id", rescheduleColumns)
	var items []models.Reschedule
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list all reschedules: %w", err)
	}
	return items, nil
}

// FindByID fetches a reschedule by ID.
func (r *RescheduleRepository) FindByID(ctx context.Context, id string) (*models.Reschedule, error) {
	query := fmt.Sprintf("SELECT %s FROM reschedules WHERE id = $1", rescheduleColumns)
	var item models.Reschedule
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByLectureAndDate fetches the reschedule moving lectureID away from originalDate.
func (r *RescheduleRepository) FindByLectureAndDate(ctx context.Context, lectureID string, originalDate time.Time) (*models.Reschedule, error) {
	query := fmt.Sprintf("SELECT %s FROM reschedules WHERE lecture_id = $1 AND original_date = $2", rescheduleColumns)
	var item models.Reschedule
	if err := r.db.GetContext(ctx, &item, query, lectureID, originalDate.Format(time.DateOnly)); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new reschedule.
func (r *RescheduleRepository) Create(ctx context.Context, item *models.Reschedule) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = r.now().UTC()
	}

	const query = `INSERT INTO reschedules (id, lecture_id, original_date, new_date, start_minute, end_minute, room_id, reason, created_by, created_at)
		VALUES (:id, :lecture_id, :original_date, :new_date, :start_minute, :end_minute, :room_id, :reason, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create reschedule: %w", err)
	}
	return nil
}

// Delete removes a reschedule, restoring the original occurrence.
func (r *RescheduleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reschedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete reschedule: %w", err)
	}
	return nil
}
