package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/timetable"
	"github.com/noah-isme/timetable-api/pkg/jobs"
)

const (
	refreshJobType = "timetable.refresh"
	refreshJobKey  = "timetable-snapshot"
)

type snapshotTarget interface {
	Invalidate()
	Refresh(ctx context.Context) (*timetable.Snapshot, error)
}

// SnapshotRefresher reloads the timetable snapshot in the background after
// a mutation. The snapshot is marked stale synchronously, so a read that
// races the background job reloads it itself.
type SnapshotRefresher struct {
	target snapshotTarget
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewSnapshotRefresher builds the refresher and its worker queue.
func NewSnapshotRefresher(target snapshotTarget, cfg jobs.QueueConfig, logger *zap.Logger) *SnapshotRefresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Logger = logger
	r := &SnapshotRefresher{target: target, logger: logger}
	r.queue = jobs.NewQueue("snapshot-refresh", r.handle, cfg)
	return r
}

// Start launches the workers.
func (r *SnapshotRefresher) Start(ctx context.Context) {
	r.queue.Start(ctx)
}

// Stop waits for the workers to exit.
func (r *SnapshotRefresher) Stop() {
	r.queue.Stop()
}

// Notify marks the snapshot stale and schedules a reload. Bursts of
// notifications collapse into one pending reload.
func (r *SnapshotRefresher) Notify(reason string) {
	r.target.Invalidate()
	job := jobs.Job{ID: uuid.NewString(), Key: refreshJobKey, Type: refreshJobType, Payload: reason}
	if err := r.queue.TryEnqueue(job); err != nil {
		r.logger.Warn("snapshot refresh not queued", zap.String("reason", reason), zap.Error(err))
	}
}

func (r *SnapshotRefresher) handle(ctx context.Context, job jobs.Job) error {
	_, err := r.target.Refresh(ctx)
	return err
}
