package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository writes delivery jobs to the transactional
// outbox. A separate worker drains the table; this engine only
// enqueues.
type NotificationRepository struct {
	q querier
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{q: querier{pool: pool}}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, kind string, payload []byte, runAt time.Time) error {
	const stmt = `
INSERT INTO notification_jobs (id, kind, payload, run_at, created_at)
VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.q.exec(ctx, stmt, uuid.New(), kind, payload, runAt, time.Now()); err != nil {
		return wrapPgErr("failed to create notification job", err)
	}
	return nil
}
