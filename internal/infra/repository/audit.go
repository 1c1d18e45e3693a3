package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository appends actor/action/target rows. Callers treat it
// as fire-and-forget: failures are logged, never propagated into the
// scheduling decision.
type AuditRepository struct {
	q querier
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{q: querier{pool: pool}}
}

func (r *AuditRepository) Record(ctx context.Context, actorID uuid.UUID, action string, targetID uuid.UUID, metadata []byte) error {
	const stmt = `
INSERT INTO audit_logs (id, actor_id, action, target_id, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.q.exec(ctx, stmt, uuid.New(), actorID, action, targetID, metadata, time.Now()); err != nil {
		return wrapPgErr("failed to record audit entry", err)
	}
	return nil
}
