package repository

import (
	"context"
	"time"

	"stewardflow/internal/domain/reservation"
	"stewardflow/internal/domain/resource"
	"stewardflow/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResourceRepository struct {
	q querier
}

func NewResourceRepository(pool *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{q: querier{pool: pool}}
}

const resourceColumns = `
id, organization_id, kind, name, alias, status, loanable,
usable_until, department, current_odometer`

// FindByRef resolves a resource by either its internal UUID or its
// short public alias; both forms resolve to the same row.
func (r *ResourceRepository) FindByRef(ctx context.Context, kind reservation.ResourceKind, ref string) (*resource.Resource, error) {
	var query string
	var arg any
	if id, err := uuid.Parse(ref); err == nil {
		query = `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1 AND kind = $2`
		arg = id
	} else {
		query = `SELECT ` + resourceColumns + ` FROM resources WHERE alias = $1 AND kind = $2`
		arg = ref
	}

	var (
		res    resource.Resource
		kindDB string
		status string
	)
	err := r.q.queryRow(ctx, query, arg, string(kind)).Scan(
		&res.ID, &res.OrganizationID, &kindDB, &res.Name, &res.Alias,
		&status, &res.Loanable, &res.UsableUntil, &res.Department, &res.CurrentOdometer,
	)
	if err != nil {
		if ClassifyPgErr(err) == infra.KindNotFound {
			return nil, infra.WrapRepoErr("resource not found", err, infra.KindNotFound)
		}
		return nil, wrapPgErr("failed to find resource", err)
	}

	res.Kind = reservation.ResourceKind(kindDB)
	res.Status = resource.Status(status)
	return &res, nil
}

// CloseOutVehicle flips a vehicle back to available and advances its
// odometer after an unverified return closes the booking.
func (r *ResourceRepository) CloseOutVehicle(ctx context.Context, id uuid.UUID, odometer int64, now time.Time) error {
	const stmt = `
UPDATE resources
SET status = $2, current_odometer = $3, updated_at = $4
WHERE id = $1 AND kind = 'vehicle'`

	tag, err := r.q.exec(ctx, stmt, id, string(resource.StatusAvailable), odometer, now)
	if err != nil {
		return wrapPgErr("failed to close out vehicle", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("vehicle not found", nil, infra.KindNotFound)
	}
	return nil
}
