package repository

import (
	"context"

	"stewardflow/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReturnPolicy is the organization's vehicle return-verification
// policy.
type ReturnPolicy struct {
	RequirePhoto        bool
	RequireVerification bool
}

type OrgSettingsRepository struct {
	q querier
}

func NewOrgSettingsRepository(pool *pgxpool.Pool) *OrgSettingsRepository {
	return &OrgSettingsRepository{q: querier{pool: pool}}
}

// ReturnPolicy reads the organization's return policy. Organizations
// without a settings row fall back to the permissive default: no photo
// requirement, no verification step.
func (r *OrgSettingsRepository) ReturnPolicy(ctx context.Context, organizationID uuid.UUID) (ReturnPolicy, error) {
	const query = `
SELECT require_return_photo, require_return_verification
FROM org_settings
WHERE organization_id = $1`

	var p ReturnPolicy
	err := r.q.queryRow(ctx, query, organizationID).Scan(&p.RequirePhoto, &p.RequireVerification)
	if err != nil {
		if ClassifyPgErr(err) == infra.KindNotFound {
			return ReturnPolicy{}, nil
		}
		return ReturnPolicy{}, wrapPgErr("failed to read org settings", err)
	}
	return p, nil
}
