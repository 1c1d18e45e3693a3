package repository

import (
	"context"

	"stewardflow/internal/domain/approval"
	"stewardflow/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Profile is the engine's view of a member: just enough to enforce
// organization membership and approval authority.
type Profile struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Department     *string
	Role           approval.Role
}

type ProfileRepository struct {
	q querier
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{q: querier{pool: pool}}
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	const query = `
SELECT user_id, organization_id, department, role
FROM profiles
WHERE user_id = $1`

	var (
		p      Profile
		roleDB string
	)
	err := r.q.queryRow(ctx, query, userID).Scan(&p.UserID, &p.OrganizationID, &p.Department, &roleDB)
	if err != nil {
		if ClassifyPgErr(err) == infra.KindNotFound {
			return nil, infra.WrapRepoErr("profile not found", err, infra.KindNotFound)
		}
		return nil, wrapPgErr("failed to find profile", err)
	}
	p.Role = approval.Role(roleDB)
	return &p, nil
}
