package repository

import (
	"context"

	"stewardflow/internal/domain/approval"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ApprovalPolicyRepository struct {
	q querier
}

func NewApprovalPolicyRepository(pool *pgxpool.Pool) *ApprovalPolicyRepository {
	return &ApprovalPolicyRepository{q: querier{pool: pool}}
}

// ListForScope returns every policy row of the organization for one
// scope, department-specific rows and the org-wide default together.
// Resolution order lives in the approval domain, not in SQL.
func (r *ApprovalPolicyRepository) ListForScope(ctx context.Context, organizationID uuid.UUID, scope approval.Scope) ([]approval.Policy, error) {
	const query = `
SELECT organization_id, scope, department, required_role
FROM approval_policies
WHERE organization_id = $1 AND scope = $2`

	rows, err := r.q.query(ctx, query, organizationID, string(scope))
	if err != nil {
		return nil, wrapPgErr("failed to list approval policies", err)
	}
	defer rows.Close()

	var out []approval.Policy
	for rows.Next() {
		var (
			p       approval.Policy
			scopeDB string
			roleDB  string
		)
		if err := rows.Scan(&p.OrganizationID, &scopeDB, &p.Department, &roleDB); err != nil {
			return nil, wrapPgErr("failed to scan approval policy", err)
		}
		p.Scope = approval.Scope(scopeDB)
		p.RequiredRole = approval.Role(roleDB)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgErr("failed to read approval policies", err)
	}
	return out, nil
}
