package approval

import (
	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	default:
		return false
	}
}

var roleRank = map[Role]int{
	RoleUser:    1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// AtLeast reports whether r carries at least the authority of min.
func (r Role) AtLeast(min Role) bool {
	rr, ok1 := roleRank[r]
	mr, ok2 := roleRank[min]
	return ok1 && ok2 && rr >= mr
}

type Scope string

const (
	ScopeAsset   Scope = "asset"
	ScopeSpace   Scope = "space"
	ScopeVehicle Scope = "vehicle"
)

func (s Scope) String() string {
	return string(s)
}

func (s Scope) IsValid() bool {
	switch s {
	case ScopeAsset, ScopeSpace, ScopeVehicle:
		return true
	default:
		return false
	}
}

// Policy maps (organization, scope, department) to the role allowed to
// approve. A nil Department row is the organization-wide default for
// that scope.
type Policy struct {
	OrganizationID uuid.UUID
	Scope          Scope
	Department     *string
	RequiredRole   Role
}

// DefaultRole applies when no policy row matches at all.
const DefaultRole = RoleManager

// Resolve picks the required approver role with two-level fallback:
// the exact (scope, department) row first, then the (scope, nil)
// organization-wide row, then DefaultRole. The fallback order is the
// only authorization decision the engine makes and must not change.
func Resolve(policies []Policy, organizationID uuid.UUID, scope Scope, department *string) Role {
	var orgWide *Policy
	for i := range policies {
		p := &policies[i]
		if p.OrganizationID != organizationID || p.Scope != scope {
			continue
		}
		if p.Department == nil {
			orgWide = p
			continue
		}
		if department != nil && *p.Department == *department {
			return p.RequiredRole
		}
	}
	if orgWide != nil {
		return orgWide.RequiredRole
	}
	return DefaultRole
}
