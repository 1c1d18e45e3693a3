package usecase

import (
	"context"

	"stewardflow/internal/domain/approval"
	"stewardflow/internal/pkg/errs"

	"github.com/google/uuid"
)

type ApprovalUseCase interface {
	// ResolveApprovalRole answers which role may approve a reservation
	// of the given scope, for a resource owned org-wide (nil
	// department) or by one department.
	ResolveApprovalRole(ctx context.Context, organizationID uuid.UUID, scope approval.Scope, department *string) (approval.Role, error)
}

type approvalUseCaseImpl struct {
	policyRepo ApprovalPolicyRepository
}

func NewApprovalUseCase(policyRepo ApprovalPolicyRepository) ApprovalUseCase {
	return &approvalUseCaseImpl{policyRepo: policyRepo}
}

func (u *approvalUseCaseImpl) ResolveApprovalRole(ctx context.Context, organizationID uuid.UUID, scope approval.Scope, department *string) (approval.Role, error) {
	if !scope.IsValid() {
		return "", errs.Mark(errs.Newf("unknown scope %q", scope), ErrValidation)
	}
	policies, err := u.policyRepo.ListForScope(ctx, organizationID, scope)
	if err != nil {
		return "", errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return approval.Resolve(policies, organizationID, scope, department), nil
}
