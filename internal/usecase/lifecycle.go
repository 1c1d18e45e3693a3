package usecase

import (
	"context"
	"encoding/json"

	"stewardflow/internal/domain/approval"
	"stewardflow/internal/domain/reservation"
	"stewardflow/internal/infra"
	"stewardflow/internal/infra/repository"
	"stewardflow/internal/pkg/clock"
	"stewardflow/internal/pkg/errs"

	"github.com/google/uuid"
)

type ApprovalPolicyRepository interface {
	ListForScope(ctx context.Context, organizationID uuid.UUID, scope approval.Scope) ([]approval.Policy, error)
}

type LifecycleUseCase interface {
	Transition(ctx context.Context, reservationID, actorID uuid.UUID, target reservation.Status) error
}

type lifecycleUseCaseImpl struct {
	reservationRepo  ReservationRepository
	resourceRepo     ResourceRepository
	profileRepo      ProfileRepository
	policyRepo       ApprovalPolicyRepository
	notificationRepo NotificationRepository
	auditRepo        AuditRepository
	clock            clock.Clock
}

func NewLifecycleUseCase(
	reservationRepo ReservationRepository,
	resourceRepo ResourceRepository,
	profileRepo ProfileRepository,
	policyRepo ApprovalPolicyRepository,
	notificationRepo NotificationRepository,
	auditRepo AuditRepository,
	clk clock.Clock,
) LifecycleUseCase {
	return &lifecycleUseCaseImpl{
		reservationRepo:  reservationRepo,
		resourceRepo:     resourceRepo,
		profileRepo:      profileRepo,
		policyRepo:       policyRepo,
		notificationRepo: notificationRepo,
		auditRepo:        auditRepo,
		clock:            clk,
	}
}

// Transition drives the reservation status machine. Who may do what:
// the original borrower cancels their own request; an approver from
// the owning organization with at least the policy-resolved role
// approves, rejects, or accepts a return. Vehicle returns are refused
// here and go through RecordVehicleReturn instead. Illegal target
// states fail without writes.
func (u *lifecycleUseCaseImpl) Transition(ctx context.Context, reservationID, actorID uuid.UUID, target reservation.Status) error {
	if !target.IsValid() || target == reservation.StatusPending {
		return errs.Mark(errs.Newf("invalid target status %q", target), ErrValidation)
	}

	entity, err := u.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrReservationNotFound)
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	actor, err := u.profileRepo.FindByUserID(ctx, actorID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrProfileNotFound)
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	// A vehicle never closes through the plain transition: returning it
	// must reconcile the odometer, which only the vehicle return flow
	// does.
	if target == reservation.StatusReturned && entity.ResourceKind() == reservation.KindVehicle {
		return errs.Mark(errs.New("vehicle reservations are returned through odometer reconciliation"), ErrLifecycle)
	}

	if err := u.authorizeTransition(ctx, entity, actor, target); err != nil {
		return err
	}

	now := u.clock.Now()
	switch target {
	case reservation.StatusApproved:
		err = entity.Approve(now)
	case reservation.StatusRejected:
		err = entity.Reject(now)
	case reservation.StatusCancelled:
		err = entity.Cancel(now)
	case reservation.StatusReturned:
		err = entity.MarkReturned(now)
	}
	if err != nil {
		return errs.Mark(err, ErrLifecycle)
	}

	err = u.reservationRepo.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.reservationRepo.Update(txCtx, entity); err != nil {
			return err
		}
		payload, err := json.Marshal(map[string]any{
			"reservation_id": entity.ID(),
			"borrower_id":    entity.BorrowerID(),
			"status":         entity.Status(),
			"actor_id":       actorID,
		})
		if err != nil {
			return err
		}
		return u.notificationRepo.CreateJob(txCtx, "reservation_status_changed", payload, now)
	})
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	u.recordTransitionAudit(ctx, actorID, entity, target)
	return nil
}

func (u *lifecycleUseCaseImpl) authorizeTransition(
	ctx context.Context,
	entity *reservation.Reservation,
	actor *repository.Profile,
	target reservation.Status,
) error {
	isBorrower := actor.UserID == entity.BorrowerID()

	// Cancellation and return are open to the borrower themselves.
	if isBorrower && (target == reservation.StatusCancelled || target == reservation.StatusReturned) {
		return nil
	}

	// Everything else requires an approver from the owning org.
	if actor.OrganizationID != entity.OrganizationID() {
		return errs.Mark(errs.New("actor belongs to a different organization"), ErrNotPermitted)
	}

	required, err := u.requiredRoleFor(ctx, entity)
	if err != nil {
		return err
	}
	if !actor.Role.AtLeast(required) {
		return errs.Mark(errs.Newf("transition requires role %s", required), ErrNotPermitted)
	}
	return nil
}

func (u *lifecycleUseCaseImpl) requiredRoleFor(ctx context.Context, entity *reservation.Reservation) (approval.Role, error) {
	res, err := u.resourceRepo.FindByRef(ctx, entity.ResourceKind(), entity.ResourceID().String())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return "", errs.Mark(err, ErrResourceNotFound)
		}
		return "", errs.Mark(err, ErrDatabaseOperationFailed)
	}

	scope := ScopeForKind(entity.ResourceKind())
	policies, err := u.policyRepo.ListForScope(ctx, entity.OrganizationID(), scope)
	if err != nil {
		return "", errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return approval.Resolve(policies, entity.OrganizationID(), scope, res.Department), nil
}

func (u *lifecycleUseCaseImpl) recordTransitionAudit(ctx context.Context, actorID uuid.UUID, entity *reservation.Reservation, target reservation.Status) {
	data, err := json.Marshal(map[string]any{"status": target})
	if err != nil {
		return
	}
	if err := u.auditRepo.Record(ctx, actorID, "reservation.transition", entity.ID(), data); err != nil {
		logAuditFailure("reservation.transition", err)
	}
}

// ScopeForKind maps a resource kind onto its approval policy scope.
// The two vocabularies are identical today but owned by different
// domains.
func ScopeForKind(kind reservation.ResourceKind) approval.Scope {
	switch kind {
	case reservation.KindAsset:
		return approval.ScopeAsset
	case reservation.KindSpace:
		return approval.ScopeSpace
	case reservation.KindVehicle:
		return approval.ScopeVehicle
	default:
		return approval.Scope(kind)
	}
}
