package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"stewardflow/internal/domain/reservation"
	"stewardflow/internal/infra"
	"stewardflow/internal/infra/repository"
	"stewardflow/internal/pkg/clock"
	"stewardflow/internal/pkg/errs"

	"github.com/google/uuid"
)

type OrgSettingsRepository interface {
	ReturnPolicy(ctx context.Context, organizationID uuid.UUID) (repository.ReturnPolicy, error)
}

type VehicleReturnParams struct {
	ReservationID   uuid.UUID
	ActorID         uuid.UUID
	OdometerReading int64
	OdometerImage   *string
	ExteriorImage   *string
	Note            string
}

type ReturnOutcome struct {
	// Closed is true when no verification step is required and the
	// booking was fully closed in one step.
	Closed           bool
	ReturnStatus     reservation.ReturnStatus
	DistanceTraveled int64
}

type VehicleReturnUseCase interface {
	RecordVehicleReturn(ctx context.Context, params VehicleReturnParams) (*ReturnOutcome, error)
}

type vehicleReturnUseCaseImpl struct {
	reservationRepo  ReservationRepository
	resourceRepo     ResourceRepository
	orgSettingsRepo  OrgSettingsRepository
	notificationRepo NotificationRepository
	auditRepo        AuditRepository
	clock            clock.Clock
}

func NewVehicleReturnUseCase(
	reservationRepo ReservationRepository,
	resourceRepo ResourceRepository,
	orgSettingsRepo OrgSettingsRepository,
	notificationRepo NotificationRepository,
	auditRepo AuditRepository,
	clk clock.Clock,
) VehicleReturnUseCase {
	return &vehicleReturnUseCaseImpl{
		reservationRepo:  reservationRepo,
		resourceRepo:     resourceRepo,
		orgSettingsRepo:  orgSettingsRepo,
		notificationRepo: notificationRepo,
		auditRepo:        auditRepo,
		clock:            clk,
	}
}

// RecordVehicleReturn reconciles the odometer and applies the
// organization's return policy. All validation happens before any
// write: a missing photo or a regressing odometer reading leaves the
// reservation untouched.
func (u *vehicleReturnUseCaseImpl) RecordVehicleReturn(ctx context.Context, params VehicleReturnParams) (*ReturnOutcome, error) {
	entity, err := u.reservationRepo.FindByID(ctx, params.ReservationID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrReservationNotFound)
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if entity.ResourceKind() != reservation.KindVehicle {
		return nil, errs.Mark(reservation.ErrNotVehicle, ErrValidation)
	}
	if params.ActorID != entity.BorrowerID() {
		return nil, errs.Mark(errs.New("only the borrower may record the return"), ErrNotPermitted)
	}

	policy, err := u.orgSettingsRepo.ReturnPolicy(ctx, entity.OrganizationID())
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if policy.RequirePhoto && (params.OdometerImage == nil || params.ExteriorImage == nil) {
		return nil, errs.Mark(errs.New("odometer and exterior photos are required"), ErrMissingEvidence)
	}

	now := u.clock.Now()
	err = entity.RecordVehicleReturn(
		params.OdometerReading,
		params.OdometerImage,
		params.ExteriorImage,
		params.Note,
		params.ActorID,
		policy.RequireVerification,
		now,
	)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrIllegalTransition):
			return nil, errs.Mark(err, ErrLifecycle)
		default:
			return nil, errs.Mark(err, ErrValidation)
		}
	}

	vr := entity.VehicleReturn()
	err = u.reservationRepo.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.reservationRepo.Update(txCtx, entity); err != nil {
			return err
		}
		// Without a verification step the vehicle goes straight back
		// into the pool with its odometer advanced.
		if !policy.RequireVerification {
			if err := u.resourceRepo.CloseOutVehicle(txCtx, entity.ResourceID(), vr.OdometerReading, now); err != nil {
				return err
			}
		}
		payload, err := json.Marshal(map[string]any{
			"reservation_id":        entity.ID(),
			"resource_id":           entity.ResourceID(),
			"distance_traveled":     vr.DistanceTraveled,
			"awaiting_verification": policy.RequireVerification,
		})
		if err != nil {
			return err
		}
		return u.notificationRepo.CreateJob(txCtx, "vehicle_returned", payload, now)
	})
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	u.recordReturnAudit(ctx, params.ActorID, entity)

	return &ReturnOutcome{
		Closed:           !policy.RequireVerification,
		ReturnStatus:     vr.Status,
		DistanceTraveled: vr.DistanceTraveled,
	}, nil
}

func (u *vehicleReturnUseCaseImpl) recordReturnAudit(ctx context.Context, actorID uuid.UUID, entity *reservation.Reservation) {
	vr := entity.VehicleReturn()
	data, err := json.Marshal(map[string]any{
		"odometer_reading":  vr.OdometerReading,
		"distance_traveled": vr.DistanceTraveled,
	})
	if err != nil {
		return
	}
	if err := u.auditRepo.Record(ctx, actorID, "reservation.vehicle_return", entity.ID(), data); err != nil {
		logAuditFailure("reservation.vehicle_return", err)
	}
}
