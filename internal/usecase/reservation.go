package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"stewardflow/internal/domain/reservation"
	"stewardflow/internal/domain/resource"
	"stewardflow/internal/domain/schedule"
	"stewardflow/internal/infra"
	"stewardflow/internal/infra/repository"
	"stewardflow/internal/pkg/clock"
	"stewardflow/internal/pkg/errs"

	"github.com/google/uuid"
)

type ReservationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, res *reservation.Reservation) error
	HasActiveOverlap(ctx context.Context, resourceID uuid.UUID, start, end time.Time) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*reservation.Reservation, error)
	Update(ctx context.Context, res *reservation.Reservation) error
}

type ResourceRepository interface {
	FindByRef(ctx context.Context, kind reservation.ResourceKind, ref string) (*resource.Resource, error)
	CloseOutVehicle(ctx context.Context, id uuid.UUID, odometer int64, now time.Time) error
}

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*repository.Profile, error)
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind string, payload []byte, runAt time.Time) error
}

type AuditRepository interface {
	Record(ctx context.Context, actorID uuid.UUID, action string, targetID uuid.UUID, metadata []byte) error
}

type CreateReservationParams struct {
	ResourceKind reservation.ResourceKind
	// ResourceRef accepts the internal UUID or the short public alias.
	ResourceRef string
	BorrowerID  uuid.UUID
	Start       time.Time
	End         time.Time
	Note        string
	// Recurrence is nil for a plain single booking.
	Recurrence *schedule.Rule
}

type CreateReservationResult struct {
	ID            uuid.UUID
	InstanceCount int
}

type ReservationUseCase interface {
	CreateReservation(ctx context.Context, params CreateReservationParams) (*CreateReservationResult, error)
	GetReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	GetBorrowerReservations(ctx context.Context, borrowerID uuid.UUID) ([]*reservation.Reservation, error)
}

type reservationUseCaseImpl struct {
	reservationRepo  ReservationRepository
	resourceRepo     ResourceRepository
	profileRepo      ProfileRepository
	notificationRepo NotificationRepository
	auditRepo        AuditRepository
	clock            clock.Clock
}

func NewReservationUseCase(
	reservationRepo ReservationRepository,
	resourceRepo ResourceRepository,
	profileRepo ProfileRepository,
	notificationRepo NotificationRepository,
	auditRepo AuditRepository,
	clk clock.Clock,
) ReservationUseCase {
	return &reservationUseCaseImpl{
		reservationRepo:  reservationRepo,
		resourceRepo:     resourceRepo,
		profileRepo:      profileRepo,
		notificationRepo: notificationRepo,
		auditRepo:        auditRepo,
		clock:            clk,
	}
}

// CreateReservation validates and commits either a single booking or
// an all-or-nothing recurring group. Every candidate interval is
// conflict-checked before any row is written; the schema's exclusion
// constraint backstops the remaining check-then-insert window.
func (u *reservationUseCaseImpl) CreateReservation(ctx context.Context, params CreateReservationParams) (*CreateReservationResult, error) {
	if !params.ResourceKind.IsValid() {
		return nil, errs.Mark(errs.Newf("unknown resource kind %q", params.ResourceKind), ErrValidation)
	}
	if params.ResourceRef == "" {
		return nil, errs.Mark(errs.New("resource reference is required"), ErrValidation)
	}

	slot, err := reservation.NewTimeSlot(params.Start, params.End)
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}

	borrower, err := u.profileRepo.FindByUserID(ctx, params.BorrowerID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrProfileNotFound)
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	res, err := u.resourceRepo.FindByRef(ctx, params.ResourceKind, params.ResourceRef)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrResourceNotFound)
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	// Authorization checks run before any conflict detection.
	if borrower.OrganizationID != res.OrganizationID {
		return nil, errs.Mark(reservation.ErrBorrowerOrgMismatch, ErrAuthorizationMismatch)
	}
	if err := res.CheckReservable(slot.End()); err != nil {
		return nil, errs.Mark(err, ErrAuthorizationMismatch)
	}

	rule := schedule.Rule{Frequency: schedule.FrequencyNone}
	if params.Recurrence != nil {
		rule = *params.Recurrence
	}

	if rule.Frequency == schedule.FrequencyNone {
		return u.commitSingle(ctx, res, borrower, slot, params.Note)
	}
	return u.commitRecurring(ctx, res, borrower, slot, params.Note, rule)
}

func (u *reservationUseCaseImpl) commitSingle(
	ctx context.Context,
	res *resource.Resource,
	borrower *repository.Profile,
	slot reservation.TimeSlot,
	note string,
) (*CreateReservationResult, error) {
	conflict, err := u.reservationRepo.HasActiveOverlap(ctx, res.ID, slot.Start(), slot.End())
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if conflict {
		return nil, &ConflictError{Date: slot.Start()}
	}

	entity, err := u.newAnchor(res, borrower, slot, note, schedule.Rule{Frequency: schedule.FrequencyNone})
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}

	err = u.reservationRepo.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.reservationRepo.Create(txCtx, entity); err != nil {
			return err
		}
		return u.enqueueCreatedNotification(txCtx, entity, res, 1)
	})
	if err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, &ConflictError{Date: slot.Start()}
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	u.recordAudit(ctx, borrower.UserID, "reservation.create", entity.ID(), map[string]any{
		"resource_id": res.ID,
		"start":       slot.Start(),
		"end":         slot.End(),
	})

	return &CreateReservationResult{ID: entity.ID(), InstanceCount: 1}, nil
}

func (u *reservationUseCaseImpl) commitRecurring(
	ctx context.Context,
	res *resource.Resource,
	borrower *repository.Profile,
	slot reservation.TimeSlot,
	note string,
	rule schedule.Rule,
) (*CreateReservationResult, error) {
	candidates, err := schedule.Expand(slot.Start(), slot.End(), rule)
	if err != nil {
		return nil, errs.Mark(err, ErrConfiguration)
	}

	// Phase one: check every candidate before writing any row. The base
	// slot was vetted before expansion, but later occurrences can still
	// run past the resource's usable-until bound, so each candidate is
	// re-checked here. Overlap reads are fresh per candidate, not cached
	// across the batch.
	for _, c := range candidates {
		if err := res.CheckReservable(c.End); err != nil {
			return nil, errs.Mark(err, ErrAuthorizationMismatch)
		}
		conflict, err := u.reservationRepo.HasActiveOverlap(ctx, res.ID, c.Start, c.End)
		if err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if conflict {
			return nil, &ConflictError{Date: c.Start}
		}
	}

	anchorSlot, err := reservation.NewTimeSlot(candidates[0].Start, candidates[0].End)
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}
	anchor, err := u.newAnchor(res, borrower, anchorSlot, note, rule)
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}

	// Phase two: write the whole group in one transaction.
	var failedAt time.Time
	err = u.reservationRepo.WithTx(ctx, func(txCtx context.Context) error {
		failedAt = candidates[0].Start
		if err := u.reservationRepo.Create(txCtx, anchor); err != nil {
			return err
		}
		now := u.clock.Now()
		for _, c := range candidates[1:] {
			failedAt = c.Start
			instanceSlot, err := reservation.NewTimeSlot(c.Start, c.End)
			if err != nil {
				return errs.Mark(err, ErrValidation)
			}
			if err := u.reservationRepo.Create(txCtx, anchor.InstanceFor(instanceSlot, now)); err != nil {
				return err
			}
		}
		return u.enqueueCreatedNotification(txCtx, anchor, res, len(candidates))
	})
	if err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, &ConflictError{Date: failedAt}
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	u.recordAudit(ctx, borrower.UserID, "reservation.create_recurring", anchor.ID(), map[string]any{
		"resource_id":    res.ID,
		"instance_count": len(candidates),
		"first_start":    candidates[0].Start,
		"last_start":     candidates[len(candidates)-1].Start,
	})

	return &CreateReservationResult{ID: anchor.ID(), InstanceCount: len(candidates)}, nil
}

func (u *reservationUseCaseImpl) newAnchor(
	res *resource.Resource,
	borrower *repository.Profile,
	slot reservation.TimeSlot,
	note string,
	rule schedule.Rule,
) (*reservation.Reservation, error) {
	var startOdometer *int64
	if res.Kind == reservation.KindVehicle {
		startOdometer = res.CurrentOdometer
	}
	return reservation.NewReservation(
		res.OrganizationID,
		res.ID,
		res.Kind,
		borrower.UserID,
		borrower.OrganizationID,
		slot,
		reservation.NewNote(note),
		rule,
		startOdometer,
		u.clock.Now(),
	)
}

// enqueueCreatedNotification writes one outbox job per request: a
// recurring group gets a single summary, never one job per instance.
func (u *reservationUseCaseImpl) enqueueCreatedNotification(
	ctx context.Context,
	anchor *reservation.Reservation,
	res *resource.Resource,
	instanceCount int,
) error {
	payload, err := json.Marshal(map[string]any{
		"reservation_id": anchor.ID(),
		"borrower_id":    anchor.BorrowerID(),
		"resource_id":    res.ID,
		"resource_name":  res.Name,
		"start":          anchor.Slot().Start(),
		"end":            anchor.Slot().End(),
		"instance_count": instanceCount,
	})
	if err != nil {
		return err
	}
	return u.notificationRepo.CreateJob(ctx, "reservation_created", payload, u.clock.Now())
}

// recordAudit is fire-and-forget: a failed audit write is logged and
// never undoes a committed scheduling decision.
func (u *reservationUseCaseImpl) recordAudit(ctx context.Context, actorID uuid.UUID, action string, targetID uuid.UUID, metadata map[string]any) {
	data, err := json.Marshal(metadata)
	if err != nil {
		slog.Warn("failed to marshal audit metadata", "action", action, "error", err)
		return
	}
	if err := u.auditRepo.Record(ctx, actorID, action, targetID, data); err != nil {
		slog.Warn("failed to record audit entry", "action", action, "error", err)
	}
}

func (u *reservationUseCaseImpl) GetReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, err := u.reservationRepo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrReservationNotFound)
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return res, nil
}

func (u *reservationUseCaseImpl) GetBorrowerReservations(ctx context.Context, borrowerID uuid.UUID) ([]*reservation.Reservation, error) {
	list, err := u.reservationRepo.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return list, nil
}
