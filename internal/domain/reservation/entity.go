package reservation

import (
	"errors"
	"time"

	"stewardflow/internal/domain/schedule"

	"github.com/google/uuid"
)

var (
	ErrIllegalTransition     = errors.New("illegal status transition")
	ErrNotVehicle            = errors.New("reservation is not for a vehicle")
	ErrOdometerRegression    = errors.New("final odometer reading is below the start reading")
	ErrMissingStartOdometer  = errors.New("start odometer reading is not recorded")
	ErrReturnAlreadyRecorded = errors.New("vehicle return already recorded")
	ErrBorrowerOrgMismatch   = errors.New("borrower does not belong to the resource organization")
)

// VehicleReturn holds the odometer reconciliation recorded when a
// vehicle comes back.
type VehicleReturn struct {
	OdometerReading  int64
	DistanceTraveled int64
	Status           ReturnStatus
	VerifiedBy       *uuid.UUID
	VerifiedAt       *time.Time
	Note             string
	OdometerImage    *string
	ExteriorImage    *string
}

type Reservation struct {
	id                  uuid.UUID
	organizationID      uuid.UUID
	resourceID          uuid.UUID
	resourceKind        ResourceKind
	borrowerID          uuid.UUID
	slot                TimeSlot
	status              Status
	note                Note
	recurrence          schedule.Rule
	parentID            *uuid.UUID
	isRecurringInstance bool
	startOdometer       *int64
	vehicleReturn       *VehicleReturn
	createdAt           time.Time
	updatedAt           time.Time
}

// NewReservation creates the anchor (or only) reservation of a
// request. The organization is inherited from the resource and the
// borrower must already have been checked against it by the caller;
// the invariant is re-asserted here.
func NewReservation(
	organizationID uuid.UUID,
	resourceID uuid.UUID,
	kind ResourceKind,
	borrowerID uuid.UUID,
	borrowerOrgID uuid.UUID,
	slot TimeSlot,
	note Note,
	rule schedule.Rule,
	startOdometer *int64,
	now time.Time,
) (*Reservation, error) {
	if borrowerOrgID != organizationID {
		return nil, ErrBorrowerOrgMismatch
	}
	if rule.Frequency == "" {
		rule.Frequency = schedule.FrequencyNone
	}

	return &Reservation{
		id:             uuid.New(),
		organizationID: organizationID,
		resourceID:     resourceID,
		resourceKind:   kind,
		borrowerID:     borrowerID,
		slot:           slot,
		status:         StatusPending,
		note:           note,
		recurrence:     rule,
		startOdometer:  startOdometer,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// InstanceFor derives a sibling occurrence of a recurring group from
// its anchor. Siblings share every field except the slot and linkage.
func (r *Reservation) InstanceFor(slot TimeSlot, now time.Time) *Reservation {
	parentID := r.id
	return &Reservation{
		id:                  uuid.New(),
		organizationID:      r.organizationID,
		resourceID:          r.resourceID,
		resourceKind:        r.resourceKind,
		borrowerID:          r.borrowerID,
		slot:                slot,
		status:              StatusPending,
		note:                r.note,
		recurrence:          r.recurrence,
		parentID:            &parentID,
		isRecurringInstance: true,
		startOdometer:       r.startOdometer,
		createdAt:           now,
		updatedAt:           now,
	}
}

func (r *Reservation) transition(next Status, now time.Time) error {
	if !r.status.CanTransitionTo(next) {
		return ErrIllegalTransition
	}
	r.status = next
	r.updatedAt = now
	return nil
}

func (r *Reservation) Approve(now time.Time) error {
	return r.transition(StatusApproved, now)
}

func (r *Reservation) Reject(now time.Time) error {
	return r.transition(StatusRejected, now)
}

func (r *Reservation) Cancel(now time.Time) error {
	return r.transition(StatusCancelled, now)
}

func (r *Reservation) MarkReturned(now time.Time) error {
	return r.transition(StatusReturned, now)
}

// RecordVehicleReturn reconciles the odometer and applies the return
// policy. With verification not required the reservation closes in one
// step: status flips to returned and the verifier stamps are filled
// with the acting user. With verification required only return_status
// is set; status stays approved for the later confirmation.
func (r *Reservation) RecordVehicleReturn(
	finalOdometer int64,
	odometerImage, exteriorImage *string,
	note string,
	actorID uuid.UUID,
	requireVerification bool,
	now time.Time,
) error {
	if r.resourceKind != KindVehicle {
		return ErrNotVehicle
	}
	if r.vehicleReturn != nil {
		return ErrReturnAlreadyRecorded
	}
	// Only an approved booking can come back. The deferred-verification
	// path skips the status transition, so the precondition must hold
	// here, not only inside transition().
	if r.status != StatusApproved {
		return ErrIllegalTransition
	}
	if r.startOdometer == nil {
		return ErrMissingStartOdometer
	}
	if finalOdometer < *r.startOdometer {
		return ErrOdometerRegression
	}

	vr := &VehicleReturn{
		OdometerReading:  finalOdometer,
		DistanceTraveled: finalOdometer - *r.startOdometer,
		Status:           ReturnStatusReturned,
		Note:             note,
		OdometerImage:    odometerImage,
		ExteriorImage:    exteriorImage,
	}

	if !requireVerification {
		if err := r.transition(StatusReturned, now); err != nil {
			return err
		}
		vr.VerifiedBy = &actorID
		verifiedAt := now
		vr.VerifiedAt = &verifiedAt
	} else {
		r.updatedAt = now
	}

	r.vehicleReturn = vr
	return nil
}

func (r *Reservation) ID() uuid.UUID                 { return r.id }
func (r *Reservation) OrganizationID() uuid.UUID     { return r.organizationID }
func (r *Reservation) ResourceID() uuid.UUID         { return r.resourceID }
func (r *Reservation) ResourceKind() ResourceKind    { return r.resourceKind }
func (r *Reservation) BorrowerID() uuid.UUID         { return r.borrowerID }
func (r *Reservation) Slot() TimeSlot                { return r.slot }
func (r *Reservation) Status() Status                { return r.status }
func (r *Reservation) Note() Note                    { return r.note }
func (r *Reservation) Recurrence() schedule.Rule     { return r.recurrence }
func (r *Reservation) ParentID() *uuid.UUID          { return r.parentID }
func (r *Reservation) IsRecurringInstance() bool     { return r.isRecurringInstance }
func (r *Reservation) StartOdometer() *int64         { return r.startOdometer }
func (r *Reservation) VehicleReturn() *VehicleReturn { return r.vehicleReturn }
func (r *Reservation) CreatedAt() time.Time          { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time          { return r.updatedAt }

// Snapshot is the persistence shape of a reservation. Repositories
// rehydrate entities from it without re-running creation invariants.
type Snapshot struct {
	ID                  uuid.UUID
	OrganizationID      uuid.UUID
	ResourceID          uuid.UUID
	ResourceKind        ResourceKind
	BorrowerID          uuid.UUID
	Start               time.Time
	End                 time.Time
	Status              Status
	Note                string
	Recurrence          schedule.Rule
	ParentID            *uuid.UUID
	IsRecurringInstance bool
	StartOdometer       *int64
	VehicleReturn       *VehicleReturn
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func Rehydrate(s Snapshot) *Reservation {
	return &Reservation{
		id:                  s.ID,
		organizationID:      s.OrganizationID,
		resourceID:          s.ResourceID,
		resourceKind:        s.ResourceKind,
		borrowerID:          s.BorrowerID,
		slot:                TimeSlot{start: s.Start, end: s.End},
		status:              s.Status,
		note:                NewNote(s.Note),
		recurrence:          s.Recurrence,
		parentID:            s.ParentID,
		isRecurringInstance: s.IsRecurringInstance,
		startOdometer:       s.StartOdometer,
		vehicleReturn:       s.VehicleReturn,
		createdAt:           s.CreatedAt,
		updatedAt:           s.UpdatedAt,
	}
}

func (r *Reservation) Snapshot() Snapshot {
	return Snapshot{
		ID:                  r.id,
		OrganizationID:      r.organizationID,
		ResourceID:          r.resourceID,
		ResourceKind:        r.resourceKind,
		BorrowerID:          r.borrowerID,
		Start:               r.slot.start,
		End:                 r.slot.end,
		Status:              r.status,
		Note:                r.note.String(),
		Recurrence:          r.recurrence,
		ParentID:            r.parentID,
		IsRecurringInstance: r.isRecurringInstance,
		StartOdometer:       r.startOdometer,
		VehicleReturn:       r.vehicleReturn,
		CreatedAt:           r.createdAt,
		UpdatedAt:           r.updatedAt,
	}
}
