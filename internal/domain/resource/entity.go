package resource

import (
	"errors"
	"time"

	"stewardflow/internal/domain/reservation"

	"github.com/google/uuid"
)

var (
	ErrNotLoanable     = errors.New("resource is not loanable")
	ErrBlockingStatus  = errors.New("resource status blocks reservations")
	ErrPastUsableUntil = errors.New("reservation ends after the resource usable-until date")
)

type Status string

const (
	StatusAvailable   Status = "available"
	StatusInUse       Status = "in_use"
	StatusMaintenance Status = "maintenance"
	StatusRetired     Status = "retired"
)

func (s Status) String() string {
	return string(s)
}

// Blocking statuses take the resource off the reservation timeline
// entirely; in_use does not, since overlap detection already guards
// the timeline itself.
func (s Status) Blocking() bool {
	return s == StatusMaintenance || s == StatusRetired
}

type Resource struct {
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	Kind            reservation.ResourceKind
	Name            string
	Alias           *string
	Status          Status
	Loanable        bool
	UsableUntil     *time.Time // assets only; date-granular bound
	Department      *string    // nil means organization-wide ownership
	CurrentOdometer *int64     // vehicles only
}

// CheckReservable validates the loanability preconditions for a
// reservation ending at slotEnd. The usable-until bound is compared on
// the date portion extended to end-of-day: a reservation ending any
// time on the usable-until day passes, one ending the next day fails.
func (r *Resource) CheckReservable(slotEnd time.Time) error {
	if !r.Loanable {
		return ErrNotLoanable
	}
	if r.Status.Blocking() {
		return ErrBlockingStatus
	}
	if r.UsableUntil != nil {
		endDay := dateOf(slotEnd.In(r.UsableUntil.Location()))
		boundDay := dateOf(*r.UsableUntil)
		if endDay.After(boundDay) {
			return ErrPastUsableUntil
		}
	}
	return nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
