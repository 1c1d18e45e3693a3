//go:build unit

package resource_test

import (
	"testing"
	"time"

	"stewardflow/internal/domain/reservation"
	"stewardflow/internal/domain/resource"

	"github.com/stretchr/testify/assert"
)

func TestCheckReservable(t *testing.T) {
	usableUntil := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	base := resource.Resource{
		Kind:     reservation.KindAsset,
		Name:     "Projector A",
		Status:   resource.StatusAvailable,
		Loanable: true,
	}

	cases := []struct {
		name    string
		mutate  func(*resource.Resource)
		slotEnd time.Time
		errIs   error
	}{
		{
			name:    "available and loanable passes",
			slotEnd: time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC),
		},
		{
			name:    "not loanable rejected",
			mutate:  func(r *resource.Resource) { r.Loanable = false },
			slotEnd: time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC),
			errIs:   resource.ErrNotLoanable,
		},
		{
			name:    "maintenance blocks",
			mutate:  func(r *resource.Resource) { r.Status = resource.StatusMaintenance },
			slotEnd: time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC),
			errIs:   resource.ErrBlockingStatus,
		},
		{
			name:    "retired blocks",
			mutate:  func(r *resource.Resource) { r.Status = resource.StatusRetired },
			slotEnd: time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC),
			errIs:   resource.ErrBlockingStatus,
		},
		{
			name:    "in_use does not block",
			mutate:  func(r *resource.Resource) { r.Status = resource.StatusInUse },
			slotEnd: time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC),
		},
		{
			name:    "ending late on the usable-until day passes",
			mutate:  func(r *resource.Resource) { r.UsableUntil = &usableUntil },
			slotEnd: time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC),
		},
		{
			name:    "ending just past midnight after the bound fails",
			mutate:  func(r *resource.Resource) { r.UsableUntil = &usableUntil },
			slotEnd: time.Date(2025, 7, 1, 0, 0, 1, 0, time.UTC),
			errIs:   resource.ErrPastUsableUntil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := base
			if tc.mutate != nil {
				tc.mutate(&res)
			}
			err := res.CheckReservable(tc.slotEnd)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			assert.NoError(t, err)
		})
	}
}
