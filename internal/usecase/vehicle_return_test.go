//go:build unit

package usecase_test

import (
	"context"
	"testing"
	"time"

	"stewardflow/internal/domain/reservation"
	"stewardflow/internal/domain/resource"
	"stewardflow/internal/domain/schedule"
	"stewardflow/internal/infra/repository"
	"stewardflow/internal/pkg/clock"
	"stewardflow/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vehicleReturnFixture struct {
	uc        usecase.VehicleReturnUseCase
	repo      *fakeReservationRepo
	resources *fakeResourceRepo
	settings  *fakeOrgSettingsRepo
	notifier  *fakeNotificationRepo

	borrowerID uuid.UUID
	entityID   uuid.UUID
	resourceID uuid.UUID
}

func newVehicleReturnFixture(t *testing.T, kind reservation.ResourceKind, status reservation.Status) *vehicleReturnFixture {
	t.Helper()
	orgID := uuid.New()
	borrowerID := uuid.New()
	startOdometer := int64(12000)

	res := &resource.Resource{
		ID:              uuid.New(),
		OrganizationID:  orgID,
		Kind:            kind,
		Name:            "Van 1",
		Status:          resource.StatusInUse,
		Loanable:        true,
		CurrentOdometer: &startOdometer,
	}

	ts, err := reservation.NewTimeSlot(
		time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 12, 17, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	entity, err := reservation.NewReservation(
		orgID, res.ID, kind, borrowerID, orgID,
		ts, reservation.NewNote(""), schedule.Rule{}, &startOdometer,
		time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	if status == reservation.StatusApproved {
		require.NoError(t, entity.Approve(time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)))
	}

	repo := newFakeReservationRepo()
	repo.seed(entity)

	resources := &fakeResourceRepo{resources: []*resource.Resource{res}}
	settings := &fakeOrgSettingsRepo{}
	notifier := &fakeNotificationRepo{}

	uc := usecase.NewVehicleReturnUseCase(
		repo,
		resources,
		settings,
		notifier,
		&fakeAuditRepo{},
		clock.NewMockClock(time.Date(2025, 1, 12, 18, 0, 0, 0, time.UTC)),
	)

	return &vehicleReturnFixture{
		uc:         uc,
		repo:       repo,
		resources:  resources,
		settings:   settings,
		notifier:   notifier,
		borrowerID: borrowerID,
		entityID:   entity.ID(),
		resourceID: res.ID,
	}
}

func (f *vehicleReturnFixture) params(odometer int64) usecase.VehicleReturnParams {
	return usecase.VehicleReturnParams{
		ReservationID:   f.entityID,
		ActorID:         f.borrowerID,
		OdometerReading: odometer,
	}
}

func TestRecordVehicleReturnUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("closes the booking when no verification is required", func(t *testing.T) {
		f := newVehicleReturnFixture(t, reservation.KindVehicle, reservation.StatusApproved)

		outcome, err := f.uc.RecordVehicleReturn(ctx, f.params(12340))
		require.NoError(t, err)

		assert.True(t, outcome.Closed)
		assert.Equal(t, reservation.ReturnStatusReturned, outcome.ReturnStatus)
		assert.Equal(t, int64(340), outcome.DistanceTraveled)

		entity, err := f.repo.FindByID(ctx, f.entityID)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusReturned, entity.Status())

		require.Len(t, f.resources.closeOuts, 1)
		assert.Equal(t, f.resourceID, f.resources.closeOuts[0].resourceID)
		assert.Equal(t, int64(12340), f.resources.closeOuts[0].odometer)

		require.Len(t, f.notifier.jobs, 1)
		assert.Equal(t, "vehicle_returned", f.notifier.jobs[0].kind)
	})

	t.Run("leaves the booking open when verification is required", func(t *testing.T) {
		f := newVehicleReturnFixture(t, reservation.KindVehicle, reservation.StatusApproved)
		f.settings.policy = repository.ReturnPolicy{RequireVerification: true}

		outcome, err := f.uc.RecordVehicleReturn(ctx, f.params(12340))
		require.NoError(t, err)

		assert.False(t, outcome.Closed)

		entity, err := f.repo.FindByID(ctx, f.entityID)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusApproved, entity.Status())
		assert.Empty(t, f.resources.closeOuts)
	})

	t.Run("photo policy rejects a return without both images", func(t *testing.T) {
		f := newVehicleReturnFixture(t, reservation.KindVehicle, reservation.StatusApproved)
		f.settings.policy = repository.ReturnPolicy{RequirePhoto: true}

		odoImg := "odo.jpg"
		p := f.params(12340)
		p.OdometerImage = &odoImg

		_, err := f.uc.RecordVehicleReturn(ctx, p)
		assert.ErrorIs(t, err, usecase.ErrMissingEvidence)

		entity, err := f.repo.FindByID(ctx, f.entityID)
		require.NoError(t, err)
		assert.Nil(t, entity.VehicleReturn())
	})

	t.Run("photo policy satisfied with both images", func(t *testing.T) {
		f := newVehicleReturnFixture(t, reservation.KindVehicle, reservation.StatusApproved)
		f.settings.policy = repository.ReturnPolicy{RequirePhoto: true}

		odoImg, extImg := "odo.jpg", "ext.jpg"
		p := f.params(12340)
		p.OdometerImage = &odoImg
		p.ExteriorImage = &extImg

		_, err := f.uc.RecordVehicleReturn(ctx, p)
		require.NoError(t, err)
	})

	t.Run("only the borrower may record the return", func(t *testing.T) {
		f := newVehicleReturnFixture(t, reservation.KindVehicle, reservation.StatusApproved)
		p := f.params(12340)
		p.ActorID = uuid.New()

		_, err := f.uc.RecordVehicleReturn(ctx, p)
		assert.ErrorIs(t, err, usecase.ErrNotPermitted)
	})

	t.Run("non-vehicle reservations are refused", func(t *testing.T) {
		f := newVehicleReturnFixture(t, reservation.KindAsset, reservation.StatusApproved)

		_, err := f.uc.RecordVehicleReturn(ctx, f.params(12340))
		assert.ErrorIs(t, err, usecase.ErrValidation)
	})

	t.Run("odometer regression is refused", func(t *testing.T) {
		f := newVehicleReturnFixture(t, reservation.KindVehicle, reservation.StatusApproved)

		_, err := f.uc.RecordVehicleReturn(ctx, f.params(11000))
		assert.ErrorIs(t, err, usecase.ErrValidation)
		assert.Empty(t, f.resources.closeOuts)
	})

	t.Run("pending reservations cannot be returned", func(t *testing.T) {
		f := newVehicleReturnFixture(t, reservation.KindVehicle, reservation.StatusPending)

		_, err := f.uc.RecordVehicleReturn(ctx, f.params(12340))
		assert.ErrorIs(t, err, usecase.ErrLifecycle)
	})

	t.Run("pending reservations cannot be returned under verification policy", func(t *testing.T) {
		f := newVehicleReturnFixture(t, reservation.KindVehicle, reservation.StatusPending)
		f.settings.policy = repository.ReturnPolicy{RequireVerification: true}

		_, err := f.uc.RecordVehicleReturn(ctx, f.params(12340))
		assert.ErrorIs(t, err, usecase.ErrLifecycle)

		entity, err := f.repo.FindByID(ctx, f.entityID)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusPending, entity.Status())
		assert.Nil(t, entity.VehicleReturn())
	})

	t.Run("unknown reservation", func(t *testing.T) {
		f := newVehicleReturnFixture(t, reservation.KindVehicle, reservation.StatusApproved)
		p := f.params(12340)
		p.ReservationID = uuid.New()

		_, err := f.uc.RecordVehicleReturn(ctx, p)
		assert.ErrorIs(t, err, usecase.ErrReservationNotFound)
	})
}
