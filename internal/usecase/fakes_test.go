//go:build unit

package usecase_test

import (
	"context"
	"sync"
	"time"

	"stewardflow/internal/domain/approval"
	"stewardflow/internal/domain/reservation"
	"stewardflow/internal/domain/resource"
	"stewardflow/internal/infra"
	"stewardflow/internal/infra/repository"

	"github.com/google/uuid"
)

// In-memory fakes mirroring the repository contracts. WithTx snapshots
// the store so a failed transaction body rolls every write back, like
// the real pgx transaction does.

type fakeReservationRepo struct {
	mu    sync.Mutex
	store map[uuid.UUID]*reservation.Reservation

	// createErrAt, when set, fails the nth Create call (1-based) with a
	// conflict-kind error to simulate the exclusion constraint firing.
	createErrAt int
	createCalls int
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{store: make(map[uuid.UUID]*reservation.Reservation)}
}

func (f *fakeReservationRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	snapshot := make(map[uuid.UUID]*reservation.Reservation, len(f.store))
	for k, v := range f.store {
		snapshot[k] = v
	}
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.mu.Lock()
		f.store = snapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeReservationRepo) Create(_ context.Context, res *reservation.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErrAt > 0 && f.createCalls == f.createErrAt {
		return infra.WrapRepoErr("overlapping reservation", nil, infra.KindConflict)
	}
	f.store[res.ID()] = res
	return nil
}

func (f *fakeReservationRepo) HasActiveOverlap(_ context.Context, resourceID uuid.UUID, start, end time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	probe, err := reservation.NewTimeSlot(start, end)
	if err != nil {
		return false, err
	}
	for _, r := range f.store {
		if r.ResourceID() != resourceID {
			continue
		}
		if r.Status() != reservation.StatusPending && r.Status() != reservation.StatusApproved {
			continue
		}
		if r.Slot().Overlaps(probe) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReservationRepo) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.store[id]
	if !ok {
		return nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return r, nil
}

func (f *fakeReservationRepo) ListByBorrower(_ context.Context, borrowerID uuid.UUID) ([]*reservation.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*reservation.Reservation
	for _, r := range f.store {
		if r.BorrowerID() == borrowerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) Update(_ context.Context, res *reservation.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.store[res.ID()]; !ok {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	f.store[res.ID()] = res
	return nil
}

func (f *fakeReservationRepo) seed(res *reservation.Reservation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[res.ID()] = res
}

func (f *fakeReservationRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.store)
}

type closeOutCall struct {
	resourceID uuid.UUID
	odometer   int64
}

type fakeResourceRepo struct {
	resources []*resource.Resource
	closeOuts []closeOutCall
}

func (f *fakeResourceRepo) FindByRef(_ context.Context, kind reservation.ResourceKind, ref string) (*resource.Resource, error) {
	for _, r := range f.resources {
		if r.Kind != kind {
			continue
		}
		if r.ID.String() == ref {
			return r, nil
		}
		if r.Alias != nil && *r.Alias == ref {
			return r, nil
		}
	}
	return nil, infra.WrapRepoErr("resource not found", nil, infra.KindNotFound)
}

func (f *fakeResourceRepo) CloseOutVehicle(_ context.Context, id uuid.UUID, odometer int64, _ time.Time) error {
	f.closeOuts = append(f.closeOuts, closeOutCall{resourceID: id, odometer: odometer})
	return nil
}

type fakeProfileRepo struct {
	profiles map[uuid.UUID]*repository.Profile
}

func (f *fakeProfileRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*repository.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, infra.WrapRepoErr("profile not found", nil, infra.KindNotFound)
	}
	return p, nil
}

type fakePolicyRepo struct {
	policies []approval.Policy
}

func (f *fakePolicyRepo) ListForScope(_ context.Context, organizationID uuid.UUID, scope approval.Scope) ([]approval.Policy, error) {
	var out []approval.Policy
	for _, p := range f.policies {
		if p.OrganizationID == organizationID && p.Scope == scope {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeOrgSettingsRepo struct {
	policy repository.ReturnPolicy
}

func (f *fakeOrgSettingsRepo) ReturnPolicy(_ context.Context, _ uuid.UUID) (repository.ReturnPolicy, error) {
	return f.policy, nil
}

type notificationJob struct {
	kind    string
	payload []byte
}

type fakeNotificationRepo struct {
	jobs []notificationJob
}

func (f *fakeNotificationRepo) CreateJob(_ context.Context, kind string, payload []byte, _ time.Time) error {
	f.jobs = append(f.jobs, notificationJob{kind: kind, payload: payload})
	return nil
}

type auditEntry struct {
	actorID  uuid.UUID
	action   string
	targetID uuid.UUID
}

type fakeAuditRepo struct {
	entries []auditEntry
}

func (f *fakeAuditRepo) Record(_ context.Context, actorID uuid.UUID, action string, targetID uuid.UUID, _ []byte) error {
	f.entries = append(f.entries, auditEntry{actorID: actorID, action: action, targetID: targetID})
	return nil
}
