package repository

import (
	"context"
	"time"

	"stewardflow/internal/domain/reservation"
	"stewardflow/internal/domain/schedule"
	"stewardflow/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository struct {
	q querier
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{q: querier{pool: pool}}
}

func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTx(ctx, r.q.pool, fn)
}

const reservationColumns = `
id, organization_id, resource_id, resource_kind, borrower_id,
start_at, end_at, status, note,
recurrence_type, recurrence_interval, recurrence_end_date,
recurrence_days_of_week, recurrence_day_of_month,
parent_reservation_id, is_recurring_instance,
start_odometer_reading, odometer_reading, distance_traveled,
return_status, return_verified_by, return_verified_at, return_note,
odometer_image, exterior_image,
created_at, updated_at`

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	const stmt = `
INSERT INTO reservations (` + reservationColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`

	s := res.Snapshot()
	args := []any{
		s.ID, s.OrganizationID, s.ResourceID, string(s.ResourceKind), s.BorrowerID,
		s.Start, s.End, string(s.Status), nullIfEmpty(s.Note),
		string(s.Recurrence.Frequency), s.Recurrence.Interval, nullIfZeroTime(s.Recurrence.Until),
		weekdaysToInts(s.Recurrence.DaysOfWeek), nullIfZeroInt(s.Recurrence.DayOfMonth),
		s.ParentID, s.IsRecurringInstance,
		s.StartOdometer, nil, nil,
		nil, nil, nil, nil,
		nil, nil,
		s.CreatedAt, s.UpdatedAt,
	}
	if vr := s.VehicleReturn; vr != nil {
		args[17] = vr.OdometerReading
		args[18] = vr.DistanceTraveled
		args[19] = string(vr.Status)
		args[20] = vr.VerifiedBy
		args[21] = vr.VerifiedAt
		args[22] = nullIfEmpty(vr.Note)
		args[23] = vr.OdometerImage
		args[24] = vr.ExteriorImage
	}

	if _, err := r.q.exec(ctx, stmt, args...); err != nil {
		return wrapPgErr("failed to create reservation", err)
	}
	return nil
}

// HasActiveOverlap is the availability check: does any pending or
// approved reservation of the resource touch [start, end]? The
// comparison is inclusive on both ends, matching the exclusion
// constraint the schema declares.
func (r *ReservationRepository) HasActiveOverlap(ctx context.Context, resourceID uuid.UUID, start, end time.Time) (bool, error) {
	const query = `
SELECT EXISTS (
  SELECT 1 FROM reservations
  WHERE resource_id = $1
    AND status IN ('pending', 'approved')
    AND start_at <= $3
    AND end_at >= $2
)`

	var exists bool
	if err := r.q.queryRow(ctx, query, resourceID, start, end).Scan(&exists); err != nil {
		return false, wrapPgErr("failed to check reservation overlap", err)
	}
	return exists, nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	const query = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	row := r.q.queryRow(ctx, query, id)
	res, err := scanReservation(row)
	if err != nil {
		if ClassifyPgErr(err) == infra.KindNotFound {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, wrapPgErr("failed to find reservation", err)
	}
	return res, nil
}

func (r *ReservationRepository) ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*reservation.Reservation, error) {
	const query = `SELECT ` + reservationColumns + `
FROM reservations WHERE borrower_id = $1 ORDER BY start_at DESC`

	rows, err := r.q.query(ctx, query, borrowerID)
	if err != nil {
		return nil, wrapPgErr("failed to list reservations", err)
	}
	defer rows.Close()

	var out []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, wrapPgErr("failed to scan reservation", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgErr("failed to read reservations", err)
	}
	return out, nil
}

// Update persists the mutable portion of a reservation: status and the
// vehicle return block. Immutable creation fields are never rewritten.
func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	const stmt = `
UPDATE reservations SET
  status = $2,
  odometer_reading = $3,
  distance_traveled = $4,
  return_status = $5,
  return_verified_by = $6,
  return_verified_at = $7,
  return_note = $8,
  odometer_image = $9,
  exterior_image = $10,
  updated_at = $11
WHERE id = $1`

	s := res.Snapshot()
	args := []any{s.ID, string(s.Status), nil, nil, nil, nil, nil, nil, nil, nil, s.UpdatedAt}
	if vr := s.VehicleReturn; vr != nil {
		args[2] = vr.OdometerReading
		args[3] = vr.DistanceTraveled
		args[4] = string(vr.Status)
		args[5] = vr.VerifiedBy
		args[6] = vr.VerifiedAt
		args[7] = nullIfEmpty(vr.Note)
		args[8] = vr.OdometerImage
		args[9] = vr.ExteriorImage
	}

	tag, err := r.q.exec(ctx, stmt, args...)
	if err != nil {
		return wrapPgErr("failed to update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		s             reservation.Snapshot
		kind          string
		status        string
		note          *string
		freq          string
		interval      *int
		until         *time.Time
		daysOfWeek    []int32
		dayOfMonth    *int
		odometer      *int64
		distance      *int64
		returnStatus  *string
		returnVerifBy *uuid.UUID
		returnVerifAt *time.Time
		returnNote    *string
		odometerImage *string
		exteriorImage *string
	)

	err := row.Scan(
		&s.ID, &s.OrganizationID, &s.ResourceID, &kind, &s.BorrowerID,
		&s.Start, &s.End, &status, &note,
		&freq, &interval, &until,
		&daysOfWeek, &dayOfMonth,
		&s.ParentID, &s.IsRecurringInstance,
		&s.StartOdometer, &odometer, &distance,
		&returnStatus, &returnVerifBy, &returnVerifAt, &returnNote,
		&odometerImage, &exteriorImage,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.ResourceKind = reservation.ResourceKind(kind)
	s.Status = reservation.Status(status)
	if note != nil {
		s.Note = *note
	}

	s.Recurrence = schedule.Rule{Frequency: schedule.Frequency(freq)}
	if interval != nil {
		s.Recurrence.Interval = *interval
	}
	if until != nil {
		s.Recurrence.Until = *until
	}
	s.Recurrence.DaysOfWeek = intsToWeekdays(daysOfWeek)
	if dayOfMonth != nil {
		s.Recurrence.DayOfMonth = *dayOfMonth
	}

	if odometer != nil {
		vr := &reservation.VehicleReturn{
			OdometerReading: *odometer,
			VerifiedBy:      returnVerifBy,
			VerifiedAt:      returnVerifAt,
			OdometerImage:   odometerImage,
			ExteriorImage:   exteriorImage,
		}
		if distance != nil {
			vr.DistanceTraveled = *distance
		}
		if returnStatus != nil {
			vr.Status = reservation.ReturnStatus(*returnStatus)
		}
		if returnNote != nil {
			vr.Note = *returnNote
		}
		s.VehicleReturn = vr
	}

	return reservation.Rehydrate(s), nil
}

func weekdaysToInts(days []time.Weekday) []int32 {
	if len(days) == 0 {
		return nil
	}
	out := make([]int32, len(days))
	for i, d := range days {
		out[i] = int32(d)
	}
	return out
}

func intsToWeekdays(days []int32) []time.Weekday {
	if len(days) == 0 {
		return nil
	}
	out := make([]time.Weekday, len(days))
	for i, d := range days {
		out[i] = time.Weekday(d)
	}
	return out
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullIfZeroTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullIfZeroInt(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
