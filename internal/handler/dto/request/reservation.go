package request

import (
	"strings"
	"time"

	"stewardflow/internal/domain/reservation"
	"stewardflow/internal/domain/schedule"
	"stewardflow/internal/usecase"

	"github.com/google/uuid"
)

type RecurrenceRule struct {
	Type       string    `json:"type" binding:"required,oneof=weekly monthly"`
	Interval   int       `json:"interval" binding:"required,min=1"`
	EndDate    time.Time `json:"end_date" binding:"required"`
	DaysOfWeek []int     `json:"days_of_week,omitempty"`
	DayOfMonth int       `json:"day_of_month,omitempty"`
}

type CreateReservationRequest struct {
	ResourceKind string          `json:"resource_kind" binding:"required,oneof=asset space vehicle"`
	ResourceRef  string          `json:"resource_ref" binding:"required"`
	StartTime    time.Time       `json:"start_time" binding:"required"`
	EndTime      time.Time       `json:"end_time" binding:"required"`
	Note         *string         `json:"note,omitempty"`
	Recurrence   *RecurrenceRule `json:"recurrence,omitempty"`
}

func (r CreateReservationRequest) ToParams(borrowerID uuid.UUID) usecase.CreateReservationParams {
	params := usecase.CreateReservationParams{
		ResourceKind: reservation.ResourceKind(r.ResourceKind),
		ResourceRef:  strings.TrimSpace(r.ResourceRef),
		BorrowerID:   borrowerID,
		Start:        r.StartTime,
		End:          r.EndTime,
	}
	if r.Note != nil {
		params.Note = strings.TrimSpace(*r.Note)
	}
	if r.Recurrence != nil {
		rule := schedule.Rule{
			Frequency:  schedule.Frequency(r.Recurrence.Type),
			Interval:   r.Recurrence.Interval,
			Until:      r.Recurrence.EndDate,
			DayOfMonth: r.Recurrence.DayOfMonth,
		}
		for _, d := range r.Recurrence.DaysOfWeek {
			rule.DaysOfWeek = append(rule.DaysOfWeek, time.Weekday(d))
		}
		params.Recurrence = &rule
	}
	return params
}

type VehicleReturnRequest struct {
	OdometerReading int64   `json:"odometer_reading" binding:"required,min=0"`
	OdometerImage   *string `json:"odometer_image,omitempty"`
	ExteriorImage   *string `json:"exterior_image,omitempty"`
	Note            *string `json:"note,omitempty"`
}

func (r VehicleReturnRequest) ToParams(reservationID, actorID uuid.UUID) usecase.VehicleReturnParams {
	params := usecase.VehicleReturnParams{
		ReservationID:   reservationID,
		ActorID:         actorID,
		OdometerReading: r.OdometerReading,
		OdometerImage:   r.OdometerImage,
		ExteriorImage:   r.ExteriorImage,
	}
	if r.Note != nil {
		params.Note = strings.TrimSpace(*r.Note)
	}
	return params
}
