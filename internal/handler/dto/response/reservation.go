package response

import (
	"time"

	"stewardflow/internal/domain/reservation"
	"stewardflow/internal/domain/schedule"
	"stewardflow/internal/usecase"

	"github.com/google/uuid"
)

type CreateReservationResponse struct {
	ID            uuid.UUID `json:"id"`
	InstanceCount int       `json:"instanceCount"`
}

func FromCreateResult(result *usecase.CreateReservationResult) *CreateReservationResponse {
	return &CreateReservationResponse{
		ID:            result.ID,
		InstanceCount: result.InstanceCount,
	}
}

type RecurrenceResponse struct {
	Type       string     `json:"type"`
	Interval   int        `json:"interval,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	DaysOfWeek []int      `json:"daysOfWeek,omitempty"`
	DayOfMonth int        `json:"dayOfMonth,omitempty"`
}

type VehicleReturnResponse struct {
	OdometerReading  int64      `json:"odometerReading"`
	DistanceTraveled int64      `json:"distanceTraveled"`
	Status           string     `json:"status"`
	VerifiedBy       *uuid.UUID `json:"verifiedBy,omitempty"`
	VerifiedAt       *time.Time `json:"verifiedAt,omitempty"`
	Note             string     `json:"note,omitempty"`
}

type ReservationResponse struct {
	ID                  uuid.UUID              `json:"id"`
	OrganizationID      uuid.UUID              `json:"organizationId"`
	ResourceID          uuid.UUID              `json:"resourceId"`
	ResourceKind        string                 `json:"resourceKind"`
	BorrowerID          uuid.UUID              `json:"borrowerId"`
	Start               time.Time              `json:"start"`
	End                 time.Time              `json:"end"`
	Status              string                 `json:"status"`
	Note                string                 `json:"note,omitempty"`
	Recurrence          *RecurrenceResponse    `json:"recurrence,omitempty"`
	ParentReservationID *uuid.UUID             `json:"parentReservationId,omitempty"`
	IsRecurringInstance bool                   `json:"isRecurringInstance"`
	StartOdometer       *int64                 `json:"startOdometer,omitempty"`
	VehicleReturn       *VehicleReturnResponse `json:"vehicleReturn,omitempty"`
	CreatedAt           time.Time              `json:"createdAt"`
	UpdatedAt           time.Time              `json:"updatedAt"`
}

func FromReservation(r *reservation.Reservation) *ReservationResponse {
	resp := &ReservationResponse{
		ID:                  r.ID(),
		OrganizationID:      r.OrganizationID(),
		ResourceID:          r.ResourceID(),
		ResourceKind:        r.ResourceKind().String(),
		BorrowerID:          r.BorrowerID(),
		Start:               r.Slot().Start(),
		End:                 r.Slot().End(),
		Status:              r.Status().String(),
		Note:                r.Note().String(),
		ParentReservationID: r.ParentID(),
		IsRecurringInstance: r.IsRecurringInstance(),
		StartOdometer:       r.StartOdometer(),
		CreatedAt:           r.CreatedAt(),
		UpdatedAt:           r.UpdatedAt(),
	}

	if rule := r.Recurrence(); rule.Frequency != schedule.FrequencyNone {
		rec := &RecurrenceResponse{
			Type:       string(rule.Frequency),
			Interval:   rule.Interval,
			DayOfMonth: rule.DayOfMonth,
		}
		if !rule.Until.IsZero() {
			until := rule.Until
			rec.EndDate = &until
		}
		for _, d := range rule.DaysOfWeek {
			rec.DaysOfWeek = append(rec.DaysOfWeek, int(d))
		}
		resp.Recurrence = rec
	}

	if vr := r.VehicleReturn(); vr != nil {
		resp.VehicleReturn = &VehicleReturnResponse{
			OdometerReading:  vr.OdometerReading,
			DistanceTraveled: vr.DistanceTraveled,
			Status:           vr.Status.String(),
			VerifiedBy:       vr.VerifiedBy,
			VerifiedAt:       vr.VerifiedAt,
			Note:             vr.Note,
		}
	}

	return resp
}

type ReturnOutcomeResponse struct {
	Closed           bool   `json:"closed"`
	ReturnStatus     string `json:"returnStatus"`
	DistanceTraveled int64  `json:"distanceTraveled"`
}

func FromReturnOutcome(outcome *usecase.ReturnOutcome) *ReturnOutcomeResponse {
	return &ReturnOutcomeResponse{
		Closed:           outcome.Closed,
		ReturnStatus:     outcome.ReturnStatus.String(),
		DistanceTraveled: outcome.DistanceTraveled,
	}
}

type ApprovalRoleResponse struct {
	RequiredRole string `json:"requiredRole"`
}
