package api

import (
	"errors"
	"log/slog"
	"net/http"

	"stewardflow/internal/domain/reservation"
	"stewardflow/internal/handler/dto/request"
	"stewardflow/internal/handler/dto/response"
	"stewardflow/internal/handler/httperr"
	"stewardflow/internal/handler/middleware"
	"stewardflow/internal/pkg/errs"
	"stewardflow/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	reservations  usecase.ReservationUseCase
	lifecycle     usecase.LifecycleUseCase
	vehicleReturn usecase.VehicleReturnUseCase
}

func NewReservationHandler(
	reservations usecase.ReservationUseCase,
	lifecycle usecase.LifecycleUseCase,
	vehicleReturn usecase.VehicleReturnUseCase,
) *ReservationHandler {
	return &ReservationHandler{
		reservations:  reservations,
		lifecycle:     lifecycle,
		vehicleReturn: vehicleReturn,
	}
}

func (h *ReservationHandler) Create(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing identity"), "Authentication required", nil)
		return
	}

	var req request.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request body", nil)
		return
	}

	result, err := h.reservations.CreateReservation(c.Request.Context(), req.ToParams(actorID))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.FromCreateResult(result))
}

func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	res, err := h.reservations.GetReservation(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromReservation(res))
}

func (h *ReservationHandler) ListMine(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing identity"), "Authentication required", nil)
		return
	}

	list, err := h.reservations.GetBorrowerReservations(c.Request.Context(), actorID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]*response.ReservationResponse, 0, len(list))
	for _, r := range list {
		out = append(out, response.FromReservation(r))
	}
	c.JSON(http.StatusOK, gin.H{"reservations": out})
}

func (h *ReservationHandler) Approve(c *gin.Context) {
	h.transition(c, reservation.StatusApproved)
}

func (h *ReservationHandler) Reject(c *gin.Context) {
	h.transition(c, reservation.StatusRejected)
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	h.transition(c, reservation.StatusCancelled)
}

func (h *ReservationHandler) Return(c *gin.Context) {
	h.transition(c, reservation.StatusReturned)
}

func (h *ReservationHandler) transition(c *gin.Context, target reservation.Status) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing identity"), "Authentication required", nil)
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.lifecycle.Transition(c.Request.Context(), id, actorID, target); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": target.String()})
}

func (h *ReservationHandler) VehicleReturn(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing identity"), "Authentication required", nil)
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req request.VehicleReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request body", nil)
		return
	}

	outcome, err := h.vehicleReturn.RecordVehicleReturn(c.Request.Context(), req.ToParams(id, actorID))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromReturnOutcome(outcome))
}

// respondError maps use case failures onto the HTTP surface. Conflicts
// carry the first clashing date so recurring callers can adjust.
func (h *ReservationHandler) respondError(c *gin.Context, err error) {
	var conflict *usecase.ConflictError
	if errors.As(err, &conflict) {
		httperr.AbortWithError(c, http.StatusConflict, err, "Scheduling conflict", gin.H{
			"conflictDate": conflict.Date,
		})
		return
	}

	switch {
	case errors.Is(err, usecase.ErrValidation):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Validation failed", nil)
	case errors.Is(err, usecase.ErrConfiguration):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid recurrence configuration", nil)
	case errors.Is(err, usecase.ErrResourceNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Resource not found", nil)
	case errors.Is(err, usecase.ErrReservationNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found", nil)
	case errors.Is(err, usecase.ErrProfileNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Profile not found", nil)
	case errors.Is(err, usecase.ErrAuthorizationMismatch):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Resource is not available to this borrower", nil)
	case errors.Is(err, usecase.ErrNotPermitted):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Not permitted", nil)
	case errors.Is(err, usecase.ErrLifecycle):
		httperr.AbortWithError(c, http.StatusConflict, err, "Illegal status transition", nil)
	case errors.Is(err, usecase.ErrMissingEvidence):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Return photos are required", nil)
	default:
		slog.Error("unhandled reservation error",
			"path", c.Request.URL.Path,
			"stack", errs.ExtractStackLines(err, 5),
		)
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}
