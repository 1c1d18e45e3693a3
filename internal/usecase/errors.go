package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"stewardflow/internal/pkg/errs"
)

// Sentinel errors of the scheduling engine. Callers match with
// errors.Is; causes are attached with errs.Mark so the full chain
// stays loggable.
var (
	ErrValidation            = errs.New("validation error")
	ErrConfiguration         = errs.New("invalid recurrence configuration")
	ErrResourceNotFound      = errs.New("resource not found")
	ErrReservationNotFound   = errs.New("reservation not found")
	ErrProfileNotFound       = errs.New("borrower profile not found")
	ErrAuthorizationMismatch = errs.New("borrower is not authorized for this resource")
	ErrSchedulingConflict    = errs.New("time slot conflict")
	ErrLifecycle             = errs.New("illegal lifecycle transition")
	ErrNotPermitted          = errs.New("actor is not permitted to perform this transition")
	ErrMissingEvidence       = errs.New("required return evidence is missing")

	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

// ConflictError names the candidate date that collided. For recurring
// batches this is the first conflicting instance; nothing is written.
type ConflictError struct {
	Date time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time slot conflict on %s", e.Date.Format("2006-01-02"))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrSchedulingConflict
}

func logAuditFailure(action string, err error) {
	slog.Warn("failed to record audit entry", "action", action, "error", err)
}
