package response

import (
	"errors"
	"net/http"

	"github.com/worklens-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/worklens-hr/attendance-backend-go/internal/domain/shift"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Attendance state machine precondition violations surface with a
	// specific code so a client can explain why the call was rejected.
	switch {
	case errors.Is(err, attendance.ErrSessionAlreadyOpen):
		Conflict(w, "You already have an open session for today")
	case errors.Is(err, attendance.ErrNoOpenSession):
		Conflict(w, "You have no open session to end")
	case errors.Is(err, attendance.ErrBreakInProgress):
		Conflict(w, "You are on a break, end it before clocking out")
	case errors.Is(err, attendance.ErrNoActiveSession):
		Conflict(w, "You have no active session to take a break from")
	case errors.Is(err, attendance.ErrBreakAlreadyOpen):
		Conflict(w, "You are already on a break")
	case errors.Is(err, attendance.ErrNoOpenBreak):
		Conflict(w, "You have no open break to end")
	case errors.Is(err, attendance.ErrFutureTimestamp):
		BadRequest(w, "Timestamp must not be in the future", nil)
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")

	// Collaborator lookups
	case errors.Is(err, shift.ErrPolicyNotFound):
		NotFound(w, "No shift policy configured for employee")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
