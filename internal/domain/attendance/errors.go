package attendance

import "errors"

// Attendance domain errors
var (
	// State machine precondition violations
	ErrSessionAlreadyOpen = errors.New("a session is already open for today")
	ErrNoOpenSession      = errors.New("no open session found")
	ErrBreakInProgress    = errors.New("a break is still in progress, end it before clocking out")
	ErrNoActiveSession    = errors.New("no active session to start a break on")
	ErrBreakAlreadyOpen   = errors.New("a break is already open")
	ErrNoOpenBreak        = errors.New("no open break found")
	ErrFutureTimestamp    = errors.New("timestamp must not be in the future")

	// General errors
	ErrRecordNotFound = errors.New("attendance record not found")
)
