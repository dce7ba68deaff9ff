package attendance

import (
	"context"
	"time"
)

// Service defines the session/break state machine operations. Each call is a
// discrete real-world event (not idempotent) applied atomically to the
// caller's record for today.
type Service interface {
	// StartSession opens a new session; rejects when one is already open.
	StartSession(ctx context.Context, req StartSessionRequest) (SessionResponse, error)

	// EndSession closes the single open session; rejects while on a break.
	EndSession(ctx context.Context, req EndSessionRequest) (SessionResponse, error)

	// StartBreak pauses the active session.
	StartBreak(ctx context.Context, req StartBreakRequest) (BreakResponse, error)

	// EndBreak resumes the active session.
	EndBreak(ctx context.Context, req EndBreakRequest) (BreakResponse, error)

	// GetRecord returns the full aggregate for an employee and date.
	GetRecord(ctx context.Context, employeeID string, date time.Time) (RecordResponse, error)
}

// FinalizationService derives a terminal status for every employee's record
// on a date. Safe to invoke repeatedly: already-terminal records are left
// untouched.
type FinalizationService interface {
	RunFinalization(ctx context.Context, date time.Time) (FinalizationSummary, error)
}
