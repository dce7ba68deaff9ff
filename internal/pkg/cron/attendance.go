package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/worklens-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/clock"
)

// AttendanceJobs owns the scheduled side of the engine: running daily
// finalization for the previous calendar day once the day has rolled over.
type AttendanceJobs struct {
	finalizer attendance.FinalizationService
	clock     clock.Clock
}

func NewAttendanceJobs(finalizer attendance.FinalizationService, clk clock.Clock) *AttendanceJobs {
	return &AttendanceJobs{
		finalizer: finalizer,
		clock:     clk,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("finalize_previous_day", 1*time.Hour, j.FinalizePreviousDay)
}

// FinalizePreviousDay runs finalization for yesterday. The job ticks hourly
// but acts only during the first hour of the day; the run itself is
// idempotent, so an extra invocation after a restart is harmless.
func (j *AttendanceJobs) FinalizePreviousDay(ctx context.Context) error {
	now := j.clock.Now().UTC()
	if now.Hour() != 0 {
		return nil
	}

	target := attendance.DateOnly(now.AddDate(0, 0, -1))
	slog.Info("Cron: starting daily finalization", "date", target.Format("2006-01-02"))

	summary, err := j.finalizer.RunFinalization(ctx, target)
	if err != nil {
		return err
	}

	slog.Info("Cron: daily finalization complete",
		"date", summary.Date,
		"finalized", summary.Finalized,
		"skipped", summary.Skipped,
		"flagged", summary.Flagged,
		"errored", summary.Errored)
	return nil
}
