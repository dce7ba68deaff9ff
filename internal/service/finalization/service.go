package finalization

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/worklens-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/worklens-hr/attendance-backend-go/internal/domain/calendar"
	"github.com/worklens-hr/attendance-backend-go/internal/domain/employee"
	"github.com/worklens-hr/attendance-backend-go/internal/domain/shift"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/clock"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/database"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/keylock"
)

type outcome int

const (
	outcomeNone outcome = iota
	outcomeFinalized
	outcomeSkipped
	outcomeFlagged
)

// FinalizationServiceImpl derives the terminal status for every active
// employee on a target date: it force-closes dangling sessions at the shift
// cutoff, re-validates, classifies, and commits. One employee failing never
// aborts the batch; failures are collected into the summary.
type FinalizationServiceImpl struct {
	tx         database.TxManager
	repo       attendance.Repository
	shiftRepo  shift.PolicyRepository
	directory  employee.Directory
	classifier calendar.Classifier
	clock      clock.Clock
	locks      *keylock.KeyLock
}

func NewFinalizationService(
	tx database.TxManager,
	repo attendance.Repository,
	shiftRepo shift.PolicyRepository,
	directory employee.Directory,
	classifier calendar.Classifier,
	clk clock.Clock,
	locks *keylock.KeyLock,
) attendance.FinalizationService {
	return &FinalizationServiceImpl{
		tx:         tx,
		repo:       repo,
		shiftRepo:  shiftRepo,
		directory:  directory,
		classifier: classifier,
		clock:      clk,
		locks:      locks,
	}
}

// RunFinalization implements attendance.FinalizationService. Safe to re-run:
// records already in a terminal state are left untouched and a second run
// reports zero additional finalized transitions.
func (s *FinalizationServiceImpl) RunFinalization(ctx context.Context, date time.Time) (attendance.FinalizationSummary, error) {
	date = attendance.DateOnly(date)
	summary := attendance.FinalizationSummary{Date: date.Format("2006-01-02")}

	class, err := s.classifier.ClassifyDate(ctx, date)
	if err != nil {
		return summary, fmt.Errorf("failed to classify date: %w", err)
	}

	ids, err := s.directory.ListActiveEmployeeIDs(ctx, date)
	if err != nil {
		return summary, fmt.Errorf("failed to list active employees: %w", err)
	}

	for _, employeeID := range ids {
		// Interruptible between employees; a partial run converges on retry.
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		out, err := s.finalizeEmployee(ctx, employeeID, date, class)
		if err != nil {
			slog.Error("Finalization: employee failed",
				"employee_id", employeeID,
				"date", summary.Date,
				"error", err)
			summary.Errored++
			continue
		}

		switch out {
		case outcomeFinalized:
			summary.Finalized++
		case outcomeSkipped:
			summary.Skipped++
		case outcomeFlagged:
			summary.Flagged++
		}
	}

	slog.Info("Finalization run complete",
		"date", summary.Date,
		"finalized", summary.Finalized,
		"skipped", summary.Skipped,
		"flagged", summary.Flagged,
		"errored", summary.Errored)
	return summary, nil
}

// finalizeEmployee handles one employee under the same per-(employee, day)
// lock the live state machine uses, so a force-close cannot race an
// in-flight clock-out.
func (s *FinalizationServiceImpl) finalizeEmployee(ctx context.Context, employeeID string, date time.Time, class calendar.DayClass) (outcome, error) {
	key := employeeID + "|" + date.Format("2006-01-02")
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	now := s.clock.Now().UTC()
	out := outcomeNone

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.repo.GetForUpdate(ctx, employeeID, date)
		if err != nil {
			return err
		}
		created := rec == nil
		if created {
			rec = attendance.NewRecord(employeeID, date)
		}

		if class == calendar.DayHoliday || class == calendar.DayWeekend {
			return s.markNonWorkingDay(ctx, rec, created, class, &out)
		}

		// Flagged records wait for human correction; never auto-classified.
		// A record the live path flagged still carries its working status, so
		// commit pending_correction here before stepping over it.
		if rec.ApprovalStatus == attendance.ApprovalPending || rec.Status == attendance.StatusPendingCorrection {
			out = outcomeFlagged
			if rec.Status != attendance.StatusPendingCorrection {
				rec.Status = attendance.StatusPendingCorrection
				if rec.StatusReason == "" {
					rec.StatusReason = "Pending manual correction"
				}
				return s.persist(ctx, rec, created)
			}
			return nil
		}
		if rec.Status.Terminal() {
			out = outcomeSkipped
			return nil
		}

		policy, err := s.shiftRepo.GetByEmployeeID(ctx, employeeID)
		if err != nil {
			return err
		}

		dirty := false
		if open := rec.OpenSession(); open != nil {
			cutoff, err := policy.EndOn(date)
			if err != nil {
				return err
			}
			// Re-check against now: an early run for today must not close a
			// session whose shift window is still open.
			if now.After(cutoff) {
				sess, closed := rec.ForceClose(cutoff)
				if closed {
					note := fmt.Sprintf("Session %s force-closed at shift end %s: no clock-out recorded", sess.ID, cutoff.Format("15:04"))
					if !rec.HasRemark(note) {
						rec.AppendRemark("system", note, now)
					}
					dirty = true
				}
			}
		}

		if anoms := attendance.DetectAnomalies(rec); len(anoms) > 0 {
			rec.ApprovalStatus = attendance.ApprovalPending
			rec.Status = attendance.StatusPendingCorrection
			rec.StatusReason = attendance.SummarizeAnomalies(anoms)
			for _, an := range anoms {
				if !rec.HasRemark(an.String()) {
					rec.AppendRemark("system", an.String(), now)
				}
			}
			out = outcomeFlagged
			return s.persist(ctx, rec, created)
		}

		status, reason := attendance.Classify(rec, policy, class, now)
		if status == attendance.StatusInProgress {
			// Triggered before the day ended; leave the live record alone and
			// don't synthesize one for an employee who may still clock in.
			out = outcomeSkipped
			if dirty && !created {
				return s.repo.Save(ctx, rec)
			}
			return nil
		}

		rec.Status = status
		rec.StatusReason = reason
		out = outcomeFinalized
		return s.persist(ctx, rec, created)
	})
	if err != nil {
		return outcomeNone, err
	}

	return out, nil
}

// markNonWorkingDay commits the holiday/weekend status. This is a skip
// condition for classification, not a no-op: employees with no activity still
// get a record so reporting is complete.
func (s *FinalizationServiceImpl) markNonWorkingDay(ctx context.Context, rec *attendance.AttendanceRecord, created bool, class calendar.DayClass, out *outcome) error {
	status := attendance.StatusHoliday
	reason := "Date is a holiday"
	if class == calendar.DayWeekend {
		status = attendance.StatusWeekend
		reason = "Date falls on a weekly off day"
	}

	*out = outcomeSkipped
	if !created && rec.Status == status {
		return nil
	}

	rec.Status = status
	rec.StatusReason = reason
	return s.persist(ctx, rec, created)
}

func (s *FinalizationServiceImpl) persist(ctx context.Context, rec *attendance.AttendanceRecord, created bool) error {
	if created {
		return s.repo.Create(ctx, rec)
	}
	return s.repo.Save(ctx, rec)
}
