package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/worklens-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/worklens-hr/attendance-backend-go/internal/domain/shift"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/clock"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/database"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/keylock"
)

// AttendanceServiceImpl is the session/break state machine. Every mutation is
// one validate-then-mutate-then-persist cycle under both a process-local
// per-(employee, day) lock and a row lock inside the transaction, so two
// concurrent calls can never both observe "no open session".
type AttendanceServiceImpl struct {
	tx        database.TxManager
	repo      attendance.Repository
	shiftRepo shift.PolicyRepository
	clock     clock.Clock
	locks     *keylock.KeyLock
}

func NewAttendanceService(
	tx database.TxManager,
	repo attendance.Repository,
	shiftRepo shift.PolicyRepository,
	clk clock.Clock,
	locks *keylock.KeyLock,
) attendance.Service {
	return &AttendanceServiceImpl{
		tx:        tx,
		repo:      repo,
		shiftRepo: shiftRepo,
		clock:     clk,
		locks:     locks,
	}
}

// LockKey is the serialization key for one employee-day. The finalization job
// uses the same key so it cannot race a live clock-out.
func LockKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

// eventTime resolves the effective event instant: the client-reported time
// when given, otherwise now. Future timestamps are rejected, never adjusted.
func eventTime(now time.Time, at *time.Time) (time.Time, error) {
	if at == nil {
		return now, nil
	}
	if at.After(now) {
		return time.Time{}, attendance.ErrFutureTimestamp
	}
	return at.UTC(), nil
}

// StartSession implements attendance.Service.
func (a *AttendanceServiceImpl) StartSession(ctx context.Context, req attendance.StartSessionRequest) (attendance.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SessionResponse{}, err
	}

	nowUTC := a.clock.Now().UTC()
	at, err := eventTime(nowUTC, req.At)
	if err != nil {
		return attendance.SessionResponse{}, err
	}
	date := attendance.DateOnly(nowUTC)

	policy, err := a.shiftRepo.GetByEmployeeID(ctx, req.EmployeeID)
	if err != nil {
		if err == shift.ErrPolicyNotFound {
			return attendance.SessionResponse{}, err
		}
		return attendance.SessionResponse{}, fmt.Errorf("failed to get shift policy: %w", err)
	}

	key := LockKey(req.EmployeeID, date)
	a.locks.Lock(key)
	defer a.locks.Unlock(key)

	var resp attendance.SessionResponse
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rec, err := a.repo.GetForUpdate(ctx, req.EmployeeID, date)
		if err != nil {
			return err
		}
		created := rec == nil
		if created {
			rec = attendance.NewRecord(req.EmployeeID, date)
		}

		sess, err := rec.StartSession(at, req.WorkLocation, req.LocationDetails)
		if err != nil {
			return err
		}

		// Lateness is anchored to the day's first check-in only.
		if len(rec.Sessions) == 1 {
			shiftStart, err := policy.StartOn(date)
			if err != nil {
				return err
			}
			rec.IsLate, rec.LateMinutes = attendance.Lateness(at, shiftStart, policy.GracePeriodMinutes)
		}

		resp = attendance.NewSessionResponse(sess)
		return a.persist(ctx, rec, created)
	})
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	return resp, nil
}

// EndSession implements attendance.Service.
func (a *AttendanceServiceImpl) EndSession(ctx context.Context, req attendance.EndSessionRequest) (attendance.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SessionResponse{}, err
	}

	nowUTC := a.clock.Now().UTC()
	at, err := eventTime(nowUTC, req.At)
	if err != nil {
		return attendance.SessionResponse{}, err
	}
	date := attendance.DateOnly(nowUTC)

	key := LockKey(req.EmployeeID, date)
	a.locks.Lock(key)
	defer a.locks.Unlock(key)

	var resp attendance.SessionResponse
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rec, err := a.repo.GetForUpdate(ctx, req.EmployeeID, date)
		if err != nil {
			return err
		}
		if rec == nil {
			return attendance.ErrNoOpenSession
		}

		sess, err := rec.EndSession(at)
		if err != nil {
			return err
		}

		flagAnomalies(rec, nowUTC)

		resp = attendance.NewSessionResponse(sess)
		return a.repo.Save(ctx, rec)
	})
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	return resp, nil
}

// StartBreak implements attendance.Service.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.StartBreakRequest) (attendance.BreakResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.BreakResponse{}, err
	}

	nowUTC := a.clock.Now().UTC()
	at, err := eventTime(nowUTC, req.At)
	if err != nil {
		return attendance.BreakResponse{}, err
	}
	date := attendance.DateOnly(nowUTC)

	key := LockKey(req.EmployeeID, date)
	a.locks.Lock(key)
	defer a.locks.Unlock(key)

	var resp attendance.BreakResponse
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rec, err := a.repo.GetForUpdate(ctx, req.EmployeeID, date)
		if err != nil {
			return err
		}
		if rec == nil {
			return attendance.ErrNoActiveSession
		}

		br, err := rec.StartBreak(at)
		if err != nil {
			return err
		}

		resp = attendance.NewBreakResponse(br)
		return a.repo.Save(ctx, rec)
	})
	if err != nil {
		return attendance.BreakResponse{}, err
	}

	return resp, nil
}

// EndBreak implements attendance.Service.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context, req attendance.EndBreakRequest) (attendance.BreakResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.BreakResponse{}, err
	}

	nowUTC := a.clock.Now().UTC()
	at, err := eventTime(nowUTC, req.At)
	if err != nil {
		return attendance.BreakResponse{}, err
	}
	date := attendance.DateOnly(nowUTC)

	key := LockKey(req.EmployeeID, date)
	a.locks.Lock(key)
	defer a.locks.Unlock(key)

	var resp attendance.BreakResponse
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rec, err := a.repo.GetForUpdate(ctx, req.EmployeeID, date)
		if err != nil {
			return err
		}
		if rec == nil {
			return attendance.ErrNoOpenBreak
		}

		br, err := rec.EndBreak(at)
		if err != nil {
			return err
		}

		flagAnomalies(rec, nowUTC)

		resp = attendance.NewBreakResponse(br)
		return a.repo.Save(ctx, rec)
	})
	if err != nil {
		return attendance.BreakResponse{}, err
	}

	return resp, nil
}

// GetRecord implements attendance.Service.
func (a *AttendanceServiceImpl) GetRecord(ctx context.Context, employeeID string, date time.Time) (attendance.RecordResponse, error) {
	rec, err := a.repo.GetByEmployeeAndDate(ctx, employeeID, attendance.DateOnly(date))
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if rec == nil {
		return attendance.RecordResponse{}, attendance.ErrRecordNotFound
	}
	return attendance.NewRecordResponse(rec), nil
}

func (a *AttendanceServiceImpl) persist(ctx context.Context, rec *attendance.AttendanceRecord, created bool) error {
	if created {
		return a.repo.Create(ctx, rec)
	}
	return a.repo.Save(ctx, rec)
}

// flagAnomalies runs the consistency checks that are deferred off the hot
// path. Anomalies never fail the call; the record is flagged for human review
// and automatic classification is suspended (flag, don't fail).
func flagAnomalies(rec *attendance.AttendanceRecord, now time.Time) {
	anoms := attendance.DetectAnomalies(rec)
	if len(anoms) == 0 {
		return
	}
	rec.ApprovalStatus = attendance.ApprovalPending
	rec.StatusReason = attendance.SummarizeAnomalies(anoms)
	for _, an := range anoms {
		if !rec.HasRemark(an.String()) {
			rec.AppendRemark("system", an.String(), now)
		}
	}
}
