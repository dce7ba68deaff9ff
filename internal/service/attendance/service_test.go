package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklens-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/worklens-hr/attendance-backend-go/internal/domain/shift"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/clock"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/keylock"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/validator"
)

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	records map[string]*attendance.AttendanceRecord
	getErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]*attendance.AttendanceRecord)}
}

func recordKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

func (f *fakeRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.AttendanceRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.records[recordKey(employeeID, date)], nil
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, employeeID string, date time.Time) (*attendance.AttendanceRecord, error) {
	return f.GetByEmployeeAndDate(ctx, employeeID, date)
}

func (f *fakeRepo) Create(ctx context.Context, rec *attendance.AttendanceRecord) error {
	f.records[recordKey(rec.EmployeeID, rec.Date)] = rec
	return nil
}

func (f *fakeRepo) Save(ctx context.Context, rec *attendance.AttendanceRecord) error {
	f.records[recordKey(rec.EmployeeID, rec.Date)] = rec
	return nil
}

type fakeShiftRepo struct {
	policy shift.Policy
	err    error
}

func (f *fakeShiftRepo) GetByEmployeeID(ctx context.Context, employeeID string) (shift.Policy, error) {
	if f.err != nil {
		return shift.Policy{}, f.err
	}
	return f.policy, nil
}

func defaultPolicy() shift.Policy {
	return shift.Policy{
		EmployeeID:         "emp-1",
		ShiftStart:         "09:00",
		ShiftEnd:           "18:00",
		FullDayHours:       7,
		HalfDayHours:       4,
		GracePeriodMinutes: 15,
	}
}

func newTestService(clk clock.Clock, repo *fakeRepo, shiftRepo *fakeShiftRepo) attendance.Service {
	return NewAttendanceService(passthroughTx{}, repo, shiftRepo, clk, keylock.New())
}

func morning() *clock.Fixed {
	return clock.NewFixed(time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC))
}

func TestStartSession_CreatesRecord(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(morning(), repo, &fakeShiftRepo{policy: defaultPolicy()})

	resp, err := svc.StartSession(ctx, attendance.StartSessionRequest{
		EmployeeID:   "emp-1",
		WorkLocation: attendance.LocationOffice,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, attendance.SessionActive, resp.Status)

	saved := repo.records[recordKey("emp-1", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))]
	require.NotNil(t, saved)
	assert.Equal(t, attendance.StatusInProgress, saved.Status)
	assert.False(t, saved.IsLate) // 09:05 is inside the 15 minute grace
}

func TestStartSession_SecondOpenRejected(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(morning(), repo, &fakeShiftRepo{policy: defaultPolicy()})

	_, err := svc.StartSession(ctx, attendance.StartSessionRequest{
		EmployeeID:   "emp-1",
		WorkLocation: attendance.LocationOffice,
	})
	require.NoError(t, err)

	_, err = svc.StartSession(ctx, attendance.StartSessionRequest{
		EmployeeID:   "emp-1",
		WorkLocation: attendance.LocationOffice,
	})
	assert.ErrorIs(t, err, attendance.ErrSessionAlreadyOpen)
}

func TestStartSession_LatenessPastGrace(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	clk := clock.NewFixed(time.Date(2026, 3, 10, 9, 40, 0, 0, time.UTC))
	svc := newTestService(clk, repo, &fakeShiftRepo{policy: defaultPolicy()})

	_, err := svc.StartSession(ctx, attendance.StartSessionRequest{
		EmployeeID:   "emp-1",
		WorkLocation: attendance.LocationOffice,
	})
	require.NoError(t, err)

	saved := repo.records[recordKey("emp-1", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))]
	require.NotNil(t, saved)
	assert.True(t, saved.IsLate)
	assert.Equal(t, 40, saved.LateMinutes) // counted from shift start, not the grace limit
}

func TestStartSession_LatenessOnlyOnFirstSession(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	clk := morning()
	svc := newTestService(clk, repo, &fakeShiftRepo{policy: defaultPolicy()})

	_, err := svc.StartSession(ctx, attendance.StartSessionRequest{
		EmployeeID:   "emp-1",
		WorkLocation: attendance.LocationOffice,
	})
	require.NoError(t, err)

	clk.Advance(3 * time.Hour)
	_, err = svc.EndSession(ctx, attendance.EndSessionRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	// Resuming in the afternoon must not mark the day late.
	clk.Advance(2 * time.Hour)
	_, err = svc.StartSession(ctx, attendance.StartSessionRequest{
		EmployeeID:   "emp-1",
		WorkLocation: attendance.LocationOffice,
	})
	require.NoError(t, err)

	saved := repo.records[recordKey("emp-1", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))]
	assert.False(t, saved.IsLate)
	assert.Zero(t, saved.LateMinutes)
}

func TestStartSession_NoPolicy(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(morning(), newFakeRepo(), &fakeShiftRepo{err: shift.ErrPolicyNotFound})

	_, err := svc.StartSession(ctx, attendance.StartSessionRequest{
		EmployeeID:   "emp-1",
		WorkLocation: attendance.LocationOffice,
	})
	assert.ErrorIs(t, err, shift.ErrPolicyNotFound)
}

func TestStartSession_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(morning(), newFakeRepo(), &fakeShiftRepo{policy: defaultPolicy()})

	_, err := svc.StartSession(ctx, attendance.StartSessionRequest{
		EmployeeID:   "emp-1",
		WorkLocation: "moon_base",
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "work_location")

	_, err = svc.StartSession(ctx, attendance.StartSessionRequest{
		EmployeeID:   "emp-1",
		WorkLocation: attendance.LocationClientSite,
	})
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "location_details")
}

func TestStartSession_FutureTimestampRejected(t *testing.T) {
	ctx := context.Background()
	clk := morning()
	svc := newTestService(clk, newFakeRepo(), &fakeShiftRepo{policy: defaultPolicy()})

	future := clk.Now().Add(1 * time.Hour)
	_, err := svc.StartSession(ctx, attendance.StartSessionRequest{
		EmployeeID:   "emp-1",
		WorkLocation: attendance.LocationOffice,
		At:           &future,
	})
	assert.ErrorIs(t, err, attendance.ErrFutureTimestamp)
}

func TestEndSession_FullCycle(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	clk := morning()
	svc := newTestService(clk, repo, &fakeShiftRepo{policy: defaultPolicy()})

	_, err := svc.StartSession(ctx, attendance.StartSessionRequest{
		EmployeeID:   "emp-1",
		WorkLocation: attendance.LocationOffice,
	})
	require.NoError(t, err)

	clk.Advance(8 * time.Hour)
	resp, err := svc.EndSession(ctx, attendance.EndSessionRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, attendance.SessionCompleted, resp.Status)
	assert.Equal(t, 480, resp.WorkedMinutes)
}

func TestEndSession_NoRecord(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(morning(), newFakeRepo(), &fakeShiftRepo{policy: defaultPolicy()})

	_, err := svc.EndSession(ctx, attendance.EndSessionRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrNoOpenSession)
}

func TestEndSession_WhileOnBreak(t *testing.T) {
	ctx := context.Background()
	clk := morning()
	svc := newTestService(clk, newFakeRepo(), &fakeShiftRepo{policy: defaultPolicy()})

	_, err := svc.StartSession(ctx, attendance.StartSessionRequest{
		EmployeeID:   "emp-1",
		WorkLocation: attendance.LocationOffice,
	})
	require.NoError(t, err)

	clk.Advance(3 * time.Hour)
	_, err = svc.StartBreak(ctx, attendance.StartBreakRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	clk.Advance(10 * time.Minute)
	_, err = svc.EndSession(ctx, attendance.EndSessionRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrBreakInProgress)
}

func TestStartBreak_Preconditions(t *testing.T) {
	ctx := context.Background()
	clk := morning()
	svc := newTestService(clk, newFakeRepo(), &fakeShiftRepo{policy: defaultPolicy()})

	_, err := svc.StartBreak(ctx, attendance.StartBreakRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrNoActiveSession)

	_, err = svc.StartSession(ctx, attendance.StartSessionRequest{
		EmployeeID:   "emp-1",
		WorkLocation: attendance.LocationOffice,
	})
	require.NoError(t, err)

	clk.Advance(1 * time.Hour)
	_, err = svc.StartBreak(ctx, attendance.StartBreakRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	// Second break without ending the first.
	clk.Advance(5 * time.Minute)
	_, err = svc.StartBreak(ctx, attendance.StartBreakRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrBreakAlreadyOpen)
}

func TestEndBreak_Cycle(t *testing.T) {
	ctx := context.Background()
	clk := morning()
	svc := newTestService(clk, newFakeRepo(), &fakeShiftRepo{policy: defaultPolicy()})

	_, err := svc.EndBreak(ctx, attendance.EndBreakRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrNoOpenBreak)

	_, err = svc.StartSession(ctx, attendance.StartSessionRequest{
		EmployeeID:   "emp-1",
		WorkLocation: attendance.LocationOffice,
	})
	require.NoError(t, err)

	clk.Advance(3 * time.Hour)
	_, err = svc.StartBreak(ctx, attendance.StartBreakRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	clk.Advance(45 * time.Minute)
	resp, err := svc.EndBreak(ctx, attendance.EndBreakRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, 45, resp.DurationMinutes)
	require.NotNil(t, resp.EndTime)
}

func TestGetRecord(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	clk := morning()
	svc := newTestService(clk, repo, &fakeShiftRepo{policy: defaultPolicy()})

	_, err := svc.GetRecord(ctx, "emp-1", clk.Now())
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)

	_, err = svc.StartSession(ctx, attendance.StartSessionRequest{
		EmployeeID:   "emp-1",
		WorkLocation: attendance.LocationOffice,
	})
	require.NoError(t, err)

	resp, err := svc.GetRecord(ctx, "emp-1", clk.Now())
	require.NoError(t, err)
	assert.Equal(t, "emp-1", resp.EmployeeID)
	assert.Equal(t, "2026-03-10", resp.Date)
	assert.Len(t, resp.Sessions, 1)
}

func TestGetRecord_RepositoryError(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.getErr = errors.New("connection refused")
	svc := newTestService(morning(), repo, &fakeShiftRepo{policy: defaultPolicy()})

	_, err := svc.GetRecord(ctx, "emp-1", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.NotErrorIs(t, err, attendance.ErrRecordNotFound)
}
