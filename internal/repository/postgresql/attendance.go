package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/worklens-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

const recordColumns = `
	id, employee_id, date, status, status_reason, is_late, late_minutes,
	worked_minutes, break_minutes, approval_status, created_at, updated_at`

// GetByEmployeeAndDate implements attendance.Repository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.AttendanceRecord, error) {
	return a.get(ctx, employeeID, date, false)
}

// GetForUpdate implements attendance.Repository. The FOR UPDATE row lock on
// the record row is what serializes concurrent mutations of the same
// (employee, date) key at the storage layer.
func (a *attendanceRepository) GetForUpdate(ctx context.Context, employeeID string, date time.Time) (*attendance.AttendanceRecord, error) {
	return a.get(ctx, employeeID, date, true)
}

func (a *attendanceRepository) get(ctx context.Context, employeeID string, date time.Time, forUpdate bool) (*attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND date = $2`
	if forUpdate {
		query += `
		FOR UPDATE`
	}

	var rec attendance.AttendanceRecord
	err := q.QueryRow(ctx, query, employeeID, attendance.DateOnly(date)).Scan(
		&rec.ID, &rec.EmployeeID, &rec.Date, &rec.Status, &rec.StatusReason, &rec.IsLate, &rec.LateMinutes,
		&rec.WorkedMinutes, &rec.BreakMinutes, &rec.ApprovalStatus, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no record for this employee-day yet
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	if err := a.loadChildren(ctx, &rec); err != nil {
		return nil, err
	}

	return &rec, nil
}

func (a *attendanceRepository) loadChildren(ctx context.Context, rec *attendance.AttendanceRecord) error {
	q := GetQuerier(ctx, a.db)

	sessionRows, err := q.Query(ctx, `
		SELECT id, check_in, check_out, work_location, location_details,
			   status, total_break_minutes, worked_minutes
		FROM attendance_sessions
		WHERE record_id = $1
		ORDER BY position
	`, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	defer sessionRows.Close()

	for sessionRows.Next() {
		var s attendance.Session
		if err := sessionRows.Scan(
			&s.ID, &s.CheckIn, &s.CheckOut, &s.WorkLocation, &s.LocationDetails,
			&s.Status, &s.TotalBreakMinutes, &s.WorkedMinutes,
		); err != nil {
			return fmt.Errorf("failed to scan session: %w", err)
		}
		rec.Sessions = append(rec.Sessions, s)
	}
	if err := sessionRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate sessions: %w", err)
	}

	for i := range rec.Sessions {
		breakRows, err := q.Query(ctx, `
			SELECT id, start_time, end_time, duration_minutes
			FROM attendance_breaks
			WHERE session_id = $1
			ORDER BY position
		`, rec.Sessions[i].ID)
		if err != nil {
			return fmt.Errorf("failed to load breaks: %w", err)
		}
		for breakRows.Next() {
			var b attendance.Break
			if err := breakRows.Scan(&b.ID, &b.StartTime, &b.EndTime, &b.DurationMinutes); err != nil {
				breakRows.Close()
				return fmt.Errorf("failed to scan break: %w", err)
			}
			rec.Sessions[i].Breaks = append(rec.Sessions[i].Breaks, b)
		}
		breakRows.Close()
		if err := breakRows.Err(); err != nil {
			return fmt.Errorf("failed to iterate breaks: %w", err)
		}
	}

	remarkRows, err := q.Query(ctx, `
		SELECT id, source, note, created_at
		FROM attendance_remarks
		WHERE record_id = $1
		ORDER BY created_at, id
	`, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to load remarks: %w", err)
	}
	defer remarkRows.Close()

	for remarkRows.Next() {
		var r attendance.Remark
		if err := remarkRows.Scan(&r.ID, &r.Source, &r.Note, &r.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan remark: %w", err)
		}
		rec.Remarks = append(rec.Remarks, r)
	}
	return remarkRows.Err()
}

// Create implements attendance.Repository.
func (a *attendanceRepository) Create(ctx context.Context, rec *attendance.AttendanceRecord) error {
	q := GetQuerier(ctx, a.db)

	err := q.QueryRow(ctx, `
		INSERT INTO attendance_records (
			id, employee_id, date, status, status_reason, is_late, late_minutes,
			worked_minutes, break_minutes, approval_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`,
		rec.ID, rec.EmployeeID, rec.Date, rec.Status, rec.StatusReason, rec.IsLate, rec.LateMinutes,
		rec.WorkedMinutes, rec.BreakMinutes, rec.ApprovalStatus,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create attendance record: %w", err)
	}

	return a.saveChildren(ctx, rec)
}

// Save implements attendance.Repository. Children are rewritten wholesale;
// the aggregate is small (a day's sessions) and this keeps ordering exactly
// as the aggregate holds it.
func (a *attendanceRepository) Save(ctx context.Context, rec *attendance.AttendanceRecord) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `
		UPDATE attendance_records
		SET status = $2, status_reason = $3, is_late = $4, late_minutes = $5,
			worked_minutes = $6, break_minutes = $7, approval_status = $8,
			updated_at = NOW()
		WHERE id = $1
	`,
		rec.ID, rec.Status, rec.StatusReason, rec.IsLate, rec.LateMinutes,
		rec.WorkedMinutes, rec.BreakMinutes, rec.ApprovalStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	if _, err := q.Exec(ctx, `DELETE FROM attendance_breaks WHERE session_id IN (SELECT id FROM attendance_sessions WHERE record_id = $1)`, rec.ID); err != nil {
		return fmt.Errorf("failed to clear breaks: %w", err)
	}
	if _, err := q.Exec(ctx, `DELETE FROM attendance_sessions WHERE record_id = $1`, rec.ID); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	if _, err := q.Exec(ctx, `DELETE FROM attendance_remarks WHERE record_id = $1`, rec.ID); err != nil {
		return fmt.Errorf("failed to clear remarks: %w", err)
	}

	return a.saveChildren(ctx, rec)
}

func (a *attendanceRepository) saveChildren(ctx context.Context, rec *attendance.AttendanceRecord) error {
	q := GetQuerier(ctx, a.db)

	for i := range rec.Sessions {
		s := &rec.Sessions[i]
		if _, err := q.Exec(ctx, `
			INSERT INTO attendance_sessions (
				id, record_id, check_in, check_out, work_location, location_details,
				status, total_break_minutes, worked_minutes, position
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			s.ID, rec.ID, s.CheckIn, s.CheckOut, s.WorkLocation, s.LocationDetails,
			s.Status, s.TotalBreakMinutes, s.WorkedMinutes, i,
		); err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}

		for j := range s.Breaks {
			b := &s.Breaks[j]
			if _, err := q.Exec(ctx, `
				INSERT INTO attendance_breaks (id, session_id, start_time, end_time, duration_minutes, position)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, b.ID, s.ID, b.StartTime, b.EndTime, b.DurationMinutes, j); err != nil {
				return fmt.Errorf("failed to insert break: %w", err)
			}
		}
	}

	for i := range rec.Remarks {
		r := &rec.Remarks[i]
		if _, err := q.Exec(ctx, `
			INSERT INTO attendance_remarks (id, record_id, source, note, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, r.ID, rec.ID, r.Source, r.Note, r.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert remark: %w", err)
		}
	}

	return nil
}
