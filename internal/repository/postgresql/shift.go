package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/worklens-hr/attendance-backend-go/internal/domain/shift"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/database"
)

type shiftPolicyRepository struct {
	db *database.DB
}

func NewShiftPolicyRepository(db *database.DB) shift.PolicyRepository {
	return &shiftPolicyRepository{db: db}
}

// GetByEmployeeID implements shift.PolicyRepository.
func (r *shiftPolicyRepository) GetByEmployeeID(ctx context.Context, employeeID string) (shift.Policy, error) {
	q := GetQuerier(ctx, r.db)

	var p shift.Policy
	var offDays []int32
	err := q.QueryRow(ctx, `
		SELECT employee_id, shift_start, shift_end, full_day_hours, half_day_hours,
			   grace_period_minutes, late_threshold_minutes, weekly_off_days
		FROM shift_policies
		WHERE employee_id = $1
	`, employeeID).Scan(
		&p.EmployeeID, &p.ShiftStart, &p.ShiftEnd, &p.FullDayHours, &p.HalfDayHours,
		&p.GracePeriodMinutes, &p.LateThresholdMinutes, &offDays,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Policy{}, shift.ErrPolicyNotFound
		}
		return shift.Policy{}, fmt.Errorf("failed to get shift policy: %w", err)
	}

	p.WeeklyOffDays = make([]time.Weekday, 0, len(offDays))
	for _, d := range offDays {
		p.WeeklyOffDays = append(p.WeeklyOffDays, time.Weekday(d))
	}

	return p, nil
}
