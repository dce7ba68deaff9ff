package attendance

import (
	"fmt"
	"time"

	"github.com/worklens-hr/attendance-backend-go/internal/domain/calendar"
	"github.com/worklens-hr/attendance-backend-go/internal/domain/shift"
)

// Classify converts a day's worked time into a day status plus the numeric
// reasoning behind the verdict. It is a pure function of its inputs: the same
// (sessions, policy, calendar class, now) always yields the same result.
//
// Holiday and weekend always win over worked time. Time logged on a holiday
// stays on the record but never overrides the holiday classification.
func Classify(rec *AttendanceRecord, policy shift.Policy, class calendar.DayClass, now time.Time) (DayStatus, string) {
	switch class {
	case calendar.DayHoliday:
		return StatusHoliday, "Date is a holiday"
	case calendar.DayWeekend:
		return StatusWeekend, "Date falls on a weekly off day"
	}

	// Per-employee weekly offs layer on top of the organization calendar: a
	// working day for the company can still be an off day for this employee.
	if policy.IsWeeklyOff(rec.Date.Weekday()) {
		return StatusWeekend, "Date falls on the employee's weekly off day"
	}

	dayEnd := rec.Date.Add(24 * time.Hour)

	if len(rec.Sessions) == 0 {
		if now.Before(dayEnd) {
			return StatusInProgress, "No sessions yet, day still open"
		}
		return StatusAbsent, "No sessions recorded by end of day"
	}

	if rec.OpenSession() != nil && now.Before(dayEnd) {
		return StatusInProgress, "A session is still open"
	}

	worked := 0
	for i := range rec.Sessions {
		if rec.Sessions[i].Status == SessionCompleted {
			worked += rec.Sessions[i].WorkedMinutes
		}
	}

	full := policy.FullDayMinutes()
	half := policy.HalfDayMinutes()

	switch {
	case worked >= full:
		return StatusPresent, fmt.Sprintf("Worked %s >= full-day threshold %s", fmtHours(worked), fmtHours(full))
	case worked >= half:
		return StatusHalfDay, fmt.Sprintf("Worked %s >= half-day threshold %s but < full-day threshold %s", fmtHours(worked), fmtHours(half), fmtHours(full))
	default:
		return StatusAbsent, fmt.Sprintf("Worked %s < half-day threshold %s", fmtHours(worked), fmtHours(half))
	}
}

// Lateness compares the first check-in against the scheduled shift start plus
// grace period. It annotates the record but never changes the status tier.
// Late minutes are counted from the scheduled start, not from the grace limit.
func Lateness(checkIn, shiftStart time.Time, graceMinutes int) (isLate bool, lateMinutes int) {
	graceLimit := shiftStart.Add(time.Duration(graceMinutes) * time.Minute)
	if !checkIn.After(graceLimit) {
		return false, 0
	}
	return true, int(checkIn.Sub(shiftStart).Minutes())
}

func fmtHours(minutes int) string {
	return fmt.Sprintf("%.1fh", float64(minutes)/60.0)
}
