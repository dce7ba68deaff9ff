package shift

import (
	"fmt"
	"time"
)

// Policy is the per-employee shift configuration the engine reads from the
// configuration store. Thresholds are expressed in hours to match how HR
// administrators enter them; the engine compares in minutes.
type Policy struct {
	EmployeeID           string
	ShiftStart           string // "15:04"
	ShiftEnd             string // "15:04"
	FullDayHours         float64
	HalfDayHours         float64
	GracePeriodMinutes   int
	LateThresholdMinutes int
	WeeklyOffDays        []time.Weekday
}

func (p Policy) FullDayMinutes() int {
	return int(p.FullDayHours * 60)
}

func (p Policy) HalfDayMinutes() int {
	return int(p.HalfDayHours * 60)
}

// IsWeeklyOff reports whether the weekday is one of the employee's configured
// weekly off days.
func (p Policy) IsWeeklyOff(d time.Weekday) bool {
	for _, off := range p.WeeklyOffDays {
		if off == d {
			return true
		}
	}
	return false
}

// StartOn anchors the shift's start time-of-day onto a calendar date.
func (p Policy) StartOn(date time.Time) (time.Time, error) {
	return anchorTimeOfDay(p.ShiftStart, date)
}

// EndOn anchors the shift's end time-of-day onto a calendar date. This is the
// cutoff used when force-closing a dangling session.
func (p Policy) EndOn(date time.Time) (time.Time, error) {
	return anchorTimeOfDay(p.ShiftEnd, date)
}

func anchorTimeOfDay(clock string, date time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid shift time %q: %w", clock, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}
