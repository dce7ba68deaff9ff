package calendar

import (
	"context"
	"time"
)

// DayClass is the organizational classification of a calendar date.
type DayClass string

const (
	DayHoliday DayClass = "holiday"
	DayWeekend DayClass = "weekend"
	DayWorking DayClass = "working_day"
)

// Classifier resolves a date's classification from the holiday table and the
// organization's working rules.
type Classifier interface {
	ClassifyDate(ctx context.Context, date time.Time) (DayClass, error)
}

type Holiday struct {
	Date time.Time
	Name string
}

// WorkingRule declares whether a weekday is a working day for the
// organization. Weekdays without a rule fall back to the Monday-Friday
// default.
type WorkingRule struct {
	Weekday   time.Weekday
	IsWorking bool
}

type HolidayRepository interface {
	// GetByDate returns the holiday on a date, or (nil, nil) when none.
	GetByDate(ctx context.Context, date time.Time) (*Holiday, error)
}

type WorkingRuleRepository interface {
	List(ctx context.Context) ([]WorkingRule, error)
}
