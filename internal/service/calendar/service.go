package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/worklens-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/worklens-hr/attendance-backend-go/internal/domain/calendar"
)

// ClassifierService resolves a date against the holiday table first, then the
// organization's working rules. Holidays win over everything; weekdays with
// no explicit rule fall back to a Monday-Friday working week.
type ClassifierService struct {
	holidays calendar.HolidayRepository
	rules    calendar.WorkingRuleRepository
}

func NewClassifierService(holidays calendar.HolidayRepository, rules calendar.WorkingRuleRepository) calendar.Classifier {
	return &ClassifierService{
		holidays: holidays,
		rules:    rules,
	}
}

// ClassifyDate implements calendar.Classifier.
func (s *ClassifierService) ClassifyDate(ctx context.Context, date time.Time) (calendar.DayClass, error) {
	date = attendance.DateOnly(date)

	holiday, err := s.holidays.GetByDate(ctx, date)
	if err != nil {
		return "", fmt.Errorf("failed to look up holiday: %w", err)
	}
	if holiday != nil {
		return calendar.DayHoliday, nil
	}

	rules, err := s.rules.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list working rules: %w", err)
	}
	for _, rule := range rules {
		if rule.Weekday == date.Weekday() {
			if rule.IsWorking {
				return calendar.DayWorking, nil
			}
			return calendar.DayWeekend, nil
		}
	}

	if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
		return calendar.DayWeekend, nil
	}
	return calendar.DayWorking, nil
}
