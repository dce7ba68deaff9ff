package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/worklens-hr/attendance-backend-go/internal/domain/calendar"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/database"
)

type holidayRepository struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) calendar.HolidayRepository {
	return &holidayRepository{db: db}
}

// GetByDate implements calendar.HolidayRepository.
func (r *holidayRepository) GetByDate(ctx context.Context, date time.Time) (*calendar.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	var h calendar.Holiday
	err := q.QueryRow(ctx, `
		SELECT date, name
		FROM holidays
		WHERE date = $1
	`, date).Scan(&h.Date, &h.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // not a holiday
		}
		return nil, fmt.Errorf("failed to get holiday: %w", err)
	}

	return &h, nil
}

type workingRuleRepository struct {
	db *database.DB
}

func NewWorkingRuleRepository(db *database.DB) calendar.WorkingRuleRepository {
	return &workingRuleRepository{db: db}
}

// List implements calendar.WorkingRuleRepository.
func (r *workingRuleRepository) List(ctx context.Context) ([]calendar.WorkingRule, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT weekday, is_working
		FROM working_rules
		ORDER BY weekday
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list working rules: %w", err)
	}
	defer rows.Close()

	var rules []calendar.WorkingRule
	for rows.Next() {
		var weekday int32
		var rule calendar.WorkingRule
		if err := rows.Scan(&weekday, &rule.IsWorking); err != nil {
			return nil, fmt.Errorf("failed to scan working rule: %w", err)
		}
		rule.Weekday = time.Weekday(weekday)
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}
