package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/worklens-hr/attendance-backend-go/internal/domain/employee"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/database"
)

type employeeDirectory struct {
	db *database.DB
}

func NewEmployeeDirectory(db *database.DB) employee.Directory {
	return &employeeDirectory{db: db}
}

// ListActiveEmployeeIDs implements employee.Directory. An employee counts for
// a date when they were hired on or before it and not terminated before it.
func (r *employeeDirectory) ListActiveEmployeeIDs(ctx context.Context, date time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id
		FROM employees
		WHERE employment_status = 'active'
		  AND hired_at <= $1
		  AND (terminated_at IS NULL OR terminated_at >= $1)
		ORDER BY id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
