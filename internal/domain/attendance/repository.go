package attendance

import (
	"context"
	"time"
)

// Repository defines data access for the attendance aggregate. The whole
// record (sessions, breaks, remarks included) is loaded and saved as one unit;
// there is no partial mutation of children from outside the aggregate.
type Repository interface {
	// GetByEmployeeAndDate loads a record, or (nil, nil) when none exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*AttendanceRecord, error)

	// GetForUpdate is GetByEmployeeAndDate with a row lock on the record.
	// Must run inside a transaction; two concurrent mutations of the same
	// (employee, date) key serialize on this lock.
	GetForUpdate(ctx context.Context, employeeID string, date time.Time) (*AttendanceRecord, error)

	// Create inserts a new record with its children.
	Create(ctx context.Context, rec *AttendanceRecord) error

	// Save persists the full aggregate state of an existing record.
	Save(ctx context.Context, rec *AttendanceRecord) error
}
