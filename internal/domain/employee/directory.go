package employee

import (
	"context"
	"time"
)

// Directory is the slice of the employee collaborator the engine needs: who
// was active on a date, so the finalization job knows who should have a
// record.
type Directory interface {
	ListActiveEmployeeIDs(ctx context.Context, date time.Time) ([]string, error)
}
