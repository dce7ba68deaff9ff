package shift

import "context"

// PolicyRepository reads shift policies from the external configuration store.
type PolicyRepository interface {
	GetByEmployeeID(ctx context.Context, employeeID string) (Policy, error)
}
