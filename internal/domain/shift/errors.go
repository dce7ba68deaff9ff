package shift

import "errors"

var (
	ErrPolicyNotFound = errors.New("no shift policy found for employee")
)
