package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable reports that the backing store could not be reached.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrConstraint reports a schema-level constraint violation.
	ErrConstraint = errors.New("storage constraint violated")
)

// Unavailable wraps cause so errors.Is(err, ErrUnavailable) holds.
func Unavailable(op string, cause error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, cause)
}

// Constraint wraps cause so errors.Is(err, ErrConstraint) holds.
func Constraint(op string, cause error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrConstraint, cause)
}
