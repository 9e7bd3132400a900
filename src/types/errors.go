package types

import (
	"errors"
	"fmt"
	"strings"
)

// Expected, user-facing outcomes. Anything else that escapes a
// transaction is treated as an internal failure by the HTTP layer.
var (
	ErrDuplicateLicense    = errors.New("a car with this license plate is already registered")
	ErrDuplicateIdentifier = errors.New("could not generate a unique identifier")
	ErrNotFound            = errors.New("record not found")
	ErrInvalidTransition   = errors.New("booking is not awaiting approval")
	ErrNoCapacity          = errors.New("no parking spot available")
	ErrForbidden           = errors.New("not enough permissions to perform this action")
)

// ValidationError reports missing or malformed input fields.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s", strings.Join(e.Fields, ", "))
}

// CarInUseError blocks deletion of a car that still has bookings in
// WAITING or APPROVED state.
type CarInUseError struct {
	Count int64
}

func (e *CarInUseError) Error() string {
	return fmt.Sprintf("car is referenced by %d active booking(s)", e.Count)
}
