package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrPilotUnavailable = errors.New("pilot is not idle")
	ErrAircraftInactive = errors.New("aircraft model is disabled")
	ErrOrderNotPending  = errors.New("work order is not pending")
)

// invalid wraps ErrInvalidInput with a readable reason
func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
