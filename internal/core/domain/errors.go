package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the outcomes every caller must be able to tell apart.
// Handlers map these to HTTP status codes in one place.
var (
	ErrValidation             = errors.New("validation failed")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not found")
)

// Validationf wraps ErrValidation with a human-readable reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
