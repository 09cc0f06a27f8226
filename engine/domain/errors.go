package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine pipelines.
var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrEmptyQuery      = errors.New("query text is empty")
	ErrInvalidVehicle  = errors.New("invalid vehicle")
	ErrInvalidType     = errors.New("invalid vehicle type")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrTooFewIDs       = errors.New("at least 2 vehicle ids required")
)

// ValidationError wraps a sentinel with field context.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
