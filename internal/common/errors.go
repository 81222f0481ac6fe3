package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline error taxonomy.
var (
	// ErrEmptyInput: nothing usable survived cleaning. Fatal to the run.
	ErrEmptyInput = errors.New("no usable content after cleaning")

	// ErrMalformedResponse: the AI backend returned unparsable structured
	// data. Recovered by retry, never surfaced past the extractor.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrCapabilityUnavailable: no AI backend configured. A mode, not a
	// failure; every stage switches to its fallback path.
	ErrCapabilityUnavailable = errors.New("ai capability unavailable")

	// ErrValidation: a topic candidate failed required-field checks.
	ErrValidation = errors.New("validation failed")

	// ErrInternalInvariant: a "valid" topic reached ordering without
	// sortable keys. Indicates a validator bug; must never be swallowed.
	ErrInternalInvariant = errors.New("internal invariant violation")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
