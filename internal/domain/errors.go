// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity or request fails validation.
	// Every ValidationError matches it through errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrRejected is returned when an operation violates a deck policy,
	// such as renaming the default deck. It is reported before any mutation.
	ErrRejected = errors.New("operation rejected")

	// ErrUnauthorized is returned when no owner can be resolved for a request.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrValidation as a match so callers don't need the concrete type.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// RejectedError is a policy violation with a human readable reason.
type RejectedError struct {
	Reason string
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrRejected.Error(), e.Reason)
}

// Unwrap lets errors.Is match ErrRejected.
func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

// NewRejectedError creates a RejectedError with the given reason.
func NewRejectedError(reason string) *RejectedError {
	return &RejectedError{Reason: reason}
}
