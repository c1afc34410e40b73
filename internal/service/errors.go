package service

import (
	"errors"
	"fmt"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/google/uuid"
)

// ServiceError wraps an unexpected failure of a service operation.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// IsExpected reports whether err is one of the conditions callers are
// expected to handle: validation, rejection, not found, duplicate or a
// missing owner.
func IsExpected(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrRejected) ||
		errors.Is(err, domain.ErrUnauthorized) ||
		store.IsNotFoundError(err) ||
		store.IsDuplicateError(err)
}

// wrap passes expected errors through untouched and wraps anything else.
func wrap(operation, message string, err error) error {
	if err == nil || IsExpected(err) {
		return err
	}
	return NewServiceError(operation, message, err)
}

// ErrMissingOwner is returned when an operation is called without an owner.
var ErrMissingOwner = fmt.Errorf("%w: owner id is required", domain.ErrUnauthorized)

func requireOwner(ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return ErrMissingOwner
	}
	return nil
}
