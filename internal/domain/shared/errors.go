package shared

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every NotFoundError so callers can use errors.Is
var ErrNotFound = errors.New("not found")

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// NotFoundError is returned by repositories when a record does not exist
type NotFoundError struct {
	*DomainError
	Resource string
	ID       int64
}

func NewNotFoundError(resource string, id int64) *NotFoundError {
	return &NotFoundError{
		DomainError: NewDomainError(fmt.Sprintf("%s %d not found", resource, id)),
		Resource:    resource,
		ID:          id,
	}
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IsNotFound reports whether err (or anything it wraps) is a not-found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError signals that an action collides with existing game state,
// e.g. a second construction on a grid that already has one pending.
type ConflictError struct {
	*DomainError
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{DomainError: NewDomainError(message)}
}

// InsufficientResourcesError is a conflict raised when a planet cannot pay for an action
type InsufficientResourcesError struct {
	*ConflictError
	Required  int64
	Available int64
}

func NewInsufficientResourcesError(required, available int64) *InsufficientResourcesError {
	return &InsufficientResourcesError{
		ConflictError: NewConflictError(fmt.Sprintf("insufficient solarion: need %d, have %d", required, available)),
		Required:      required,
		Available:     available,
	}
}

func (e *InsufficientResourcesError) Unwrap() error {
	return e.ConflictError
}

// IsConflict reports whether err (or anything it wraps) is a ConflictError
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsValidation reports whether err (or anything it wraps) is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
