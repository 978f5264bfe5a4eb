package models

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the referenced entity does not exist
var ErrNotFound = errors.New("not found")

// ValidationError indicates malformed or missing required input. It is
// rejected before any storage mutation happens.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StorageError wraps a failure of the underlying store
type StorageError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error in %s: %v", e.Op, e.Err)
}

// Unwrap returns the wrapped error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err as a StorageError
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}
