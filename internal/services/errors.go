package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced record does not exist or is not owned by the acting user.
	ErrNotFound = errors.New("not found")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrConflict means the write collides with existing data, e.g. a taken username.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials is returned for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDayAlreadyClosed is returned when the day-close guard is on and today was already closed.
	ErrDayAlreadyClosed = errors.New("day already closed")
)

// ValidationError reports which input field was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// BulkCreateError reports which element of a bulk create failed. Elements
// before Index were created.
type BulkCreateError struct {
	Index int
	Err   error
}

func (e *BulkCreateError) Error() string {
	return fmt.Sprintf("habit %d: %v", e.Index, e.Err)
}

func (e *BulkCreateError) Unwrap() error { return e.Err }

// StorageError wraps a failure of the persistence layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// storageErr wraps err unless it is nil or already one of our domain errors.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	for _, known := range []error{ErrNotFound, ErrValidation, ErrConflict, ErrInvalidCredentials, ErrDayAlreadyClosed} {
		if errors.Is(err, known) {
			return err
		}
	}
	return &StorageError{Op: op, Err: err}
}
