// Package shared holds the error kinds used across the simulation packages.
// It has no dependencies outside the standard library.
package shared

import (
	"errors"
	"fmt"
)

// Error kinds, matched with errors.Is.
var (
	// ErrState means an operation was called out of order
	// (e.g. enrolling before a year was started).
	ErrState = errors.New("invalid state")

	// ErrValidation means an argument violates a data invariant.
	ErrValidation = errors.New("validation error")

	// ErrNotFound means a catalog lookup found nothing.
	ErrNotFound = errors.New("not found")
)

// Error carries the failing operation along with its kind.
type Error struct {
	Op      string // e.g. "student.Enroll", "catalog.Build"
	Kind    error  // one of the kinds above
	Message string
	Err     error // underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error, falling back to the kind.
func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is reports whether target matches the kind or the wrapped error.
func (e *Error) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// StateError builds an ErrState error.
func StateError(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrState, Message: fmt.Sprintf(format, args...)}
}

// ValidationError builds an ErrValidation error.
func ValidationError(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds an ErrNotFound error.
func NotFound(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
