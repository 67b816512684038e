// Package apperr defines the error kinds the engine surfaces to its callers.
// Callers match on kind with errors.Is; the HTTP layer maps kinds to status
// codes and never leaks wrapped internal errors.
package apperr

import (
	"errors"
	"fmt"
)

// Kinds.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrDuplicateRequest = errors.New("duplicate request")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")
)

// Error carries a kind, the failing operation and a caller-facing message.
type Error struct {
	Kind    error
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches on the kind as well as on the wrapped error.
func (e *Error) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// Validation reports a caller-correctable field constraint violation.
func Validation(op, message string) *Error {
	return &Error{Kind: ErrValidation, Op: op, Message: message}
}

// NotFound reports an absent entity, or one the caller does not own.
func NotFound(op, entity string) *Error {
	return &Error{Kind: ErrNotFound, Op: op, Message: entity + " not found"}
}

// Duplicate reports a partner request that already exists.
func Duplicate(op, message string) *Error {
	return &Error{Kind: ErrDuplicateRequest, Op: op, Message: message}
}

// Conflict reports a state conflict the caller may retry or reconsider.
func Conflict(op, message string, err error) *Error {
	return &Error{Kind: ErrConflict, Op: op, Message: message, Err: err}
}

// Unauthorized reports rejected credentials.
func Unauthorized(op, message string) *Error {
	return &Error{Kind: ErrUnauthorized, Op: op, Message: message}
}

// Message returns the caller-facing message of an *Error, or "" for any
// other error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// IsClientError reports whether err is one of the caller-facing kinds.
// Everything else is treated as a server fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicateRequest) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrUnauthorized)
}
