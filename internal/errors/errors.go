package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrNotFound           = errors.New("not found")
	ErrUnknownKind        = errors.New("unknown request kind")
	ErrKindMismatch       = errors.New("request kind mismatch")
	ErrUserCancelled      = errors.New("user cancelled operation")
	ErrTimeout            = errors.New("operation timed out")
)

// ValidationError represents a field validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// OpError is what gets reported to the notification sink: the operation that
// failed, the request it targeted and the cause.
type OpError struct {
	Op  string
	ID  string
	Err error
}

func (e *OpError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("could not %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("could not %s %q: %v", e.Op, e.ID, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError builds an OpError from a backend error message.
func NewOpError(op, id, message string) *OpError {
	return &OpError{Op: op, ID: id, Err: errors.New(message)}
}
