// Package result provides a tagged success/error value used at the backend
// gateway boundary so callers check a tag instead of handling Go errors.
package result

import (
	"errors"
	"fmt"
)

// Result holds exactly one of a success value or an error message. An error
// built from a Go error keeps it as the cause so callers can still match
// sentinels with errors.Is.
type Result[T any] struct {
	ok    bool
	value T
	err   string
	cause error
}

// Ok wraps a success value.
func Ok[T any](value T) Result[T] {
	return Result[T]{ok: true, value: value}
}

// Err wraps an error message.
func Err[T any](message string) Result[T] {
	return Result[T]{err: message}
}

// Fail wraps err as the error branch, keeping it as the cause.
func Fail[T any](err error) Result[T] {
	return Result[T]{err: err.Error(), cause: err}
}

// From converts a conventional (value, error) pair.
func From[T any](value T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(value)
}

// Catch runs fn and converts both its error and any panic into the error branch.
func Catch[T any](fn func() (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Err[T](fmt.Sprintf("panic: %v", r))
		}
	}()
	return From(fn())
}

// Map applies f to the success value and passes the error branch through untouched.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if !r.ok {
		return Result[U]{err: r.err, cause: r.cause}
	}
	return Ok(f(r.value))
}

// IsOk reports whether r is the success branch.
func (r Result[T]) IsOk() bool { return r.ok }

// Value returns the success value, or the zero value on the error branch.
func (r Result[T]) Value() T { return r.value }

// Error returns the error message, or "" on the success branch.
func (r Result[T]) Error() string { return r.err }

// Cause returns the error branch as a Go error, or nil on the success branch.
func (r Result[T]) Cause() error {
	switch {
	case r.ok:
		return nil
	case r.cause != nil:
		return r.cause
	default:
		return errors.New(r.err)
	}
}

// Unpack converts r back into a (value, error) pair.
func (r Result[T]) Unpack() (T, error) {
	return r.value, r.Cause()
}

func (r Result[T]) String() string {
	if r.ok {
		return fmt.Sprintf("ok(%v)", r.value)
	}
	return fmt.Sprintf("err(%s)", r.err)
}
