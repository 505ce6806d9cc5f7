// Package result provides the two-variant outcome type used across the
// data layer. Fallible operations return a Result instead of a bare error
// so that callers always handle exactly one of two cases: a value, or the
// error that prevented it.
package result

import "errors"

// Result holds either a value or a non-nil error, never both.
type Result[T any] struct {
	value T
	err   error
}

// Success wraps a value in a successful Result.
func Success[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Failure wraps an error in a failed Result. A nil error is normalized to a
// generic one so the two-variant invariant always holds.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("result: failure with unspecified error")
	}
	return Result[T]{err: err}
}

// IsSuccess reports whether the Result carries a value.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// Value returns the carried value. It is the zero value on failure; callers
// that have not checked IsSuccess should use Get instead.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the carried error, nil on success.
func (r Result[T]) Err() error {
	return r.err
}

// Get unpacks the Result into the conventional value/error pair.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}
