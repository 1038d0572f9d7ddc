package mutation

import "errors"

// ErrEmptyResult is returned by Unwrap on a zero Result.
var ErrEmptyResult = errors.New("mutation result not set")

// Result is the outcome of a mutation: either a value or an error.
type Result[T any] struct {
	value T
	err   error
	set   bool
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, set: true}
}

// Err wraps a failure. A nil err is replaced by ErrEmptyResult.
func Err[T any](err error) Result[T] {
	if err == nil {
		err = ErrEmptyResult
	}
	return Result[T]{err: err, set: true}
}

// IsOk reports whether the mutation succeeded.
func (r Result[T]) IsOk() bool {
	return r.set && r.err == nil
}

// Unwrap returns the value and error in the usual Go shape.
func (r Result[T]) Unwrap() (T, error) {
	if !r.set {
		var zero T
		return zero, ErrEmptyResult
	}
	return r.value, r.err
}

// Error returns the failure, or nil on success.
func (r Result[T]) Error() error {
	if !r.set {
		return ErrEmptyResult
	}
	return r.err
}
