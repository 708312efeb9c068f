package functional

import (
	"errors"
	"fmt"
)

// Result holds either a value or the error that prevented producing it.
type Result[T any] struct {
	value T
	err   error
}

// Ok creates a successful Result with the given value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err creates a failed Result with the given error.
func Err[T any](err error) Result[T] {
	var zero T
	return Result[T]{value: zero, err: err}
}

// Errf is a shorthand for Err(fmt.Errorf(format, args...)).
func Errf[T any](format string, args ...interface{}) Result[T] {
	return Err[T](fmt.Errorf(format, args...))
}

// IsOk returns true if the Result contains a value.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// IsErr returns true if the Result contains an error.
func (r Result[T]) IsErr() bool {
	return r.err != nil
}

// Unwrap returns the contained value or panics if the Result is an error.
func (r Result[T]) Unwrap() T {
	if r.err != nil {
		panic(fmt.Sprintf("called Unwrap on Err: %v", r.err))
	}
	return r.value
}

// UnwrapOr returns the contained value or the provided default if error.
func (r Result[T]) UnwrapOr(defaultValue T) T {
	if r.err != nil {
		return defaultValue
	}
	return r.value
}

// Error returns the contained error or nil if successful.
func (r Result[T]) Error() error {
	return r.err
}

// Value returns the contained value and error in the usual Go shape.
func (r Result[T]) Value() (T, error) {
	return r.value, r.err
}

// ErrorAs reports whether the contained error matches target, see errors.As.
func (r Result[T]) ErrorAs(target interface{}) bool {
	return r.err != nil && errors.As(r.err, target)
}

// MapErr transforms the contained error. Successful results pass through.
func (r Result[T]) MapErr(fn func(error) error) Result[T] {
	if r.err != nil {
		return Err[T](fn(r.err))
	}
	return r
}

// OrElse calls fn to recover from an error. Successful results pass through.
func (r Result[T]) OrElse(fn func(error) Result[T]) Result[T] {
	if r.err != nil {
		return fn(r.err)
	}
	return r
}

// String implements fmt.Stringer.
func (r Result[T]) String() string {
	if r.err != nil {
		return fmt.Sprintf("Err(%v)", r.err)
	}
	return fmt.Sprintf("Ok(%v)", r.value)
}

// MapResult transforms the contained value.
func MapResult[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return Ok(fn(r.value))
}

// AndThen chains an operation that itself returns a Result.
func AndThen[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return fn(r.value)
}

// FromValue creates a Result from a value and error pair.
func FromValue[T any](value T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(value)
}

// Collect turns a slice of Results into a Result of slice, stopping at the first error.
func Collect[T any](results []Result[T]) Result[[]T] {
	values := make([]T, 0, len(results))
	for _, result := range results {
		if result.err != nil {
			return Err[[]T](result.err)
		}
		values = append(values, result.value)
	}
	return Ok(values)
}

// MapSlice applies fn to every element and collects the results.
func MapSlice[T, U any](slice []T, fn func(T) Result[U]) Result[[]U] {
	values := make([]U, 0, len(slice))
	for _, item := range slice {
		r := fn(item)
		if r.err != nil {
			return Err[[]U](r.err)
		}
		values = append(values, r.value)
	}
	return Ok(values)
}
