package functional

import "fmt"

// Option is a value that may be absent.
type Option[T any] struct {
	value *T
}

// Some creates an Option containing the given value.
func Some[T any](value T) Option[T] {
	return Option[T]{value: &value}
}

// None creates an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// IsSome returns true if the Option contains a value.
func (o Option[T]) IsSome() bool {
	return o.value != nil
}

// IsNone returns true if the Option is empty.
func (o Option[T]) IsNone() bool {
	return o.value == nil
}

// Unwrap returns the contained value or panics if None.
func (o Option[T]) Unwrap() T {
	if o.value == nil {
		panic("called Unwrap on None")
	}
	return *o.value
}

// UnwrapOr returns the contained value or the provided default.
func (o Option[T]) UnwrapOr(defaultValue T) T {
	if o.value == nil {
		return defaultValue
	}
	return *o.value
}

// Get returns the value and whether it is present, comma-ok style.
func (o Option[T]) Get() (T, bool) {
	if o.value == nil {
		var zero T
		return zero, false
	}
	return *o.value, true
}

// OrElse returns this Option if it contains a value, otherwise the result of fn.
func (o Option[T]) OrElse(fn func() Option[T]) Option[T] {
	if o.value != nil {
		return o
	}
	return fn()
}

// MapOption transforms the contained value.
func MapOption[T, U any](o Option[T], fn func(T) U) Option[U] {
	if o.value == nil {
		return None[U]()
	}
	return Some(fn(*o.value))
}

// FromLookup builds an Option from a map lookup.
func FromLookup[K comparable, V any](m map[K]V, key K) Option[V] {
	if v, ok := m[key]; ok {
		return Some(v)
	}
	return None[V]()
}

// String implements fmt.Stringer.
func (o Option[T]) String() string {
	if o.value == nil {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", *o.value)
}
