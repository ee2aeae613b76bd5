package pkg

import "iter"

// Option is a functional option that returns a modified copy of T.
type Option[T any] func(T) T

// Apply applies each option in order to v and returns the result.
func Apply[T any](v T, opts ...Option[T]) T {
	for _, opt := range opts {
		if opt != nil {
			v = opt(v)
		}
	}

	return v
}

// TypeCast is function that converts a value of type T to type U.
type TypeCast[T, U any] func(T) U

// Values returns an iterator over the given values, casting each value
// from type T to type U using the TypeCast receiver.
func (c TypeCast[T, U]) Values(v ...T) iter.Seq[U] {
	return func(yield func(U) bool) {
		for _, x := range v {
			if !yield(c(x)) {
				return
			}
		}
	}
}

// Strings returns the given values converted to their underlying string type.
func Strings[T ~string](v ...T) iter.Seq[string] {
	var fn TypeCast[T, string] = func(v T) string { return string(v) }

	return fn.Values(v...)
}
