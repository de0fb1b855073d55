package serde

import (
	"errors"
	"fmt"
)

// Result is the outcome of a serialize or deserialize call: either a value
// or an error, never both.
//
// The zero Result is a success holding the zero value of T.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful result.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail returns a failed result. A nil err is replaced by a generic failure.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return Result[T]{err: err}
}

// Failf returns a failed result with a formatted message. %w wraps a cause.
func Failf[T any](format string, args ...any) Result[T] {
	return Result[T]{err: fmt.Errorf(format, args...)}
}

// OfNullable returns a success for a present value and a failure otherwise.
func OfNullable[T any](v *T) Result[T] {
	if v == nil {
		return Failf[T]("value is absent")
	}
	return Ok(*v)
}

// OK reports whether r is a success.
func (r Result[T]) OK() bool {
	return r.err == nil
}

// Err returns the failure, or nil for a success.
func (r Result[T]) Err() error {
	return r.err
}

// Get returns the value and the failure.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// MustGet returns the value or panics with the failure.
func (r Result[T]) MustGet() T {
	if r.err != nil {
		panic(r.err)
	}
	return r.value
}

// OrElse returns the value of a success, or fallback for a failure.
func (r Result[T]) OrElse(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}

// MapError replaces a failure with the result of fn. Successes pass through.
func (r Result[T]) MapError(fn func(error) Result[T]) Result[T] {
	if r.err == nil {
		return r
	}
	return fn(r.err)
}

// Wrap annotates a failure with a message. Successes pass through.
func (r Result[T]) Wrap(msg string) Result[T] {
	if r.err == nil {
		return r
	}
	return Result[T]{err: fmt.Errorf("%s: %w", msg, r.err)}
}

// Map transforms the value of a success. Failures pass through untouched.
func Map[T, O any](r Result[T], fn func(T) O) Result[O] {
	if r.err != nil {
		return Result[O]{err: r.err}
	}
	return Ok(fn(r.value))
}

// FlatMap transforms the value of a success into another result.
// Failures pass through untouched.
func FlatMap[T, O any](r Result[T], fn func(T) Result[O]) Result[O] {
	if r.err != nil {
		return Result[O]{err: r.err}
	}
	return fn(r.value)
}

// Outcome is the type-erased view of a Result used by All.
type Outcome interface {
	Err() error
	anyValue() any
}

func (r Result[T]) anyValue() any {
	return r.value
}

// Tuple is the positional success value produced by All.
type Tuple []any

// Len returns the number of positions.
func (t Tuple) Len() int {
	return len(t)
}

// At returns position i of t as a T. It returns the zero value when the
// position is missing or holds another type.
func At[T any](t Tuple, i int) T {
	var zero T
	if i < 0 || i >= len(t) {
		return zero
	}
	v, ok := t[i].(T)
	if !ok {
		return zero
	}
	return v
}

// All combines results into one tuple. It succeeds only when every input
// succeeded; otherwise it returns the first failure from the left.
func All(results ...Outcome) Result[Tuple] {
	out := make(Tuple, len(results))
	for i, r := range results {
		if err := r.Err(); err != nil {
			return Fail[Tuple](err)
		}
		out[i] = r.anyValue()
	}
	return Ok(out)
}

// Pair holds two values combined by Both.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Both combines two results, failing with the first failure from the left.
func Both[A, B any](a Result[A], b Result[B]) Result[Pair[A, B]] {
	if a.err != nil {
		return Fail[Pair[A, B]](a.err)
	}
	if b.err != nil {
		return Fail[Pair[A, B]](b.err)
	}
	return Ok(Pair[A, B]{First: a.value, Second: b.value})
}
