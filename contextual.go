package serde

// NoContext is the context value of serializers that take none.
type NoContext = struct{}

// ContextSerializer is a Serializer that threads an opaque value C (a schema
// version, ambient settings) through both directions.
type ContextSerializer[T, C any] interface {
	Serialize(ctx Context[any], value T, c C) Result[any]
	Deserialize(ctx Context[any], raw any, c C) Result[T]
}

type contextFunc[T, C any] struct {
	ser func(Context[any], T, C) Result[any]
	de  func(Context[any], any, C) Result[T]
}

// ContextFunc builds a ContextSerializer from a pair of functions.
func ContextFunc[T, C any](ser func(ctx Context[any], value T, c C) Result[any], de func(ctx Context[any], raw any, c C) Result[T]) ContextSerializer[T, C] {
	return contextFunc[T, C]{ser: ser, de: de}
}

func (f contextFunc[T, C]) Serialize(ctx Context[any], value T, c C) Result[any] {
	return f.ser(ctx, value, c)
}

func (f contextFunc[T, C]) Deserialize(ctx Context[any], raw any, c C) Result[T] {
	return f.de(ctx, raw, c)
}

// ForContext fixes the context value of s, projecting it to a Serializer.
func ForContext[T, C any](s ContextSerializer[T, C], c C) Serializer[T] {
	return Func(
		func(ctx Context[any], value T) Result[any] { return s.Serialize(ctx, value, c) },
		func(ctx Context[any], raw any) Result[T] { return s.Deserialize(ctx, raw, c) },
	)
}

// Lift turns a Serializer into a ContextSerializer that ignores its context value.
func Lift[T, C any](s Serializer[T]) ContextSerializer[T, C] {
	return ContextFunc(
		func(ctx Context[any], value T, _ C) Result[any] { return s.Serialize(ctx, value) },
		func(ctx Context[any], raw any, _ C) Result[T] { return s.Deserialize(ctx, raw) },
	)
}

// SelectBy picks the Serializer to use from the context value on every call.
func SelectBy[T, C any](choose func(c C) Serializer[T]) ContextSerializer[T, C] {
	return ContextFunc(
		func(ctx Context[any], value T, c C) Result[any] { return choose(c).Serialize(ctx, value) },
		func(ctx Context[any], raw any, c C) Result[T] { return choose(c).Deserialize(ctx, raw) },
	)
}

// InlineContext round-trips a T through one string with access to the context value.
func InlineContext[T, C any](write func(value T, c C) string, read func(s string, c C) (T, error)) ContextSerializer[T, C] {
	return ContextFunc(
		func(ctx Context[any], value T, c C) Result[any] {
			return Ok(ctx.ToString(write(value, c)))
		},
		func(ctx Context[any], raw any, c C) Result[T] {
			return FlatMap(ctx.AsString(raw), func(s string) Result[T] {
				v, err := read(s, c)
				if err != nil {
					return Fail[T](err)
				}
				return Ok(v)
			})
		},
	)
}
