package serde

import "fmt"

// Serializer converts a T to and from the nodes of any context.
//
// Serializers operate on Context[any] so that one definition serves every
// context; use Serialize and Deserialize to call them with a typed context.
// Implementations must be stateless and safe for concurrent use. Composition
// always builds new serializers and never mutates existing ones.
type Serializer[T any] interface {
	// Serialize encodes value as a node of ctx.
	Serialize(ctx Context[any], value T) Result[any]

	// Deserialize decodes a node of ctx.
	Deserialize(ctx Context[any], raw any) Result[T]
}

type funcSerializer[T any] struct {
	ser func(Context[any], T) Result[any]
	de  func(Context[any], any) Result[T]
}

// Func builds a Serializer from a pair of functions.
func Func[T any](ser func(ctx Context[any], value T) Result[any], de func(ctx Context[any], raw any) Result[T]) Serializer[T] {
	return funcSerializer[T]{ser: ser, de: de}
}

func (f funcSerializer[T]) Serialize(ctx Context[any], value T) Result[any] {
	return f.ser(ctx, value)
}

func (f funcSerializer[T]) Deserialize(ctx Context[any], raw any) Result[T] {
	return f.de(ctx, raw)
}

// Or tries first and falls back to each alternative in turn when it fails.
// The failure of the last alternative is returned when all fail.
func Or[T any](first Serializer[T], alternatives ...Serializer[T]) Serializer[T] {
	chain := append([]Serializer[T]{first}, alternatives...)
	return Func(
		func(ctx Context[any], value T) Result[any] {
			r := chain[0].Serialize(ctx, value)
			for _, alt := range chain[1:] {
				r = r.MapError(func(error) Result[any] { return alt.Serialize(ctx, value) })
			}
			return r
		},
		func(ctx Context[any], raw any) Result[T] {
			r := chain[0].Deserialize(ctx, raw)
			for _, alt := range chain[1:] {
				r = r.MapError(func(error) Result[T] { return alt.Deserialize(ctx, raw) })
			}
			return r
		},
	)
}

// FieldOf wraps s so the value lives under a single map key.
// Deserialize fails with ErrMissingKey when the key is absent or null.
func FieldOf[T any](s Serializer[T], key string) Serializer[T] {
	return Func(
		func(ctx Context[any], value T) Result[any] {
			return Map(s.Serialize(ctx, value), func(node any) any {
				return ctx.ToMap([]Entry[any]{{Key: key, Value: node}})
			})
		},
		func(ctx Context[any], raw any) Result[T] {
			if k := ctx.Kind(raw); k != KindMap {
				return Fail[T](newShapeError(KindMap, k))
			}
			node, ok := ctx.Get(raw, key)
			if !ok || IsNull(ctx, node) {
				return Fail[T](newFieldError(key, ErrMissingKey))
			}
			return s.Deserialize(ctx, node).MapError(func(err error) Result[T] {
				return Fail[T](newFieldError(key, err))
			})
		},
	)
}

// OptionalFieldOf is FieldOf that decodes a missing or null key to fallback.
// Decode failures of a present key still fail.
func OptionalFieldOf[T any](s Serializer[T], key string, fallback T) Serializer[T] {
	field := FieldOf(s, key)
	return Func(
		field.Serialize,
		func(ctx Context[any], raw any) Result[T] {
			if ctx.Kind(raw) == KindMap {
				if node, ok := ctx.Get(raw, key); !ok || IsNull(ctx, node) {
					return Ok(fallback)
				}
			}
			return field.Deserialize(ctx, raw)
		},
	)
}

// Transform adapts a Serializer[A] into a Serializer[B] with a pair of
// fallible mapping functions.
func Transform[A, B any](s Serializer[A], to func(B) Result[A], from func(A) Result[B]) Serializer[B] {
	return Func(
		func(ctx Context[any], value B) Result[any] {
			return FlatMap(to(value), func(a A) Result[any] { return s.Serialize(ctx, a) })
		},
		func(ctx Context[any], raw any) Result[B] {
			return FlatMap(s.Deserialize(ctx, raw), from)
		},
	)
}

// Convertible adapts a Serializer[A] into a Serializer[B] with a pair of
// total mapping functions.
func Convertible[A, B any](s Serializer[A], to func(B) A, from func(A) B) Serializer[B] {
	return Transform(s,
		func(b B) Result[A] { return Ok(to(b)) },
		func(a A) Result[B] { return Ok(from(a)) },
	)
}

// Cast adapts a Serializer[A] into a Serializer[B] for types related by
// interface conversion. Values that do not convert fail.
func Cast[A, B any](s Serializer[A]) Serializer[B] {
	return Transform(s,
		func(b B) Result[A] {
			a, ok := any(b).(A)
			if !ok {
				return Failf[A]("cannot cast %T to %T", b, a)
			}
			return Ok(a)
		},
		func(a A) Result[B] {
			b, ok := any(a).(B)
			if !ok {
				return Failf[B]("cannot cast %T to %T", a, b)
			}
			return Ok(b)
		},
	)
}

// Ptr lifts s to pointers. Serializing a nil pointer produces the null node;
// deserializing the null node produces nil.
func Ptr[T any](s Serializer[T]) Serializer[*T] {
	return Func(
		func(ctx Context[any], value *T) Result[any] {
			if value == nil {
				return Ok(ctx.Null())
			}
			return s.Serialize(ctx, *value)
		},
		func(ctx Context[any], raw any) Result[*T] {
			if IsNull(ctx, raw) {
				return Ok[*T](nil)
			}
			return Map(s.Deserialize(ctx, raw), func(v T) *T { return &v })
		},
	)
}

// Paired combines two serializers of the same node into one serializer of a
// Pair. Serialize merges both encodings with Merge.
func Paired[A, B any](first Serializer[A], second Serializer[B]) Serializer[Pair[A, B]] {
	return Func(
		func(ctx Context[any], value Pair[A, B]) Result[any] {
			return Map(
				Both(first.Serialize(ctx, value.First), second.Serialize(ctx, value.Second)),
				func(p Pair[any, any]) any { return Merge(ctx, p.First, p.Second) },
			)
		},
		func(ctx Context[any], raw any) Result[Pair[A, B]] {
			return Both(first.Deserialize(ctx, raw), second.Deserialize(ctx, raw))
		},
	)
}

// OneWay returns a serializer that can only serialize.
func OneWay[T any](ser func(ctx Context[any], value T) Result[any]) Serializer[T] {
	return Func(ser, func(Context[any], any) Result[T] {
		return Fail[T](fmt.Errorf("%w: deserialize", ErrUnsupported))
	})
}

// ReadOnly returns a serializer that can only deserialize.
func ReadOnly[T any](de func(ctx Context[any], raw any) Result[T]) Serializer[T] {
	return Func(func(Context[any], T) Result[any] {
		return Fail[any](fmt.Errorf("%w: serialize", ErrUnsupported))
	}, de)
}

// Either holds exactly one of a Left or a Right value.
type Either[L, R any] struct {
	left    L
	right   R
	isRight bool
}

// LeftOf returns an Either holding l.
func LeftOf[L, R any](l L) Either[L, R] {
	return Either[L, R]{left: l}
}

// RightOf returns an Either holding r.
func RightOf[L, R any](r R) Either[L, R] {
	return Either[L, R]{right: r, isRight: true}
}

// Left returns the left value and whether it is held.
func (e Either[L, R]) Left() (L, bool) {
	return e.left, !e.isRight
}

// Right returns the right value and whether it is held.
func (e Either[L, R]) Right() (R, bool) {
	return e.right, e.isRight
}

// EitherOf decodes with left, falling back to right.
func EitherOf[L, R any](left Serializer[L], right Serializer[R]) Serializer[Either[L, R]] {
	return Func(
		func(ctx Context[any], value Either[L, R]) Result[any] {
			if r, ok := value.Right(); ok {
				return right.Serialize(ctx, r)
			}
			l, _ := value.Left()
			return left.Serialize(ctx, l)
		},
		func(ctx Context[any], raw any) Result[Either[L, R]] {
			return Map(left.Deserialize(ctx, raw), LeftOf[L, R]).MapError(func(error) Result[Either[L, R]] {
				return Map(right.Deserialize(ctx, raw), RightOf[L, R])
			})
		},
	)
}
