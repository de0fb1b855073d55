package serde

// KeyCodec round-trips a map key through a string.
type KeyCodec[K any] interface {
	WriteString(value K) (string, error)
	ReadString(s string) (K, error)
}

// InlineSerializer round-trips a T through exactly one string. It serves
// both as a Serializer and as a KeyCodec.
type InlineSerializer[T any] struct {
	write func(T) (string, error)
	read  func(string) (T, error)
}

// Inline builds an InlineSerializer from a formatter and a parser.
func Inline[T any](write func(T) string, read func(string) (T, error)) *InlineSerializer[T] {
	return &InlineSerializer[T]{
		write: func(v T) (string, error) { return write(v), nil },
		read:  read,
	}
}

// RawString is the identity InlineSerializer.
var RawString = Inline(
	func(s string) string { return s },
	func(s string) (string, error) { return s, nil },
)

// WriteString formats value.
func (s *InlineSerializer[T]) WriteString(value T) (string, error) {
	return s.write(value)
}

// ReadString parses str.
func (s *InlineSerializer[T]) ReadString(str string) (T, error) {
	return s.read(str)
}

func (s *InlineSerializer[T]) Serialize(ctx Context[any], value T) Result[any] {
	str, err := s.write(value)
	if err != nil {
		return Fail[any](err)
	}
	return Ok(ctx.ToString(str))
}

func (s *InlineSerializer[T]) Deserialize(ctx Context[any], raw any) Result[T] {
	return FlatMap(ctx.AsString(raw), func(str string) Result[T] {
		v, err := s.read(str)
		if err != nil {
			return Fail[T](err)
		}
		return Ok(v)
	})
}
