package serde

// Entry is one key/value pair of a map-shaped node.
type Entry[T any] struct {
	Key   string
	Value T
}

// Context bridges the semantic shapes to one external tree representation T.
//
// Readers (As*) fail with a ShapeError when the node has another shape.
// Writers (To*) construct nodes. Implementations must be stateless and safe
// for concurrent use; everything else (merging, copying, conversion between
// contexts) is derived once by the package functions in this package.
type Context[T any] interface {
	// Kind returns the semantic shape of v.
	Kind(v T) Kind

	AsString(v T) Result[string]
	AsNumber(v T) Result[Number]
	AsBool(v T) Result[bool]
	AsBlob(v T) Result[[]byte]
	AsList(v T) Result[[]T]

	// Keys returns the keys of a map-shaped v in insertion order, or nil.
	Keys(v T) []string

	// Get returns the value stored under key in a map-shaped v.
	Get(v T, key string) (T, bool)

	// Set stores value under key in a map-shaped v and returns the map to
	// continue with. Non-map values are returned unchanged.
	Set(v T, key string, value T) T

	ToString(s string) T
	ToNumber(n Number) T
	ToBool(b bool) T
	ToBlob(b []byte) T
	ToList(items []T) T
	ToMap(entries []Entry[T]) T

	// Null returns the null value of T.
	Null() T
}

// Entries returns the ordered entries of a map-shaped v.
func Entries[T any](c Context[T], v T) Result[[]Entry[T]] {
	if k := c.Kind(v); k != KindMap {
		return Fail[[]Entry[T]](newShapeError(KindMap, k))
	}
	keys := c.Keys(v)
	out := make([]Entry[T], 0, len(keys))
	for _, key := range keys {
		item, _ := c.Get(v, key)
		out = append(out, Entry[T]{Key: key, Value: item})
	}
	return Ok(out)
}

// IsNull reports whether v is the null value of c.
func IsNull[T any](c Context[T], v T) bool {
	return c.Kind(v) == KindNull
}

// EmptyMap returns an empty map-shaped node of c.
func EmptyMap[T any](c Context[T]) T {
	return c.ToMap(nil)
}

// EmptyList returns an empty list-shaped node of c.
func EmptyList[T any](c Context[T]) T {
	return c.ToList(nil)
}

// erased adapts a Context[T] to Context[any].
type erased[T any] struct {
	c Context[T]
}

// Erase adapts c to the node-agnostic form serializers operate on.
// Nodes of any other type than T read as the null value of c.
func Erase[T any](c Context[T]) Context[any] {
	if a, ok := any(c).(Context[any]); ok {
		return a
	}
	return erased[T]{c: c}
}

func (e erased[T]) unwrap(v any) T {
	if t, ok := v.(T); ok {
		return t
	}
	return e.c.Null()
}

func (e erased[T]) Kind(v any) Kind {
	return e.c.Kind(e.unwrap(v))
}

func (e erased[T]) AsString(v any) Result[string] {
	return e.c.AsString(e.unwrap(v))
}

func (e erased[T]) AsNumber(v any) Result[Number] {
	return e.c.AsNumber(e.unwrap(v))
}

func (e erased[T]) AsBool(v any) Result[bool] {
	return e.c.AsBool(e.unwrap(v))
}

func (e erased[T]) AsBlob(v any) Result[[]byte] {
	return e.c.AsBlob(e.unwrap(v))
}

func (e erased[T]) AsList(v any) Result[[]any] {
	return Map(e.c.AsList(e.unwrap(v)), func(items []T) []any {
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out
	})
}

func (e erased[T]) Keys(v any) []string {
	return e.c.Keys(e.unwrap(v))
}

func (e erased[T]) Get(v any, key string) (any, bool) {
	item, ok := e.c.Get(e.unwrap(v), key)
	if !ok {
		return nil, false
	}
	return item, true
}

func (e erased[T]) Set(v any, key string, value any) any {
	return e.c.Set(e.unwrap(v), key, e.unwrap(value))
}

func (e erased[T]) ToString(s string) any {
	return e.c.ToString(s)
}

func (e erased[T]) ToNumber(n Number) any {
	return e.c.ToNumber(n)
}

func (e erased[T]) ToBool(b bool) any {
	return e.c.ToBool(b)
}

func (e erased[T]) ToBlob(b []byte) any {
	return e.c.ToBlob(b)
}

func (e erased[T]) ToList(items []any) any {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = e.unwrap(item)
	}
	return e.c.ToList(out)
}

func (e erased[T]) ToMap(entries []Entry[any]) any {
	out := make([]Entry[T], len(entries))
	for i, entry := range entries {
		out[i] = Entry[T]{Key: entry.Key, Value: e.unwrap(entry.Value)}
	}
	return e.c.ToMap(out)
}

func (e erased[T]) Null() any {
	return e.c.Null()
}

func (e erased[T]) Copy(v any) any {
	return Copy(e.c, e.unwrap(v))
}

func (e erased[T]) MergeMap(value, other any) any {
	return MergeMap(e.c, e.unwrap(value), e.unwrap(other))
}

func (e erased[T]) MergeMapOverwrite(value, other any) any {
	return MergeMapOverwrite(e.c, e.unwrap(value), e.unwrap(other))
}

func (e erased[T]) MetaProperty(v any, key string) (string, bool) {
	if m, ok := e.c.(MetaContext[T]); ok {
		return m.MetaProperty(e.unwrap(v), key)
	}
	return "", false
}

func (e erased[T]) SetMetaProperty(v any, key, value string) bool {
	if m, ok := e.c.(MetaContext[T]); ok {
		return m.SetMetaProperty(e.unwrap(v), key, value)
	}
	return false
}

// Serialize runs s against c and returns the node as c's own type.
func Serialize[O, T any](c Context[O], s Serializer[T], v T) Result[O] {
	return FlatMap(s.Serialize(Erase(c), v), func(raw any) Result[O] {
		if o, ok := raw.(O); ok {
			return Ok(o)
		}
		if raw == nil {
			return Ok(c.Null())
		}
		return Failf[O]("serializer produced %T, not a node of this context", raw)
	})
}

// Deserialize runs s against c on a node of c's own type.
func Deserialize[O, T any](c Context[O], s Serializer[T], raw O) Result[T] {
	return s.Deserialize(Erase(c), raw)
}
