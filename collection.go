package serde

import (
	"fmt"
	"sort"
)

// collectMode decides what a collection does with a failing element.
type collectMode struct {
	filtered bool
	onError  func(error)
}

// skip reports whether err should be dropped, reporting it when filtered.
func (m collectMode) skip(err error) bool {
	if !m.filtered {
		return false
	}
	if m.onError != nil {
		m.onError(err)
	}
	return true
}

func encodeList[T any](ctx Context[any], values []T, mode collectMode, enc func(T) Result[any]) Result[any] {
	out := make([]any, 0, len(values))
	for i, v := range values {
		node, err := enc(v).Get()
		if err != nil {
			err = fmt.Errorf("element %d: %w", i, err)
			if mode.skip(err) {
				continue
			}
			return Fail[any](err)
		}
		out = append(out, node)
	}
	return Ok(ctx.ToList(out))
}

func decodeList[T any](ctx Context[any], raw any, mode collectMode, dec func(any) Result[T]) Result[[]T] {
	nodes, err := ctx.AsList(raw).Get()
	if err != nil {
		return Fail[[]T](err)
	}
	out := make([]T, 0, len(nodes))
	for i, node := range nodes {
		v, err := dec(node).Get()
		if err != nil {
			err = fmt.Errorf("element %d: %w", i, err)
			if mode.skip(err) {
				continue
			}
			return Fail[[]T](err)
		}
		out = append(out, v)
	}
	return Ok(out)
}

// encodeMap writes entries in the order of their encoded keys.
func encodeMap[K comparable, V any](ctx Context[any], values map[K]V, keys KeyCodec[K], mode collectMode, enc func(V) Result[any]) Result[any] {
	type pending struct {
		key   string
		value V
	}
	ordered := make([]pending, 0, len(values))
	for k, v := range values {
		s, err := keys.WriteString(k)
		if err != nil {
			err = fmt.Errorf("key %v: %w", k, err)
			if mode.skip(err) {
				continue
			}
			return Fail[any](err)
		}
		ordered = append(ordered, pending{key: s, value: v})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].key < ordered[j].key })

	out := make([]Entry[any], 0, len(ordered))
	for _, p := range ordered {
		node, err := enc(p.value).Get()
		if err != nil {
			err = newFieldError(p.key, err)
			if mode.skip(err) {
				continue
			}
			return Fail[any](err)
		}
		out = append(out, Entry[any]{Key: p.key, Value: node})
	}
	return Ok(ctx.ToMap(out))
}

func decodeMap[K comparable, V any](ctx Context[any], raw any, keys KeyCodec[K], mode collectMode, dec func(any) Result[V]) Result[map[K]V] {
	entries, err := Entries(ctx, raw).Get()
	if err != nil {
		return Fail[map[K]V](err)
	}
	out := make(map[K]V, len(entries))
	for _, e := range entries {
		k, err := keys.ReadString(e.Key)
		if err != nil {
			err = fmt.Errorf("key %q: %w", e.Key, err)
			if mode.skip(err) {
				continue
			}
			return Fail[map[K]V](err)
		}
		v, err := dec(e.Value).Get()
		if err != nil {
			err = newFieldError(e.Key, err)
			if mode.skip(err) {
				continue
			}
			return Fail[map[K]V](err)
		}
		out[k] = v
	}
	return Ok(out)
}

// ListSerializer serializes slices element by element.
//
// In strict mode (the default) any element failure fails the whole list. In
// filtered mode failing elements are dropped and reported to the callback.
// A node that is not a list always fails.
type ListSerializer[T any] struct {
	elem Serializer[T]
	mode collectMode
}

// ListOf returns a strict list serializer over elem.
func ListOf[T any](elem Serializer[T]) *ListSerializer[T] {
	return &ListSerializer[T]{elem: elem}
}

// Filtered returns a copy of l that drops failing elements, reporting each
// failure to onError when it is not nil.
func (l *ListSerializer[T]) Filtered(onError func(error)) *ListSerializer[T] {
	return &ListSerializer[T]{elem: l.elem, mode: collectMode{filtered: true, onError: onError}}
}

func (l *ListSerializer[T]) Serialize(ctx Context[any], values []T) Result[any] {
	return encodeList(ctx, values, l.mode, func(v T) Result[any] { return l.elem.Serialize(ctx, v) })
}

func (l *ListSerializer[T]) Deserialize(ctx Context[any], raw any) Result[[]T] {
	return decodeList(ctx, raw, l.mode, func(node any) Result[T] { return l.elem.Deserialize(ctx, node) })
}

// MapSerializer serializes maps with string-encoded keys. Entries are
// written in key order. Strict and filtered modes behave as for lists.
type MapSerializer[K comparable, V any] struct {
	keys   KeyCodec[K]
	values Serializer[V]
	mode   collectMode
}

// MapOf returns a strict map serializer.
func MapOf[K comparable, V any](keys KeyCodec[K], values Serializer[V]) *MapSerializer[K, V] {
	return &MapSerializer[K, V]{keys: keys, values: values}
}

// StringMapOf returns a strict serializer for maps keyed by strings.
func StringMapOf[V any](values Serializer[V]) *MapSerializer[string, V] {
	return MapOf[string, V](RawString, values)
}

// Filtered returns a copy of m that drops failing entries, reporting each
// failure to onError when it is not nil.
func (m *MapSerializer[K, V]) Filtered(onError func(error)) *MapSerializer[K, V] {
	return &MapSerializer[K, V]{keys: m.keys, values: m.values, mode: collectMode{filtered: true, onError: onError}}
}

func (m *MapSerializer[K, V]) Serialize(ctx Context[any], values map[K]V) Result[any] {
	return encodeMap(ctx, values, m.keys, m.mode, func(v V) Result[any] { return m.values.Serialize(ctx, v) })
}

func (m *MapSerializer[K, V]) Deserialize(ctx Context[any], raw any) Result[map[K]V] {
	return decodeMap(ctx, raw, m.keys, m.mode, func(node any) Result[V] { return m.values.Deserialize(ctx, node) })
}

// ContextListSerializer is the ContextSerializer counterpart of ListSerializer.
type ContextListSerializer[T, C any] struct {
	elem ContextSerializer[T, C]
	mode collectMode
}

// ListOfContext returns a strict context-aware list serializer over elem.
func ListOfContext[T, C any](elem ContextSerializer[T, C]) *ContextListSerializer[T, C] {
	return &ContextListSerializer[T, C]{elem: elem}
}

// Filtered returns a copy of l that drops failing elements.
func (l *ContextListSerializer[T, C]) Filtered(onError func(error)) *ContextListSerializer[T, C] {
	return &ContextListSerializer[T, C]{elem: l.elem, mode: collectMode{filtered: true, onError: onError}}
}

func (l *ContextListSerializer[T, C]) Serialize(ctx Context[any], values []T, c C) Result[any] {
	return encodeList(ctx, values, l.mode, func(v T) Result[any] { return l.elem.Serialize(ctx, v, c) })
}

func (l *ContextListSerializer[T, C]) Deserialize(ctx Context[any], raw any, c C) Result[[]T] {
	return decodeList(ctx, raw, l.mode, func(node any) Result[T] { return l.elem.Deserialize(ctx, node, c) })
}

// ContextMapSerializer is the ContextSerializer counterpart of MapSerializer.
type ContextMapSerializer[K comparable, V, C any] struct {
	keys   KeyCodec[K]
	values ContextSerializer[V, C]
	mode   collectMode
}

// MapOfContext returns a strict context-aware map serializer.
func MapOfContext[K comparable, V, C any](keys KeyCodec[K], values ContextSerializer[V, C]) *ContextMapSerializer[K, V, C] {
	return &ContextMapSerializer[K, V, C]{keys: keys, values: values}
}

// Filtered returns a copy of m that drops failing entries.
func (m *ContextMapSerializer[K, V, C]) Filtered(onError func(error)) *ContextMapSerializer[K, V, C] {
	return &ContextMapSerializer[K, V, C]{keys: m.keys, values: m.values, mode: collectMode{filtered: true, onError: onError}}
}

func (m *ContextMapSerializer[K, V, C]) Serialize(ctx Context[any], values map[K]V, c C) Result[any] {
	return encodeMap(ctx, values, m.keys, m.mode, func(v V) Result[any] { return m.values.Serialize(ctx, v, c) })
}

func (m *ContextMapSerializer[K, V, C]) Deserialize(ctx Context[any], raw any, c C) Result[map[K]V] {
	return decodeMap(ctx, raw, m.keys, m.mode, func(node any) Result[V] { return m.values.Deserialize(ctx, node, c) })
}
