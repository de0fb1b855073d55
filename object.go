package serde

import (
	"reflect"
	"slices"
)

// Fields holds the decoded values of an object's or group's entries, in
// declaration order. Entries read their own value back with From.
type Fields struct {
	values Tuple
	index  map[any]int
}

func newFields(values Tuple, ids []any) Fields {
	index := make(map[any]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	return Fields{values: values, index: index}
}

// Len returns the number of positions.
func (f Fields) Len() int {
	return len(f.values)
}

// At returns the value at position i.
func (f Fields) At(i int) any {
	if i < 0 || i >= len(f.values) {
		return nil
	}
	return f.values[i]
}

func fieldValue[F any](f Fields, id any) F {
	i, ok := f.index[id]
	if !ok {
		var zero F
		return zero
	}
	return At[F](f.values, i)
}

// ObjectEntry is one named field of an object serializer. It is implemented
// by *ContextField.
type ObjectEntry[S, C any] interface {
	// Key returns the primary key of the entry.
	Key() string

	accepts() []string
	resolve(ctx Context[any], value S, c C) (Entry[any], bool, error)
	parse(ctx Context[any], raw any, c C) Result[any]
}

// ContextField describes one field of a struct S: its key, its serializer,
// the getter used on serialize and its missing-value policy.
//
// The builder methods return modified copies; use the final copy both in
// the object declaration and in the constructor.
type ContextField[F, S, C any] struct {
	key        string
	alternates []string
	ser        ContextSerializer[F, C]
	get        func(S, C) F
	optional   bool
	fallback   func(C) F
}

// Field declares a required field read with get and encoded with ser.
func Field[F, S any](key string, ser Serializer[F], get func(S) F) *ContextField[F, S, NoContext] {
	return &ContextField[F, S, NoContext]{
		key: key,
		ser: Lift[F, NoContext](ser),
		get: func(s S, _ NoContext) F { return get(s) },
	}
}

// FieldWithContext declares a required field whose serializer and getter see the context value.
func FieldWithContext[F, S, C any](key string, ser ContextSerializer[F, C], get func(S, C) F) *ContextField[F, S, C] {
	return &ContextField[F, S, C]{key: key, ser: ser, get: get}
}

func (f *ContextField[F, S, C]) clone() *ContextField[F, S, C] {
	cp := *f
	cp.alternates = slices.Clone(f.alternates)
	return &cp
}

// Key returns the primary key.
func (f *ContextField[F, S, C]) Key() string {
	return f.key
}

// Optional makes a missing key decode to the zero value of F and a nil
// value be omitted on serialize.
func (f *ContextField[F, S, C]) Optional() *ContextField[F, S, C] {
	cp := f.clone()
	cp.optional = true
	return cp
}

// OrElse makes a missing key decode to v, and a nil value serialize as v.
func (f *ContextField[F, S, C]) OrElse(v F) *ContextField[F, S, C] {
	return f.OrElseFunc(func(C) F { return v })
}

// OrElseFunc is OrElse with a default computed from the context value.
func (f *ContextField[F, S, C]) OrElseFunc(fn func(C) F) *ContextField[F, S, C] {
	cp := f.clone()
	cp.optional = true
	cp.fallback = fn
	return cp
}

// AcceptKey adds alternate keys tried in order when the primary key is absent.
// Serialize always writes the primary key.
func (f *ContextField[F, S, C]) AcceptKey(keys ...string) *ContextField[F, S, C] {
	cp := f.clone()
	cp.alternates = append(cp.alternates, keys...)
	return cp
}

// From returns the decoded value of this field.
func (f *ContextField[F, S, C]) From(fields Fields) F {
	return fieldValue[F](fields, f)
}

func (f *ContextField[F, S, C]) accepts() []string {
	return append([]string{f.key}, f.alternates...)
}

func (f *ContextField[F, S, C]) resolve(ctx Context[any], value S, c C) (Entry[any], bool, error) {
	v := f.get(value, c)
	if isNil(v) {
		switch {
		case f.fallback != nil:
			v = f.fallback(c)
		case f.optional:
			return Entry[any]{}, false, nil
		default:
			return Entry[any]{}, false, newFieldError(f.key, ErrMissingValue)
		}
	}
	node, err := f.ser.Serialize(ctx, v, c).Get()
	if err != nil {
		return Entry[any]{}, false, newFieldError(f.key, err)
	}
	return Entry[any]{Key: f.key, Value: node}, true, nil
}

func (f *ContextField[F, S, C]) parse(ctx Context[any], raw any, c C) Result[any] {
	for _, key := range f.accepts() {
		node, ok := ctx.Get(raw, key)
		if !ok || IsNull(ctx, node) {
			continue
		}
		return Map(f.ser.Deserialize(ctx, node, c), func(v F) any { return v }).MapError(func(err error) Result[any] {
			return Fail[any](newFieldError(key, err))
		})
	}
	switch {
	case f.fallback != nil:
		return Ok[any](f.fallback(c))
	case f.optional:
		var zero F
		return Ok[any](zero)
	}
	return Fail[any](newFieldError(f.key, ErrMissingKey))
}

// isNil reports whether v holds no value: a nil interface, pointer, map,
// slice, channel or function.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// ContextObjectSerializer assembles named fields into a serializer of S that
// threads a context value C.
//
// Serialize resolves every field in declaration order and fails with the
// first failing one. Deserialize decodes every field, fails with the first
// failure in declaration order and otherwise hands the values to the
// constructor. Unknown keys are ignored unless the serializer is strict.
type ContextObjectSerializer[S, C any] struct {
	entries []ObjectEntry[S, C]
	build   func(Fields, C) S
	strict  bool
}

// ObjectWithContext declares a context-aware object serializer.
func ObjectWithContext[S, C any](build func(fields Fields, c C) S, entries ...ObjectEntry[S, C]) *ContextObjectSerializer[S, C] {
	return &ContextObjectSerializer[S, C]{entries: slices.Clone(entries), build: build}
}

// Strict returns a copy of o that rejects keys no field accepts.
func (o *ContextObjectSerializer[S, C]) Strict() *ContextObjectSerializer[S, C] {
	return &ContextObjectSerializer[S, C]{entries: o.entries, build: o.build, strict: true}
}

func (o *ContextObjectSerializer[S, C]) Serialize(ctx Context[any], value S, c C) Result[any] {
	out := make([]Entry[any], 0, len(o.entries))
	for _, e := range o.entries {
		entry, present, err := e.resolve(ctx, value, c)
		if err != nil {
			return Fail[any](err)
		}
		if present {
			out = append(out, entry)
		}
	}
	return Ok(ctx.ToMap(out))
}

func (o *ContextObjectSerializer[S, C]) Deserialize(ctx Context[any], raw any, c C) Result[S] {
	if k := ctx.Kind(raw); k != KindMap {
		return Fail[S](newShapeError(KindMap, k))
	}
	results := make([]Outcome, len(o.entries))
	ids := make([]any, len(o.entries))
	for i, e := range o.entries {
		results[i] = e.parse(ctx, raw, c)
		ids[i] = e
	}
	if o.strict {
		if err := o.unknownKey(ctx, raw); err != nil {
			results = append(results, Fail[any](err))
		}
	}
	return Map(All(results...), func(t Tuple) S {
		return o.build(newFields(t[:len(ids)], ids), c)
	})
}

func (o *ContextObjectSerializer[S, C]) unknownKey(ctx Context[any], raw any) error {
	known := make(map[string]struct{})
	for _, e := range o.entries {
		for _, key := range e.accepts() {
			known[key] = struct{}{}
		}
	}
	for _, key := range ctx.Keys(raw) {
		if _, ok := known[key]; !ok {
			return newFieldError(key, ErrUnknownKey)
		}
	}
	return nil
}

// ObjectSerializer assembles named fields into a serializer of S.
type ObjectSerializer[S any] struct {
	inner *ContextObjectSerializer[S, NoContext]
}

// Object declares an object serializer from its fields and a constructor.
//
//	name := serde.Field("name", serde.String, func(p Person) string { return p.Name })
//	age := serde.Field("age", serde.Int, func(p Person) int { return p.Age }).OrElse(18)
//	person := serde.Object(func(f serde.Fields) Person {
//	    return Person{Name: name.From(f), Age: age.From(f)}
//	}, name, age)
func Object[S any](build func(fields Fields) S, entries ...ObjectEntry[S, NoContext]) *ObjectSerializer[S] {
	return &ObjectSerializer[S]{
		inner: ObjectWithContext(func(f Fields, _ NoContext) S { return build(f) }, entries...),
	}
}

// Strict returns a copy of o that rejects keys no field accepts.
func (o *ObjectSerializer[S]) Strict() *ObjectSerializer[S] {
	return &ObjectSerializer[S]{inner: o.inner.Strict()}
}

func (o *ObjectSerializer[S]) Serialize(ctx Context[any], value S) Result[any] {
	return o.inner.Serialize(ctx, value, NoContext{})
}

func (o *ObjectSerializer[S]) Deserialize(ctx Context[any], raw any) Result[S] {
	return o.inner.Deserialize(ctx, raw, NoContext{})
}
