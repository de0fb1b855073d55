package serde

import (
	"fmt"
	"math/big"
	"reflect"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/zoobzio/sentinel"
)

// tagName is the struct tag read by Derive.
const tagName = "serde"

func init() {
	sentinel.Tag(tagName)
}

// reflectCodec moves one Go type between reflect values and context nodes.
type reflectCodec interface {
	encode(ctx Context[any], v reflect.Value) Result[any]
	decode(ctx Context[any], raw any, dst reflect.Value) error
}

// Derive builds an object serializer for the struct type T from its fields.
//
// Each exported field is keyed by its `serde:"key"` tag, or its Go name when
// untagged. `serde:"-"` skips a field and `serde:"key,optional"` makes it
// optional: a zero value is omitted on serialize and a missing key leaves
// the field zero. Supported field types are strings, booleans, numbers,
// []byte, uuid.UUID, *big.Int, *big.Float, pointers, slices, string-keyed
// maps and nested structs.
//
// Derive resolves all field serializers once; the result is safe for
// concurrent use.
func Derive[T any]() (Serializer[T], error) {
	rt := reflect.TypeFor[T]()
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: derive %s: not a struct", ErrUnsupported, rt)
	}
	spec := sentinel.Scan[T]()
	b := &deriveBuilder{structs: make(map[reflect.Type]*structCodec)}
	codec, err := b.structCodec(rt, &spec)
	if err != nil {
		return nil, err
	}
	return derived[T]{codec: codec}, nil
}

// MustDerive is Derive that panics on unsupported types.
func MustDerive[T any]() Serializer[T] {
	s, err := Derive[T]()
	if err != nil {
		panic(err)
	}
	return s
}

type derived[T any] struct {
	codec reflectCodec
}

func (d derived[T]) Serialize(ctx Context[any], value T) Result[any] {
	return d.codec.encode(ctx, reflect.ValueOf(&value).Elem())
}

func (d derived[T]) Deserialize(ctx Context[any], raw any) Result[T] {
	var out T
	if err := d.codec.decode(ctx, raw, reflect.ValueOf(&out).Elem()); err != nil {
		return Fail[T](err)
	}
	return Ok(out)
}

// deriveBuilder caches struct codecs so recursive types terminate.
type deriveBuilder struct {
	structs map[reflect.Type]*structCodec
}

var (
	uuidType     = reflect.TypeFor[uuid.UUID]()
	bigIntType   = reflect.TypeFor[*big.Int]()
	bigFloatType = reflect.TypeFor[*big.Float]()
	bytesType    = reflect.TypeFor[[]byte]()
)

func (b *deriveBuilder) codecFor(rt reflect.Type) (reflectCodec, error) {
	switch rt {
	case uuidType:
		return typedCodec[uuid.UUID]{UUID}, nil
	case bigIntType:
		return typedCodec[*big.Int]{BigInt}, nil
	case bigFloatType:
		return typedCodec[*big.Float]{Decimal}, nil
	case bytesType:
		return typedCodec[[]byte]{Bytes}, nil
	}

	switch rt.Kind() {
	case reflect.String:
		return scalarCodec[string]{ser: String,
			get: reflect.Value.String,
			set: reflect.Value.SetString}, nil
	case reflect.Bool:
		return scalarCodec[bool]{ser: Bool,
			get: reflect.Value.Bool,
			set: reflect.Value.SetBool}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return scalarCodec[int64]{ser: NumberOf[int64](minInt(rt.Bits()), maxInt(rt.Bits())).sized(rt.Bits()),
			get: reflect.Value.Int,
			set: reflect.Value.SetInt}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return scalarCodec[uint64]{ser: NumberOf[uint64](0, maxUint(rt.Bits())).sized(rt.Bits()),
			get: reflect.Value.Uint,
			set: reflect.Value.SetUint}, nil
	case reflect.Float32:
		return scalarCodec[float64]{ser: Float64.sized(32),
			get: reflect.Value.Float,
			set: reflect.Value.SetFloat}, nil
	case reflect.Float64:
		return scalarCodec[float64]{ser: Float64,
			get: reflect.Value.Float,
			set: reflect.Value.SetFloat}, nil
	case reflect.Pointer:
		elem, err := b.codecFor(rt.Elem())
		if err != nil {
			return nil, err
		}
		return pointerCodec{elem: elem}, nil
	case reflect.Slice:
		elem, err := b.codecFor(rt.Elem())
		if err != nil {
			return nil, err
		}
		return sliceCodec{elem: elem}, nil
	case reflect.Map:
		if rt.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: derive %s: map keys must be strings", ErrUnsupported, rt)
		}
		elem, err := b.codecFor(rt.Elem())
		if err != nil {
			return nil, err
		}
		return mapCodec{elem: elem}, nil
	case reflect.Struct:
		return b.structCodec(rt, nil)
	}
	return nil, fmt.Errorf("%w: derive %s", ErrUnsupported, rt)
}

// structCodec builds the codec for a struct type from its sentinel metadata,
// scanning it when spec is nil.
func (b *deriveBuilder) structCodec(rt reflect.Type, spec *sentinel.Metadata) (*structCodec, error) {
	if sc, ok := b.structs[rt]; ok {
		return sc, nil
	}
	sc := &structCodec{typ: rt}
	b.structs[rt] = sc

	if spec == nil {
		spec = scanStruct(rt)
	}
	for _, field := range spec.Fields {
		sf := rt.FieldByIndex(field.Index)
		if !sf.IsExported() {
			continue
		}
		tag, ok := field.Tags[tagName]
		if !ok {
			tag = sf.Tag.Get(tagName)
		}
		if tag == "-" {
			continue
		}
		key, opts, _ := strings.Cut(tag, ",")
		if key == "" {
			key = field.Name
		}
		codec, err := b.codecFor(field.ReflectType)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		sc.fields = append(sc.fields, derivedField{
			key:      key,
			index:    field.Index,
			optional: strings.Contains(opts, "optional") || strings.Contains(opts, "omitempty"),
			codec:    codec,
		})
	}
	return sc, nil
}

// scanStruct returns sentinel metadata for a nested struct type.
func scanStruct(rt reflect.Type) *sentinel.Metadata {
	if spec, ok := sentinel.Lookup(rt.String()); ok {
		return &spec
	}

	spec := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        map[string]string{},
			Kind:        sentinel.KindScalar,
		}
		if tag, ok := sf.Tag.Lookup(tagName); ok {
			fm.Tags[tagName] = tag
		}
		spec.Fields = append(spec.Fields, fm)
	}
	return &spec
}

type derivedField struct {
	key      string
	index    []int
	optional bool
	codec    reflectCodec
}

type structCodec struct {
	typ    reflect.Type
	fields []derivedField
}

func (s *structCodec) encode(ctx Context[any], v reflect.Value) Result[any] {
	out := make([]Entry[any], 0, len(s.fields))
	for _, f := range s.fields {
		fv := v.FieldByIndex(f.index)
		if f.optional && fv.IsZero() {
			continue
		}
		node, err := f.codec.encode(ctx, fv).Get()
		if err != nil {
			return Fail[any](newFieldError(f.key, err))
		}
		out = append(out, Entry[any]{Key: f.key, Value: node})
	}
	return Ok(ctx.ToMap(out))
}

func (s *structCodec) decode(ctx Context[any], raw any, dst reflect.Value) error {
	if k := ctx.Kind(raw); k != KindMap {
		return newShapeError(KindMap, k)
	}
	for _, f := range s.fields {
		node, ok := ctx.Get(raw, f.key)
		if !ok || IsNull(ctx, node) {
			if f.optional {
				continue
			}
			return newFieldError(f.key, ErrMissingKey)
		}
		if err := f.codec.decode(ctx, node, dst.FieldByIndex(f.index)); err != nil {
			return newFieldError(f.key, err)
		}
	}
	return nil
}

// typedCodec adapts a Serializer of an exact Go type.
type typedCodec[T any] struct {
	ser Serializer[T]
}

func (c typedCodec[T]) encode(ctx Context[any], v reflect.Value) Result[any] {
	return c.ser.Serialize(ctx, v.Interface().(T))
}

func (c typedCodec[T]) decode(ctx Context[any], raw any, dst reflect.Value) error {
	v, err := c.ser.Deserialize(ctx, raw).Get()
	if err != nil {
		return err
	}
	dst.Set(reflect.ValueOf(&v).Elem())
	return nil
}

// scalarCodec adapts a Serializer through reflect accessors so named types
// (type Level int8) share the serializer of their kind.
type scalarCodec[T any] struct {
	ser Serializer[T]
	get func(reflect.Value) T
	set func(reflect.Value, T)
}

func (c scalarCodec[T]) encode(ctx Context[any], v reflect.Value) Result[any] {
	return c.ser.Serialize(ctx, c.get(v))
}

func (c scalarCodec[T]) decode(ctx Context[any], raw any, dst reflect.Value) error {
	v, err := c.ser.Deserialize(ctx, raw).Get()
	if err != nil {
		return err
	}
	c.set(dst, v)
	return nil
}

type pointerCodec struct {
	elem reflectCodec
}

func (c pointerCodec) encode(ctx Context[any], v reflect.Value) Result[any] {
	if v.IsNil() {
		return Ok(ctx.Null())
	}
	return c.elem.encode(ctx, v.Elem())
}

func (c pointerCodec) decode(ctx Context[any], raw any, dst reflect.Value) error {
	if IsNull(ctx, raw) {
		dst.SetZero()
		return nil
	}
	ptr := reflect.New(dst.Type().Elem())
	if err := c.elem.decode(ctx, raw, ptr.Elem()); err != nil {
		return err
	}
	dst.Set(ptr)
	return nil
}

type sliceCodec struct {
	elem reflectCodec
}

func (c sliceCodec) encode(ctx Context[any], v reflect.Value) Result[any] {
	out := make([]any, v.Len())
	for i := range out {
		node, err := c.elem.encode(ctx, v.Index(i)).Get()
		if err != nil {
			return Failf[any]("element %d: %w", i, err)
		}
		out[i] = node
	}
	return Ok(ctx.ToList(out))
}

func (c sliceCodec) decode(ctx Context[any], raw any, dst reflect.Value) error {
	nodes, err := ctx.AsList(raw).Get()
	if err != nil {
		return err
	}
	out := reflect.MakeSlice(dst.Type(), len(nodes), len(nodes))
	for i, node := range nodes {
		if err := c.elem.decode(ctx, node, out.Index(i)); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	dst.Set(out)
	return nil
}

type mapCodec struct {
	elem reflectCodec
}

func (c mapCodec) encode(ctx Context[any], v reflect.Value) Result[any] {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	out := make([]Entry[any], 0, len(keys))
	for _, k := range keys {
		node, err := c.elem.encode(ctx, v.MapIndex(k)).Get()
		if err != nil {
			return Fail[any](newFieldError(k.String(), err))
		}
		out = append(out, Entry[any]{Key: k.String(), Value: node})
	}
	return Ok(ctx.ToMap(out))
}

func (c mapCodec) decode(ctx Context[any], raw any, dst reflect.Value) error {
	entries, err := Entries(ctx, raw).Get()
	if err != nil {
		return err
	}
	out := reflect.MakeMapWithSize(dst.Type(), len(entries))
	for _, e := range entries {
		elem := reflect.New(dst.Type().Elem()).Elem()
		if err := c.elem.decode(ctx, e.Value, elem); err != nil {
			return newFieldError(e.Key, err)
		}
		out.SetMapIndex(reflect.ValueOf(e.Key).Convert(dst.Type().Key()), elem)
	}
	dst.Set(out)
	return nil
}

func minInt(bits int) int64 {
	return -1 << (bits - 1)
}

func maxInt(bits int) int64 {
	return 1<<(bits-1) - 1
}

func maxUint(bits int) uint64 {
	return 1<<bits - 1
}
