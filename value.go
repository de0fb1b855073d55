package serde

import (
	"bytes"
	"maps"
)

// Value is a node of the canonical tree.
//
// The variants are *Primitive, *List, *FrozenList, *Section, *FrozenSection
// and *Blob. The absence of a value (null) is represented by a nil Value.
type Value interface {
	// Kind returns the semantic shape of the node.
	Kind() Kind

	// Copy returns a deep, independent, mutable copy of the node.
	Copy() Value

	// Freeze returns a deeply immutable view of the node.
	// Frozen lists and sections answer mutations with mutable copies.
	Freeze() Value

	// MetaProperty returns a metadata property of the node.
	MetaProperty(key string) (string, bool)

	// SetMetaProperty sets a metadata property and reports whether the node accepted it.
	// Frozen nodes refuse metadata writes.
	SetMetaProperty(key, value string) bool
}

// metadata is the per-node side table. It never takes part in equality.
type metadata struct {
	props  map[string]string
	frozen bool
}

func (m *metadata) MetaProperty(key string) (string, bool) {
	v, ok := m.props[key]
	return v, ok
}

func (m *metadata) SetMetaProperty(key, value string) bool {
	if m.frozen {
		return false
	}
	if m.props == nil {
		m.props = make(map[string]string)
	}
	m.props[key] = value
	return true
}

// clone returns a copy of the side table with the given frozen state.
func (m *metadata) clone(frozen bool) metadata {
	return metadata{props: maps.Clone(m.props), frozen: frozen}
}

// Primitive holds exactly one string, number or boolean. It never holds null.
type Primitive struct {
	metadata
	kind Kind
	str  string
	num  Number
	b    bool
}

// StringValue returns a string primitive.
func StringValue(s string) *Primitive {
	return &Primitive{kind: KindString, str: s}
}

// NumberValue returns a numeric primitive.
func NumberValue(n Number) *Primitive {
	return &Primitive{kind: KindNumber, num: n}
}

// IntValue returns an integer primitive.
func IntValue(i int64) *Primitive {
	return NumberValue(NewInt(i))
}

// FloatValue returns a floating primitive.
func FloatValue(f float64) *Primitive {
	return NumberValue(NewFloat(f))
}

// BoolValue returns a boolean primitive.
func BoolValue(b bool) *Primitive {
	return &Primitive{kind: KindBool, b: b}
}

func (p *Primitive) Kind() Kind {
	return p.kind
}

// AsString returns the string payload and whether the primitive holds a string.
func (p *Primitive) AsString() (string, bool) {
	return p.str, p.kind == KindString
}

// AsNumber returns the numeric payload and whether the primitive holds a number.
func (p *Primitive) AsNumber() (Number, bool) {
	return p.num, p.kind == KindNumber
}

// AsBool returns the boolean payload and whether the primitive holds a boolean.
func (p *Primitive) AsBool() (bool, bool) {
	return p.b, p.kind == KindBool
}

func (p *Primitive) Copy() Value {
	cp := *p
	cp.metadata = p.clone(false)
	return &cp
}

func (p *Primitive) Freeze() Value {
	if p.frozen {
		return p
	}
	cp := *p
	cp.metadata = p.clone(true)
	return &cp
}

// Blob holds raw bytes. It is distinct from a string primitive.
type Blob struct {
	metadata
	data []byte
}

// NewBlob returns a blob holding a copy of data.
func NewBlob(data []byte) *Blob {
	return &Blob{data: bytes.Clone(data)}
}

func (b *Blob) Kind() Kind {
	return KindBlob
}

// Bytes returns a copy of the blob contents.
func (b *Blob) Bytes() []byte {
	return bytes.Clone(b.data)
}

// Len returns the number of bytes held.
func (b *Blob) Len() int {
	return len(b.data)
}

func (b *Blob) Copy() Value {
	return &Blob{metadata: b.clone(false), data: bytes.Clone(b.data)}
}

func (b *Blob) Freeze() Value {
	if b.frozen {
		return b
	}
	return &Blob{metadata: b.clone(true), data: bytes.Clone(b.data)}
}

// CopyValue returns a deep copy of v, or nil for a nil value.
func CopyValue(v Value) Value {
	if v == nil {
		return nil
	}
	return v.Copy()
}

// Equal reports whether two trees are equal.
//
// Numbers compare by mathematical value, lists by position, sections by key
// set regardless of order, and blobs by content. Metadata and frozen state
// are ignored.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case *Primitive:
		bv, ok := b.(*Primitive)
		if !ok {
			return false
		}
		switch av.kind {
		case KindString:
			return av.str == bv.str
		case KindBool:
			return av.b == bv.b
		default:
			return av.num.Equal(bv.num)
		}
	case *Blob:
		bv, ok := b.(*Blob)
		return ok && bytes.Equal(av.data, bv.data)
	case Sequence:
		bv, ok := b.(Sequence)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for i := 0; i < av.Len(); i++ {
			if !Equal(av.At(i), bv.At(i)) {
				return false
			}
		}
		return true
	case Mapping:
		bv, ok := b.(Mapping)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, key := range av.Keys() {
			other, ok := bv.Get(key)
			if !ok {
				return false
			}
			mine, _ := av.Get(key)
			if !Equal(mine, other) {
				return false
			}
		}
		return true
	}
	return false
}
