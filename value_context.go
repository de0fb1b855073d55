package serde

// ValueContext is the Context whose nodes are the canonical Value tree.
// Other formats convert through it.
type ValueContext struct{}

// Canonical is the shared ValueContext.
var Canonical = ValueContext{}

func (ValueContext) Kind(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}

func (c ValueContext) AsString(v Value) Result[string] {
	if p, ok := v.(*Primitive); ok {
		if s, ok := p.AsString(); ok {
			return Ok(s)
		}
	}
	return Fail[string](newShapeError(KindString, c.Kind(v)))
}

func (c ValueContext) AsNumber(v Value) Result[Number] {
	if p, ok := v.(*Primitive); ok {
		if n, ok := p.AsNumber(); ok {
			return Ok(n)
		}
	}
	return Fail[Number](newShapeError(KindNumber, c.Kind(v)))
}

func (c ValueContext) AsBool(v Value) Result[bool] {
	if p, ok := v.(*Primitive); ok {
		if b, ok := p.AsBool(); ok {
			return Ok(b)
		}
	}
	return Fail[bool](newShapeError(KindBool, c.Kind(v)))
}

func (c ValueContext) AsBlob(v Value) Result[[]byte] {
	if b, ok := v.(*Blob); ok {
		return Ok(b.Bytes())
	}
	return Fail[[]byte](newShapeError(KindBlob, c.Kind(v)))
}

func (c ValueContext) AsList(v Value) Result[[]Value] {
	if s, ok := v.(Sequence); ok {
		return Ok(s.Values())
	}
	return Fail[[]Value](newShapeError(KindList, c.Kind(v)))
}

func (ValueContext) Keys(v Value) []string {
	if m, ok := v.(Mapping); ok {
		return m.Keys()
	}
	return nil
}

func (ValueContext) Get(v Value, key string) (Value, bool) {
	if m, ok := v.(Mapping); ok {
		return m.Get(key)
	}
	return nil, false
}

func (ValueContext) Set(v Value, key string, value Value) Value {
	if m, ok := v.(Mapping); ok {
		return m.Set(key, value)
	}
	return v
}

func (ValueContext) ToString(s string) Value {
	return StringValue(s)
}

func (ValueContext) ToNumber(n Number) Value {
	return NumberValue(n)
}

func (ValueContext) ToBool(b bool) Value {
	return BoolValue(b)
}

func (ValueContext) ToBlob(b []byte) Value {
	return NewBlob(b)
}

func (ValueContext) ToList(items []Value) Value {
	return NewList(items...)
}

func (ValueContext) ToMap(entries []Entry[Value]) Value {
	s := NewSection()
	for _, e := range entries {
		s.put(e.Key, e.Value)
	}
	return s
}

func (ValueContext) Null() Value {
	return nil
}

// Copy uses the tree's own deep copy.
func (ValueContext) Copy(v Value) Value {
	return CopyValue(v)
}

// MergeMap fills value from other recursively without overwriting.
func (ValueContext) MergeMap(value, other Value) Value {
	vm, ok := value.(Mapping)
	if !ok {
		return value
	}
	om, ok := other.(Mapping)
	if !ok {
		return value
	}
	return mutableSection(vm).Fill(om)
}

// MergeMapOverwrite copies every key of other into value, replacing existing values whole.
func (ValueContext) MergeMapOverwrite(value, other Value) Value {
	vm, ok := value.(Mapping)
	if !ok {
		return value
	}
	om, ok := other.(Mapping)
	if !ok {
		return value
	}
	return mutableSection(vm).FillOverwrite(om)
}

func (ValueContext) MetaProperty(v Value, key string) (string, bool) {
	if v == nil {
		return "", false
	}
	return v.MetaProperty(key)
}

func (ValueContext) SetMetaProperty(v Value, key, value string) bool {
	if v == nil {
		return false
	}
	return v.SetMetaProperty(key, value)
}

// mutableSection returns m itself when it is a mutable *Section, otherwise a mutable copy.
func mutableSection(m Mapping) *Section {
	if s, ok := m.(*Section); ok {
		return s
	}
	if s, ok := m.Copy().(*Section); ok {
		return s
	}
	s := NewSection()
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		s.put(key, CopyValue(v))
	}
	return s
}
