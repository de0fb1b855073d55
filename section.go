package serde

import "slices"

// Mapping is an ordered map node with unique string keys. It is implemented
// by *Section (mutable) and *FrozenSection (immutable).
//
// Mutating methods follow the same contract as Sequence: continue with the
// returned value.
type Mapping interface {
	Value
	Len() int
	Keys() []string
	Get(key string) (Value, bool)
	Has(key string) bool
	Set(key string, v Value) Mapping
	Remove(key string) Mapping
	Frozen() bool

	// Typed getters report false when the key is absent or holds another shape.
	GetString(key string) (string, bool)
	GetNumber(key string) (Number, bool)
	GetInt(key string) (int64, bool)
	GetBool(key string) (bool, bool)
	GetBlob(key string) ([]byte, bool)
	GetList(key string) (Sequence, bool)
	GetSection(key string) (Mapping, bool)
}

// entries holds the read-only behaviour shared by both section variants.
type entries struct {
	keys   []string
	values []Value
	index  map[string]int
}

// Len returns the number of keys.
func (e *entries) Len() int {
	return len(e.keys)
}

// Keys returns the keys in insertion order.
func (e *entries) Keys() []string {
	return slices.Clone(e.keys)
}

// Get returns the value stored under key.
func (e *entries) Get(key string) (Value, bool) {
	i, ok := e.index[key]
	if !ok {
		return nil, false
	}
	return e.values[i], true
}

// Has reports whether key is present.
func (e *entries) Has(key string) bool {
	_, ok := e.index[key]
	return ok
}

// GetString returns the string stored under key.
func (e *entries) GetString(key string) (string, bool) {
	if p, ok := e.primitive(key); ok {
		return p.AsString()
	}
	return "", false
}

// GetNumber returns the number stored under key.
func (e *entries) GetNumber(key string) (Number, bool) {
	if p, ok := e.primitive(key); ok {
		return p.AsNumber()
	}
	return Number{}, false
}

// GetInt returns the integer stored under key when it converts exactly.
func (e *entries) GetInt(key string) (int64, bool) {
	n, ok := e.GetNumber(key)
	if !ok {
		return 0, false
	}
	return n.Int64()
}

// GetBool returns the boolean stored under key.
func (e *entries) GetBool(key string) (bool, bool) {
	if p, ok := e.primitive(key); ok {
		return p.AsBool()
	}
	return false, false
}

// GetBlob returns the bytes stored under key.
func (e *entries) GetBlob(key string) ([]byte, bool) {
	v, _ := e.Get(key)
	if b, ok := v.(*Blob); ok {
		return b.Bytes(), true
	}
	return nil, false
}

// GetList returns the list stored under key.
func (e *entries) GetList(key string) (Sequence, bool) {
	v, _ := e.Get(key)
	s, ok := v.(Sequence)
	return s, ok
}

// GetSection returns the section stored under key.
func (e *entries) GetSection(key string) (Mapping, bool) {
	v, _ := e.Get(key)
	m, ok := v.(Mapping)
	return m, ok
}

func (e *entries) primitive(key string) (*Primitive, bool) {
	v, _ := e.Get(key)
	p, ok := v.(*Primitive)
	return p, ok
}

func (e *entries) put(key string, v Value) {
	if v == nil {
		e.remove(key)
		return
	}
	if i, ok := e.index[key]; ok {
		e.values[i] = v
		return
	}
	if e.index == nil {
		e.index = make(map[string]int)
	}
	e.index[key] = len(e.keys)
	e.keys = append(e.keys, key)
	e.values = append(e.values, v)
}

func (e *entries) remove(key string) {
	i, ok := e.index[key]
	if !ok {
		return
	}
	e.keys = slices.Delete(e.keys, i, i+1)
	e.values = slices.Delete(e.values, i, i+1)
	delete(e.index, key)
	for j := i; j < len(e.keys); j++ {
		e.index[e.keys[j]] = j
	}
}

func (e *entries) transform(fn func(Value) Value) entries {
	out := entries{
		keys:   slices.Clone(e.keys),
		values: make([]Value, len(e.values)),
		index:  make(map[string]int, len(e.keys)),
	}
	for i, v := range e.values {
		out.values[i] = fn(v)
		out.index[e.keys[i]] = i
	}
	return out
}

// Section is a mutable ordered map. It is not safe for concurrent mutation.
type Section struct {
	metadata
	entries
}

// NewSection returns an empty mutable section.
func NewSection() *Section {
	return &Section{}
}

func (s *Section) Kind() Kind {
	return KindMap
}

// Frozen reports false.
func (s *Section) Frozen() bool {
	return false
}

// Set stores v under key and returns s. Overwriting keeps the key's position;
// a nil v removes the key.
func (s *Section) Set(key string, v Value) Mapping {
	s.put(key, v)
	return s
}

// With stores v under key and returns s for chaining.
func (s *Section) With(key string, v Value) *Section {
	s.put(key, v)
	return s
}

// Remove deletes key and returns s. Remaining keys keep their relative order.
func (s *Section) Remove(key string) Mapping {
	s.remove(key)
	return s
}

// GetOrCreateSection returns the mutable section stored under key, creating
// it when the key is absent or holds another shape. A frozen section under
// key is replaced by a mutable copy.
func (s *Section) GetOrCreateSection(key string) *Section {
	v, _ := s.Get(key)
	switch child := v.(type) {
	case *Section:
		return child
	case *FrozenSection:
		cp := child.Copy().(*Section)
		s.put(key, cp)
		return cp
	}
	child := NewSection()
	s.put(key, child)
	return child
}

// Fill copies every key of other that s lacks. Sections present on both
// sides are filled recursively. Existing values are never overwritten.
func (s *Section) Fill(other Mapping) *Section {
	for _, key := range other.Keys() {
		ov, _ := other.Get(key)
		mine, ok := s.Get(key)
		if !ok {
			s.put(key, CopyValue(ov))
			continue
		}
		if om, ok := ov.(Mapping); ok {
			if _, ok := mine.(Mapping); ok {
				s.GetOrCreateSection(key).Fill(om)
			}
		}
	}
	return s
}

// FillOverwrite copies every key of other into s. On a collision the value
// of other replaces the existing one whole, sections included.
func (s *Section) FillOverwrite(other Mapping) *Section {
	for _, key := range other.Keys() {
		ov, _ := other.Get(key)
		s.put(key, CopyValue(ov))
	}
	return s
}

func (s *Section) Copy() Value {
	return &Section{metadata: s.clone(false), entries: s.transform(CopyValue)}
}

func (s *Section) Freeze() Value {
	return &FrozenSection{metadata: s.clone(true), entries: s.transform(FreezeValue)}
}

// FrozenSection is an immutable ordered map, safe to share between goroutines.
type FrozenSection struct {
	metadata
	entries
}

func (s *FrozenSection) Kind() Kind {
	return KindMap
}

// Frozen reports true.
func (s *FrozenSection) Frozen() bool {
	return true
}

// Set returns a mutable copy with v stored under key.
func (s *FrozenSection) Set(key string, v Value) Mapping {
	return s.mutable().Set(key, v)
}

// Remove returns a mutable copy without key.
func (s *FrozenSection) Remove(key string) Mapping {
	return s.mutable().Remove(key)
}

func (s *FrozenSection) mutable() *Section {
	return s.Copy().(*Section)
}

func (s *FrozenSection) Copy() Value {
	return &Section{metadata: s.clone(false), entries: s.transform(CopyValue)}
}

func (s *FrozenSection) Freeze() Value {
	return s
}
