package serde

import "slices"

// Sequence is an ordered list node. It is implemented by *List (mutable) and
// *FrozenList (immutable).
//
// Mutating methods return the sequence holding the result: a mutable list
// changes in place and returns itself, a frozen list returns a new mutable
// copy and stays untouched. Callers always continue with the returned value.
type Sequence interface {
	Value
	Len() int
	At(i int) Value
	Values() []Value
	Contains(v Value) bool
	Append(values ...Value) Sequence
	Put(i int, v Value) Sequence
	Remove(i int) Sequence
	Frozen() bool
}

// items holds the read-only behaviour shared by both list variants.
type items []Value

// Len returns the number of elements.
func (s items) Len() int {
	return len(s)
}

// At returns the element at i, or nil when i is out of range.
func (s items) At(i int) Value {
	if i < 0 || i >= len(s) {
		return nil
	}
	return s[i]
}

// Values returns the elements in order. The slice is a fresh copy.
func (s items) Values() []Value {
	return slices.Clone([]Value(s))
}

// Contains reports whether an element equal to v is present.
func (s items) Contains(v Value) bool {
	for _, item := range s {
		if Equal(item, v) {
			return true
		}
	}
	return false
}

func (s items) deepCopy() items {
	out := make(items, len(s))
	for i, v := range s {
		out[i] = CopyValue(v)
	}
	return out
}

func (s items) deepFreeze() items {
	out := make(items, len(s))
	for i, v := range s {
		out[i] = FreezeValue(v)
	}
	return out
}

// List is a mutable ordered list. It is not safe for concurrent mutation.
type List struct {
	metadata
	items
}

// NewList returns a mutable list holding values.
func NewList(values ...Value) *List {
	return &List{items: slices.Clone(items(values))}
}

func (l *List) Kind() Kind {
	return KindList
}

// Frozen reports false.
func (l *List) Frozen() bool {
	return false
}

// Append adds values at the end and returns l.
func (l *List) Append(values ...Value) Sequence {
	l.items = append(l.items, values...)
	return l
}

// Put replaces the element at i and returns l. Out of range indices are ignored.
func (l *List) Put(i int, v Value) Sequence {
	if i >= 0 && i < len(l.items) {
		l.items[i] = v
	}
	return l
}

// Remove deletes the element at i and returns l. Out of range indices are ignored.
func (l *List) Remove(i int) Sequence {
	if i >= 0 && i < len(l.items) {
		l.items = slices.Delete(l.items, i, i+1)
	}
	return l
}

func (l *List) Copy() Value {
	return &List{metadata: l.clone(false), items: l.deepCopy()}
}

func (l *List) Freeze() Value {
	return &FrozenList{metadata: l.clone(true), items: l.deepFreeze()}
}

// FrozenList is an immutable ordered list, safe to share between goroutines.
type FrozenList struct {
	metadata
	items
}

func (l *FrozenList) Kind() Kind {
	return KindList
}

// Frozen reports true.
func (l *FrozenList) Frozen() bool {
	return true
}

// Append returns a mutable copy with values added at the end.
func (l *FrozenList) Append(values ...Value) Sequence {
	return l.mutable().Append(values...)
}

// Put returns a mutable copy with the element at i replaced.
func (l *FrozenList) Put(i int, v Value) Sequence {
	return l.mutable().Put(i, v)
}

// Remove returns a mutable copy without the element at i.
func (l *FrozenList) Remove(i int) Sequence {
	return l.mutable().Remove(i)
}

func (l *FrozenList) mutable() *List {
	return l.Copy().(*List)
}

func (l *FrozenList) Copy() Value {
	return &List{metadata: l.clone(false), items: l.deepCopy()}
}

func (l *FrozenList) Freeze() Value {
	return l
}

// FreezeValue returns a frozen view of v, or nil for a nil value.
func FreezeValue(v Value) Value {
	if v == nil {
		return nil
	}
	return v.Freeze()
}
