package serde

// MergeMap copies every key of other that value lacks into value and returns
// the merged map. Existing keys are never overwritten. Both nodes must be
// map-shaped; otherwise value is returned unchanged.
func MergeMap[T any](c Context[T], value, other T) T {
	if m, ok := c.(MapMerger[T]); ok {
		return m.MergeMap(value, other)
	}
	if c.Kind(value) != KindMap || c.Kind(other) != KindMap {
		return value
	}
	for _, key := range c.Keys(other) {
		if _, ok := c.Get(value, key); ok {
			continue
		}
		item, _ := c.Get(other, key)
		value = c.Set(value, key, Copy(c, item))
	}
	return value
}

// MergeMapOverwrite copies every key of other into value, replacing values on
// key collision, and returns the merged map.
func MergeMapOverwrite[T any](c Context[T], value, other T) T {
	if m, ok := c.(MapMerger[T]); ok {
		return m.MergeMapOverwrite(value, other)
	}
	if c.Kind(value) != KindMap || c.Kind(other) != KindMap {
		return value
	}
	for _, key := range c.Keys(other) {
		item, _ := c.Get(other, key)
		value = c.Set(value, key, Copy(c, item))
	}
	return value
}

// MergeList returns a list holding the elements of value followed by copies
// of the elements of other. Non-list inputs return value unchanged.
func MergeList[T any](c Context[T], value, other T) T {
	mine, err := c.AsList(value).Get()
	if err != nil {
		return value
	}
	theirs, err := c.AsList(other).Get()
	if err != nil {
		return value
	}
	out := make([]T, 0, len(mine)+len(theirs))
	out = append(out, mine...)
	for _, item := range theirs {
		out = append(out, Copy(c, item))
	}
	return c.ToList(out)
}

// Merge combines value with other, the policy used when applying defaults
// over loaded data:
//
//   - a null value yields a copy of other
//   - two maps are merged with MergeMap
//   - a map other replaces a non-map value
//   - values sharing a shape keep value
//   - anything else yields a copy of other
func Merge[T any](c Context[T], value, other T) T {
	vk, ok := c.Kind(value), c.Kind(other) // value kind, other kind
	switch {
	case vk == KindNull:
		return Copy(c, other)
	case vk == KindMap && ok == KindMap:
		return MergeMap(c, value, other)
	case ok == KindMap:
		return Copy(c, other)
	case vk == ok:
		return value
	}
	return Copy(c, other)
}

// Copy returns a deep, independent copy of v.
func Copy[T any](c Context[T], v T) T {
	if cp, ok := c.(Copier[T]); ok {
		return cp.Copy(v)
	}
	return Convert(c, c, v)
}

// Convert re-encodes a node of from into a node of to by walking its
// semantic shape. Map order is preserved.
//
// Convert panics with a *ConflictError when a map yields the same
// destination key twice: that is a broken context, not bad data.
func Convert[T, O any](from Context[T], to Context[O], v T) O {
	switch from.Kind(v) {
	case KindString:
		return to.ToString(from.AsString(v).MustGet())
	case KindNumber:
		return to.ToNumber(from.AsNumber(v).MustGet())
	case KindBool:
		return to.ToBool(from.AsBool(v).MustGet())
	case KindBlob:
		return to.ToBlob(from.AsBlob(v).MustGet())
	case KindList:
		items := from.AsList(v).MustGet()
		out := make([]O, len(items))
		for i, item := range items {
			out[i] = Convert(from, to, item)
		}
		return to.ToList(out)
	case KindMap:
		keys := from.Keys(v)
		seen := make(map[string]struct{}, len(keys))
		out := make([]Entry[O], 0, len(keys))
		for _, key := range keys {
			if _, dup := seen[key]; dup {
				panic(&ConflictError{Key: key})
			}
			seen[key] = struct{}{}
			item, _ := from.Get(v, key)
			out = append(out, Entry[O]{Key: key, Value: Convert(from, to, item)})
		}
		return to.ToMap(out)
	}
	return to.Null()
}
