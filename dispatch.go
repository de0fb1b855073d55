package serde

// DispatchSerializer serializes a polymorphic V as a tagged union: a
// discriminator K selects the serializer of the payload.
type DispatchSerializer[K, V any] struct {
	keys   Serializer[K]
	keyOf  func(V) K
	lookup func(K) (Serializer[V], bool)
}

// Dispatch returns a tagged-union serializer.
//
// Serialize writes keyOf(value) with keys, serializes value with the
// serializer lookup returns for it and merges both encodings. Deserialize
// decodes the discriminator from the raw node, then hands the same raw node
// to the selected serializer. A discriminator without a serializer fails
// with a DispatchError.
//
//	shapes := serde.Dispatch(serde.FieldOf(serde.String, "type"), Shape.Type, registry.Get)
func Dispatch[K, V any](keys Serializer[K], keyOf func(V) K, lookup func(K) (Serializer[V], bool)) *DispatchSerializer[K, V] {
	return &DispatchSerializer[K, V]{keys: keys, keyOf: keyOf, lookup: lookup}
}

// DispatchMap is Dispatch with a fixed table of payload serializers.
func DispatchMap[K comparable, V any](keys Serializer[K], keyOf func(V) K, table map[K]Serializer[V]) *DispatchSerializer[K, V] {
	return Dispatch(keys, keyOf, func(k K) (Serializer[V], bool) {
		s, ok := table[k]
		return s, ok
	})
}

func (d *DispatchSerializer[K, V]) Serialize(ctx Context[any], value V) Result[any] {
	k := d.keyOf(value)
	payload, ok := d.lookup(k)
	if !ok {
		return Fail[any](&DispatchError{Key: k})
	}
	return Map(
		Both(d.keys.Serialize(ctx, k), payload.Serialize(ctx, value)),
		func(p Pair[any, any]) any { return Merge(ctx, p.First, p.Second) },
	)
}

func (d *DispatchSerializer[K, V]) Deserialize(ctx Context[any], raw any) Result[V] {
	return FlatMap(d.keys.Deserialize(ctx, raw), func(k K) Result[V] {
		payload, ok := d.lookup(k)
		if !ok {
			return Fail[V](&DispatchError{Key: k})
		}
		return payload.Deserialize(ctx, raw)
	})
}
