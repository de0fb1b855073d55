package serde

// Override interfaces allow a context to bypass the derived, shape-walking
// algorithms. When a context implements one of these interfaces, the package
// functions call the interface method instead of walking the tree through
// the Context readers and writers.
//
// This lets a context whose native tree already knows how to copy or merge
// itself (the canonical Value tree, for one) use that directly.

// Copier bypasses the derived Copy.
type Copier[T any] interface {
	// Copy returns a deep, independent copy of v.
	Copy(v T) T
}

// MapMerger bypasses the derived MergeMap and MergeMapOverwrite.
type MapMerger[T any] interface {
	// MergeMap copies every key of other that value lacks into value.
	MergeMap(value, other T) T

	// MergeMapOverwrite copies every key of other into value, replacing existing ones.
	MergeMapOverwrite(value, other T) T
}

// MetaContext exposes the per-node metadata side table of contexts that keep one.
// Contexts without metadata simply do not implement it.
type MetaContext[T any] interface {
	// MetaProperty returns a metadata property of v.
	MetaProperty(v T, key string) (string, bool)

	// SetMetaProperty sets a metadata property of v and reports whether it was stored.
	SetMetaProperty(v T, key, value string) bool
}
