package serde

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry maps type identifiers to serializers.
//
// A registry is built during startup and then sealed: registration fails
// with ErrRegistrySealed afterwards, so lookups see a fixed table. Pass the
// registry to whatever needs it instead of keeping it in a global.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]any
	sealed  bool
}

// NewRegistry returns an empty, unsealed registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]any)}
}

// TypeID returns the identifier RegisterType and LookupType use for T.
func TypeID[T any]() string {
	return reflect.TypeFor[T]().String()
}

// Register stores s under id.
func Register[T any](r *Registry, id string, s Serializer[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: %s", ErrRegistrySealed, id)
	}
	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, id)
	}
	r.entries[id] = s
	return nil
}

// RegisterType stores s under the identifier of T.
func RegisterType[T any](r *Registry, s Serializer[T]) error {
	return Register(r, TypeID[T](), s)
}

// Lookup returns the serializer stored under id when it serializes T.
func Lookup[T any](r *Registry, id string) (Serializer[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.entries[id].(Serializer[T])
	return s, ok
}

// LookupType returns the serializer stored under the identifier of T.
func LookupType[T any](r *Registry) (Serializer[T], bool) {
	return Lookup[T](r, TypeID[T]())
}

// Dispatcher returns a lookup function suitable for Dispatch that resolves
// discriminators against r.
func Dispatcher[V any](r *Registry) func(id string) (Serializer[V], bool) {
	return func(id string) (Serializer[V], bool) {
		return Lookup[V](r, id)
	}
}

// Seal forbids further registration. Returns the registry for chaining.
func (r *Registry) Seal() *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
	return r
}

// Sealed reports whether the registry has been sealed.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
