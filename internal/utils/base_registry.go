package utils

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// RegistryValidator checks a key-value pair against the current entries before it is stored
type RegistryValidator[K comparable, V any] func(key K, value V, existing map[K]V) error

// BaseRegistry is a generic, thread-safe name table. Lookups are ordered by key so
// listings and suggestions stay deterministic.
type BaseRegistry[K cmp.Ordered, V any] struct {
	mu        sync.RWMutex
	items     map[K]V
	validator RegistryValidator[K, V]
	name      string
}

// NewBaseRegistry creates an empty registry; name prefixes validation errors
func NewBaseRegistry[K cmp.Ordered, V any](name string) *BaseRegistry[K, V] {
	return &BaseRegistry[K, V]{
		items: make(map[K]V),
		name:  name,
	}
}

// SetValidator sets the check run by Register
func (r *BaseRegistry[K, V]) SetValidator(validator RegistryValidator[K, V]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validator = validator
}

// Register stores value under key once the validator accepts it
func (r *BaseRegistry[K, V]) Register(key K, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.validator != nil {
		if err := r.validator(key, value, r.items); err != nil {
			return fmt.Errorf("%s registry: %w", r.name, err)
		}
	}
	r.items[key] = value
	return nil
}

func (r *BaseRegistry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.items[key]
	return value, ok
}

// Keys returns all keys in ascending order
func (r *BaseRegistry[K, V]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.items))
}

// Values returns all values ordered by their keys
func (r *BaseRegistry[K, V]) Values() []V {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]V, 0, len(r.items))
	for _, k := range slices.Sorted(maps.Keys(r.items)) {
		out = append(out, r.items[k])
	}
	return out
}

// Clone returns an independent registry holding the same items and validator
func (r *BaseRegistry[K, V]) Clone() *BaseRegistry[K, V] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return &BaseRegistry[K, V]{
		items:     maps.Clone(r.items),
		validator: r.validator,
		name:      r.name,
	}
}

// NonEmptyName rejects empty string keys
func NonEmptyName[V any](what string) RegistryValidator[string, V] {
	return func(key string, _ V, _ map[string]V) error {
		if key == "" {
			return fmt.Errorf("%s cannot be empty", what)
		}
		return nil
	}
}

// Unique rejects keys that are already registered
func Unique[K comparable, V any](what string) RegistryValidator[K, V] {
	return func(key K, _ V, existing map[K]V) error {
		if _, ok := existing[key]; ok {
			return fmt.Errorf("%s '%v' is already registered", what, key)
		}
		return nil
	}
}

// AllOf runs validators in order and returns the first failure
func AllOf[K comparable, V any](validators ...RegistryValidator[K, V]) RegistryValidator[K, V] {
	return func(key K, value V, existing map[K]V) error {
		for _, validator := range validators {
			if err := validator(key, value, existing); err != nil {
				return err
			}
		}
		return nil
	}
}
