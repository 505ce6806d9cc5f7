package cache

import (
	"context"
	"sync"
)

// DefaultCapacity is the per-cache entry bound used when none is given.
const DefaultCapacity = 512

// Memory is an in-process Store with FIFO eviction: inserting a new key
// into a full cache evicts the oldest inserted entry first. Replacing an
// existing key keeps its insertion position.
type Memory[V any] struct {
	mu       sync.RWMutex
	capacity int
	entries  map[string]V
	order    []string // insertion order, no duplicates
	onEvict  func(key string, value V)
}

// MemoryOption configures a Memory store.
type MemoryOption[V any] func(*Memory[V])

// WithOnEvict registers a callback fired for every capacity eviction. The
// callback runs with the store lock held and must not call back into the
// same store.
func WithOnEvict[V any](fn func(key string, value V)) MemoryOption[V] {
	return func(m *Memory[V]) { m.onEvict = fn }
}

// NewMemory creates an in-process store holding at most capacity entries.
// A non-positive capacity falls back to DefaultCapacity.
func NewMemory[V any](capacity int, opts ...MemoryOption[V]) *Memory[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	m := &Memory[V]{
		capacity: capacity,
		entries:  make(map[string]V),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the cached value for key, if present.
func (m *Memory[V]) Get(_ context.Context, key string) (V, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	return value, ok, nil
}

// Put inserts or replaces a value, evicting the oldest entry when the
// store is full.
func (m *Memory[V]) Put(_ context.Context, key string, value V) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; exists {
		m.entries[key] = value
		return nil
	}

	if len(m.entries) >= m.capacity {
		oldest := m.order[0]
		m.order = m.order[1:]
		evicted := m.entries[oldest]
		delete(m.entries, oldest)
		if m.onEvict != nil {
			m.onEvict(oldest, evicted)
		}
	}

	m.entries[key] = value
	m.order = append(m.order, key)
	return nil
}

// Remove deletes a key.
func (m *Memory[V]) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists {
		return nil
	}
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of cached entries.
func (m *Memory[V]) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

// Clear removes all entries.
func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]V)
	m.order = nil
	return nil
}
