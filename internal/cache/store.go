// Package cache provides the bounded key/value stores the repositories put
// in front of their data sources. Two backends exist: an in-process FIFO
// store and a Redis store for deployments that share a cache across
// processes.
package cache

import "context"

// Store is a cache of entities keyed by string. Implementations are safe
// for concurrent use.
type Store[V any] interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) (V, bool, error)
	// Put inserts or replaces a value.
	Put(ctx context.Context, key string, value V) error
	// Remove deletes a key; removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Len returns the number of cached entries.
	Len(ctx context.Context) (int, error)
	// Clear removes all entries.
	Clear(ctx context.Context) error
}
