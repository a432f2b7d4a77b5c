// Package kv provides the key-value persistence capability the stores are
// built on, with SQLite and in-memory implementations.
package kv

import (
	"context"
)

// Store is an asynchronous-style key-value capability. Values are
// serialized text.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent;
	// err is reserved for genuine read failures.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}
