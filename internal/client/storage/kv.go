package storage

import "context"

//go:generate moq -out kv_mock.go . KVStorage

// KVStorage defines a small persisted key-value interface for client-side
// counters and flags (view gate state). Callers are expected to bound every
// call with a context timeout: a slow storage layer must not hang the UI.
type KVStorage interface {
	// GetItem returns the stored value for key
	// Returns ErrKeyNotFound if the key does not exist
	GetItem(ctx context.Context, key string) (string, error)

	// SetItem stores value under key, overwriting any previous value
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key; removing a missing key is not an error
	RemoveItem(ctx context.Context, key string) error
}
