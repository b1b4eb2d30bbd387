package domain

import "context"

// KV defines the port for the feed's persistence collaborator: a small
// key-value store holding the serialized feed under a fixed key.
// Implementations live in infrastructure/sqlitekv and infrastructure/postgreskv.
type KV interface {
	// Get returns the value stored under key, or (nil, nil) when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key entirely. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying store.
	Close() error
}
