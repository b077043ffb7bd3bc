package ports

import "context"

// KVStore defines the durable key-value storage used for saved sessions.
// Writes are last-writer-wins.
type KVStore interface {
	// Get retrieves the value stored under key.
	// Returns domain.ErrRecordNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys currently stored.
	List(ctx context.Context) ([]string, error)
}
