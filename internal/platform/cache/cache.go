package cache

import "context"

// Store is a bounded key/value memo. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get reports ok=false on a miss or an expired entry.
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte) error
	// Name labels the backend in logs and metrics.
	Name() string
	Close() error
}
