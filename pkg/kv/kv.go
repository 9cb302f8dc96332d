package kv

import (
	"time"
)

// Store is the narrow contract the bridge needs from a TTL-capable
// key-value backend. Ready reports whether the backend is connected;
// operations against a not-ready store fail immediately instead of
// hanging.
type Store interface {
	Ready() bool
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, bool, error)
	Delete(key string) error
	Keys(prefix string) ([]string, error)
	Close() error
}
