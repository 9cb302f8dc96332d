package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/loomhq/loom/pkg/kv"
)

const keyPrefix = "context:"

// ContextStore is short-lived key-value state scoped to one caller's
// session, used to pass data between otherwise stateless RPC calls.
// Physical keys are "context:{sessionID}:{key}" in the backing store.
type ContextStore struct {
	store kv.Store
}

// NewContextStore wraps a TTL-capable key-value backend.
func NewContextStore(store kv.Store) *ContextStore {
	return &ContextStore{store: store}
}

// Ready reports whether the backing store can serve operations.
func (c *ContextStore) Ready() bool {
	return c.store.Ready()
}

// Set serializes and stores a value with an optional TTL (ttl <= 0 means
// no expiry).
func (c *ContextStore) Set(sessionID, key string, value any, ttl time.Duration) error {
	if sessionID == "" || key == "" {
		return fmt.Errorf("session id and key are required")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize context value: %w", err)
	}
	return c.store.Set(physicalKey(sessionID, key), data, ttl)
}

// Get deserializes a value into out. A missing or expired key returns
// found=false, not an error.
func (c *ContextStore) Get(sessionID, key string, out any) (bool, error) {
	data, found, err := c.store.Get(physicalKey(sessionID, key))
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to deserialize context value: %w", err)
	}
	return true, nil
}

// Delete removes one key.
func (c *ContextStore) Delete(sessionID, key string) error {
	return c.store.Delete(physicalKey(sessionID, key))
}

// List returns the session's active logical keys.
func (c *ContextStore) List(sessionID string) ([]string, error) {
	prefix := keyPrefix + sessionID + ":"
	physical, err := c.store.Keys(prefix)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(physical))
	for _, k := range physical {
		keys = append(keys, strings.TrimPrefix(k, prefix))
	}
	return keys, nil
}

// Clear removes all of the session's keys.
func (c *ContextStore) Clear(sessionID string) error {
	physical, err := c.store.Keys(keyPrefix + sessionID + ":")
	if err != nil {
		return err
	}
	for _, k := range physical {
		if err := c.store.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func physicalKey(sessionID, key string) string {
	return keyPrefix + sessionID + ":" + key
}
