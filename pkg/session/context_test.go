package session

import (
	"testing"
	"time"

	"github.com/loomhq/loom/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ContextStore {
	t.Helper()
	backing := kv.NewMemoryStore()
	t.Cleanup(func() { backing.Close() })
	return NewContextStore(backing)
}

func TestSetGetRoundTrip(t *testing.T) {
	store := newTestStore(t)

	value := map[string]any{"cursor": "p42", "depth": float64(3)}
	require.NoError(t, store.Set("sess1", "state", value, 0))

	var out map[string]any
	found, err := store.Get("sess1", "state", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, value, out)
}

func TestGetMissingIsNotError(t *testing.T) {
	store := newTestStore(t)

	var out any
	found, err := store.Get("sess1", "absent", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTTL(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("sess1", "short", "v", time.Second))

	var out string
	found, err := store.Get("sess1", "short", &out)
	require.NoError(t, err)
	assert.True(t, found)

	time.Sleep(1100 * time.Millisecond)
	found, err = store.Get("sess1", "short", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSessionIsolation(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("sess1", "k", "one", 0))
	require.NoError(t, store.Set("sess2", "k", "two", 0))

	var out string
	found, err := store.Get("sess1", "k", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "one", out)
}

func TestListAndClear(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("sess1", "a", 1, 0))
	require.NoError(t, store.Set("sess1", "b", 2, 0))
	require.NoError(t, store.Set("sess2", "c", 3, 0))

	keys, err := store.List("sess1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)

	require.NoError(t, store.Clear("sess1"))

	keys, err = store.List("sess1")
	require.NoError(t, err)
	assert.Empty(t, keys)

	// Other sessions untouched.
	keys, err = store.List("sess2")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, keys)
}

func TestValidation(t *testing.T) {
	store := newTestStore(t)
	assert.Error(t, store.Set("", "k", "v", 0))
	assert.Error(t, store.Set("sess1", "", "v", 0))
}

func TestNotReady(t *testing.T) {
	backing := kv.NewMemoryStore()
	store := NewContextStore(backing)
	require.NoError(t, backing.Close())

	assert.False(t, store.Ready())
	assert.Error(t, store.Set("sess1", "k", "v", 0))
	_, err := store.List("sess1")
	assert.Error(t, err)
}
