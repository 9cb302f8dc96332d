package apikey

import (
	"os"
	"strings"
	"testing"

	"github.com/loomhq/loom/pkg/log"
	"github.com/loomhq/loom/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	log.Init(log.Config{Level: log.ErrorLevel, Output: os.Stderr})

	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewService(store)
}

func TestGenerate(t *testing.T) {
	svc := newTestService(t)

	plaintext, key, err := svc.Generate("u1", "w1", "ci-bot")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(plaintext, Prefix))
	// Prefix plus 256 bits of randomness, hex-encoded.
	assert.Len(t, plaintext, len(Prefix)+64)

	assert.NotEmpty(t, key.ID)
	assert.Equal(t, "u1", key.UserID)
	assert.Equal(t, "w1", key.WorkspaceID)
	assert.Equal(t, "ci-bot", key.Name)
	assert.Equal(t, Hash(plaintext), key.HashedKey)
	assert.NotEqual(t, plaintext, key.HashedKey)
	assert.Nil(t, key.LastUsedAt)
}

func TestGenerateRequiresOwner(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.Generate("", "w1", "x")
	assert.Error(t, err)
	_, _, err = svc.Generate("u1", "", "x")
	assert.Error(t, err)
}

func TestValidateByHash(t *testing.T) {
	svc := newTestService(t)

	plaintext, created, err := svc.Generate("u1", "w1", "bot")
	require.NoError(t, err)

	key, err := svc.ValidateByHash(Hash(plaintext))
	require.NoError(t, err)
	assert.Equal(t, created.ID, key.ID)
	assert.Equal(t, "u1", key.UserID)
	assert.Equal(t, "w1", key.WorkspaceID)

	_, err = svc.ValidateByHash(Hash("loom_sk_bogus"))
	assert.Error(t, err)
}

func TestTouchLastUsed(t *testing.T) {
	svc := newTestService(t)

	plaintext, _, err := svc.Generate("u1", "w1", "bot")
	require.NoError(t, err)

	hash := Hash(plaintext)
	svc.TouchLastUsed(hash)

	key, err := svc.ValidateByHash(hash)
	require.NoError(t, err)
	require.NotNil(t, key.LastUsedAt)
	assert.False(t, key.LastUsedAt.IsZero())
}

func TestRevoke(t *testing.T) {
	svc := newTestService(t)

	plaintext, key, err := svc.Generate("u1", "w1", "bot")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(key.ID, "u1"))

	// A revoked key fails subsequent validation.
	_, err = svc.ValidateByHash(Hash(plaintext))
	assert.Error(t, err)
}

func TestRevokeNonOwnerIndistinguishable(t *testing.T) {
	svc := newTestService(t)

	_, key, err := svc.Generate("u1", "w1", "bot")
	require.NoError(t, err)

	// Revoking another user's key behaves exactly like revoking a
	// nonexistent id, so foreign key existence is not leaked.
	foreignErr := svc.Revoke(key.ID, "u2")
	missingErr := svc.Revoke("no-such-id", "u2")
	require.Error(t, foreignErr)
	require.Error(t, missingErr)

	foreign := strings.Replace(foreignErr.Error(), key.ID, "ID", 1)
	missing := strings.Replace(missingErr.Error(), "no-such-id", "ID", 1)
	assert.Equal(t, foreign, missing)

	// The key is still valid for its owner.
	keys, err := svc.ListByUser("u1")
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestListByUser(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.Generate("u1", "w1", "first")
	require.NoError(t, err)
	_, _, err = svc.Generate("u1", "w1", "second")
	require.NoError(t, err)
	_, _, err = svc.Generate("u2", "w1", "other")
	require.NoError(t, err)

	keys, err := svc.ListByUser("u1")
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	for _, key := range keys {
		assert.Equal(t, "u1", key.UserID)
		// Hashes never leave the service.
		assert.Empty(t, key.HashedKey)
	}
}
