package apikey

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/loomhq/loom/pkg/log"
	"github.com/loomhq/loom/pkg/metrics"
	"github.com/loomhq/loom/pkg/storage"
	"github.com/loomhq/loom/pkg/types"
)

// Prefix makes keys human-recognizable and lets the authenticator reject
// non-key credentials before hashing.
const Prefix = "loom_sk_"

// Service manages API key lifecycle: generation, validation, revocation.
type Service struct {
	store storage.Store
}

// NewService creates a new API key service
func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// Generate creates a new API key for a user. The plaintext key is returned
// exactly once; only its SHA-256 hash is persisted. The key carries 256
// bits of randomness and acts as its own unguessable lookup token, so no
// salt is needed.
func (s *Service) Generate(userID, workspaceID, name string) (string, *types.APIKey, error) {
	if userID == "" || workspaceID == "" {
		return "", nil, fmt.Errorf("user id and workspace id are required")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("failed to generate key material: %w", err)
	}

	plaintext := Prefix + hex.EncodeToString(raw)

	key := &types.APIKey{
		ID:          uuid.New().String(),
		UserID:      userID,
		WorkspaceID: workspaceID,
		Name:        name,
		HashedKey:   Hash(plaintext),
		CreatedAt:   time.Now(),
	}

	if err := s.store.CreateAPIKey(key); err != nil {
		return "", nil, fmt.Errorf("failed to store api key: %w", err)
	}

	return plaintext, key, nil
}

// ValidateByHash looks up a key by its hash. A miss returns an error; the
// caller decides whether that is an authentication failure.
func (s *Service) ValidateByHash(hash string) (*types.APIKey, error) {
	key, err := s.store.GetAPIKeyByHash(hash)
	if err != nil {
		metrics.APIKeyValidationsTotal.WithLabelValues("miss").Inc()
		return nil, err
	}
	metrics.APIKeyValidationsTotal.WithLabelValues("hit").Inc()
	return key, nil
}

// TouchLastUsed records key usage. Best effort: callers run it off the
// authentication critical path and a failure must not fail the request.
func (s *Service) TouchLastUsed(hash string) {
	key, err := s.store.GetAPIKeyByHash(hash)
	if err != nil {
		return
	}
	now := time.Now()
	key.LastUsedAt = &now
	if err := s.store.UpdateAPIKey(key); err != nil {
		logger := log.WithComponent("apikey")
		logger.Warn().Err(err).Str("key_id", key.ID).Msg("failed to record key usage")
	}
}

// ListByUser returns metadata for all keys owned by a user. Hashes are
// cleared so they never leave the service.
func (s *Service) ListByUser(userID string) ([]*types.APIKey, error) {
	keys, err := s.store.ListAPIKeysByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	for _, key := range keys {
		key.HashedKey = ""
	}
	return keys, nil
}

// Revoke deletes a key owned by ownerID. Revoking another user's key
// behaves exactly like revoking a nonexistent id so that existence of
// foreign keys is not leaked.
func (s *Service) Revoke(id, ownerID string) error {
	key, err := s.store.GetAPIKey(id)
	if err != nil || key.UserID != ownerID {
		return fmt.Errorf("api key not found: %s", id)
	}
	return s.store.DeleteAPIKey(id)
}

// Hash computes the one-way lookup hash of a plaintext key.
func Hash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// HasPrefix reports whether a presented credential is shaped like an API key.
func HasPrefix(credential string) bool {
	return strings.HasPrefix(credential, Prefix)
}
