package auth

import (
	"context"
	"fmt"

	"github.com/loomhq/loom/pkg/apikey"
	"github.com/loomhq/loom/pkg/types"
)

// Directory answers whether a user currently exists in a workspace. A
// stale API key may reference a deleted user, so key-authenticated
// callers are checked against it before any handler runs.
type Directory interface {
	IsMember(userID, workspaceID string) (bool, error)
}

// APIKeyStrategy authenticates callers presenting a prefixed API key.
type APIKeyStrategy struct {
	keys      *apikey.Service
	directory Directory
}

// NewAPIKeyStrategy creates the API-key strategy.
func NewAPIKeyStrategy(keys *apikey.Service, directory Directory) *APIKeyStrategy {
	return &APIKeyStrategy{keys: keys, directory: directory}
}

func (s *APIKeyStrategy) Name() string { return "api_key" }

func (s *APIKeyStrategy) Authenticate(ctx context.Context, creds Credentials) (types.Identity, bool, error) {
	if creds.APIKey == "" {
		return types.Identity{}, false, nil
	}
	if !apikey.HasPrefix(creds.APIKey) {
		return types.Identity{}, false, fmt.Errorf("malformed api key")
	}

	hash := apikey.Hash(creds.APIKey)
	key, err := s.keys.ValidateByHash(hash)
	if err != nil {
		return types.Identity{}, false, fmt.Errorf("unknown api key")
	}

	member, err := s.directory.IsMember(key.UserID, key.WorkspaceID)
	if err != nil {
		return types.Identity{}, false, fmt.Errorf("failed to check workspace membership: %w", err)
	}
	if !member {
		return types.Identity{}, false, fmt.Errorf("key owner no longer in workspace")
	}

	// Usage bookkeeping is off the critical path; a failed touch never
	// fails the request.
	go s.keys.TouchLastUsed(hash)

	return types.Identity{
		UserID:      key.UserID,
		WorkspaceID: key.WorkspaceID,
		AuthMethod:  types.AuthMethodAPIKey,
	}, true, nil
}
