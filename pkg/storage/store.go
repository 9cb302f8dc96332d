package storage

import (
	"github.com/loomhq/loom/pkg/types"
)

// Store defines the interface for bridge state storage
// This will be implemented by BoltDB-backed storage
type Store interface {
	// API keys
	CreateAPIKey(key *types.APIKey) error
	GetAPIKey(id string) (*types.APIKey, error)
	GetAPIKeyByHash(hash string) (*types.APIKey, error)
	ListAPIKeysByUser(userID string) ([]*types.APIKey, error)
	UpdateAPIKey(key *types.APIKey) error
	DeleteAPIKey(id string) error

	// Workspace membership
	PutMembership(m *types.Membership) error
	HasMembership(userID, workspaceID string) (bool, error)
	DeleteMembership(userID, workspaceID string) error

	// Utility
	Close() error
}
