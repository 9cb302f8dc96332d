package auth

import (
	"github.com/loomhq/loom/pkg/storage"
)

// StoreDirectory backs the Directory interface with the bridge's own
// membership bucket, for deployments that have no external directory.
type StoreDirectory struct {
	store storage.Store
}

// NewStoreDirectory creates a store-backed directory.
func NewStoreDirectory(store storage.Store) *StoreDirectory {
	return &StoreDirectory{store: store}
}

func (d *StoreDirectory) IsMember(userID, workspaceID string) (bool, error) {
	return d.store.HasMembership(userID, workspaceID)
}
