package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/loomhq/loom/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketAPIKeys     = []byte("api_keys")
	bucketKeyHashes   = []byte("api_key_hashes")
	bucketMemberships = []byte("memberships")
)

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "loom.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketAPIKeys,
			bucketKeyHashes,
			bucketMemberships,
		}

		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// API key operations. The hash bucket is a secondary index so validation
// does not scan the whole key bucket on every authenticated request.
func (s *BoltStore) CreateAPIKey(key *types.APIKey) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAPIKeys)
		data, err := marshalAPIKey(key)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(key.ID), data); err != nil {
			return err
		}
		return tx.Bucket(bucketKeyHashes).Put([]byte(key.HashedKey), []byte(key.ID))
	})
}

func (s *BoltStore) GetAPIKey(id string) (*types.APIKey, error) {
	var key *types.APIKey
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAPIKeys)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("api key not found: %s", id)
		}
		var err error
		key, err = unmarshalAPIKey(data)
		return err
	})
	return key, err
}

func (s *BoltStore) GetAPIKeyByHash(hash string) (*types.APIKey, error) {
	var key *types.APIKey
	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketKeyHashes).Get([]byte(hash))
		if id == nil {
			return fmt.Errorf("api key not found")
		}
		data := tx.Bucket(bucketAPIKeys).Get(id)
		if data == nil {
			return fmt.Errorf("api key not found")
		}
		var err error
		key, err = unmarshalAPIKey(data)
		return err
	})
	return key, err
}

func (s *BoltStore) ListAPIKeysByUser(userID string) ([]*types.APIKey, error) {
	var keys []*types.APIKey
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAPIKeys)
		return b.ForEach(func(k, v []byte) error {
			key, err := unmarshalAPIKey(v)
			if err != nil {
				return err
			}
			if key.UserID == userID {
				keys = append(keys, key)
			}
			return nil
		})
	})
	return keys, err
}

func (s *BoltStore) UpdateAPIKey(key *types.APIKey) error {
	return s.CreateAPIKey(key) // Same as create (upsert)
}

func (s *BoltStore) DeleteAPIKey(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAPIKeys)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("api key not found: %s", id)
		}
		key, err := unmarshalAPIKey(data)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketKeyHashes).Delete([]byte(key.HashedKey)); err != nil {
			return err
		}
		return b.Delete([]byte(id))
	})
}

// Membership operations
func (s *BoltStore) PutMembership(m *types.Membership) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMemberships)
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return b.Put(membershipKey(m.UserID, m.WorkspaceID), data)
	})
}

func (s *BoltStore) HasMembership(userID, workspaceID string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketMemberships).Get(membershipKey(userID, workspaceID)) != nil
		return nil
	})
	return found, err
}

func (s *BoltStore) DeleteMembership(userID, workspaceID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMemberships).Delete(membershipKey(userID, workspaceID))
	})
}

func membershipKey(userID, workspaceID string) []byte {
	return []byte(workspaceID + "/" + userID)
}

// storedAPIKey carries the hash, which the wire representation of
// types.APIKey deliberately omits.
type storedAPIKey struct {
	types.APIKey
	HashedKey string `json:"hashed_key"`
}

func marshalAPIKey(key *types.APIKey) ([]byte, error) {
	return json.Marshal(storedAPIKey{APIKey: *key, HashedKey: key.HashedKey})
}

func unmarshalAPIKey(data []byte) (*types.APIKey, error) {
	var stored storedAPIKey
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	key := stored.APIKey
	key.HashedKey = stored.HashedKey
	return &key, nil
}
