/*
Package storage persists the bridge's own state in BoltDB.

The bridge stores only what it owns: API keys and workspace
memberships. Workspace content (pages, spaces, comments) lives in the
embedding application and never passes through this package.

# Buckets

	api_keys         key id -> key record (JSON)
	api_key_hashes   SHA-256 hash -> key id
	memberships      workspaceID/userID -> membership record (JSON)

The hash bucket is a secondary index so key validation is a single
point lookup on every authenticated request instead of a scan.
*/
package storage
