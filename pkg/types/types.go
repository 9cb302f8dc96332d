package types

import (
	"time"
)

// Identity is the normalized caller identity produced by authentication.
// Both the session-token path and the API-key path resolve to this shape.
type Identity struct {
	UserID      string
	WorkspaceID string
	AuthMethod  AuthMethod
}

// AuthMethod records which authentication strategy admitted the caller.
type AuthMethod string

const (
	AuthMethodSession AuthMethod = "session"
	AuthMethodAPIKey  AuthMethod = "api_key"
)

// PermissionLevel is the minimum ability a caller needs for a method.
type PermissionLevel string

const (
	PermissionRead  PermissionLevel = "read"
	PermissionWrite PermissionLevel = "write"
	PermissionAdmin PermissionLevel = "admin"
)

// ResourceType identifies an entity type addressable by the dispatcher.
type ResourceType string

const (
	ResourcePage       ResourceType = "page"
	ResourceSpace      ResourceType = "space"
	ResourceWorkspace  ResourceType = "workspace"
	ResourceUser       ResourceType = "user"
	ResourceGroup      ResourceType = "group"
	ResourceAttachment ResourceType = "attachment"
	ResourceComment    ResourceType = "comment"
	ResourceUI         ResourceType = "ui"
)

// OperationType identifies an action performable on a resource.
type OperationType string

const (
	OperationCreate       OperationType = "create"
	OperationRead         OperationType = "read"
	OperationUpdate       OperationType = "update"
	OperationDelete       OperationType = "delete"
	OperationMove         OperationType = "move"
	OperationAddMember    OperationType = "add_member"
	OperationRemoveMember OperationType = "remove_member"
	OperationNavigate     OperationType = "navigate"
)

// APIKey is a long-lived machine credential bound to one user and workspace.
// Only the one-way hash of the key material is stored; the plaintext is
// returned exactly once at generation time.
type APIKey struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	WorkspaceID string     `json:"workspace_id"`
	Name        string     `json:"name"`
	HashedKey   string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}

// Membership records that a user belongs to a workspace. It backs the
// stale-key check on API-key authentication.
type Membership struct {
	UserID      string    `json:"user_id"`
	WorkspaceID string    `json:"workspace_id"`
	AddedAt     time.Time `json:"added_at"`
}
