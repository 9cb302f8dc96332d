package permission

import (
	"testing"

	"github.com/loomhq/loom/pkg/protocol"
	"github.com/loomhq/loom/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingChecker records the ability it was asked about.
type recordingChecker struct {
	allow   bool
	action  string
	subject string
}

func (c *recordingChecker) Can(caller types.Identity, action, subject string) bool {
	c.action = action
	c.subject = subject
	return c.allow
}

func TestRequiredLevel(t *testing.T) {
	gate := NewGate(&recordingChecker{allow: true})

	tests := []struct {
		method string
		level  types.PermissionLevel
	}{
		{method: "page.get", level: types.PermissionRead},
		{method: "page.update", level: types.PermissionWrite},
		{method: "space.delete", level: types.PermissionAdmin},
		{method: "apikey.create", level: types.PermissionAdmin},
		// Absent from the table: fail-closed to admin.
		{method: "ghost.summon", level: types.PermissionAdmin},
		{method: "page.frobnicate", level: types.PermissionAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			assert.Equal(t, tt.level, gate.RequiredLevel(tt.method))
		})
	}
}

func TestAuthorizeDelegatesToChecker(t *testing.T) {
	checker := &recordingChecker{allow: true}
	gate := NewGate(checker)

	err := gate.Authorize("page.get", types.Identity{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "read", checker.action)
	assert.Equal(t, "workspace", checker.subject)

	require.NoError(t, gate.Authorize("page.update", types.Identity{UserID: "u1"}))
	assert.Equal(t, "write", checker.action)

	require.NoError(t, gate.Authorize("space.create", types.Identity{UserID: "u1"}))
	assert.Equal(t, "manage", checker.action)
}

func TestAuthorizeDenial(t *testing.T) {
	gate := NewGate(&recordingChecker{allow: false})

	err := gate.Authorize("page.get", types.Identity{UserID: "u1"})
	require.Error(t, err)

	// Denial keeps the error taxonomy stable: it is PermissionDenied,
	// not a generic error.
	rpcErr, ok := err.(*protocol.Error)
	require.True(t, ok)
	assert.Equal(t, protocol.CodePermissionDenied, rpcErr.Code)
}

func TestUnknownMethodRequiresAdmin(t *testing.T) {
	checker := &recordingChecker{allow: false}
	gate := NewGate(checker)

	err := gate.Authorize("ghost.summon", types.Identity{UserID: "u1"})
	require.Error(t, err)
	assert.Equal(t, "manage", checker.action)
}

func TestMemberChecker(t *testing.T) {
	members := membershipMap{"u1/w1": true}
	checker := NewMemberChecker(members, []string{"admin1"})

	caller := types.Identity{UserID: "u1", WorkspaceID: "w1"}
	outsider := types.Identity{UserID: "u2", WorkspaceID: "w1"}
	admin := types.Identity{UserID: "admin1", WorkspaceID: "w1"}

	assert.True(t, checker.Can(caller, "read", "workspace"))
	assert.True(t, checker.Can(caller, "write", "workspace"))
	assert.False(t, checker.Can(caller, "manage", "workspace"))
	assert.False(t, checker.Can(outsider, "read", "workspace"))
	assert.True(t, checker.Can(admin, "manage", "workspace"))
	assert.False(t, checker.Can(caller, "destroy", "workspace"))
}

type membershipMap map[string]bool

func (m membershipMap) IsMember(userID, workspaceID string) (bool, error) {
	return m[userID+"/"+workspaceID], nil
}
