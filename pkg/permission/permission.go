package permission

import (
	"github.com/loomhq/loom/pkg/protocol"
	"github.com/loomhq/loom/pkg/types"
)

// AbilityChecker is the external rule engine's decision interface. The
// gate never sees rule tables, only can/cannot answers.
type AbilityChecker interface {
	Can(caller types.Identity, action string, subject string) bool
}

// Gate maps method names to minimum permission levels and delegates the
// allow/deny decision to an AbilityChecker.
type Gate struct {
	levels  map[string]types.PermissionLevel
	checker AbilityChecker
}

// NewGate creates a gate with the default method table.
func NewGate(checker AbilityChecker) *Gate {
	return &Gate{
		levels:  defaultLevels(),
		checker: checker,
	}
}

// Authorize checks that the caller satisfies the level required for the
// method. A method absent from the table requires admin (fail-closed).
// Denial is a PermissionDenied error, not a generic one, so the error
// taxonomy stays stable for clients.
func (g *Gate) Authorize(method string, caller types.Identity) error {
	level, ok := g.levels[method]
	if !ok {
		level = types.PermissionAdmin
	}

	action, subject := abilityFor(level)
	if !g.checker.Can(caller, action, subject) {
		return protocol.PermissionDenied()
	}
	return nil
}

// RequiredLevel returns the level the gate demands for a method,
// applying the default-admin policy for unknown methods.
func (g *Gate) RequiredLevel(method string) types.PermissionLevel {
	if level, ok := g.levels[method]; ok {
		return level
	}
	return types.PermissionAdmin
}

// Known reports whether a method carries an explicit entry in the
// permission table.
func (g *Gate) Known(method string) bool {
	_, ok := g.levels[method]
	return ok
}

// abilityFor derives the (action, subject) pair handed to the checker
// from the required level. The gate holds no rule logic beyond this.
func abilityFor(level types.PermissionLevel) (string, string) {
	switch level {
	case types.PermissionRead:
		return "read", "workspace"
	case types.PermissionWrite:
		return "write", "workspace"
	default:
		return "manage", "workspace"
	}
}

func defaultLevels() map[string]types.PermissionLevel {
	return map[string]types.PermissionLevel{
		// Pages
		"page.create": types.PermissionWrite,
		"page.get":    types.PermissionRead,
		"page.list":   types.PermissionRead,
		"page.update": types.PermissionWrite,
		"page.delete": types.PermissionWrite,
		"page.move":   types.PermissionWrite,

		// Spaces
		"space.create":        types.PermissionAdmin,
		"space.get":           types.PermissionRead,
		"space.list":          types.PermissionRead,
		"space.update":        types.PermissionWrite,
		"space.delete":        types.PermissionAdmin,
		"space.add_member":    types.PermissionAdmin,
		"space.remove_member": types.PermissionAdmin,

		// Workspaces
		"workspace.get":           types.PermissionRead,
		"workspace.update":        types.PermissionAdmin,
		"workspace.add_member":    types.PermissionAdmin,
		"workspace.remove_member": types.PermissionAdmin,

		// Users and groups
		"user.get":            types.PermissionRead,
		"user.list":           types.PermissionRead,
		"group.create":        types.PermissionAdmin,
		"group.get":           types.PermissionRead,
		"group.list":          types.PermissionRead,
		"group.update":        types.PermissionAdmin,
		"group.delete":        types.PermissionAdmin,
		"group.add_member":    types.PermissionAdmin,
		"group.remove_member": types.PermissionAdmin,

		// Attachments and comments
		"attachment.create": types.PermissionWrite,
		"attachment.get":    types.PermissionRead,
		"attachment.delete": types.PermissionWrite,
		"comment.create":    types.PermissionWrite,
		"comment.get":       types.PermissionRead,
		"comment.list":      types.PermissionRead,
		"comment.update":    types.PermissionWrite,
		"comment.delete":    types.PermissionWrite,

		// UI signalling
		"ui.navigate": types.PermissionRead,

		// API keys
		"apikey.create": types.PermissionAdmin,
		"apikey.list":   types.PermissionRead,
		"apikey.revoke": types.PermissionRead,

		// Session context
		"context.get":    types.PermissionRead,
		"context.set":    types.PermissionRead,
		"context.delete": types.PermissionRead,
		"context.list":   types.PermissionRead,
		"context.clear":  types.PermissionRead,
	}
}
