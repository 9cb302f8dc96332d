package permission

import (
	"github.com/loomhq/loom/pkg/types"
)

// MembershipSource answers whether a user currently belongs to a
// workspace.
type MembershipSource interface {
	IsMember(userID, workspaceID string) (bool, error)
}

// MemberChecker is the default ability checker wired when the embedding
// application supplies no rule engine: workspace members may read and
// write, manage is restricted to a configured admin list.
type MemberChecker struct {
	members MembershipSource
	admins  map[string]bool
}

// NewMemberChecker creates the default checker.
func NewMemberChecker(members MembershipSource, adminUsers []string) *MemberChecker {
	admins := make(map[string]bool, len(adminUsers))
	for _, id := range adminUsers {
		admins[id] = true
	}
	return &MemberChecker{members: members, admins: admins}
}

func (c *MemberChecker) Can(caller types.Identity, action, subject string) bool {
	switch action {
	case "read", "write":
		member, err := c.members.IsMember(caller.UserID, caller.WorkspaceID)
		if err != nil {
			return false
		}
		return member
	case "manage":
		return c.admins[caller.UserID]
	default:
		return false
	}
}
