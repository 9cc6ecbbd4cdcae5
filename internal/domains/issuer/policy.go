package issuer

import "badgeforge-backend/internal/domains/issuer/model"

// Action is a capability checked against a caller's issuer role.
type Action string

const (
	// ActionRead covers listing and viewing badge classes and assertions.
	ActionRead Action = "read"
	// ActionIssue covers creating assertions. Narrower than edit:
	// staff may issue existing badges but not define or change them.
	ActionIssue Action = "issue"
	// ActionEdit covers creating, updating and deleting badge classes,
	// and revoking assertions.
	ActionEdit Action = "edit"
	// ActionAdminister covers staff management on the issuer itself.
	ActionAdminister Action = "administer"
)

// policy is the role/action capability table, evaluated once per
// request. A missing entry means deny.
var policy = map[Action]map[model.Role]bool{
	ActionRead: {
		model.RoleOwner:  true,
		model.RoleEditor: true,
		model.RoleStaff:  true,
	},
	ActionIssue: {
		model.RoleOwner:  true,
		model.RoleEditor: true,
		model.RoleStaff:  true,
	},
	ActionEdit: {
		model.RoleOwner:  true,
		model.RoleEditor: true,
	},
	ActionAdminister: {
		model.RoleOwner: true,
	},
}

// Allows reports whether a role grants an action.
func Allows(role model.Role, action Action) bool {
	return policy[action][role]
}
