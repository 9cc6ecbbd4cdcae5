package issuer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"badgeforge-backend/internal/domains/issuer/model"
)

func TestAllows(t *testing.T) {
	tests := []struct {
		name   string
		role   model.Role
		action Action
		want   bool
	}{
		{"owner can read", model.RoleOwner, ActionRead, true},
		{"owner can issue", model.RoleOwner, ActionIssue, true},
		{"owner can edit", model.RoleOwner, ActionEdit, true},
		{"owner can administer", model.RoleOwner, ActionAdminister, true},

		{"editor can read", model.RoleEditor, ActionRead, true},
		{"editor can issue", model.RoleEditor, ActionIssue, true},
		{"editor can edit", model.RoleEditor, ActionEdit, true},
		{"editor cannot administer", model.RoleEditor, ActionAdminister, false},

		{"staff can read", model.RoleStaff, ActionRead, true},
		{"staff can issue", model.RoleStaff, ActionIssue, true},
		{"staff cannot edit", model.RoleStaff, ActionEdit, false},
		{"staff cannot administer", model.RoleStaff, ActionAdminister, false},

		{"no role denies everything", model.Role(""), ActionRead, false},
		{"unknown role denies everything", model.Role("viewer"), ActionIssue, false},
		{"unknown action denies everything", model.RoleOwner, Action("publish"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allows(tt.role, tt.action))
		})
	}
}
