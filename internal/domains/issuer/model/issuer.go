package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is a caller's standing on one issuer. Roles are per-issuer,
// never global.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleStaff  Role = "staff"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleStaff:
		return true
	}
	return false
}

// Issuer is an organization that publishes badges.
type Issuer struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	URL         string    `json:"url" db:"url"`
	Email       string    `json:"email" db:"email"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	CreatedBy   uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// StaffMember binds a user to an issuer with a role.
type StaffMember struct {
	IssuerID  uuid.UUID `json:"issuer_id" db:"issuer_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
