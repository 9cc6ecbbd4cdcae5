package issuer

import (
	"context"

	"github.com/google/uuid"

	"badgeforge-backend/internal/domains/issuer/model"
)

// Repository is the issuer data access contract.
type Repository interface {
	// Create inserts the issuer and its initial owner staff row in one
	// transaction.
	Create(ctx context.Context, iss *model.Issuer, ownerID uuid.UUID) (*model.Issuer, error)

	// GetBySlug returns the issuer or nil when missing.
	GetBySlug(ctx context.Context, slug string) (*model.Issuer, error)

	// GetByID returns the issuer or nil when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Issuer, error)

	// GetBySlugWithRole returns the issuer together with the caller's
	// role on it. Returns (nil, "", nil) when the issuer is missing or
	// the caller holds no role; the two cases are indistinguishable.
	GetBySlugWithRole(ctx context.Context, slug string, userID uuid.UUID) (*model.Issuer, model.Role, error)

	// ListForUser returns issuers the user holds any role on.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Issuer, error)

	ListStaff(ctx context.Context, issuerID uuid.UUID) ([]*model.StaffMember, error)
	AddStaff(ctx context.Context, issuerID uuid.UUID, userID uuid.UUID, role model.Role) error
	RemoveStaff(ctx context.Context, issuerID uuid.UUID, userID uuid.UUID) error
	CountOwners(ctx context.Context, issuerID uuid.UUID) (int, error)
}
