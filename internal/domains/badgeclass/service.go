package badgeclass

import (
	"context"

	"github.com/google/uuid"
)

type Service interface {
	CreateBadgeClass(ctx context.Context, callerID uuid.UUID, issuerSlug string, req *BadgeClassCreateRequest, imageData []byte) (*BadgeClassResponse, error)
	ListBadgeClasses(ctx context.Context, callerID uuid.UUID, issuerSlug string) ([]*BadgeClassResponse, error)
	// ListVisibleBadgeClasses returns badge classes across every issuer
	// the caller holds a role on.
	ListVisibleBadgeClasses(ctx context.Context, callerID uuid.UUID) ([]*BadgeClassResponse, error)
	GetBadgeClass(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug string) (*BadgeClassResponse, error)
	UpdateBadgeClass(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug string, req *BadgeClassUpdateRequest, imageData []byte) (*BadgeClassResponse, error)
	// DeleteBadgeClass returns the confirmation message on success.
	DeleteBadgeClass(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug string) (string, error)
}
