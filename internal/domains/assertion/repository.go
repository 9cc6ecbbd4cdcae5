package assertion

import (
	"context"

	"github.com/google/uuid"

	"badgeforge-backend/internal/domains/assertion/model"
)

type Repository interface {
	Create(ctx context.Context, bi *model.BadgeInstance) (*model.BadgeInstance, error)
	// CreateBatch inserts all instances in a single transaction. Either
	// every row lands or none do.
	CreateBatch(ctx context.Context, instances []*model.BadgeInstance) ([]*model.BadgeInstance, error)
	// GetBySlug returns (nil, nil) when no instance with the slug exists.
	GetBySlug(ctx context.Context, slug string) (*model.BadgeInstance, error)
	// ListForBadgeClass returns non-revoked instances of a badge class.
	ListForBadgeClass(ctx context.Context, badgeClassID uuid.UUID) ([]*model.BadgeInstance, error)
	// ListForIssuer returns non-revoked instances across the issuer,
	// optionally filtered by recipient email.
	ListForIssuer(ctx context.Context, issuerID uuid.UUID, recipient string) ([]*model.BadgeInstance, error)
	// Revoke marks an instance revoked under a row lock, so two
	// concurrent revocations cannot both succeed. Returns the updated
	// instance, or a domain error when it is already revoked.
	Revoke(ctx context.Context, slug, reason string) (*model.BadgeInstance, error)
	// SetImageURL records the baked image location. Used by the worker.
	SetImageURL(ctx context.Context, slug, imageURL string) error
}
