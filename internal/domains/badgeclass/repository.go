package badgeclass

import (
	"context"

	"github.com/google/uuid"

	"badgeforge-backend/internal/domains/badgeclass/model"
)

type Repository interface {
	Create(ctx context.Context, bc *model.BadgeClass) (*model.BadgeClass, error)
	// GetBySlug returns (nil, nil) when no badge class with the slug
	// exists under the issuer.
	GetBySlug(ctx context.Context, issuerID uuid.UUID, slug string) (*model.BadgeClass, error)
	// GetByID returns (nil, nil) when no badge class exists with the id.
	GetByID(ctx context.Context, id uuid.UUID) (*model.BadgeClass, error)
	ListForIssuer(ctx context.Context, issuerID uuid.UUID) ([]*model.BadgeClass, error)
	// ListForUser returns badge classes under every issuer the user
	// holds a staff role on.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.BadgeClass, error)
	Update(ctx context.Context, bc *model.BadgeClass) (*model.BadgeClass, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Delete precondition lookups.
	RecipientCount(ctx context.Context, id uuid.UUID) (int64, error)
	RecipientCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	PathwayElementCount(ctx context.Context, id uuid.UUID) (int64, error)
	CompletionElements(ctx context.Context, id uuid.UUID) ([]*model.CompletionElement, error)
}
