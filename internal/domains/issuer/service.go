package issuer

import (
	"context"

	"github.com/google/uuid"

	"badgeforge-backend/internal/domains/issuer/model"
)

// Service is the issuer business logic contract. Authorize doubles as
// the access guard for child domains (badge classes, assertions).
type Service interface {
	CreateIssuer(ctx context.Context, callerID uuid.UUID, req *IssuerCreateRequest) (*IssuerResponse, error)
	ListMyIssuers(ctx context.Context, callerID uuid.UUID) ([]*IssuerResponse, error)
	GetIssuer(ctx context.Context, callerID uuid.UUID, slug string) (*IssuerResponse, error)

	// Authorize resolves the issuer and checks the caller's role against
	// the policy table. Missing issuer, missing role and denied action
	// all surface as the same not-found error.
	Authorize(ctx context.Context, callerID uuid.UUID, slug string, action Action) (*model.Issuer, error)

	ListStaff(ctx context.Context, callerID uuid.UUID, slug string) ([]*StaffResponse, error)
	AddStaff(ctx context.Context, callerID uuid.UUID, slug string, req *StaffAddRequest) (*StaffResponse, error)
	RemoveStaff(ctx context.Context, callerID uuid.UUID, slug string, userID uuid.UUID) error
}
