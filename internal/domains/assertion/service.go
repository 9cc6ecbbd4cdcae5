package assertion

import (
	"context"
	"io"

	"github.com/google/uuid"
)

type Service interface {
	IssueOne(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug string, req *AssertionCreateRequest) (*AssertionResponse, error)
	IssueBatch(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug string, req *BatchAssertionsRequest) ([]*AssertionResponse, error)
	// ImportXLSX issues one assertion per spreadsheet row. All rows
	// succeed together or the import fails as a whole.
	ImportXLSX(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug string, file io.Reader, createNotification bool) ([]*AssertionResponse, error)
	ListForBadgeClass(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug string) ([]*AssertionResponse, error)
	ListForIssuer(ctx context.Context, callerID uuid.UUID, issuerSlug, recipient string) ([]*AssertionResponse, error)
	GetAssertion(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug, assertionSlug string) (*AssertionResponse, error)
	// Revoke returns the confirmation message on success.
	Revoke(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug, assertionSlug string, req *RevokeRequest) (string, error)
}
