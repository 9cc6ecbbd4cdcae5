package assertion

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"badgeforge-backend/internal/domains/assertion/model"
)

// AssertionCreateRequest awards one badge to one recipient.
type AssertionCreateRequest struct {
	RecipientEmail     string `json:"recipient_email"`
	Narrative          string `json:"narrative"`
	EvidenceURL        string `json:"evidence_url"`
	CreateNotification bool   `json:"create_notification"`
}

func (r AssertionCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RecipientEmail,
			validation.Required.Error("recipient_email is required"),
			is.Email,
		),
		validation.Field(&r.EvidenceURL, is.URL),
	)
}

// BatchAssertionsRequest awards the same badge to several recipients in
// one call. The top-level CreateNotification flag is copied onto every
// item before validation, overriding per-item values.
type BatchAssertionsRequest struct {
	Assertions         []AssertionCreateRequest `json:"assertions"`
	CreateNotification bool                     `json:"create_notification"`
}

func (r BatchAssertionsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Assertions, validation.Required.Error("assertions is required")),
	)
}

// RevokeRequest carries the mandatory reason for a revocation.
type RevokeRequest struct {
	RevocationReason string `json:"revocation_reason"`
}

type AssertionResponse struct {
	ID               uuid.UUID `json:"id"`
	Slug             string    `json:"slug"`
	BadgeClassID     uuid.UUID `json:"badge_class_id"`
	IssuerID         uuid.UUID `json:"issuer_id"`
	RecipientEmail   string    `json:"recipient_email"`
	Narrative        string    `json:"narrative,omitempty"`
	EvidenceURL      string    `json:"evidence_url,omitempty"`
	ImageURL         string    `json:"image_url,omitempty"`
	Revoked          bool      `json:"revoked"`
	RevocationReason string    `json:"revocation_reason,omitempty"`
	IssuedOn         time.Time `json:"issued_on"`
}

func ToResponse(bi *model.BadgeInstance) *AssertionResponse {
	return &AssertionResponse{
		ID:               bi.ID,
		Slug:             bi.Slug,
		BadgeClassID:     bi.BadgeClassID,
		IssuerID:         bi.IssuerID,
		RecipientEmail:   bi.RecipientEmail,
		Narrative:        bi.Narrative,
		EvidenceURL:      bi.EvidenceURL,
		ImageURL:         bi.ImageURL,
		Revoked:          bi.Revoked,
		RevocationReason: bi.RevocationReason,
		IssuedOn:         bi.CreatedAt,
	}
}
