package model

import (
	"time"

	"github.com/google/uuid"
)

// BadgeInstance is a single badge awarded to a recipient. The badge
// class metadata is referenced, not copied; revocation hides the
// instance from recipient-facing listings but never deletes the row.
type BadgeInstance struct {
	ID               uuid.UUID `json:"id"`
	Slug             string    `json:"slug"`
	BadgeClassID     uuid.UUID `json:"badge_class_id"`
	IssuerID         uuid.UUID `json:"issuer_id"`
	RecipientEmail   string    `json:"recipient_email"`
	Narrative        string    `json:"narrative"`
	EvidenceURL      string    `json:"evidence_url"`
	ImageURL         string    `json:"image_url"`
	Revoked          bool      `json:"revoked"`
	RevocationReason string    `json:"revocation_reason,omitempty"`
	CreatedBy        uuid.UUID `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
