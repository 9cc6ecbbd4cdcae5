package model

import (
	"time"

	"github.com/google/uuid"
)

// BadgeClass is a badge definition owned by an issuer. Assertions are
// awarded against a badge class and reference its metadata by id, so
// edits to the definition show through on existing awards.
type BadgeClass struct {
	ID           uuid.UUID `json:"id"`
	IssuerID     uuid.UUID `json:"issuer_id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url"`
	CriteriaURL  string    `json:"criteria_url"`
	CriteriaText string    `json:"criteria_text"`
	Tags         []string  `json:"tags"`
	CreatedBy    uuid.UUID `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CompletionElement is a pathway element that awards this badge on
// completion. Looked up through a cache because pathway checks run on
// every delete.
type CompletionElement struct {
	ElementID uuid.UUID `json:"element_id"`
	Name      string    `json:"name"`
}
