package badgeclass

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"badgeforge-backend/internal/domains/badgeclass/model"
	"badgeforge-backend/internal/shared/utils"
)

func validateSlugField(value interface{}) error {
	s, _ := value.(string)
	if !utils.IsValidSlug(s) {
		return validation.NewError("validation_slug", "slug must contain only lowercase letters, numbers, and hyphens")
	}
	return nil
}

// BadgeClassCreateRequest carries a new badge definition. The image
// arrives either as a multipart file (handled by the HTTP layer) or as
// a base64 data URI in the Image field.
type BadgeClassCreateRequest struct {
	Name        string   `json:"name" form:"name"`
	Slug        string   `json:"slug" form:"slug"` // optional, derived from name when empty
	Description string   `json:"description" form:"description"`
	Criteria    string   `json:"criteria" form:"criteria"`
	Tags        []string `json:"tags" form:"tags"`
	Image       string   `json:"image" form:"image"`
}

func (r BadgeClassCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(2, 255),
		),
		validation.Field(&r.Slug,
			validation.When(r.Slug != "",
				validation.By(validateSlugField),
			),
		),
		validation.Field(&r.Description, validation.Required.Error("description is required")),
		validation.Field(&r.Criteria, validation.Required.Error("criteria is required")),
		validation.Field(&r.Tags, validation.Each(validation.Length(1, 254))),
	)
}

// CriteriaParts splits the criteria field into a URL or free text,
// mirroring how award platforms accept either form in one field.
func (r BadgeClassCreateRequest) CriteriaParts() (url, text string) {
	trimmed := strings.TrimSpace(r.Criteria)
	if err := validation.Validate(trimmed, is.URL); err == nil &&
		(strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://")) {
		return trimmed, ""
	}
	return "", trimmed
}

// BadgeClassUpdateRequest updates a badge definition in place. Existing
// assertions reference the definition, so edits show through on them;
// only their baked images stay as rendered at award time. An empty or
// non-data-URI Image leaves the stored image untouched.
type BadgeClassUpdateRequest struct {
	Name        string   `json:"name" form:"name"`
	Description string   `json:"description" form:"description"`
	Criteria    string   `json:"criteria" form:"criteria"`
	Tags        []string `json:"tags" form:"tags"`
	Image       string   `json:"image" form:"image"`
}

func (r BadgeClassUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(2, 255),
		),
		validation.Field(&r.Description, validation.Required.Error("description is required")),
		validation.Field(&r.Criteria, validation.Required.Error("criteria is required")),
		validation.Field(&r.Tags, validation.Each(validation.Length(1, 254))),
	)
}

func (r BadgeClassUpdateRequest) CriteriaParts() (url, text string) {
	return BadgeClassCreateRequest{Criteria: r.Criteria}.CriteriaParts()
}

type BadgeClassResponse struct {
	ID             uuid.UUID `json:"id"`
	IssuerID       uuid.UUID `json:"issuer_id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	ImageURL       string    `json:"image_url"`
	CriteriaURL    string    `json:"criteria_url,omitempty"`
	CriteriaText   string    `json:"criteria_text,omitempty"`
	Tags           []string  `json:"tags"`
	RecipientCount int64     `json:"recipient_count"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToResponse(bc *model.BadgeClass, recipientCount int64) *BadgeClassResponse {
	tags := bc.Tags
	if tags == nil {
		tags = []string{}
	}
	return &BadgeClassResponse{
		ID:             bc.ID,
		IssuerID:       bc.IssuerID,
		Name:           bc.Name,
		Slug:           bc.Slug,
		Description:    bc.Description,
		ImageURL:       bc.ImageURL,
		CriteriaURL:    bc.CriteriaURL,
		CriteriaText:   bc.CriteriaText,
		Tags:           tags,
		RecipientCount: recipientCount,
		CreatedAt:      bc.CreatedAt,
	}
}
