package issuer

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"badgeforge-backend/internal/domains/issuer/model"
	"badgeforge-backend/internal/shared/utils"
)

// IssuerCreateRequest defines a new issuer organization.
// The creating user becomes its owner.
type IssuerCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Email       string `json:"email" binding:"required"`
	Image       string `json:"image"` // data URI, optional
}

func (r IssuerCreateRequest) Validate() error {
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
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.URL, validation.When(r.URL != "", is.URL)),
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
		),
	)
}

// StaffAddRequest adds a role-holder to an issuer by email.
type StaffAddRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

func (r StaffAddRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Role,
			validation.Required,
			validation.In("owner", "editor", "staff").Error("role must be owner, editor or staff"),
		),
	)
}

// IssuerResponse is the API representation of an issuer.
type IssuerResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Email       string    `json:"email"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToResponse(i *model.Issuer) *IssuerResponse {
	return &IssuerResponse{
		ID:          i.ID,
		Name:        i.Name,
		Slug:        i.Slug,
		Description: i.Description,
		URL:         i.URL,
		Email:       i.Email,
		ImageURL:    i.ImageURL,
		CreatedAt:   i.CreatedAt,
	}
}

// StaffResponse is the API representation of a role-holder.
type StaffResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

func ToStaffResponse(m *model.StaffMember) *StaffResponse {
	return &StaffResponse{
		UserID: m.UserID,
		Email:  m.Email,
		Role:   string(m.Role),
	}
}

func validateSlugField(value interface{}) error {
	s, _ := value.(string)
	if !utils.IsValidSlug(s) {
		return validation.NewError("validation_slug", "slug must contain only lowercase letters, numbers, and hyphens")
	}
	return nil
}
