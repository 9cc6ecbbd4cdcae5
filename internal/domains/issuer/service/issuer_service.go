package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"badgeforge-backend/internal/audit"
	"badgeforge-backend/internal/domains/issuer"
	"badgeforge-backend/internal/domains/issuer/model"
	"badgeforge-backend/internal/shared/utils"
)

// UserFinder resolves account emails to user IDs for staff management
// and answers issuer-creation approval checks. Implemented by the user
// repository.
type UserFinder interface {
	FindIDByEmail(ctx context.Context, email string) (uuid.UUID, error)
	CanCreateIssuers(ctx context.Context, userID uuid.UUID) (bool, error)
}

// ImageStore stores issuer logo images.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type issuerService struct {
	repo         issuer.Repository
	users        UserFinder
	storage      ImageStore
	auditor      audit.Emitter
	approvedOnly bool
}

func NewIssuerService(repo issuer.Repository, users UserFinder, storage ImageStore, auditor audit.Emitter, approvedOnly bool) issuer.Service {
	return &issuerService{
		repo:         repo,
		users:        users,
		storage:      storage,
		auditor:      auditor,
		approvedOnly: approvedOnly,
	}
}

func (s *issuerService) CreateIssuer(ctx context.Context, callerID uuid.UUID, req *issuer.IssuerCreateRequest) (*issuer.IssuerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if s.approvedOnly {
		allowed, err := s.users.CanCreateIssuers(ctx, callerID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, model.NewIssuerCreationNotAllowed()
		}
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.GenerateSlug(req.Name)
	}

	iss := &model.Issuer{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		URL:         req.URL,
		Email:       req.Email,
		CreatedBy:   callerID,
	}

	if req.Image != "" {
		data, contentType, err := utils.DecodeDataURI(req.Image)
		if err != nil {
			return nil, model.NewCreateIssuerError(err)
		}
		key := fmt.Sprintf("issuers/%s/logo", iss.ID)
		url, err := s.storage.Upload(ctx, key, data, contentType)
		if err != nil {
			return nil, model.NewCreateIssuerError(err)
		}
		iss.ImageURL = url
	}

	created, err := s.repo.Create(ctx, iss, callerID)
	if err != nil {
		return nil, err
	}

	s.auditor.Emit(ctx, audit.Event{
		ActorID:    callerID,
		Action:     audit.ActionIssuerCreated,
		EntityType: "issuer",
		EntitySlug: created.Slug,
		Payload:    map[string]interface{}{"name": created.Name},
	})

	return issuer.ToResponse(created), nil
}

func (s *issuerService) ListMyIssuers(ctx context.Context, callerID uuid.UUID) ([]*issuer.IssuerResponse, error) {
	issuers, err := s.repo.ListForUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	responses := make([]*issuer.IssuerResponse, 0, len(issuers))
	for _, iss := range issuers {
		responses = append(responses, issuer.ToResponse(iss))
	}
	return responses, nil
}

func (s *issuerService) GetIssuer(ctx context.Context, callerID uuid.UUID, slug string) (*issuer.IssuerResponse, error) {
	iss, err := s.Authorize(ctx, callerID, slug, issuer.ActionRead)
	if err != nil {
		return nil, err
	}
	return issuer.ToResponse(iss), nil
}

// Authorize is the single entry point for permission checks on an
// issuer. The not-found error deliberately covers missing issuers,
// missing roles and denied actions alike.
func (s *issuerService) Authorize(ctx context.Context, callerID uuid.UUID, slug string, action issuer.Action) (*model.Issuer, error) {
	iss, role, err := s.repo.GetBySlugWithRole(ctx, slug, callerID)
	if err != nil {
		return nil, err
	}
	if iss == nil || !issuer.Allows(role, action) {
		return nil, model.NewIssuerNotFound(slug)
	}
	return iss, nil
}

func (s *issuerService) ListStaff(ctx context.Context, callerID uuid.UUID, slug string) ([]*issuer.StaffResponse, error) {
	iss, err := s.Authorize(ctx, callerID, slug, issuer.ActionRead)
	if err != nil {
		return nil, err
	}

	members, err := s.repo.ListStaff(ctx, iss.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]*issuer.StaffResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, issuer.ToStaffResponse(m))
	}
	return responses, nil
}

func (s *issuerService) AddStaff(ctx context.Context, callerID uuid.UUID, slug string, req *issuer.StaffAddRequest) (*issuer.StaffResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	iss, err := s.Authorize(ctx, callerID, slug, issuer.ActionAdminister)
	if err != nil {
		return nil, err
	}

	role := model.Role(req.Role)
	if !role.Valid() {
		return nil, model.NewInvalidRole(req.Role)
	}

	userID, err := s.users.FindIDByEmail(ctx, req.Email)
	if err != nil {
		return nil, model.NewStaffMemberNotFound()
	}

	if err := s.repo.AddStaff(ctx, iss.ID, userID, role); err != nil {
		return nil, err
	}

	return &issuer.StaffResponse{UserID: userID, Email: req.Email, Role: req.Role}, nil
}

func (s *issuerService) RemoveStaff(ctx context.Context, callerID uuid.UUID, slug string, userID uuid.UUID) error {
	iss, err := s.Authorize(ctx, callerID, slug, issuer.ActionAdminister)
	if err != nil {
		return err
	}

	// An issuer must always retain at least one owner.
	members, err := s.repo.ListStaff(ctx, iss.ID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.UserID == userID && m.Role == model.RoleOwner {
			owners, err := s.repo.CountOwners(ctx, iss.ID)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return model.NewLastOwnerRemoval()
			}
		}
	}

	return s.repo.RemoveStaff(ctx, iss.ID, userID)
}
