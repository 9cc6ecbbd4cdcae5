package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"badgeforge-backend/internal/audit"
	"badgeforge-backend/internal/domains/badgeclass"
	"badgeforge-backend/internal/domains/badgeclass/model"
	"badgeforge-backend/internal/domains/issuer"
	"badgeforge-backend/internal/shared"
	"badgeforge-backend/internal/shared/utils"
	"badgeforge-backend/pkg/logger"
)

// ImageStore stores badge images.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ImageProcessor validates and normalizes uploaded badge images.
type ImageProcessor interface {
	ValidateBadgeImage(data []byte) error
	Normalize(data []byte) ([]byte, error)
}

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type badgeClassService struct {
	repo      badgeclass.Repository
	issuers   issuer.Service
	storage   ImageStore
	processor ImageProcessor
	tasks     TaskEnqueuer
	auditor   audit.Emitter
}

func NewBadgeClassService(
	repo badgeclass.Repository,
	issuers issuer.Service,
	storage ImageStore,
	processor ImageProcessor,
	tasks TaskEnqueuer,
	auditor audit.Emitter,
) badgeclass.Service {
	return &badgeClassService{
		repo:      repo,
		issuers:   issuers,
		storage:   storage,
		processor: processor,
		tasks:     tasks,
		auditor:   auditor,
	}
}

func (s *badgeClassService) CreateBadgeClass(ctx context.Context, callerID uuid.UUID, issuerSlug string, req *badgeclass.BadgeClassCreateRequest, imageData []byte) (*badgeclass.BadgeClassResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	iss, err := s.issuers.Authorize(ctx, callerID, issuerSlug, issuer.ActionEdit)
	if err != nil {
		return nil, err
	}

	criteriaURL, criteriaText := req.CriteriaParts()
	if criteriaURL == "" && criteriaText == "" {
		return nil, model.NewMissingCriteria()
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.GenerateSlug(req.Name)
	}

	bc := &model.BadgeClass{
		ID:           uuid.New(),
		IssuerID:     iss.ID,
		Name:         strings.TrimSpace(req.Name),
		Slug:         slug,
		Description:  req.Description,
		CriteriaURL:  criteriaURL,
		CriteriaText: criteriaText,
		Tags:         req.Tags,
		CreatedBy:    callerID,
	}

	imageURL, err := s.storeImage(ctx, bc.ID, imageData, req.Image)
	if err != nil {
		return nil, err
	}
	bc.ImageURL = imageURL

	created, err := s.repo.Create(ctx, bc)
	if err != nil {
		return nil, model.NewCreateBadgeClassError(err)
	}

	s.auditor.Emit(ctx, audit.Event{
		ActorID:    callerID,
		Action:     audit.ActionBadgeClassCreated,
		EntityType: "badge_class",
		EntitySlug: created.Slug,
		Payload:    map[string]interface{}{"issuer": issuerSlug, "name": created.Name},
	})

	return badgeclass.ToResponse(created, 0), nil
}

func (s *badgeClassService) ListBadgeClasses(ctx context.Context, callerID uuid.UUID, issuerSlug string) ([]*badgeclass.BadgeClassResponse, error) {
	iss, err := s.issuers.Authorize(ctx, callerID, issuerSlug, issuer.ActionRead)
	if err != nil {
		return nil, err
	}

	classes, err := s.repo.ListForIssuer(ctx, iss.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(classes))
	for _, bc := range classes {
		ids = append(ids, bc.ID)
	}
	counts, err := s.repo.RecipientCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]*badgeclass.BadgeClassResponse, 0, len(classes))
	for _, bc := range classes {
		responses = append(responses, badgeclass.ToResponse(bc, counts[bc.ID]))
	}
	return responses, nil
}

func (s *badgeClassService) ListVisibleBadgeClasses(ctx context.Context, callerID uuid.UUID) ([]*badgeclass.BadgeClassResponse, error) {
	classes, err := s.repo.ListForUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(classes))
	for _, bc := range classes {
		ids = append(ids, bc.ID)
	}
	counts, err := s.repo.RecipientCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]*badgeclass.BadgeClassResponse, 0, len(classes))
	for _, bc := range classes {
		responses = append(responses, badgeclass.ToResponse(bc, counts[bc.ID]))
	}
	return responses, nil
}

func (s *badgeClassService) GetBadgeClass(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug string) (*badgeclass.BadgeClassResponse, error) {
	bc, err := s.authorizedBadgeClass(ctx, callerID, issuerSlug, badgeSlug, issuer.ActionRead)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.RecipientCount(ctx, bc.ID)
	if err != nil {
		return nil, err
	}
	return badgeclass.ToResponse(bc, count), nil
}

func (s *badgeClassService) UpdateBadgeClass(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug string, req *badgeclass.BadgeClassUpdateRequest, imageData []byte) (*badgeclass.BadgeClassResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	bc, err := s.authorizedBadgeClass(ctx, callerID, issuerSlug, badgeSlug, issuer.ActionEdit)
	if err != nil {
		return nil, err
	}

	criteriaURL, criteriaText := req.CriteriaParts()
	if criteriaURL == "" && criteriaText == "" {
		return nil, model.NewMissingCriteria()
	}

	bc.Name = strings.TrimSpace(req.Name)
	bc.Description = req.Description
	bc.CriteriaURL = criteriaURL
	bc.CriteriaText = criteriaText
	bc.Tags = req.Tags

	// A new image only replaces the stored one when it arrives as an
	// upload or a data URI. Anything else (an echoed-back URL, an
	// empty field) keeps the existing image.
	if imageData != nil || utils.IsDataURI(req.Image) {
		imageURL, err := s.storeImage(ctx, bc.ID, imageData, req.Image)
		if err != nil {
			return nil, err
		}
		bc.ImageURL = imageURL
	}

	updated, err := s.repo.Update(ctx, bc)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.RecipientCount(ctx, updated.ID)
	if err != nil {
		return nil, err
	}
	return badgeclass.ToResponse(updated, count), nil
}

func (s *badgeClassService) DeleteBadgeClass(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug string) (string, error) {
	bc, err := s.authorizedBadgeClass(ctx, callerID, issuerSlug, badgeSlug, issuer.ActionEdit)
	if err != nil {
		return "", err
	}

	recipients, err := s.repo.RecipientCount(ctx, bc.ID)
	if err != nil {
		return "", err
	}
	if recipients > 0 {
		return "", model.NewBadgeAlreadyIssued()
	}

	elements, err := s.repo.PathwayElementCount(ctx, bc.ID)
	if err != nil {
		return "", err
	}
	if elements > 0 {
		return "", model.NewBadgeUsedAsRequirement()
	}

	completions, err := s.repo.CompletionElements(ctx, bc.ID)
	if err != nil {
		return "", err
	}
	if len(completions) > 0 {
		return "", model.NewBadgeUsedAsCompletion()
	}

	snapshot := map[string]interface{}{
		"issuer":      issuerSlug,
		"name":        bc.Name,
		"description": bc.Description,
		"image_url":   bc.ImageURL,
	}

	if err := s.repo.Delete(ctx, bc.ID); err != nil {
		return "", err
	}

	s.enqueueImageCleanup(bc.ID)

	s.auditor.Emit(ctx, audit.Event{
		ActorID:    callerID,
		Action:     audit.ActionBadgeClassDeleted,
		EntityType: "badge_class",
		EntitySlug: badgeSlug,
		Payload:    snapshot,
	})

	return fmt.Sprintf("Badge %s has been deleted.", badgeSlug), nil
}

// authorizedBadgeClass resolves the issuer with the given action, then
// the badge class under it.
func (s *badgeClassService) authorizedBadgeClass(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug string, action issuer.Action) (*model.BadgeClass, error) {
	iss, err := s.issuers.Authorize(ctx, callerID, issuerSlug, action)
	if err != nil {
		return nil, err
	}

	bc, err := s.repo.GetBySlug(ctx, iss.ID, badgeSlug)
	if err != nil {
		return nil, err
	}
	if bc == nil {
		return nil, model.NewBadgeClassNotFound(badgeSlug)
	}
	return bc, nil
}

// storeImage validates, normalizes and uploads a badge image from
// either raw upload bytes or a data URI field.
func (s *badgeClassService) storeImage(ctx context.Context, badgeClassID uuid.UUID, imageData []byte, imageField string) (string, error) {
	data := imageData
	if data == nil {
		if !utils.IsDataURI(imageField) {
			return "", model.NewInvalidImage(fmt.Errorf("image is required"))
		}
		decoded, _, err := utils.DecodeDataURI(imageField)
		if err != nil {
			return "", model.NewInvalidImage(err)
		}
		data = decoded
	}

	if err := s.processor.ValidateBadgeImage(data); err != nil {
		return "", model.NewInvalidImage(err)
	}

	normalized, err := s.processor.Normalize(data)
	if err != nil {
		return "", model.NewInvalidImage(err)
	}

	key := fmt.Sprintf("badgeclasses/%s/image.png", badgeClassID)
	url, err := s.storage.Upload(ctx, key, normalized, "image/png")
	if err != nil {
		return "", fmt.Errorf("failed to store badge image: %w", err)
	}
	return url, nil
}

func (s *badgeClassService) enqueueImageCleanup(badgeClassID uuid.UUID) {
	payload, err := json.Marshal(shared.DeleteBadgeImagesPayload{
		Prefix: fmt.Sprintf("badgeclasses/%s/", badgeClassID),
	})
	if err != nil {
		return
	}

	task := asynq.NewTask(shared.TypeDeleteBadgeImages, payload)
	if _, err := s.tasks.Enqueue(task, asynq.Queue(shared.QueueLow), asynq.MaxRetry(3)); err != nil {
		logger.Error("Failed to enqueue badge image cleanup", err)
	}
}
