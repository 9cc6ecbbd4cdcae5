package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/xid"
	"github.com/xuri/excelize/v2"

	"badgeforge-backend/internal/audit"
	"badgeforge-backend/internal/domains/assertion"
	"badgeforge-backend/internal/domains/assertion/model"
	"badgeforge-backend/internal/domains/badgeclass"
	bcmodel "badgeforge-backend/internal/domains/badgeclass/model"
	"badgeforge-backend/internal/domains/issuer"
	issuermodel "badgeforge-backend/internal/domains/issuer/model"
	"badgeforge-backend/internal/shared"
	"badgeforge-backend/pkg/logger"
)

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type assertionService struct {
	repo    assertion.Repository
	issuers issuer.Service
	badges  badgeclass.Repository
	tasks   TaskEnqueuer
	tracker assertion.AwardTracker
	auditor audit.Emitter
}

func NewAssertionService(
	repo assertion.Repository,
	issuers issuer.Service,
	badges badgeclass.Repository,
	tasks TaskEnqueuer,
	tracker assertion.AwardTracker,
	auditor audit.Emitter,
) assertion.Service {
	if tracker == nil {
		tracker = assertion.NopAwardTracker()
	}
	return &assertionService{
		repo:    repo,
		issuers: issuers,
		badges:  badges,
		tasks:   tasks,
		tracker: tracker,
		auditor: auditor,
	}
}

func (s *assertionService) IssueOne(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug string, req *assertion.AssertionCreateRequest) (*assertion.AssertionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	bc, err := s.issuableBadgeClass(ctx, callerID, issuerSlug, badgeSlug)
	if err != nil {
		return nil, err
	}

	bi := newInstance(bc, callerID, req)
	created, err := s.repo.Create(ctx, bi)
	if err != nil {
		return nil, model.NewCreateAssertionError(err)
	}

	s.afterIssue(ctx, callerID, created, req.CreateNotification)
	return assertion.ToResponse(created), nil
}

func (s *assertionService) IssueBatch(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug string, req *assertion.BatchAssertionsRequest) ([]*assertion.AssertionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(req.Assertions) == 0 {
		return nil, model.NewEmptyBatch()
	}

	bc, err := s.issuableBadgeClass(ctx, callerID, issuerSlug, badgeSlug)
	if err != nil {
		return nil, err
	}

	// The batch-level notification flag overrides per-item values.
	// Validate every item before any row is written.
	instances := make([]*model.BadgeInstance, 0, len(req.Assertions))
	for i := range req.Assertions {
		item := req.Assertions[i]
		item.CreateNotification = req.CreateNotification
		if err := item.Validate(); err != nil {
			return nil, err
		}
		instances = append(instances, newInstance(bc, callerID, &item))
	}

	created, err := s.repo.CreateBatch(ctx, instances)
	if err != nil {
		return nil, model.NewCreateAssertionError(err)
	}

	responses := make([]*assertion.AssertionResponse, 0, len(created))
	for _, bi := range created {
		s.afterIssue(ctx, callerID, bi, req.CreateNotification)
		responses = append(responses, assertion.ToResponse(bi))
	}
	return responses, nil
}

// xlsx imports expect a header row followed by one recipient per row:
// recipient_email, narrative, evidence_url.
func (s *assertionService) ImportXLSX(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug string, file io.Reader, createNotification bool) ([]*assertion.AssertionResponse, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, model.NewImportError(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, model.NewImportError(fmt.Errorf("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, model.NewImportError(err)
	}
	if len(rows) < 2 {
		return nil, model.NewEmptyBatch()
	}

	items := make([]assertion.AssertionCreateRequest, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		item := assertion.AssertionCreateRequest{RecipientEmail: strings.TrimSpace(row[0])}
		if len(row) > 1 {
			item.Narrative = strings.TrimSpace(row[1])
		}
		if len(row) > 2 {
			item.EvidenceURL = strings.TrimSpace(row[2])
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, model.NewEmptyBatch()
	}

	return s.IssueBatch(ctx, callerID, issuerSlug, badgeSlug, &assertion.BatchAssertionsRequest{
		Assertions:         items,
		CreateNotification: createNotification,
	})
}

func (s *assertionService) ListForBadgeClass(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug string) ([]*assertion.AssertionResponse, error) {
	bc, err := s.issuableBadgeClass(ctx, callerID, issuerSlug, badgeSlug)
	if err != nil {
		return nil, err
	}

	instances, err := s.repo.ListForBadgeClass(ctx, bc.ID)
	if err != nil {
		return nil, err
	}
	return toResponses(instances), nil
}

func (s *assertionService) ListForIssuer(ctx context.Context, callerID uuid.UUID, issuerSlug, recipient string) ([]*assertion.AssertionResponse, error) {
	iss, err := s.issuers.Authorize(ctx, callerID, issuerSlug, issuer.ActionRead)
	if err != nil {
		return nil, err
	}

	instances, err := s.repo.ListForIssuer(ctx, iss.ID, recipient)
	if err != nil {
		return nil, err
	}
	return toResponses(instances), nil
}

func (s *assertionService) GetAssertion(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug, assertionSlug string) (*assertion.AssertionResponse, error) {
	bi, err := s.ownedAssertion(ctx, callerID, issuerSlug, badgeSlug, assertionSlug, issuer.ActionRead)
	if err != nil {
		return nil, err
	}
	return assertion.ToResponse(bi), nil
}

func (s *assertionService) Revoke(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug, assertionSlug string, req *assertion.RevokeRequest) (string, error) {
	// The reason is checked before anything is resolved, so a missing
	// reason fails even when the assertion does not exist.
	if req == nil || strings.TrimSpace(req.RevocationReason) == "" {
		return "", model.NewMissingRevocationReason()
	}

	if _, err := s.ownedAssertion(ctx, callerID, issuerSlug, badgeSlug, assertionSlug, issuer.ActionEdit); err != nil {
		return "", err
	}

	revoked, err := s.repo.Revoke(ctx, assertionSlug, strings.TrimSpace(req.RevocationReason))
	if err != nil {
		return "", err
	}

	// Baked image removal and tracker notification are best effort.
	s.enqueueImageCleanup(revoked.Slug)
	if err := s.tracker.AssertionRevoked(ctx, revoked.Slug); err != nil {
		logger.Error("Award tracker revocation hook failed", err)
	}

	s.auditor.Emit(ctx, audit.Event{
		ActorID:    callerID,
		Action:     audit.ActionBadgeAssertionRevoked,
		EntityType: "badge_instance",
		EntitySlug: revoked.Slug,
		Payload: map[string]interface{}{
			"issuer":            issuerSlug,
			"badge_class":       badgeSlug,
			"recipient":         revoked.RecipientEmail,
			"revocation_reason": revoked.RevocationReason,
		},
	})

	return fmt.Sprintf("Assertion %s has been revoked.", revoked.Slug), nil
}

// issuableBadgeClass resolves the badge class with issue permission.
// Every failure mode collapses into the same not-found error.
func (s *assertionService) issuableBadgeClass(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug string) (*bcmodel.BadgeClass, error) {
	iss, err := s.issuers.Authorize(ctx, callerID, issuerSlug, issuer.ActionIssue)
	if err != nil {
		if issuermodel.IsIssuerNotFound(err) {
			return nil, model.NewBadgeNotIssuable()
		}
		return nil, err
	}

	bc, err := s.badges.GetBySlug(ctx, iss.ID, badgeSlug)
	if err != nil {
		return nil, err
	}
	if bc == nil {
		return nil, model.NewBadgeNotIssuable()
	}
	return bc, nil
}

// ownedAssertion resolves an assertion under its issuer and badge
// class with the given action.
func (s *assertionService) ownedAssertion(ctx context.Context, callerID uuid.UUID, issuerSlug, badgeSlug, assertionSlug string, action issuer.Action) (*model.BadgeInstance, error) {
	iss, err := s.issuers.Authorize(ctx, callerID, issuerSlug, action)
	if err != nil {
		if issuermodel.IsIssuerNotFound(err) {
			return nil, model.NewAssertionNotFound()
		}
		return nil, err
	}

	bc, err := s.badges.GetBySlug(ctx, iss.ID, badgeSlug)
	if err != nil {
		return nil, err
	}
	if bc == nil {
		return nil, model.NewAssertionNotFound()
	}

	bi, err := s.repo.GetBySlug(ctx, assertionSlug)
	if err != nil {
		return nil, err
	}
	if bi == nil || bi.BadgeClassID != bc.ID {
		return nil, model.NewAssertionNotFound()
	}
	return bi, nil
}

func toResponses(instances []*model.BadgeInstance) []*assertion.AssertionResponse {
	responses := make([]*assertion.AssertionResponse, 0, len(instances))
	for _, bi := range instances {
		responses = append(responses, assertion.ToResponse(bi))
	}
	return responses
}

func newInstance(bc *bcmodel.BadgeClass, callerID uuid.UUID, req *assertion.AssertionCreateRequest) *model.BadgeInstance {
	return &model.BadgeInstance{
		ID:             uuid.New(),
		Slug:           xid.New().String(),
		BadgeClassID:   bc.ID,
		IssuerID:       bc.IssuerID,
		RecipientEmail: strings.ToLower(strings.TrimSpace(req.RecipientEmail)),
		Narrative:      req.Narrative,
		EvidenceURL:    req.EvidenceURL,
		CreatedBy:      callerID,
	}
}

// afterIssue runs the post-issuance side effects: baking, recipient
// notification and the audit trail. None of them fail the issuance.
func (s *assertionService) afterIssue(ctx context.Context, callerID uuid.UUID, bi *model.BadgeInstance, notify bool) {
	s.enqueue(shared.TypeBakeAssertionImage, shared.BakeAssertionPayload{AssertionSlug: bi.Slug},
		shared.QueueCritical, 5)

	if notify {
		s.enqueue(shared.TypeSendBadgeNotification, shared.BadgeNotificationPayload{AssertionSlug: bi.Slug},
			shared.QueueDefault, 3)
	}

	s.auditor.Emit(ctx, audit.Event{
		ActorID:    callerID,
		Action:     audit.ActionBadgeInstanceCreated,
		EntityType: "badge_instance",
		EntitySlug: bi.Slug,
		Payload: map[string]interface{}{
			"recipient":   bi.RecipientEmail,
			"badge_class": bi.BadgeClassID.String(),
		},
	})
}

func (s *assertionService) enqueueImageCleanup(slug string) {
	s.enqueue(shared.TypeDeleteBadgeImages, shared.DeleteBadgeImagesPayload{
		Prefix: fmt.Sprintf("assertions/%s/", slug),
	}, shared.QueueLow, 3)
}

func (s *assertionService) enqueue(taskType string, payload interface{}, queue string, maxRetry int) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	task := asynq.NewTask(taskType, data)
	if _, err := s.tasks.Enqueue(task, asynq.Queue(queue), asynq.MaxRetry(maxRetry)); err != nil {
		logger.Error(fmt.Sprintf("Failed to enqueue %s task", taskType), err)
	}
}
