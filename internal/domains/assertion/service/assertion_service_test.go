package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"badgeforge-backend/internal/audit"
	"badgeforge-backend/internal/domains/assertion"
	"badgeforge-backend/internal/domains/assertion/model"
	bcmodel "badgeforge-backend/internal/domains/badgeclass/model"
	"badgeforge-backend/internal/domains/issuer"
	issuermodel "badgeforge-backend/internal/domains/issuer/model"
)

type fakeIssuerService struct {
	iss  *issuermodel.Issuer
	role issuermodel.Role
}

func (f *fakeIssuerService) CreateIssuer(ctx context.Context, callerID uuid.UUID, req *issuer.IssuerCreateRequest) (*issuer.IssuerResponse, error) {
	panic("not used")
}

func (f *fakeIssuerService) ListMyIssuers(ctx context.Context, callerID uuid.UUID) ([]*issuer.IssuerResponse, error) {
	panic("not used")
}

func (f *fakeIssuerService) GetIssuer(ctx context.Context, callerID uuid.UUID, slug string) (*issuer.IssuerResponse, error) {
	panic("not used")
}

func (f *fakeIssuerService) Authorize(ctx context.Context, callerID uuid.UUID, slug string, action issuer.Action) (*issuermodel.Issuer, error) {
	if f.iss == nil || f.iss.Slug != slug || !issuer.Allows(f.role, action) {
		return nil, issuermodel.NewIssuerNotFound(slug)
	}
	return f.iss, nil
}

func (f *fakeIssuerService) ListStaff(ctx context.Context, callerID uuid.UUID, slug string) ([]*issuer.StaffResponse, error) {
	panic("not used")
}

func (f *fakeIssuerService) AddStaff(ctx context.Context, callerID uuid.UUID, slug string, req *issuer.StaffAddRequest) (*issuer.StaffResponse, error) {
	panic("not used")
}

func (f *fakeIssuerService) RemoveStaff(ctx context.Context, callerID uuid.UUID, slug string, userID uuid.UUID) error {
	panic("not used")
}

type fakeBadgeRepo struct {
	bc *bcmodel.BadgeClass
}

func (f *fakeBadgeRepo) Create(ctx context.Context, bc *bcmodel.BadgeClass) (*bcmodel.BadgeClass, error) {
	panic("not used")
}

func (f *fakeBadgeRepo) GetBySlug(ctx context.Context, issuerID uuid.UUID, slug string) (*bcmodel.BadgeClass, error) {
	if f.bc == nil || f.bc.Slug != slug || f.bc.IssuerID != issuerID {
		return nil, nil
	}
	return f.bc, nil
}

func (f *fakeBadgeRepo) GetByID(ctx context.Context, id uuid.UUID) (*bcmodel.BadgeClass, error) {
	if f.bc != nil && f.bc.ID == id {
		return f.bc, nil
	}
	return nil, nil
}

func (f *fakeBadgeRepo) ListForIssuer(ctx context.Context, issuerID uuid.UUID) ([]*bcmodel.BadgeClass, error) {
	panic("not used")
}

func (f *fakeBadgeRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*bcmodel.BadgeClass, error) {
	panic("not used")
}

func (f *fakeBadgeRepo) Update(ctx context.Context, bc *bcmodel.BadgeClass) (*bcmodel.BadgeClass, error) {
	panic("not used")
}

func (f *fakeBadgeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	panic("not used")
}

func (f *fakeBadgeRepo) RecipientCount(ctx context.Context, id uuid.UUID) (int64, error) {
	panic("not used")
}

func (f *fakeBadgeRepo) RecipientCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	panic("not used")
}

func (f *fakeBadgeRepo) PathwayElementCount(ctx context.Context, id uuid.UUID) (int64, error) {
	panic("not used")
}

func (f *fakeBadgeRepo) CompletionElements(ctx context.Context, id uuid.UUID) ([]*bcmodel.CompletionElement, error) {
	panic("not used")
}

type fakeAssertionRepo struct {
	instances    map[string]*model.BadgeInstance
	batchCalls   int
	createCalls  int
	revokeCalled bool
}

func (f *fakeAssertionRepo) Create(ctx context.Context, bi *model.BadgeInstance) (*model.BadgeInstance, error) {
	f.createCalls++
	f.store(bi)
	return bi, nil
}

func (f *fakeAssertionRepo) CreateBatch(ctx context.Context, instances []*model.BadgeInstance) ([]*model.BadgeInstance, error) {
	f.batchCalls++
	for _, bi := range instances {
		f.store(bi)
	}
	return instances, nil
}

func (f *fakeAssertionRepo) store(bi *model.BadgeInstance) {
	if f.instances == nil {
		f.instances = make(map[string]*model.BadgeInstance)
	}
	f.instances[bi.Slug] = bi
}

func (f *fakeAssertionRepo) GetBySlug(ctx context.Context, slug string) (*model.BadgeInstance, error) {
	return f.instances[slug], nil
}

func (f *fakeAssertionRepo) ListForBadgeClass(ctx context.Context, badgeClassID uuid.UUID) ([]*model.BadgeInstance, error) {
	var out []*model.BadgeInstance
	for _, bi := range f.instances {
		if bi.BadgeClassID == badgeClassID && !bi.Revoked {
			out = append(out, bi)
		}
	}
	return out, nil
}

func (f *fakeAssertionRepo) ListForIssuer(ctx context.Context, issuerID uuid.UUID, recipient string) ([]*model.BadgeInstance, error) {
	var out []*model.BadgeInstance
	for _, bi := range f.instances {
		if bi.IssuerID != issuerID || bi.Revoked {
			continue
		}
		if recipient != "" && bi.RecipientEmail != recipient {
			continue
		}
		out = append(out, bi)
	}
	return out, nil
}

func (f *fakeAssertionRepo) Revoke(ctx context.Context, slug, reason string) (*model.BadgeInstance, error) {
	f.revokeCalled = true
	bi := f.instances[slug]
	if bi == nil {
		return nil, model.NewAssertionNotFound()
	}
	if bi.Revoked {
		return nil, model.NewAlreadyRevoked()
	}
	bi.Revoked = true
	bi.RevocationReason = reason
	bi.ImageURL = ""
	return bi, nil
}

func (f *fakeAssertionRepo) SetImageURL(ctx context.Context, slug, imageURL string) error {
	f.instances[slug].ImageURL = imageURL
	return nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (f *fakeEnqueuer) typesSeen() []string {
	var out []string
	for _, task := range f.tasks {
		out = append(out, task.Type())
	}
	return out
}

func newFixture(role issuermodel.Role) (*fakeAssertionRepo, *fakeEnqueuer, assertion.Service, *bcmodel.BadgeClass) {
	iss := &issuermodel.Issuer{ID: uuid.New(), Slug: "acme-academy"}
	bc := &bcmodel.BadgeClass{
		ID:       uuid.New(),
		IssuerID: iss.ID,
		Slug:     "gopher-of-the-month",
		Name:     "Gopher of the Month",
	}

	repo := &fakeAssertionRepo{}
	tasks := &fakeEnqueuer{}
	svc := NewAssertionService(repo, &fakeIssuerService{iss: iss, role: role}, &fakeBadgeRepo{bc: bc},
		tasks, nil, audit.NopEmitter{})
	return repo, tasks, svc, bc
}

func TestIssueOne(t *testing.T) {
	repo, tasks, svc, bc := newFixture(issuermodel.RoleStaff)

	resp, err := svc.IssueOne(context.Background(), uuid.New(), "acme-academy", "gopher-of-the-month",
		&assertion.AssertionCreateRequest{RecipientEmail: "Dev@Example.ORG", CreateNotification: true})
	require.NoError(t, err)

	assert.Equal(t, "dev@example.org", resp.RecipientEmail)
	assert.Equal(t, bc.ID, resp.BadgeClassID)
	assert.NotEmpty(t, resp.Slug)
	assert.Equal(t, 1, repo.createCalls)
	assert.Equal(t, []string{"badge:bake", "badge:notify_recipient"}, tasks.typesSeen())
}

func TestIssueOneMergedNotFound(t *testing.T) {
	tests := []struct {
		name      string
		role      issuermodel.Role
		issuer    string
		badgeSlug string
	}{
		{"unknown issuer", issuermodel.RoleOwner, "nobody", "gopher-of-the-month"},
		{"unknown badge", issuermodel.RoleOwner, "acme-academy", "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, svc, _ := newFixture(tt.role)
			_, err := svc.IssueOne(context.Background(), uuid.New(), tt.issuer, tt.badgeSlug,
				&assertion.AssertionCreateRequest{RecipientEmail: "dev@example.org"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Issuer not found or current user lacks permission to issue this badge.")
		})
	}
}

func TestIssueBatchAllOrNothing(t *testing.T) {
	repo, _, svc, _ := newFixture(issuermodel.RoleEditor)

	_, err := svc.IssueBatch(context.Background(), uuid.New(), "acme-academy", "gopher-of-the-month",
		&assertion.BatchAssertionsRequest{
			Assertions: []assertion.AssertionCreateRequest{
				{RecipientEmail: "ok@example.org"},
				{RecipientEmail: "not-an-email"},
			},
		})

	require.Error(t, err)
	assert.Equal(t, 0, repo.batchCalls, "no rows may be written when any item is invalid")
	assert.Empty(t, repo.instances)
}

func TestIssueBatchAppliesNotificationFlag(t *testing.T) {
	repo, tasks, svc, _ := newFixture(issuermodel.RoleEditor)

	resp, err := svc.IssueBatch(context.Background(), uuid.New(), "acme-academy", "gopher-of-the-month",
		&assertion.BatchAssertionsRequest{
			Assertions: []assertion.AssertionCreateRequest{
				{RecipientEmail: "a@example.org"},
				{RecipientEmail: "b@example.org"},
			},
			CreateNotification: true,
		})
	require.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.Equal(t, 1, repo.batchCalls)

	notifications := 0
	for _, taskType := range tasks.typesSeen() {
		if taskType == "badge:notify_recipient" {
			notifications++
		}
	}
	assert.Equal(t, 2, notifications)
}

func TestIssueBatchRejectsEmpty(t *testing.T) {
	_, _, svc, _ := newFixture(issuermodel.RoleOwner)

	_, err := svc.IssueBatch(context.Background(), uuid.New(), "acme-academy", "gopher-of-the-month",
		&assertion.BatchAssertionsRequest{})
	require.Error(t, err)
}

func TestRevokeRequiresReasonBeforeAnyLookup(t *testing.T) {
	repo, _, svc, _ := newFixture(issuermodel.RoleOwner)

	// Even a nonexistent assertion under a nonexistent issuer fails on
	// the missing reason first.
	_, err := svc.Revoke(context.Background(), uuid.New(), "ghost", "ghost", "ghost",
		&assertion.RevokeRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The parameter revocation_reason is required to revoke a badge assertion")
	assert.False(t, repo.revokeCalled)
}

func TestRevoke(t *testing.T) {
	repo, tasks, svc, _ := newFixture(issuermodel.RoleOwner)
	callerID := uuid.New()

	issued, err := svc.IssueOne(context.Background(), callerID, "acme-academy", "gopher-of-the-month",
		&assertion.AssertionCreateRequest{RecipientEmail: "dev@example.org"})
	require.NoError(t, err)

	msg, err := svc.Revoke(context.Background(), callerID, "acme-academy", "gopher-of-the-month", issued.Slug,
		&assertion.RevokeRequest{RevocationReason: "issued in error"})
	require.NoError(t, err)
	assert.Equal(t, "Assertion "+issued.Slug+" has been revoked.", msg)
	assert.True(t, repo.instances[issued.Slug].Revoked)
	assert.Equal(t, "issued in error", repo.instances[issued.Slug].RevocationReason)
	assert.Contains(t, tasks.typesSeen(), "badge:delete_images")

	// A second revocation must fail.
	_, err = svc.Revoke(context.Background(), callerID, "acme-academy", "gopher-of-the-month", issued.Slug,
		&assertion.RevokeRequest{RevocationReason: "again"})
	require.Error(t, err)
	assert.True(t, model.IsAlreadyRevoked(err))
}

func TestRevokeDeniedForStaff(t *testing.T) {
	repo, _, svc, _ := newFixture(issuermodel.RoleStaff)
	callerID := uuid.New()

	issued, err := svc.IssueOne(context.Background(), callerID, "acme-academy", "gopher-of-the-month",
		&assertion.AssertionCreateRequest{RecipientEmail: "dev@example.org"})
	require.NoError(t, err)

	_, err = svc.Revoke(context.Background(), callerID, "acme-academy", "gopher-of-the-month", issued.Slug,
		&assertion.RevokeRequest{RevocationReason: "nope"})
	require.Error(t, err)
	assert.True(t, model.IsAssertionNotFound(err), "staff denial must look like a missing assertion")
	assert.False(t, repo.instances[issued.Slug].Revoked)
}

func TestListForBadgeClassExcludesRevoked(t *testing.T) {
	repo, _, svc, _ := newFixture(issuermodel.RoleOwner)
	callerID := uuid.New()

	first, err := svc.IssueOne(context.Background(), callerID, "acme-academy", "gopher-of-the-month",
		&assertion.AssertionCreateRequest{RecipientEmail: "a@example.org"})
	require.NoError(t, err)
	_, err = svc.IssueOne(context.Background(), callerID, "acme-academy", "gopher-of-the-month",
		&assertion.AssertionCreateRequest{RecipientEmail: "b@example.org"})
	require.NoError(t, err)

	_, err = svc.Revoke(context.Background(), callerID, "acme-academy", "gopher-of-the-month", first.Slug,
		&assertion.RevokeRequest{RevocationReason: "mistake"})
	require.NoError(t, err)

	listed, err := svc.ListForBadgeClass(context.Background(), callerID, "acme-academy", "gopher-of-the-month")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "b@example.org", listed[0].RecipientEmail)
	_ = repo
}
