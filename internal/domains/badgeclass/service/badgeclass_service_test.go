package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"badgeforge-backend/internal/audit"
	"badgeforge-backend/internal/domains/badgeclass"
	"badgeforge-backend/internal/domains/badgeclass/model"
	"badgeforge-backend/internal/domains/issuer"
	issuermodel "badgeforge-backend/internal/domains/issuer/model"
)

// fakeIssuerService authorizes a single caller on a single issuer with
// a fixed role.
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

type fakeBadgeClassRepo struct {
	classes            map[string]*model.BadgeClass
	recipientCount     int64
	pathwayCount       int64
	completionElements []*model.CompletionElement
	deleted            []uuid.UUID
	updated            *model.BadgeClass
}

func (f *fakeBadgeClassRepo) Create(ctx context.Context, bc *model.BadgeClass) (*model.BadgeClass, error) {
	return bc, nil
}

func (f *fakeBadgeClassRepo) GetBySlug(ctx context.Context, issuerID uuid.UUID, slug string) (*model.BadgeClass, error) {
	bc, ok := f.classes[slug]
	if !ok || bc.IssuerID != issuerID {
		return nil, nil
	}
	return bc, nil
}

func (f *fakeBadgeClassRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.BadgeClass, error) {
	for _, bc := range f.classes {
		if bc.ID == id {
			return bc, nil
		}
	}
	return nil, nil
}

func (f *fakeBadgeClassRepo) ListForIssuer(ctx context.Context, issuerID uuid.UUID) ([]*model.BadgeClass, error) {
	var out []*model.BadgeClass
	for _, bc := range f.classes {
		out = append(out, bc)
	}
	return out, nil
}

func (f *fakeBadgeClassRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.BadgeClass, error) {
	all := make([]*model.BadgeClass, 0, len(f.classes))
	for _, bc := range f.classes {
		all = append(all, bc)
	}
	return all, nil
}

func (f *fakeBadgeClassRepo) Update(ctx context.Context, bc *model.BadgeClass) (*model.BadgeClass, error) {
	f.updated = bc
	return bc, nil
}

func (f *fakeBadgeClassRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBadgeClassRepo) RecipientCount(ctx context.Context, id uuid.UUID) (int64, error) {
	return f.recipientCount, nil
}

func (f *fakeBadgeClassRepo) RecipientCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	for _, id := range ids {
		counts[id] = f.recipientCount
	}
	return counts, nil
}

func (f *fakeBadgeClassRepo) PathwayElementCount(ctx context.Context, id uuid.UUID) (int64, error) {
	return f.pathwayCount, nil
}

func (f *fakeBadgeClassRepo) CompletionElements(ctx context.Context, id uuid.UUID) ([]*model.CompletionElement, error) {
	return f.completionElements, nil
}

type fakeImageStore struct {
	uploads map[string][]byte
}

func (f *fakeImageStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.uploads == nil {
		f.uploads = make(map[string][]byte)
	}
	f.uploads[key] = data
	return "http://storage.local/" + key, nil
}

type fakeProcessor struct{}

func (fakeProcessor) ValidateBadgeImage(data []byte) error { return nil }
func (fakeProcessor) Normalize(data []byte) ([]byte, error) {
	return data, nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func newFixture(role issuermodel.Role) (*fakeBadgeClassRepo, *fakeEnqueuer, badgeclass.Service, *issuermodel.Issuer, *model.BadgeClass) {
	iss := &issuermodel.Issuer{ID: uuid.New(), Slug: "acme-academy", Name: "Acme Academy"}
	bc := &model.BadgeClass{
		ID:       uuid.New(),
		IssuerID: iss.ID,
		Name:     "Gopher of the Month",
		Slug:     "gopher-of-the-month",
		ImageURL: "http://storage.local/badgeclasses/existing/image.png",
	}

	repo := &fakeBadgeClassRepo{classes: map[string]*model.BadgeClass{bc.Slug: bc}}
	tasks := &fakeEnqueuer{}
	svc := NewBadgeClassService(repo, &fakeIssuerService{iss: iss, role: role},
		&fakeImageStore{}, fakeProcessor{}, tasks, audit.NopEmitter{})
	return repo, tasks, svc, iss, bc
}

func TestDeleteBadgeClassPreconditionOrder(t *testing.T) {
	callerID := uuid.New()

	t.Run("already issued wins over pathway checks", func(t *testing.T) {
		repo, _, svc, _, _ := newFixture(issuermodel.RoleOwner)
		repo.recipientCount = 3
		repo.pathwayCount = 2
		repo.completionElements = []*model.CompletionElement{{ElementID: uuid.New()}}

		_, err := svc.DeleteBadgeClass(context.Background(), callerID, "acme-academy", "gopher-of-the-month")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Badge could not be deleted. It has already been issued at least once.")
		assert.Empty(t, repo.deleted)
	})

	t.Run("pathway requirement checked second", func(t *testing.T) {
		repo, _, svc, _, _ := newFixture(issuermodel.RoleOwner)
		repo.pathwayCount = 1
		repo.completionElements = []*model.CompletionElement{{ElementID: uuid.New()}}

		_, err := svc.DeleteBadgeClass(context.Background(), callerID, "acme-academy", "gopher-of-the-month")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Badge could not be deleted. It is being used as a pathway completion requirement.")
		assert.Empty(t, repo.deleted)
	})

	t.Run("completion badge checked third", func(t *testing.T) {
		repo, _, svc, _, _ := newFixture(issuermodel.RoleOwner)
		repo.completionElements = []*model.CompletionElement{{ElementID: uuid.New()}}

		_, err := svc.DeleteBadgeClass(context.Background(), callerID, "acme-academy", "gopher-of-the-month")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Badge could not be deleted. It is being used as a pathway completion badge.")
		assert.Empty(t, repo.deleted)
	})

	t.Run("clean badge deletes with confirmation", func(t *testing.T) {
		repo, tasks, svc, _, bc := newFixture(issuermodel.RoleOwner)

		msg, err := svc.DeleteBadgeClass(context.Background(), callerID, "acme-academy", "gopher-of-the-month")
		require.NoError(t, err)
		assert.Equal(t, "Badge gopher-of-the-month has been deleted.", msg)
		assert.Equal(t, []uuid.UUID{bc.ID}, repo.deleted)
		require.Len(t, tasks.tasks, 1)
		assert.Equal(t, "badge:delete_images", tasks.tasks[0].Type())
	})
}

func TestDeleteBadgeClassDeniedForStaff(t *testing.T) {
	repo, _, svc, _, _ := newFixture(issuermodel.RoleStaff)

	_, err := svc.DeleteBadgeClass(context.Background(), uuid.New(), "acme-academy", "gopher-of-the-month")
	require.Error(t, err)
	assert.True(t, issuermodel.IsIssuerNotFound(err), "staff denial must look like a missing issuer")
	assert.Empty(t, repo.deleted)
}

func TestUpdateBadgeClassKeepsImageWhenNotReplaced(t *testing.T) {
	repo, _, svc, _, bc := newFixture(issuermodel.RoleEditor)

	req := &badgeclass.BadgeClassUpdateRequest{
		Name:        "Gopher of the Year",
		Description: "Awarded for shipping something great",
		Criteria:    "Ship something great",
		// Image echoed back as a plain URL, as clients do after a GET.
		Image: bc.ImageURL,
	}

	resp, err := svc.UpdateBadgeClass(context.Background(), uuid.New(), "acme-academy", "gopher-of-the-month", req, nil)
	require.NoError(t, err)
	assert.Equal(t, bc.ImageURL, resp.ImageURL)
	require.NotNil(t, repo.updated)
	assert.Equal(t, "Gopher of the Year", repo.updated.Name)
}

func TestUpdateBadgeClassReplacesImageFromUpload(t *testing.T) {
	repo, _, svc, _, bc := newFixture(issuermodel.RoleEditor)

	req := &badgeclass.BadgeClassUpdateRequest{
		Name:        "Gopher of the Month",
		Description: "Awarded monthly",
		Criteria:    "https://acme.example/criteria",
	}

	resp, err := svc.UpdateBadgeClass(context.Background(), uuid.New(), "acme-academy", "gopher-of-the-month", req, []byte("new-image-bytes"))
	require.NoError(t, err)
	assert.NotEqual(t, "http://storage.local/badgeclasses/existing/image.png", resp.ImageURL)
	assert.Contains(t, resp.ImageURL, bc.ID.String())
	require.NotNil(t, repo.updated)
}

func TestListVisibleBadgeClasses(t *testing.T) {
	repo, _, svc, _, bc := newFixture(issuermodel.RoleStaff)
	repo.recipientCount = 4

	resp, err := svc.ListVisibleBadgeClasses(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, bc.Slug, resp[0].Slug)
	assert.Equal(t, int64(4), resp[0].RecipientCount)
}

func TestCreateBadgeClassUsesSuppliedSlug(t *testing.T) {
	_, _, svc, _, _ := newFixture(issuermodel.RoleOwner)

	req := &badgeclass.BadgeClassCreateRequest{
		Name:        "Code Reviewer",
		Slug:        "reviewer-2026",
		Description: "Awarded for thorough reviews",
		Criteria:    "https://acme.example/criteria/code-reviewer",
	}

	resp, err := svc.CreateBadgeClass(context.Background(), uuid.New(), "acme-academy", req, []byte("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "reviewer-2026", resp.Slug)
}

func TestCreateBadgeClassRejectsMalformedSlug(t *testing.T) {
	_, _, svc, _, _ := newFixture(issuermodel.RoleOwner)

	req := &badgeclass.BadgeClassCreateRequest{
		Name:        "Code Reviewer",
		Slug:        "Not A Slug!",
		Description: "Awarded for thorough reviews",
		Criteria:    "https://acme.example/criteria/code-reviewer",
	}

	_, err := svc.CreateBadgeClass(context.Background(), uuid.New(), "acme-academy", req, []byte("image-bytes"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slug")
}

func TestCreateBadgeClassRequiresDescription(t *testing.T) {
	_, _, svc, _, _ := newFixture(issuermodel.RoleOwner)

	req := &badgeclass.BadgeClassCreateRequest{
		Name:     "Code Reviewer",
		Criteria: "https://acme.example/criteria/code-reviewer",
	}

	_, err := svc.CreateBadgeClass(context.Background(), uuid.New(), "acme-academy", req, []byte("image-bytes"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description is required")
}

func TestCreateBadgeClassRequiresImage(t *testing.T) {
	_, _, svc, _, _ := newFixture(issuermodel.RoleEditor)

	req := &badgeclass.BadgeClassCreateRequest{
		Name:        "New Badge",
		Description: "A badge without an image",
		Criteria:    "Do the thing",
	}

	_, err := svc.CreateBadgeClass(context.Background(), uuid.New(), "acme-academy", req, nil)
	require.Error(t, err)
}

func TestCreateBadgeClassSplitsCriteria(t *testing.T) {
	repo, tasks, svc, iss, _ := newFixture(issuermodel.RoleOwner)
	_ = repo
	_ = tasks

	req := &badgeclass.BadgeClassCreateRequest{
		Name:        "Code Reviewer",
		Description: "Awarded for thorough reviews",
		Criteria:    "https://acme.example/criteria/code-reviewer",
	}

	resp, err := svc.CreateBadgeClass(context.Background(), uuid.New(), "acme-academy", req, []byte("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://acme.example/criteria/code-reviewer", resp.CriteriaURL)
	assert.Empty(t, resp.CriteriaText)
	assert.Equal(t, "code-reviewer", resp.Slug)
	assert.Equal(t, iss.ID, resp.IssuerID)
}
