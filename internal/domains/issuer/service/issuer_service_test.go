package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"badgeforge-backend/internal/audit"
	"badgeforge-backend/internal/domains/issuer"
	"badgeforge-backend/internal/domains/issuer/model"
)

type fakeIssuerRepo struct {
	issuers map[string]*model.Issuer
	roles   map[uuid.UUID]model.Role
	staff   []*model.StaffMember
	removed []uuid.UUID
}

func newFakeIssuerRepo() *fakeIssuerRepo {
	return &fakeIssuerRepo{
		issuers: make(map[string]*model.Issuer),
		roles:   make(map[uuid.UUID]model.Role),
	}
}

func (f *fakeIssuerRepo) Create(ctx context.Context, iss *model.Issuer, ownerID uuid.UUID) (*model.Issuer, error) {
	f.issuers[iss.Slug] = iss
	f.roles[ownerID] = model.RoleOwner
	f.staff = append(f.staff, &model.StaffMember{IssuerID: iss.ID, UserID: ownerID, Role: model.RoleOwner})
	return iss, nil
}

func (f *fakeIssuerRepo) GetBySlug(ctx context.Context, slug string) (*model.Issuer, error) {
	return f.issuers[slug], nil
}

func (f *fakeIssuerRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Issuer, error) {
	for _, iss := range f.issuers {
		if iss.ID == id {
			return iss, nil
		}
	}
	return nil, nil
}

func (f *fakeIssuerRepo) GetBySlugWithRole(ctx context.Context, slug string, userID uuid.UUID) (*model.Issuer, model.Role, error) {
	iss := f.issuers[slug]
	if iss == nil {
		return nil, "", nil
	}
	return iss, f.roles[userID], nil
}

func (f *fakeIssuerRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Issuer, error) {
	if _, ok := f.roles[userID]; !ok {
		return nil, nil
	}
	var out []*model.Issuer
	for _, iss := range f.issuers {
		out = append(out, iss)
	}
	return out, nil
}

func (f *fakeIssuerRepo) ListStaff(ctx context.Context, issuerID uuid.UUID) ([]*model.StaffMember, error) {
	var out []*model.StaffMember
	for _, m := range f.staff {
		if m.IssuerID == issuerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeIssuerRepo) AddStaff(ctx context.Context, issuerID, userID uuid.UUID, role model.Role) error {
	f.roles[userID] = role
	f.staff = append(f.staff, &model.StaffMember{IssuerID: issuerID, UserID: userID, Role: role})
	return nil
}

func (f *fakeIssuerRepo) RemoveStaff(ctx context.Context, issuerID, userID uuid.UUID) error {
	f.removed = append(f.removed, userID)
	delete(f.roles, userID)
	kept := f.staff[:0]
	for _, m := range f.staff {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	f.staff = kept
	return nil
}

func (f *fakeIssuerRepo) CountOwners(ctx context.Context, issuerID uuid.UUID) (int, error) {
	count := 0
	for _, m := range f.staff {
		if m.IssuerID == issuerID && m.Role == model.RoleOwner {
			count++
		}
	}
	return count, nil
}

type fakeUserFinder struct {
	ids      map[string]uuid.UUID
	approved map[uuid.UUID]bool
}

func (f *fakeUserFinder) FindIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	id, ok := f.ids[email]
	if !ok {
		return uuid.Nil, errors.New("no rows")
	}
	return id, nil
}

func (f *fakeUserFinder) CanCreateIssuers(ctx context.Context, userID uuid.UUID) (bool, error) {
	return f.approved[userID], nil
}

type fakeImageStore struct {
	uploads map[string][]byte
}

func (f *fakeImageStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.uploads == nil {
		f.uploads = make(map[string][]byte)
	}
	f.uploads[key] = data
	return "https://cdn.example.org/" + key, nil
}

func newFixture() (*fakeIssuerRepo, *fakeUserFinder, issuer.Service) {
	repo := newFakeIssuerRepo()
	users := &fakeUserFinder{ids: make(map[string]uuid.UUID)}
	svc := NewIssuerService(repo, users, &fakeImageStore{}, audit.NopEmitter{}, false)
	return repo, users, svc
}

func TestCreateIssuerGeneratesSlugAndOwnership(t *testing.T) {
	repo, _, svc := newFixture()
	ownerID := uuid.New()

	resp, err := svc.CreateIssuer(context.Background(), ownerID, &issuer.IssuerCreateRequest{
		Name:  "Acme Academy",
		Email: "badges@acme.example.org",
	})
	require.NoError(t, err)

	assert.Equal(t, "acme-academy", resp.Slug)
	assert.Equal(t, model.RoleOwner, repo.roles[ownerID])
}

func TestAuthorizeMergesMissingAndForbidden(t *testing.T) {
	repo, _, svc := newFixture()
	ownerID := uuid.New()
	stranger := uuid.New()

	_, err := svc.CreateIssuer(context.Background(), ownerID, &issuer.IssuerCreateRequest{
		Name:  "Acme Academy",
		Email: "badges@acme.example.org",
	})
	require.NoError(t, err)

	missingErr := func() error {
		_, err := svc.Authorize(context.Background(), ownerID, "no-such-issuer", issuer.ActionRead)
		return err
	}()
	deniedErr := func() error {
		_, err := svc.Authorize(context.Background(), stranger, "acme-academy", issuer.ActionRead)
		return err
	}()

	require.Error(t, missingErr)
	require.Error(t, deniedErr)
	assert.True(t, model.IsIssuerNotFound(missingErr))
	assert.True(t, model.IsIssuerNotFound(deniedErr))
	_ = repo
}

func TestAuthorizeRoleActions(t *testing.T) {
	repo, _, svc := newFixture()
	ownerID := uuid.New()
	editorID := uuid.New()
	staffID := uuid.New()

	resp, err := svc.CreateIssuer(context.Background(), ownerID, &issuer.IssuerCreateRequest{
		Name:  "Acme Academy",
		Email: "badges@acme.example.org",
	})
	require.NoError(t, err)
	require.NoError(t, repo.AddStaff(context.Background(), resp.ID, editorID, model.RoleEditor))
	require.NoError(t, repo.AddStaff(context.Background(), resp.ID, staffID, model.RoleStaff))

	tests := []struct {
		name    string
		caller  uuid.UUID
		action  issuer.Action
		allowed bool
	}{
		{"owner administers", ownerID, issuer.ActionAdminister, true},
		{"editor edits", editorID, issuer.ActionEdit, true},
		{"editor cannot administer", editorID, issuer.ActionAdminister, false},
		{"staff issues", staffID, issuer.ActionIssue, true},
		{"staff cannot edit", staffID, issuer.ActionEdit, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authorize(context.Background(), tt.caller, "acme-academy", tt.action)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, model.IsIssuerNotFound(err))
			}
		})
	}
}

func TestAddStaffUnknownEmail(t *testing.T) {
	_, _, svc := newFixture()
	ownerID := uuid.New()

	_, err := svc.CreateIssuer(context.Background(), ownerID, &issuer.IssuerCreateRequest{
		Name:  "Acme Academy",
		Email: "badges@acme.example.org",
	})
	require.NoError(t, err)

	_, err = svc.AddStaff(context.Background(), ownerID, "acme-academy", &issuer.StaffAddRequest{
		Email: "nobody@example.org",
		Role:  "editor",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Staff member not found")
}

func TestRemoveStaffKeepsLastOwner(t *testing.T) {
	repo, users, svc := newFixture()
	ownerID := uuid.New()
	editorID := uuid.New()
	users.ids["editor@example.org"] = editorID

	_, err := svc.CreateIssuer(context.Background(), ownerID, &issuer.IssuerCreateRequest{
		Name:  "Acme Academy",
		Email: "badges@acme.example.org",
	})
	require.NoError(t, err)
	_, err = svc.AddStaff(context.Background(), ownerID, "acme-academy", &issuer.StaffAddRequest{
		Email: "editor@example.org",
		Role:  "editor",
	})
	require.NoError(t, err)

	err = svc.RemoveStaff(context.Background(), ownerID, "acme-academy", ownerID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last owner")
	assert.Empty(t, repo.removed)

	// Removing a non-owner stays allowed.
	require.NoError(t, svc.RemoveStaff(context.Background(), ownerID, "acme-academy", editorID))
	assert.Equal(t, []uuid.UUID{editorID}, repo.removed)
}

func TestRemoveStaffAllowsOwnerWhenAnotherRemains(t *testing.T) {
	repo, users, svc := newFixture()
	ownerID := uuid.New()
	secondOwnerID := uuid.New()
	users.ids["second@example.org"] = secondOwnerID

	_, err := svc.CreateIssuer(context.Background(), ownerID, &issuer.IssuerCreateRequest{
		Name:  "Acme Academy",
		Email: "badges@acme.example.org",
	})
	require.NoError(t, err)
	_, err = svc.AddStaff(context.Background(), ownerID, "acme-academy", &issuer.StaffAddRequest{
		Email: "second@example.org",
		Role:  "owner",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveStaff(context.Background(), ownerID, "acme-academy", secondOwnerID))
	assert.Equal(t, []uuid.UUID{secondOwnerID}, repo.removed)
}

func TestCreateIssuerApprovalGate(t *testing.T) {
	repo := newFakeIssuerRepo()
	users := &fakeUserFinder{approved: make(map[uuid.UUID]bool)}
	svc := NewIssuerService(repo, users, &fakeImageStore{}, audit.NopEmitter{}, true)

	req := &issuer.IssuerCreateRequest{
		Name:  "Acme Academy",
		Email: "badges@acme.example.org",
	}

	unapproved := uuid.New()
	_, err := svc.CreateIssuer(context.Background(), unapproved, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Creating issuers requires an approved account.")
	assert.Empty(t, repo.issuers)

	approved := uuid.New()
	users.approved[approved] = true
	resp, err := svc.CreateIssuer(context.Background(), approved, req)
	require.NoError(t, err)
	assert.Equal(t, "acme-academy", resp.Slug)
}

func TestCreateIssuerStoresLogoFromDataURI(t *testing.T) {
	_, _, svc := newFixture()
	store := &fakeImageStore{}
	repo := newFakeIssuerRepo()
	svc = NewIssuerService(repo, &fakeUserFinder{}, store, audit.NopEmitter{}, false)

	resp, err := svc.CreateIssuer(context.Background(), uuid.New(), &issuer.IssuerCreateRequest{
		Name:  "Acme Academy",
		Email: "badges@acme.example.org",
		Image: "data:image/png;base64,aGVsbG8=",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.ImageURL, "issuers/"+resp.ID.String()+"/logo")
	assert.Equal(t, []byte("hello"), store.uploads["issuers/"+resp.ID.String()+"/logo"])
}
