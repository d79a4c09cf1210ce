package live

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
	"github.com/oksasatya/tahfidz-portal/pkg/helpers"
)

type memSessions struct {
	m map[string]sessionRecord
}

func (s *memSessions) Load(_ context.Context, key string, dest *sessionRecord) (bool, error) {
	rec, ok := s.m[key]
	if ok {
		*dest = rec
	}
	return ok, nil
}

func (s *memSessions) Save(_ context.Context, key string, rec sessionRecord, _ time.Duration) error {
	s.m[key] = rec
	return nil
}

func (s *memSessions) Delete(_ context.Context, key string) (bool, error) {
	_, ok := s.m[key]
	delete(s.m, key)
	return ok, nil
}

type memIdentities struct {
	byEmail map[string]repository.IdentityRecord
}

func (r *memIdentities) GetByEmail(_ context.Context, email string) (*repository.IdentityRecord, error) {
	rec, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (r *memIdentities) GetByID(_ context.Context, id string) (*entity.Identity, error) {
	for _, rec := range r.byEmail {
		if rec.Identity.ID == id {
			out := rec.Identity
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memProfiles struct {
	m map[string]*entity.Profile
}

// memAccounts writes both maps or neither, like the transactional
// postgres repository.
type memAccounts struct {
	ids         *memIdentities
	profiles    *memProfiles
	profilesErr error
}

func (r *memAccounts) CreateAccount(_ context.Context, email, hash string, p *entity.Profile) (*entity.Identity, error) {
	if _, taken := r.ids.byEmail[email]; taken {
		return nil, repository.ErrEmailTaken
	}
	if r.profilesErr != nil {
		return nil, r.profilesErr
	}
	id := entity.Identity{ID: "id-" + email, Email: email}
	r.ids.byEmail[email] = repository.IdentityRecord{Identity: id, PasswordHash: hash}
	p.ID = id.ID
	r.profiles.m[p.ID] = p.Clone()
	return &id, nil
}

type memDirectory struct {
	indexed []string
}

func (d *memDirectory) IndexProfile(_ context.Context, p *entity.Profile) error {
	d.indexed = append(d.indexed, p.ID)
	return nil
}

type memOrgs struct {
	bySlug map[string]entity.Organization
}

func (r *memOrgs) GetByID(_ context.Context, id string) (*entity.Organization, error) {
	for _, o := range r.bySlug {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memOrgs) GetBySlug(_ context.Context, slug string) (*entity.Organization, error) {
	o, ok := r.bySlug[slug]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func newClient(t *testing.T, clientID string, sessions *memSessions) (*AuthClient, *memIdentities, *memProfiles) {
	t.Helper()
	ids := &memIdentities{byEmail: map[string]repository.IdentityRecord{}}
	hash, err := helpers.HashPassword("s3cret-pass")
	require.NoError(t, err)
	ids.byEmail["t@x.test"] = repository.IdentityRecord{Identity: entity.Identity{ID: "u1", Email: "t@x.test"}, PasswordHash: hash}

	profiles := &memProfiles{m: map[string]*entity.Profile{}}
	orgs := &memOrgs{bySlug: map[string]entity.Organization{
		"alnoor": {ID: "org-1", Slug: "alnoor", Name: "Al Noor", Active: true},
		"closed": {ID: "org-2", Slug: "closed", Name: "Closed", Active: false},
	}}
	accounts := &memAccounts{ids: ids, profiles: profiles}
	return NewAuthClient(clientID, ids, accounts, orgs, sessions, time.Hour, nil), ids, profiles
}

func TestSignInStoresSessionAndNotifies(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	sessions := &memSessions{m: map[string]sessionRecord{}}
	c, _, _ := newClient(t, "c1", sessions)

	var events []entity.AuthEvent
	c.OnAuthStateChange(func(_ context.Context, ev entity.AuthEvent, s *entity.AuthSession) {
		events = append(events, ev)
		if ev == entity.EventSignedIn {
			a.Equal("u1", s.Identity.ID)
		}
	})

	sess, err := c.SignInWithPassword(ctx, "t@x.test", "s3cret-pass")
	require.NoError(t, err)
	a.Equal("u1", sess.Identity.ID)
	a.Contains(sessions.m, "auth:session:c1")

	got, err := c.GetSession(ctx)
	require.NoError(t, err)
	a.Equal(sess.ID, got.ID)

	// a second client sees nothing
	other, _, _ := newClient(t, "c2", sessions)
	none, err := other.GetSession(ctx)
	a.NoError(err)
	a.Nil(none)

	require.NoError(t, c.SignOut(ctx))
	require.NoError(t, c.SignOut(ctx))
	a.Equal([]entity.AuthEvent{entity.EventSignedIn, entity.EventSignedOut}, events)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newClient(t, "c1", &memSessions{m: map[string]sessionRecord{}})

	_, err := c.SignInWithPassword(ctx, "t@x.test", "nope")
	assert.ErrorIs(t, err, repository.ErrInvalidCredentials)
	_, err = c.SignInWithPassword(ctx, "ghost@x.test", "s3cret-pass")
	assert.ErrorIs(t, err, repository.ErrInvalidCredentials)
}

func TestExpiredSessionIsAbsent(t *testing.T) {
	ctx := context.Background()
	sessions := &memSessions{m: map[string]sessionRecord{
		"auth:session:c1": {ID: "s", UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute)},
	}}
	c, _, _ := newClient(t, "c1", sessions)
	sess, err := c.GetSession(ctx)
	assert.NoError(t, err)
	assert.Nil(t, sess)
}

func TestRefreshExtendsSession(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	sessions := &memSessions{m: map[string]sessionRecord{}}
	c, _, _ := newClient(t, "c1", sessions)

	_, err := c.RefreshSession(ctx)
	a.ErrorIs(err, repository.ErrNoSession)

	_, err = c.SignInWithPassword(ctx, "t@x.test", "s3cret-pass")
	require.NoError(t, err)
	rec := sessions.m["auth:session:c1"]
	rec.ExpiresAt = time.Now().Add(time.Minute)
	sessions.m["auth:session:c1"] = rec

	var refreshed bool
	c.OnAuthStateChange(func(_ context.Context, ev entity.AuthEvent, _ *entity.AuthSession) {
		refreshed = refreshed || ev == entity.EventTokenRefreshed
	})
	sess, err := c.RefreshSession(ctx)
	require.NoError(t, err)
	a.True(refreshed)
	a.True(sess.ExpiresAt.After(time.Now().Add(30 * time.Minute)))
}

func TestSignUpCreatesPendingProfile(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	c, ids, profiles := newClient(t, "c1", &memSessions{m: map[string]sessionRecord{}})

	id, err := c.SignUp(ctx, repository.SignUpInput{
		Email: "new@x.test", Password: "password1", FullName: "New Student",
		Role: entity.RoleStudent, Phone: "+628123", OrganizationSlug: "alnoor",
	})
	require.NoError(t, err)

	p := profiles.m[id.ID]
	require.NotNil(t, p)
	a.Equal(entity.StatusPending, p.Status)
	a.Equal("org-1", p.OrgID())
	a.Equal(entity.RoleStudent, p.Role)
	a.True(helpers.CompareHashAndPassword(ids.byEmail["new@x.test"].PasswordHash, "password1"))

	sess, _ := c.GetSession(ctx)
	a.Nil(sess)
}

func TestSignUpOrganizationChecks(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newClient(t, "c1", &memSessions{m: map[string]sessionRecord{}})

	_, err := c.SignUp(ctx, repository.SignUpInput{Email: "a@x.test", Password: "password1", Role: entity.RoleParent, OrganizationSlug: "missing"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = c.SignUp(ctx, repository.SignUpInput{Email: "a@x.test", Password: "password1", Role: entity.RoleParent, OrganizationSlug: "closed"})
	assert.ErrorIs(t, err, repository.ErrOrganizationInactive)
}

func TestSignUpFailureLeavesEmailFree(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	c, ids, profiles := newClient(t, "c1", &memSessions{m: map[string]sessionRecord{}})
	accounts := c.Accounts.(*memAccounts)
	in := repository.SignUpInput{Email: "new@x.test", Password: "password1", FullName: "New", Role: entity.RoleStudent, OrganizationSlug: "alnoor"}

	accounts.profilesErr = errors.New("db down")
	_, err := c.SignUp(ctx, in)
	a.Error(err)
	_, present := ids.byEmail["new@x.test"]
	a.False(present)
	a.Empty(profiles.m)

	accounts.profilesErr = nil
	id, err := c.SignUp(ctx, in)
	require.NoError(t, err)
	a.Contains(profiles.m, id.ID)

	_, err = c.SignUp(ctx, in)
	a.ErrorIs(err, repository.ErrEmailTaken)
}

func TestSignUpIndexesProfile(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newClient(t, "c1", &memSessions{m: map[string]sessionRecord{}})
	dir := &memDirectory{}
	c.Directory = dir

	id, err := c.SignUp(ctx, repository.SignUpInput{Email: "idx@x.test", Password: "password1", FullName: "Indexed", Role: entity.RoleParent, OrganizationSlug: "alnoor"})
	require.NoError(t, err)
	assert.Equal(t, []string{id.ID}, dir.indexed)
}
