package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
)

func newResolverFixture(identityID string) (*Resolver, *fakeData, *SessionStore) {
	data := newFakeData()
	store := NewSessionStore(nil)
	store.SetIdentity(&entity.Identity{ID: identityID, Email: identityID + "@x.test"})
	return NewResolver(data, store, nil), data, store
}

func TestResolveCommitsProfileAndOrganization(t *testing.T) {
	a := assert.New(t)
	r, data, store := newResolverFixture("u1")
	data.profiles["u1"] = profileIn("u1", orgA, entity.RoleTeacher)

	res, err := r.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	a.Equal("org-a", res.Organization.ID)
	a.Equal([]string{"profile:u1", "org:org-a"}, data.calls)

	snap := store.Get()
	a.Equal(entity.RoleTeacher, snap.Profile.Role)
	a.Equal(snap.Profile.OrgID(), snap.Organization.ID)
}

func TestResolveOrganizationLessProfile(t *testing.T) {
	a := assert.New(t)
	r, data, store := newResolverFixture("u1")
	data.profiles["u1"] = profileIn("u1", nil, entity.RoleParent)

	res, err := r.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	a.Nil(res.Organization)
	a.Equal([]string{"profile:u1"}, data.calls)

	snap := store.Get()
	a.True(snap.OrganizationLess())
	a.Nil(snap.Organization)
}

func TestResolveIsIdempotent(t *testing.T) {
	r, data, store := newResolverFixture("u1")
	data.profiles["u1"] = profileIn("u1", orgB, entity.RoleSupervisor)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "u1")
	require.NoError(t, err)
	first := store.Get()
	_, err = r.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first, store.Get())
}

func TestResolveProfileMissing(t *testing.T) {
	a := assert.New(t)
	r, _, store := newResolverFixture("u1")

	_, err := r.Resolve(context.Background(), "u1")
	a.ErrorIs(err, ErrProfileNotFound)
	var rerr *ResolutionError
	require.True(t, errors.As(err, &rerr))
	a.Equal(StageProfile, rerr.Stage)

	snap := store.Get()
	a.NotNil(snap.Identity)
	a.Nil(snap.Profile)
}

func TestResolveOrganizationMissingLeavesPreviousState(t *testing.T) {
	a := assert.New(t)
	r, data, store := newResolverFixture("u1")
	data.profiles["u1"] = profileIn("u1", orgA, entity.RoleTeacher)
	_, err := r.Resolve(context.Background(), "u1")
	require.NoError(t, err)

	data.profiles["u1"] = profileIn("u1", &entity.Organization{ID: "gone"}, entity.RoleTeacher)
	_, err = r.Resolve(context.Background(), "u1")
	a.ErrorIs(err, ErrOrganizationNotFound)

	snap := store.Get()
	a.Equal("org-a", snap.Organization.ID)
	a.True(snap.Consistent())
}

func TestResolveWrapsBackendErrors(t *testing.T) {
	r, data, _ := newResolverFixture("u1")
	boom := errors.New("connection refused")
	data.err = boom

	_, err := r.Resolve(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrProfileNotFound)
}

func TestResolveDiscardedWhenSignedOutMidway(t *testing.T) {
	a := assert.New(t)
	r, data, store := newResolverFixture("u1")
	data.profiles["u1"] = profileIn("u1", orgA, entity.RoleTeacher)
	data.beforeProfile = store.Clear

	_, err := r.Resolve(context.Background(), "u1")
	a.ErrorIs(err, ErrStaleResolution)
	a.True(store.Get().Empty())
}
