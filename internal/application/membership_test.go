package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
)

type membershipFixture struct {
	v     *MembershipValidator
	auth  *fakeAuth
	data  *fakeData
	store *SessionStore
}

func newMembershipFixture(t *testing.T, profile *entity.Profile) membershipFixture {
	t.Helper()
	auth := newFakeAuth()
	data := newFakeData()
	store := NewSessionStore(nil)
	if profile != nil {
		data.profiles[profile.ID] = profile
		auth.add(profile.ID, profile.ID+"@x.test")
		_, err := auth.SignInWithPassword(context.Background(), profile.ID+"@x.test", "secret")
		require.NoError(t, err)
		var org *entity.Organization
		if profile.HasOrganization() {
			org = data.orgs[profile.OrgID()]
		}
		require.NoError(t, store.Set(&entity.Identity{ID: profile.ID}, profile, org))
	}
	return membershipFixture{v: NewMembershipValidator(auth, data, store, nil), auth: auth, data: data, store: store}
}

func TestValidateSkippedWithoutSlug(t *testing.T) {
	f := newMembershipFixture(t, profileIn("u1", orgA, entity.RoleTeacher))
	assert.NoError(t, f.v.Validate(context.Background(), "", f.store.Get().Profile))
	assert.Empty(t, f.data.calls)
}

func TestValidateMatchingSlug(t *testing.T) {
	f := newMembershipFixture(t, profileIn("u1", orgA, entity.RoleTeacher))
	assert.NoError(t, f.v.Validate(context.Background(), "center-a", f.store.Get().Profile))
	assert.False(t, f.store.Get().Empty())
	assert.Zero(t, f.auth.signOuts)
}

func TestValidateMismatchSignsOutAndClears(t *testing.T) {
	a := assert.New(t)
	f := newMembershipFixture(t, profileIn("u1", orgA, entity.RoleTeacher))

	err := f.v.Validate(context.Background(), "center-b", f.store.Get().Profile)
	a.ErrorIs(err, ErrOrganizationMismatch)
	var mismatch *OrganizationMismatchError
	require.True(t, errors.As(err, &mismatch))
	a.Equal("Center A", mismatch.ActualName)
	a.Equal("center-a", mismatch.ActualSlug)
	a.Equal("center-b", mismatch.ExpectedSlug)

	a.True(f.store.Get().Empty())
	a.Equal(1, f.auth.signOuts)
	sess, _ := f.auth.GetSession(context.Background())
	a.Nil(sess)
}

func TestValidateIsCaseSensitive(t *testing.T) {
	f := newMembershipFixture(t, profileIn("u1", orgA, entity.RoleTeacher))
	err := f.v.Validate(context.Background(), "Center-A", f.store.Get().Profile)
	assert.ErrorIs(t, err, ErrOrganizationMismatch)
}

func TestValidateOrganizationLessProfile(t *testing.T) {
	f := newMembershipFixture(t, profileIn("u1", nil, entity.RoleParent))

	err := f.v.Validate(context.Background(), "center-a", f.store.Get().Profile)
	var mismatch *OrganizationMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Empty(t, mismatch.ActualName)
	assert.True(t, f.store.Get().Empty())
}

func TestValidateWithoutProfile(t *testing.T) {
	f := newMembershipFixture(t, nil)
	f.store.SetIdentity(&entity.Identity{ID: "u1"})

	err := f.v.Validate(context.Background(), "center-a", nil)
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.True(t, f.store.Get().Empty())
}

func TestValidateOrganizationLookupFails(t *testing.T) {
	f := newMembershipFixture(t, profileIn("u1", orgA, entity.RoleTeacher))
	delete(f.data.orgs, orgA.ID)

	err := f.v.Validate(context.Background(), "center-a", f.store.Get().Profile)
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
	assert.True(t, f.store.Get().Empty())
}
