package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
)

// MembershipValidator checks that a login made through an organization's
// portal belongs to that organization. It is the session-layer tenant
// boundary; row-level backend policies are a separate layer.
type MembershipValidator struct {
	Auth   repository.AuthClient
	Data   repository.DataClient
	Store  *SessionStore
	Logger *logrus.Logger
}

func NewMembershipValidator(auth repository.AuthClient, data repository.DataClient, store *SessionStore, logger *logrus.Logger) *MembershipValidator {
	return &MembershipValidator{Auth: auth, Data: data, Store: store, Logger: logger}
}

// Validate compares the slug of the profile's organization with
// expectedSlug, exact and case-sensitive. On any failure the session is
// undone before the error is returned.
func (v *MembershipValidator) Validate(ctx context.Context, expectedSlug string, profile *entity.Profile) error {
	if expectedSlug == "" {
		return nil
	}
	if profile == nil {
		v.Reject(ctx)
		return ErrProfileNotFound
	}

	mismatch := &OrganizationMismatchError{ExpectedSlug: expectedSlug}
	if profile.HasOrganization() {
		org, err := v.Data.OrganizationByID(ctx, profile.OrgID())
		if err == nil && org == nil {
			err = repository.ErrNotFound
		}
		if err != nil {
			v.Reject(ctx)
			return &ResolutionError{Stage: StageOrganization, IdentityID: profile.ID, Err: notFound(err, ErrOrganizationNotFound)}
		}
		if org.Slug == expectedSlug {
			return nil
		}
		mismatch.ActualSlug = org.Slug
		mismatch.ActualName = org.Name
	}

	if v.Logger != nil {
		v.Logger.WithFields(logrus.Fields{
			"identity_id":       profile.ID,
			"organization_slug": expectedSlug,
			"actual_slug":       mismatch.ActualSlug,
		}).Warn("organization mismatch, signing out")
	}
	v.Reject(ctx)
	return mismatch
}

// Reject signs the backend session out and empties the store.
func (v *MembershipValidator) Reject(ctx context.Context) {
	if err := v.Auth.SignOut(ctx); err != nil && v.Logger != nil {
		v.Logger.WithError(err).Warn("sign out after failed membership check")
	}
	v.Store.Clear()
}
