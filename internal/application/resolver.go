package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
)

// Resolution is the profile/organization pair of an identity.
// Organization is nil for organization-less profiles.
type Resolution struct {
	Profile      *entity.Profile
	Organization *entity.Organization
}

// Resolver turns an authenticated identity into its profile and
// organization and commits them to the store.
type Resolver struct {
	Data   repository.DataClient
	Store  *SessionStore
	Logger *logrus.Logger
}

func NewResolver(data repository.DataClient, store *SessionStore, logger *logrus.Logger) *Resolver {
	return &Resolver{Data: data, Store: store, Logger: logger}
}

// Resolve fetches the profile, then the organization it references. The
// organization id lives on the profile so the lookups cannot overlap.
// On failure the store's profile and organization are left untouched.
func (r *Resolver) Resolve(ctx context.Context, identityID string) (Resolution, error) {
	gen := r.Store.Begin()

	profile, err := r.Data.ProfileByID(ctx, identityID)
	if err != nil {
		return Resolution{}, r.fail(identityID, StageProfile, notFound(err, ErrProfileNotFound))
	}
	if profile == nil {
		return Resolution{}, r.fail(identityID, StageProfile, ErrProfileNotFound)
	}

	var org *entity.Organization
	if profile.HasOrganization() {
		org, err = r.Data.OrganizationByID(ctx, profile.OrgID())
		if err != nil {
			return Resolution{}, r.fail(identityID, StageOrganization, notFound(err, ErrOrganizationNotFound))
		}
		if org == nil {
			return Resolution{}, r.fail(identityID, StageOrganization, ErrOrganizationNotFound)
		}
	}

	res := Resolution{Profile: profile, Organization: org}
	applied, err := r.Store.Commit(gen, profile, org)
	if err != nil {
		return Resolution{}, r.fail(identityID, StageCommit, err)
	}
	if !applied {
		if r.Logger != nil {
			r.Logger.WithField("identity_id", identityID).Debug("stale resolution discarded")
		}
		return res, &ResolutionError{Stage: StageCommit, IdentityID: identityID, Err: ErrStaleResolution}
	}
	return res, nil
}

// ResolveQuietly runs Resolve and logs instead of returning the error.
// The caller observes an incomplete session rather than a failure.
func (r *Resolver) ResolveQuietly(ctx context.Context, identityID string) {
	_, _ = r.Resolve(ctx, identityID)
}

func (r *Resolver) fail(identityID, stage string, err error) error {
	if r.Logger != nil {
		r.Logger.WithError(err).WithFields(logrus.Fields{
			"identity_id": identityID,
			"stage":       stage,
		}).Warn("session resolution failed")
	}
	return &ResolutionError{Stage: stage, IdentityID: identityID, Err: err}
}

func notFound(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}
