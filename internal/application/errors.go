package application

import (
	"errors"
	"fmt"

	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrOrganizationMismatch = errors.New("organization mismatch")
	ErrInvalidCredentials   = repository.ErrInvalidCredentials
	ErrInconsistentSession  = errors.New("profile and organization do not match")
	ErrStaleResolution      = errors.New("resolution superseded")
	ErrSignUpUnavailable    = errors.New("sign-up is not available")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrPortalClosed         = errors.New("portal closed")
)

// Resolution stages.
const (
	StageProfile      = "profile"
	StageOrganization = "organization"
	StageCommit       = "commit"
)

// ResolutionError is returned by Resolver.Resolve. Err is one of the
// sentinel errors above or the backend's own error.
type ResolutionError struct {
	Stage      string
	IdentityID string
	Err        error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s for identity %s: %v", e.Stage, e.IdentityID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// OrganizationMismatchError reports a portal login by a profile that
// belongs to another organization. ActualName is shown to the user.
type OrganizationMismatchError struct {
	ExpectedSlug string
	ActualSlug   string
	ActualName   string
}

func (e *OrganizationMismatchError) Error() string {
	if e.ActualName == "" {
		return fmt.Sprintf("account is not a member of %q", e.ExpectedSlug)
	}
	return fmt.Sprintf("account belongs to %q, not %q", e.ActualName, e.ExpectedSlug)
}

func (e *OrganizationMismatchError) Is(target error) bool {
	return target == ErrOrganizationMismatch
}
