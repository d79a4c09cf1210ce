package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
)

var (
	// ErrNotFound is returned by lookups when the row is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned when the auth subsystem rejects a login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoSession is returned when an operation needs a backend session and none exists.
	ErrNoSession = errors.New("no active session")
	// ErrEmailTaken is returned by sign-up when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrOrganizationInactive is returned by sign-up into a deactivated organization.
	ErrOrganizationInactive = errors.New("organization is not accepting sign-ups")
)

// AuthStateListener receives auth state transitions. session is nil for
// EventSignedOut.
type AuthStateListener func(ctx context.Context, event entity.AuthEvent, session *entity.AuthSession)

// Subscription is returned by OnAuthStateChange and must be released at teardown.
type Subscription interface {
	Unsubscribe()
}

// AuthClient is the authentication side of the hosted backend, one per
// portal client. Listeners fire exactly once per actual transition and
// GetSession has no side effects.
type AuthClient interface {
	GetSession(ctx context.Context) (*entity.AuthSession, error)
	SignInWithPassword(ctx context.Context, email, password string) (*entity.AuthSession, error)
	SignOut(ctx context.Context) error
	RefreshSession(ctx context.Context) (*entity.AuthSession, error)
	OnAuthStateChange(fn AuthStateListener) Subscription
}

// DataClient is the row-fetch side of the hosted backend. Lookups return
// ErrNotFound when the row is absent.
type DataClient interface {
	ProfileByID(ctx context.Context, id string) (*entity.Profile, error)
	OrganizationByID(ctx context.Context, id string) (*entity.Organization, error)
	OrganizationBySlug(ctx context.Context, slug string) (*entity.Organization, error)
}

// SignUpInput is the metadata a new account is provisioned with.
type SignUpInput struct {
	Email            string
	Password         string
	FullName         string
	Role             entity.Role
	Phone            string
	OrganizationSlug string
}

// Registrar is implemented by auth clients that support self sign-up.
type Registrar interface {
	SignUp(ctx context.Context, in SignUpInput) (*entity.Identity, error)
}

// SessionPersister is implemented by auth clients that keep the resolved
// session across reloads (demo mode).
type SessionPersister interface {
	PersistSession(ctx context.Context, s entity.Session) error
	RestoreSession(ctx context.Context) (*entity.Session, bool)
	ClearSession(ctx context.Context) error
}
