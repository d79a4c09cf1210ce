package live

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
	"github.com/oksasatya/tahfidz-portal/internal/infrastructure/authstate"
	"github.com/oksasatya/tahfidz-portal/pkg/helpers"
)

// AuthClient is the hosted auth subsystem as seen by one portal client.
// Credentials live in the identities table, the session in the cache
// under auth:session:<clientID>.
type AuthClient struct {
	ClientID      string
	Identities    repository.IdentityRepository
	Accounts      repository.AccountRepository
	Organizations repository.OrganizationRepository
	// Directory, when set, indexes profiles created by SignUp.
	Directory     repository.ProfileIndexer
	Sessions      SessionCache
	TTL           time.Duration
	Logger        *logrus.Logger

	events *authstate.Broadcaster
}

func NewAuthClient(clientID string, identities repository.IdentityRepository, accounts repository.AccountRepository,
	orgs repository.OrganizationRepository, sessions SessionCache, ttl time.Duration, logger *logrus.Logger) *AuthClient {
	return &AuthClient{
		ClientID:      clientID,
		Identities:    identities,
		Accounts:      accounts,
		Organizations: orgs,
		Sessions:      sessions,
		TTL:           ttl,
		Logger:        logger,
		events:        authstate.NewBroadcaster(),
	}
}

func (c *AuthClient) key() string { return "auth:session:" + c.ClientID }

func (r sessionRecord) toSession() *entity.AuthSession {
	return &entity.AuthSession{
		ID:        r.ID,
		Identity:  entity.Identity{ID: r.UserID, Email: r.Email},
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
	}
}

func (c *AuthClient) GetSession(ctx context.Context) (*entity.AuthSession, error) {
	var rec sessionRecord
	ok, err := c.Sessions.Load(ctx, c.key(), &rec)
	if err != nil {
		return nil, err
	}
	if !ok || time.Now().After(rec.ExpiresAt) {
		return nil, nil
	}
	return rec.toSession(), nil
}

func (c *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*entity.AuthSession, error) {
	id, err := c.Identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			helpers.CompareHashAndPassword("", password)
			return nil, repository.ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(id.PasswordHash, password) {
		return nil, repository.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	rec := sessionRecord{
		ID:        uuid.NewString(),
		UserID:    id.Identity.ID,
		Email:     id.Identity.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(c.TTL),
	}
	if err := c.Sessions.Save(ctx, c.key(), rec, c.TTL); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	sess := rec.toSession()
	c.events.Emit(ctx, entity.EventSignedIn, rec.toSession())
	return sess, nil
}

func (c *AuthClient) SignOut(ctx context.Context) error {
	existed, err := c.Sessions.Delete(ctx, c.key())
	if err != nil {
		return err
	}
	if existed {
		c.events.Emit(ctx, entity.EventSignedOut, nil)
	}
	return nil
}

func (c *AuthClient) RefreshSession(ctx context.Context) (*entity.AuthSession, error) {
	var rec sessionRecord
	ok, err := c.Sessions.Load(ctx, c.key(), &rec)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrNoSession
	}
	rec.ExpiresAt = time.Now().UTC().Add(c.TTL)
	if err := c.Sessions.Save(ctx, c.key(), rec, c.TTL); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	c.events.Emit(ctx, entity.EventTokenRefreshed, rec.toSession())
	return rec.toSession(), nil
}

func (c *AuthClient) OnAuthStateChange(fn repository.AuthStateListener) repository.Subscription {
	return c.events.Subscribe(fn)
}

// SignUp creates the identity and a pending profile in the organization
// named by in.OrganizationSlug. It does not sign in.
func (c *AuthClient) SignUp(ctx context.Context, in repository.SignUpInput) (*entity.Identity, error) {
	org, err := c.Organizations.GetBySlug(ctx, in.OrganizationSlug)
	if err != nil {
		return nil, fmt.Errorf("organization %q: %w", in.OrganizationSlug, err)
	}
	if !org.Active {
		return nil, repository.ErrOrganizationInactive
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	orgID := org.ID
	p := &entity.Profile{
		OrganizationID: &orgID,
		FullName:       in.FullName,
		Role:           in.Role,
		Status:         entity.StatusPending,
		Email:          in.Email,
		Phone:          in.Phone,
	}
	id, err := c.Accounts.CreateAccount(ctx, in.Email, hash, p)
	if err != nil {
		return nil, err
	}
	if c.Directory != nil {
		if err := c.Directory.IndexProfile(ctx, p); err != nil && c.Logger != nil {
			c.Logger.WithError(err).WithField("identity_id", id.ID).Warn("directory index failed")
		}
	}
	if c.Logger != nil {
		c.Logger.WithFields(logrus.Fields{
			"identity_id":       id.ID,
			"organization_slug": org.Slug,
			"role":              in.Role,
		}).Info("account registered")
	}
	return id, nil
}

var (
	_ repository.AuthClient = (*AuthClient)(nil)
	_ repository.Registrar  = (*AuthClient)(nil)
)
