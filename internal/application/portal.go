package application

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
)

// Portal is the session context of one client: it owns the client's
// SessionStore and auth client and is torn down with Close.
type Portal struct {
	ClientID  string
	Store     *SessionStore
	Auth      repository.AuthClient
	Data      repository.DataClient
	Resolver  *Resolver
	Validator *MembershipValidator
	Logger    *logrus.Logger

	persister repository.SessionPersister
	registrar repository.Registrar

	// one sign-in/sign-out at a time per client
	mu     sync.Mutex
	sub    repository.Subscription
	unlog  func()
	closed bool
}

func NewPortal(clientID string, auth repository.AuthClient, data repository.DataClient, logger *logrus.Logger) *Portal {
	store := NewSessionStore(logger)
	p := &Portal{
		ClientID:  clientID,
		Store:     store,
		Auth:      auth,
		Data:      data,
		Resolver:  NewResolver(data, store, logger),
		Validator: NewMembershipValidator(auth, data, store, logger),
		Logger:    logger,
	}
	if ps, ok := auth.(repository.SessionPersister); ok {
		p.persister = ps
	}
	if rg, ok := auth.(repository.Registrar); ok {
		p.registrar = rg
	}
	return p
}

func (p *Portal) log() *logrus.Entry {
	if p.Logger == nil {
		return nil
	}
	return p.Logger.WithField("client_id", p.ClientID)
}

// Init subscribes to auth state changes and loads the existing session,
// from the persisted snapshot when the backend keeps one. Loading is
// false when Init returns, whatever happened.
func (p *Portal) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPortalClosed
	}

	p.Store.SetLoading(true)
	defer p.Store.SetLoading(false)

	if p.sub == nil {
		p.sub = p.Auth.OnAuthStateChange(p.onAuthStateChange)
	}
	if p.unlog == nil && p.Logger != nil {
		p.unlog = p.Store.Subscribe(func(s entity.Session) {
			if e := p.log(); e != nil {
				e.WithFields(logrus.Fields{
					"authenticated": s.Authenticated(),
					"loading":       s.Loading,
				}).Debug("session changed")
			}
		})
	}

	if p.persister != nil {
		snap, ok := p.persister.RestoreSession(ctx)
		if !ok {
			return nil
		}
		if err := p.Store.Set(snap.Identity, snap.Profile, snap.Organization); err != nil {
			p.Store.Clear()
			return err
		}
		return nil
	}

	sess, err := p.Auth.GetSession(ctx)
	if err != nil {
		p.Store.Clear()
		if e := p.log(); e != nil {
			e.WithError(err).Warn("session restore failed")
		}
		return err
	}
	if sess == nil {
		return nil
	}
	p.Store.SetIdentity(&sess.Identity)
	p.Resolver.ResolveQuietly(ctx, sess.Identity.ID)
	return nil
}

func (p *Portal) onAuthStateChange(ctx context.Context, event entity.AuthEvent, session *entity.AuthSession) {
	switch event {
	case entity.EventSignedIn, entity.EventTokenRefreshed:
		if session == nil {
			return
		}
		p.Store.SetIdentity(&session.Identity)
		p.Resolver.ResolveQuietly(ctx, session.Identity.ID)
	case entity.EventSignedOut:
		p.Store.Clear()
	}
}

// SignIn authenticates and resolves the session. expectedSlug, when set,
// is the organization portal the user entered through. Credential and
// membership failures are returned; a failed profile lookup without a
// portal slug only leaves the session incomplete.
func (p *Portal) SignIn(ctx context.Context, email, password, expectedSlug string) (entity.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return entity.Session{}, ErrPortalClosed
	}

	email = strings.TrimSpace(strings.ToLower(email))
	sess, err := p.Auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return entity.Session{}, err
	}

	p.Store.SetLoading(true)
	defer p.Store.SetLoading(false)

	// the listener normally resolved already; cover clients that did not
	// notify, and retry once to learn why a resolution left no profile
	var resolveErr error
	snap := p.Store.Get()
	switch {
	case snap.Identity == nil || snap.Identity.ID != sess.Identity.ID:
		p.Store.SetIdentity(&sess.Identity)
		_, resolveErr = p.Resolver.Resolve(ctx, sess.Identity.ID)
	case snap.Profile == nil:
		_, resolveErr = p.Resolver.Resolve(ctx, sess.Identity.ID)
	}
	snap = p.Store.Get()

	if expectedSlug != "" {
		if snap.Profile == nil && resolveErr != nil && !errors.Is(resolveErr, ErrProfileNotFound) {
			p.Validator.Reject(ctx)
			p.clearPersisted(ctx)
			return entity.Session{}, resolveErr
		}
		if err := p.Validator.Validate(ctx, expectedSlug, snap.Profile); err != nil {
			p.clearPersisted(ctx)
			return entity.Session{}, err
		}
	}

	snap = p.Store.Get()
	if p.persister != nil && snap.Profile != nil {
		if err := p.persister.PersistSession(ctx, snap); err != nil {
			if e := p.log(); e != nil {
				e.WithError(err).Warn("persist session failed")
			}
		}
	}
	if e := p.log(); e != nil {
		e.WithFields(logrus.Fields{
			"identity_id":       sess.Identity.ID,
			"organization_slug": expectedSlug,
		}).Info("signed in")
	}
	snap.Loading = false
	return snap, nil
}

// SignUp provisions a new account. Only live backends support it.
func (p *Portal) SignUp(ctx context.Context, in repository.SignUpInput) (*entity.Identity, error) {
	if p.registrar == nil {
		return nil, ErrSignUpUnavailable
	}
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if !in.Role.Valid() {
		return nil, errors.New("invalid role")
	}
	return p.registrar.SignUp(ctx, in)
}

// SignOut ends the session at the backend and empties the store.
func (p *Portal) SignOut(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.Auth.SignOut(ctx)
	p.Store.Clear()
	p.clearPersisted(ctx)
	return err
}

// Refresh extends the backend session; the resulting TOKEN_REFRESHED
// notification re-resolves the profile.
func (p *Portal) Refresh(ctx context.Context) (entity.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return entity.Session{}, ErrPortalClosed
	}
	if _, err := p.Auth.RefreshSession(ctx); err != nil {
		return entity.Session{}, err
	}
	return p.Store.Get(), nil
}

// Reload re-resolves the current identity, e.g. after a profile edit.
func (p *Portal) Reload(ctx context.Context) {
	snap := p.Store.Get()
	if snap.Identity == nil {
		return
	}
	p.Resolver.ResolveQuietly(ctx, snap.Identity.ID)
	if p.persister != nil {
		if s := p.Store.Get(); s.Profile != nil {
			if err := p.persister.PersistSession(ctx, s); err != nil {
				if e := p.log(); e != nil {
					e.WithError(err).Warn("persist session failed")
				}
			}
		}
	}
}

// Session returns the current state.
func (p *Portal) Session() entity.Session { return p.Store.Get() }

// Close releases the auth subscription. The backend session is kept so
// that a later Init can restore it.
func (p *Portal) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.sub != nil {
		p.sub.Unsubscribe()
		p.sub = nil
	}
	if p.unlog != nil {
		p.unlog()
		p.unlog = nil
	}
}

func (p *Portal) clearPersisted(ctx context.Context) {
	if p.persister == nil {
		return
	}
	if err := p.persister.ClearSession(ctx); err != nil {
		if e := p.log(); e != nil {
			e.WithError(err).Warn("clear persisted session failed")
		}
	}
}
