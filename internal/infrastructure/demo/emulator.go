package demo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tahfidz-portal/internal/application"
	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
	"github.com/oksasatya/tahfidz-portal/internal/infrastructure/authstate"
)

// SessionKey is the local-storage key of the persisted demo session.
const SessionKey = "tahfidz_demo_session"

// Emulator stands in for the hosted backend when none is configured. It
// serves the fixed catalog through the same AuthClient and DataClient
// contracts as the live backend and keeps the resolved session in the
// client's local storage.
type Emulator struct {
	// attempt serializes SignIn calls; mu guards current
	attempt sync.Mutex
	mu      sync.Mutex
	current *entity.AuthSession

	storage repository.Storage
	events  *authstate.Broadcaster

	// Latency simulates a backend round trip on every call.
	Latency time.Duration
	Logger  *logrus.Logger
}

func NewEmulator(storage repository.Storage, logger *logrus.Logger) *Emulator {
	return &Emulator{storage: storage, events: authstate.NewBroadcaster(), Logger: logger}
}

func (e *Emulator) wait(ctx context.Context) error {
	if e.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(e.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (e *Emulator) GetSession(ctx context.Context) (*entity.AuthSession, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil, nil
	}
	c := *e.current
	return &c, nil
}

func (e *Emulator) SignInWithPassword(ctx context.Context, email, password string) (*entity.AuthSession, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	acct, ok := Accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || acct.Password != password {
		return nil, repository.ErrInvalidCredentials
	}
	now := time.Now().UTC()
	sess := &entity.AuthSession{
		ID:        uuid.NewString(),
		Identity:  entity.Identity{ID: acct.Profile.ID, Email: acct.Email},
		CreatedAt: now,
	}
	e.mu.Lock()
	e.current = sess
	e.mu.Unlock()

	out := *sess
	e.events.Emit(ctx, entity.EventSignedIn, &out)
	return sess, nil
}

func (e *Emulator) SignOut(ctx context.Context) error {
	e.mu.Lock()
	had := e.current != nil
	e.current = nil
	e.mu.Unlock()
	if had {
		e.events.Emit(ctx, entity.EventSignedOut, nil)
	}
	return nil
}

func (e *Emulator) RefreshSession(ctx context.Context) (*entity.AuthSession, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return nil, repository.ErrNoSession
	}
	out := *e.current
	e.mu.Unlock()
	e.events.Emit(ctx, entity.EventTokenRefreshed, &out)
	return &out, nil
}

func (e *Emulator) OnAuthStateChange(fn repository.AuthStateListener) repository.Subscription {
	return e.events.Subscribe(fn)
}

func (e *Emulator) ProfileByID(ctx context.Context, id string) (*entity.Profile, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	acct, ok := accountByID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return acct.Profile.Clone(), nil
}

func (e *Emulator) OrganizationByID(ctx context.Context, id string) (*entity.Organization, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	org, ok := Organizations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &org, nil
}

func (e *Emulator) OrganizationBySlug(ctx context.Context, slug string) (*entity.Organization, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	for _, org := range Organizations {
		if org.Slug == slug {
			o := org
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

// SignIn is the one-shot demo login. It runs the portal sign-in over this
// emulator: credentials, resolution, the membership check when
// expectedSlug is set, and persistence of the resolved session.
func (e *Emulator) SignIn(ctx context.Context, email, password, expectedSlug string) (entity.Session, error) {
	e.attempt.Lock()
	defer e.attempt.Unlock()

	p := application.NewPortal(SessionKey, e, e, e.Logger)
	defer p.Close()
	return p.SignIn(ctx, email, password, expectedSlug)
}

type persistedUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type persistedSession struct {
	User         *persistedUser       `json:"user"`
	Profile      *entity.Profile      `json:"profile"`
	Organization *entity.Organization `json:"organization"`
}

func (e *Emulator) PersistSession(ctx context.Context, s entity.Session) error {
	if s.Identity == nil || s.Profile == nil {
		return errors.New("demo: nothing to persist")
	}
	b, err := json.Marshal(persistedSession{
		User:         &persistedUser{ID: s.Identity.ID, Email: s.Identity.Email},
		Profile:      s.Profile,
		Organization: s.Organization,
	})
	if err != nil {
		return err
	}
	return e.storage.Set(ctx, SessionKey, string(b))
}

// RestoreSession reads the persisted session. Missing, malformed or
// stale data yields (nil, false); malformed data is removed.
func (e *Emulator) RestoreSession(ctx context.Context) (*entity.Session, bool) {
	raw, ok, err := e.storage.Get(ctx, SessionKey)
	if err != nil {
		e.warn(err, "read persisted session")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var ps persistedSession
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		e.discard(ctx, err)
		return nil, false
	}
	if err := validatePersisted(ps); err != nil {
		e.discard(ctx, err)
		return nil, false
	}

	identity := entity.Identity{ID: ps.User.ID, Email: ps.User.Email}
	e.mu.Lock()
	e.current = &entity.AuthSession{ID: uuid.NewString(), Identity: identity, CreatedAt: time.Now().UTC()}
	e.mu.Unlock()
	return &entity.Session{Identity: &identity, Profile: ps.Profile, Organization: ps.Organization}, true
}

func (e *Emulator) ClearSession(ctx context.Context) error {
	return e.storage.Remove(ctx, SessionKey)
}

func validatePersisted(ps persistedSession) error {
	if ps.User == nil || ps.User.ID == "" || ps.User.Email == "" {
		return errors.New("missing user")
	}
	if ps.Profile == nil || ps.Profile.ID != ps.User.ID {
		return errors.New("profile does not belong to user")
	}
	if !(entity.Session{Profile: ps.Profile, Organization: ps.Organization}).Consistent() {
		return errors.New("profile and organization do not match")
	}
	if ps.Profile.HasOrganization() && ps.Organization == nil {
		return errors.New("missing organization")
	}
	if acct, ok := Accounts[ps.User.Email]; !ok || acct.Profile.ID != ps.User.ID {
		return errors.New("unknown demo account")
	}
	return nil
}

func (e *Emulator) discard(ctx context.Context, cause error) {
	e.warn(cause, "discarding malformed persisted session")
	if err := e.storage.Remove(ctx, SessionKey); err != nil {
		e.warn(err, "remove persisted session")
	}
}

func (e *Emulator) warn(err error, msg string) {
	if e.Logger != nil {
		e.Logger.WithError(err).Warn(msg)
	}
}

var (
	_ repository.AuthClient       = (*Emulator)(nil)
	_ repository.DataClient       = (*Emulator)(nil)
	_ repository.SessionPersister = (*Emulator)(nil)
)
