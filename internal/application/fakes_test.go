package application

import (
	"context"
	"errors"
	"sync"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
	"github.com/oksasatya/tahfidz-portal/internal/infrastructure/authstate"
)

func strptr(s string) *string { return &s }

var (
	orgA = &entity.Organization{ID: "org-a", Name: "Center A", Slug: "center-a", Active: true}
	orgB = &entity.Organization{ID: "org-b", Name: "Center B", Slug: "center-b", Active: true}
)

func profileIn(id string, org *entity.Organization, role entity.Role) *entity.Profile {
	p := &entity.Profile{ID: id, FullName: "user " + id, Role: role, Status: entity.StatusActive}
	if org != nil {
		p.OrganizationID = strptr(org.ID)
	}
	return p
}

// fakeData serves profiles and organizations from maps.
type fakeData struct {
	mu       sync.Mutex
	profiles map[string]*entity.Profile
	orgs     map[string]*entity.Organization
	err      error
	calls    []string
	// beforeProfile runs inside ProfileByID, before the lookup
	beforeProfile func()
}

func newFakeData() *fakeData {
	return &fakeData{
		profiles: map[string]*entity.Profile{},
		orgs:     map[string]*entity.Organization{orgA.ID: orgA, orgB.ID: orgB},
	}
}

func (d *fakeData) ProfileByID(_ context.Context, id string) (*entity.Profile, error) {
	if d.beforeProfile != nil {
		d.beforeProfile()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "profile:"+id)
	if d.err != nil {
		return nil, d.err
	}
	p, ok := d.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.Clone(), nil
}

func (d *fakeData) OrganizationByID(_ context.Context, id string) (*entity.Organization, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "org:"+id)
	if d.err != nil {
		return nil, d.err
	}
	o, ok := d.orgs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return o.Clone(), nil
}

func (d *fakeData) OrganizationBySlug(_ context.Context, slug string) (*entity.Organization, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, o := range d.orgs {
		if o.Slug == slug {
			return o.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

// fakeAuth accepts password "secret" for every identity in users.
type fakeAuth struct {
	mu         sync.Mutex
	users      map[string]entity.Identity // by email
	current    *entity.AuthSession
	events     *authstate.Broadcaster
	silent     bool // do not emit events
	getErr     error
	signOuts   int
	registered []repository.SignUpInput
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{users: map[string]entity.Identity{}, events: authstate.NewBroadcaster()}
}

func (a *fakeAuth) add(id, email string) {
	a.users[email] = entity.Identity{ID: id, Email: email}
}

func (a *fakeAuth) emit(ctx context.Context, ev entity.AuthEvent, s *entity.AuthSession) {
	if !a.silent {
		a.events.Emit(ctx, ev, s)
	}
}

func (a *fakeAuth) GetSession(context.Context) (*entity.AuthSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.getErr != nil {
		return nil, a.getErr
	}
	if a.current == nil {
		return nil, nil
	}
	c := *a.current
	return &c, nil
}

func (a *fakeAuth) SignInWithPassword(ctx context.Context, email, password string) (*entity.AuthSession, error) {
	a.mu.Lock()
	id, ok := a.users[email]
	if !ok || password != "secret" {
		a.mu.Unlock()
		return nil, repository.ErrInvalidCredentials
	}
	a.current = &entity.AuthSession{ID: "sess-" + id.ID, Identity: id}
	s := *a.current
	a.mu.Unlock()
	a.emit(ctx, entity.EventSignedIn, &s)
	return &s, nil
}

func (a *fakeAuth) SignOut(ctx context.Context) error {
	a.mu.Lock()
	a.signOuts++
	had := a.current != nil
	a.current = nil
	a.mu.Unlock()
	if had {
		a.emit(ctx, entity.EventSignedOut, nil)
	}
	return nil
}

func (a *fakeAuth) RefreshSession(ctx context.Context) (*entity.AuthSession, error) {
	a.mu.Lock()
	if a.current == nil {
		a.mu.Unlock()
		return nil, repository.ErrNoSession
	}
	s := *a.current
	a.mu.Unlock()
	a.emit(ctx, entity.EventTokenRefreshed, &s)
	return &s, nil
}

func (a *fakeAuth) OnAuthStateChange(fn repository.AuthStateListener) repository.Subscription {
	return a.events.Subscribe(fn)
}

// registeringAuth adds sign-up support to fakeAuth.
type registeringAuth struct{ *fakeAuth }

func (a registeringAuth) SignUp(_ context.Context, in repository.SignUpInput) (*entity.Identity, error) {
	if in.OrganizationSlug == "" {
		return nil, errors.New("organization required")
	}
	a.registered = append(a.registered, in)
	id := entity.Identity{ID: "new-" + in.Email, Email: in.Email}
	return &id, nil
}
