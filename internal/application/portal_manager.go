package application

import (
	"context"
	"expvar"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
)

// BackendFactory builds the auth and data clients for one portal client.
type BackendFactory func(clientID string) (repository.AuthClient, repository.DataClient, error)

var portalsAttached = expvar.NewInt("portals_attached")

// PortalManager keeps one Portal per client id.
type PortalManager struct {
	mu      sync.Mutex
	portals map[string]*Portal
	factory BackendFactory
	Logger  *logrus.Logger
}

func NewPortalManager(factory BackendFactory, logger *logrus.Logger) *PortalManager {
	return &PortalManager{portals: map[string]*Portal{}, factory: factory, Logger: logger}
}

// Attach returns the client's portal, constructing and initializing it
// when this process has not seen the client yet (first login or restart).
func (m *PortalManager) Attach(ctx context.Context, clientID string) (*Portal, error) {
	p, _, err := m.Acquire(ctx, clientID)
	return p, err
}

// Acquire is Attach that also reports whether this call created the
// portal. Callers that created a portal for a request that ended without
// a signed-in identity hand it back with Release.
func (m *PortalManager) Acquire(ctx context.Context, clientID string) (*Portal, bool, error) {
	m.mu.Lock()
	if p, ok := m.portals[clientID]; ok {
		m.mu.Unlock()
		return p, false, nil
	}
	m.mu.Unlock()

	auth, data, err := m.factory(clientID)
	if err != nil {
		return nil, false, err
	}
	p := NewPortal(clientID, auth, data, m.Logger)
	if err := p.Init(ctx); err != nil && m.Logger != nil {
		m.Logger.WithError(err).WithField("client_id", clientID).Warn("portal init failed")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.portals[clientID]; ok {
		// lost a race with another request for the same client
		p.Close()
		return existing, false, nil
	}
	m.portals[clientID] = p
	portalsAttached.Add(1)
	return p, true, nil
}

// Release closes and forgets p when it is still the client's portal and
// no identity is signed in on it. It reports whether p was removed.
func (m *PortalManager) Release(p *Portal) bool {
	if p == nil {
		return false
	}
	m.mu.Lock()
	cur, ok := m.portals[p.ClientID]
	if !ok || cur != p || p.Session().Identity != nil {
		m.mu.Unlock()
		return false
	}
	delete(m.portals, p.ClientID)
	m.mu.Unlock()
	portalsAttached.Add(-1)
	p.Close()
	return true
}

// Detach closes and forgets the client's portal.
func (m *PortalManager) Detach(clientID string) {
	m.mu.Lock()
	p, ok := m.portals[clientID]
	delete(m.portals, clientID)
	m.mu.Unlock()
	if ok {
		portalsAttached.Add(-1)
		p.Close()
	}
}

// Len returns the number of attached portals.
func (m *PortalManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.portals)
}

// Shutdown closes every portal.
func (m *PortalManager) Shutdown() {
	m.mu.Lock()
	portals := m.portals
	m.portals = map[string]*Portal{}
	m.mu.Unlock()
	portalsAttached.Add(-int64(len(portals)))
	for _, p := range portals {
		p.Close()
	}
}
