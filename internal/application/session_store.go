package application

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
)

// Generation tags a resolution attempt. A commit carrying an older
// generation than the store's current one is discarded.
type Generation uint64

// SessionStore is the single source of truth for one portal client.
// Writers are the Resolver, the MembershipValidator and the Portal's
// sign-in/sign-out paths. Readers get copies.
type SessionStore struct {
	mu           sync.RWMutex
	identity     *entity.Identity
	profile      *entity.Profile
	organization *entity.Organization
	loading      bool
	gen          Generation

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(entity.Session)

	Logger *logrus.Logger
}

func NewSessionStore(logger *logrus.Logger) *SessionStore {
	return &SessionStore{subs: map[int]func(entity.Session){}, Logger: logger}
}

// Get returns a copy of the current state.
func (s *SessionStore) Get() entity.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *SessionStore) snapshotLocked() entity.Session {
	out := entity.Session{
		Profile:      s.profile.Clone(),
		Organization: s.organization.Clone(),
		Loading:      s.loading,
	}
	if s.identity != nil {
		id := *s.identity
		out.Identity = &id
	}
	return out
}

// Set replaces identity, profile and organization. nil means absent.
// Any in-flight resolution is superseded.
func (s *SessionStore) Set(identity *entity.Identity, profile *entity.Profile, org *entity.Organization) error {
	if !(entity.Session{Profile: profile, Organization: org}).Consistent() {
		return ErrInconsistentSession
	}
	s.mu.Lock()
	s.gen++
	s.identity = cloneIdentity(identity)
	s.profile = profile.Clone()
	s.organization = org.Clone()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// SetIdentity sets the authenticated identity. Switching to another
// identity drops the previous profile and organization and supersedes
// any in-flight resolution.
func (s *SessionStore) SetIdentity(identity *entity.Identity) {
	s.mu.Lock()
	if identity == nil || s.identity == nil || s.identity.ID != identity.ID {
		s.gen++
		s.profile = nil
		s.organization = nil
	}
	s.identity = cloneIdentity(identity)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *SessionStore) SetLoading(loading bool) {
	s.mu.Lock()
	if s.loading == loading {
		s.mu.Unlock()
		return
	}
	s.loading = loading
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Clear empties the store, sets loading=false and supersedes any
// in-flight resolution.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	s.gen++
	s.identity = nil
	s.profile = nil
	s.organization = nil
	s.loading = false
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Begin starts a resolution attempt and supersedes older ones.
func (s *SessionStore) Begin() Generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// Commit writes profile and organization together if gen is still
// current and the profile belongs to the held identity. It reports
// whether the pair was applied.
func (s *SessionStore) Commit(gen Generation, profile *entity.Profile, org *entity.Organization) (bool, error) {
	if !(entity.Session{Profile: profile, Organization: org}).Consistent() {
		return false, ErrInconsistentSession
	}
	s.mu.Lock()
	if gen != s.gen || s.identity == nil || profile == nil || profile.ID != s.identity.ID {
		s.mu.Unlock()
		return false, nil
	}
	s.profile = profile.Clone()
	s.organization = org.Clone()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return true, nil
}

// Subscribe registers fn to be called with the new state after each write.
func (s *SessionStore) Subscribe(fn func(entity.Session)) (unsubscribe func()) {
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *SessionStore) notify(snap entity.Session) {
	s.subMu.Lock()
	fns := make([]func(entity.Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func cloneIdentity(id *entity.Identity) *entity.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
