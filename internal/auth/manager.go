package auth

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// State is the authentication state of the whole client.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// EventKind names a state transition.
type EventKind string

const (
	EventLogin    EventKind = "login"
	EventLogout   EventKind = "logout"
	EventRejected EventKind = "rejected"
)

// Event is broadcast to subscribers on every transition.
type Event struct {
	Kind EventKind
	At   time.Time
	// Replaced is set on a login that supersedes a credential that was
	// still held.
	Replaced bool
}

// SignedOut reports whether the event moved the client to Unauthenticated.
func (e Event) SignedOut() bool {
	return e.Kind == EventLogout || e.Kind == EventRejected
}

// Manager owns the single bearer credential. There are exactly two states
// and two transitions: Unauthenticated to Authenticated via Initialize or
// Login, and back via Logout or CredentialRejected.
type Manager struct {
	mu        sync.RWMutex
	store     CredentialStore
	state     State
	cred      *Credential
	listeners map[int]func(Event)
	nextID    int
	now       func() time.Time
}

// NewManager creates a manager in the Unauthenticated state.
func NewManager(store CredentialStore) *Manager {
	return &Manager{
		store:     store,
		listeners: make(map[int]func(Event)),
		now:       time.Now,
	}
}

// Initialize reads the persisted credential. It returns true when a usable
// credential was found and the caller should hydrate. An expired credential
// is removed and treated as absent.
func (m *Manager) Initialize() (bool, error) {
	cred, err := m.store.Load()
	if err != nil {
		return false, fmt.Errorf("load credential: %w", err)
	}

	if cred == nil {
		return false, nil
	}

	if cred.Expired(m.now()) {
		slog.Info("Stored credential expired", "expires_at", cred.ExpiresAt)
		if err := m.store.Delete(); err != nil {
			slog.Warn("Failed to remove expired credential", "error", err)
		}
		return false, nil
	}

	m.mu.Lock()
	m.cred = cred
	m.state = Authenticated
	m.mu.Unlock()

	m.broadcast(Event{Kind: EventLogin})
	return true, nil
}

// Login stores a credential obtained from the service and transitions to
// Authenticated. A store failure leaves the state unchanged.
func (m *Manager) Login(cred *Credential) error {
	if cred == nil || cred.Token == "" {
		return fmt.Errorf("login: empty credential")
	}

	if err := m.store.Save(cred); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}

	m.mu.Lock()
	replaced := m.state == Authenticated
	cp := *cred
	m.cred = &cp
	m.state = Authenticated
	m.mu.Unlock()

	m.broadcast(Event{Kind: EventLogin, Replaced: replaced})
	return nil
}

// Logout erases the credential and tears down dependent state. It is a
// no-op for the state machine when already Unauthenticated, but always
// clears storage.
func (m *Manager) Logout() {
	m.signOut(EventLogout, "")
}

// CredentialRejected is called by the gateway when the service reports the
// credential invalid. It has the effect of Logout. It is idempotent, and a
// rejection of a credential other than the one currently held is ignored.
func (m *Manager) CredentialRejected(token string) {
	m.signOut(EventRejected, token)
}

func (m *Manager) signOut(kind EventKind, token string) {
	m.mu.Lock()
	if m.state == Unauthenticated {
		m.mu.Unlock()
		if kind == EventLogout {
			if err := m.store.Delete(); err != nil {
				slog.Warn("Failed to delete credential", "error", err)
			}
		}
		return
	}
	if kind == EventRejected && token != m.cred.Token {
		m.mu.Unlock()
		slog.Debug("Ignoring rejection of a superseded credential")
		return
	}
	m.state = Unauthenticated
	m.cred = nil
	m.mu.Unlock()

	if err := m.store.Delete(); err != nil {
		slog.Warn("Failed to delete credential", "error", err)
	}

	slog.Info("Signed out", "reason", string(kind))
	m.broadcast(Event{Kind: kind})
}

// Credential returns the held token. The gateway only ever reads it.
func (m *Manager) Credential() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil {
		return "", false
	}
	return m.cred.Token, true
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated is shorthand for State() == Authenticated.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == Authenticated
}

// ExpiresAt returns the credential expiry, or the zero time when unknown.
func (m *Manager) ExpiresAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil {
		return time.Time{}
	}
	return m.cred.ExpiresAt
}

// Subscribe registers fn for every transition. Events are delivered
// synchronously, in registration order, before the transitioning call
// returns.
func (m *Manager) Subscribe(fn func(Event)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) broadcast(ev Event) {
	m.mu.RLock()
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	fns := make([]func(Event), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, m.listeners[id])
	}
	m.mu.RUnlock()

	ev.At = m.now()
	for _, fn := range fns {
		fn(ev)
	}
}
