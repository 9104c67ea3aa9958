package session

import (
	"strings"
	"sync"
	"time"

	"nutrigenie/internal/storage"

	"github.com/google/uuid"
)

type entry struct {
	state    *State
	lastSeen time.Time
}

// Manager keeps sessions in memory. Sessions are never persisted, so a
// restart logs everyone out.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

// NewManager creates a Manager. Sessions idle for longer than ttl expire;
// zero keeps them until logout.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login is a mock: any non-empty username and password is accepted. The
// display name defaults to the username. An empty sessionID gets a fresh
// random one; logging in again on an existing id starts a clean session.
func (m *Manager) Login(sessionID, username, password, name string) (State, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return State{}, ErrInvalidCredentials
	}
	if err := storage.ValidateNamespace(username); err != nil {
		return State{}, ErrInvalidUsername
	}
	if strings.TrimSpace(name) == "" {
		name = username
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	st := newState(sessionID, User{ID: uuid.NewString(), Username: username, Name: name})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = &entry{state: st, lastSeen: m.now()}
	return st.clone(), nil
}

// Logout drops the session and everything generated in it.
func (m *Manager) Logout(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// Get returns a snapshot of the session.
func (m *Manager) Get(sessionID string) (State, error) {
	var snapshot State
	err := m.Update(sessionID, func(s *State) error {
		snapshot = s.clone()
		return nil
	})
	return snapshot, err
}

// Update applies fn to the session atomically and refreshes its idle timer.
// Concurrent updates of one session are serialized; the last one wins.
func (m *Manager) Update(sessionID string, fn func(*State) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotLoggedIn
	}
	now := m.now()
	if m.expired(e, now) {
		delete(m.sessions, sessionID)
		return ErrNotLoggedIn
	}
	e.lastSeen = now
	return fn(e.state)
}

// Sweep removes expired sessions and reports how many were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, e := range m.sessions {
		if m.expired(e, now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) expired(e *entry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.lastSeen) > m.ttl
}
