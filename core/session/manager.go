package session

import "sync"

// Manager owns the sessions of every user that currently has work or a pending prompt.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	root     string
}

func NewManager(root string) *Manager {
	return &Manager{sessions: make(map[int64]*Session), root: root}
}

// Acquire returns the user's session, creating it on first interaction. The session
// is pinned until the matching Release, so it cannot be dropped while the caller
// still works on it.
func (m *Manager) Acquire(userID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = newSession(userID, m.root)
		m.sessions[userID] = s
	}
	s.refs++
	return s
}

// Get looks the session up without pinning it.
func (m *Manager) Get(userID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// Release unpins the session and drops it once nobody holds it and it is idle. It
// reports whether the session is gone.
func (m *Manager) Release(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return true
	}
	if s.refs > 0 {
		s.refs--
	}
	if s.refs > 0 || !s.idle() {
		return false
	}
	delete(m.sessions, userID)
	return true
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
