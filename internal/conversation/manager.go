package conversation

import "sync"

// Manager owns all per-user sessions. Do serializes turns per user: two
// transitions for the same user never run concurrently, while different
// users proceed in parallel.
type Manager struct {
	sessions map[int64]*Session
	mu       sync.Mutex
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]*Session)}
}

// Do runs fn with exclusive access to the user's session, creating an
// idle session on first contact. The session must not be retained past
// the callback.
func (m *Manager) Do(userID int64, fn func(*Session) error) error {
	s := m.session(userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

func (m *Manager) session(userID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{}
		m.sessions[userID] = s
	}
	return s
}
