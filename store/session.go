package store

import (
	"sync"

	"ariavoice/core"
)

// SessionStore keeps bounded per-session turn history in process memory.
// History is lost on restart; /api/clear drops a single session.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string][]core.Turn
	maxTurns int
}

// NewSessionStore creates a store capping each session at maxTurns entries
// (one user or assistant message each). Zero or negative means the default
// of 20.
func NewSessionStore(maxTurns int) *SessionStore {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &SessionStore{
		sessions: make(map[string][]core.Turn),
		maxTurns: maxTurns,
	}
}

// AppendExchange records one user/assistant pair, truncating the oldest
// turns once the cap is exceeded.
func (s *SessionStore) AppendExchange(sessionID, userText, assistantText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.sessions[sessionID],
		core.Turn{Role: core.ChatRoleUser, Text: userText},
		core.Turn{Role: core.ChatRoleAssistant, Text: assistantText},
	)
	if len(history) > s.maxTurns {
		history = history[len(history)-s.maxTurns:]
	}
	s.sessions[sessionID] = history
}

// Window returns a copy of the last k turns of a session.
func (s *SessionStore) Window(sessionID string, k int) []core.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.sessions[sessionID]
	if k > 0 && len(history) > k {
		history = history[len(history)-k:]
	}
	out := make([]core.Turn, len(history))
	copy(out, history)
	return out
}

// Len reports the stored turn count for a session.
func (s *SessionStore) Len(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions[sessionID])
}

// Clear drops a session's history. Clearing an unknown session is a no-op.
func (s *SessionStore) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
