package commands

import (
	"sync"
	"time"
)

// PendingDelete is a deletion waiting for the sender's confirmation.
type PendingDelete struct {
	ItemName  string
	Date      string
	ExpiresAt time.Time
}

// SessionManager holds per-sender conversation state.
type SessionManager struct {
	sessions map[string]PendingDelete
	mu       sync.Mutex
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]PendingDelete),
	}
}

// Remember stores the pending deletion for a sender, replacing any earlier one.
func (sm *SessionManager) Remember(sender string, pending PendingDelete) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[sender] = pending
}

// Take removes and returns the sender's pending deletion if it has not expired.
func (sm *SessionManager) Take(sender string, now time.Time) (PendingDelete, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	pending, ok := sm.sessions[sender]
	if !ok {
		return PendingDelete{}, false
	}
	delete(sm.sessions, sender)
	if now.After(pending.ExpiresAt) {
		return PendingDelete{}, false
	}
	return pending, true
}

// Clear removes a sender's session.
func (sm *SessionManager) Clear(sender string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	_, ok := sm.sessions[sender]
	delete(sm.sessions, sender)
	return ok
}
