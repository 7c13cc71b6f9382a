// Package livecall tracks in-progress voice-agent calls and mirrors them
// into a team chat space, one thread per call.
package livecall

import (
	"sort"
	"sync"
	"time"
)

// CallerInfo is what we know about the person on the line.
type CallerInfo struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// LeadInfo carries marketing context attached to the call.
type LeadInfo struct {
	Source    string `json:"source,omitempty"`
	Campaign  string `json:"campaign,omitempty"`
	Interests string `json:"interests,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Session is one live call being tracked.
type Session struct {
	CallID          string     `json:"call_id"`
	ThreadKey       string     `json:"thread_key"`
	Customer        CallerInfo `json:"customer"`
	AgentName       string     `json:"agent_name,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	TranscriptCount int        `json:"transcript_count"`
}

// ThreadKey derives the chat thread key for a call id.
func ThreadKey(callID string) string {
	return "call-" + callID
}

// SessionStore is a mutex-guarded map of active calls.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Put registers a session. If the call id is already tracked the original
// session is kept and Put reports false.
func (s *SessionStore) Put(session *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.CallID]; exists {
		return false
	}
	copied := *session
	s.sessions[session.CallID] = &copied
	return true
}

// Get returns a copy of the session for a call id.
func (s *SessionStore) Get(callID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[callID]
	if !ok {
		return nil, false
	}
	copied := *session
	return &copied, true
}

// IncrementTranscript bumps the transcript counter for a call.
func (s *SessionStore) IncrementTranscript(callID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[callID]; ok {
		session.TranscriptCount++
	}
}

// Remove drops a session and returns its final state.
func (s *SessionStore) Remove(callID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[callID]
	if !ok {
		return nil, false
	}
	delete(s.sessions, callID)
	return session, true
}

// Snapshot returns a consistent copy of all active sessions, ordered by
// start time.
func (s *SessionStore) Snapshot() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		copied := *session
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

// Len reports the number of active sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
