package conversation

import (
	"sync"
	"time"
)

// DefaultSessionKey is used when a client supplies no session key.
const DefaultSessionKey = "guest"

// Session holds one patient's conversational state: the ordered transcript
// replayed to the completion provider and the slots accumulated so far.
// Turns against the same session key are assumed to arrive sequentially; the
// store serializes access to its map, not to an individual session's fields.
type Session struct {
	Key          string
	Transcript   []ChatMessage
	Slots        SlotSet
	LastAccessed time.Time
}

// SeedTranscript installs the system preamble if the transcript is empty.
func (s *Session) SeedTranscript() {
	if len(s.Transcript) == 0 {
		s.Transcript = []ChatMessage{{Role: ChatRoleSystem, Content: SystemPreamble}}
	}
}

// Append adds one turn to the transcript.
func (s *Session) Append(role, content string) {
	s.Transcript = append(s.Transcript, ChatMessage{Role: role, Content: content})
}

// RecentContext returns up to the last n transcript turns.
func (s *Session) RecentContext(n int) []ChatMessage {
	if len(s.Transcript) <= n {
		return s.Transcript
	}
	return s.Transcript[len(s.Transcript)-n:]
}

// SessionStore is the process-wide mapping from session key to session state.
// Sessions are ephemeral conversational state, not the booking record of
// truth: a restart loses them all, by design.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewSessionStore constructs an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// GetOrCreate returns the session under key, touching its timestamp, or
// inserts a fresh one. It never fails.
func (st *SessionStore) GetOrCreate(key string) *Session {
	if key == "" {
		key = DefaultSessionKey
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if sess, ok := st.sessions[key]; ok {
		sess.LastAccessed = st.now()
		return sess
	}
	sess := &Session{Key: key, LastAccessed: st.now()}
	st.sessions[key] = sess
	return sess
}

// Clear replaces the session under key with a fresh one. Unknown keys are a
// no-op; Clear never creates a session as a side effect.
func (st *SessionStore) Clear(key string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[key]; ok {
		st.sessions[key] = &Session{Key: key, LastAccessed: st.now()}
	}
}

// Sweep removes every session idle for longer than maxAge and returns how
// many were evicted. The store has no timer of its own; callers schedule
// sweeps externally.
func (st *SessionStore) Sweep(maxAge time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	cutoff := st.now().Add(-maxAge)
	evicted := 0
	for key, sess := range st.sessions {
		if sess.LastAccessed.Before(cutoff) {
			delete(st.sessions, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
