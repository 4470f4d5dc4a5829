package calculator

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-chi-calculator/internal/engine"
	"go-chi-calculator/internal/keypad"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Session is one calculator held in memory. Its engine is only touched under mu.
type Session struct {
	ID string

	mu       sync.Mutex
	calc     *engine.Calculator
	resolved []engine.Calculation
	lastUsed time.Time
}

func newSession(now time.Time) *Session {
	s := &Session{ID: uuid.NewString(), lastUsed: now}
	s.calc = engine.New(engine.WithObserver(func(c engine.Calculation) {
		s.resolved = append(s.resolved, c)
	}))
	return s
}

// Press applies actions in order and returns the resulting snapshot together
// with every calculation the actions resolved.
func (s *Session) Press(actions []keypad.Action) (Snapshot, []engine.Calculation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resolved = nil
	for _, a := range actions {
		if err := a.Apply(s.calc); err != nil {
			return s.snapshotLocked(), s.takeResolved(), err
		}
	}
	return s.snapshotLocked(), s.takeResolved(), nil
}

// Snapshot returns the session's current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) takeResolved() []engine.Calculation {
	out := s.resolved
	s.resolved = nil
	return out
}

func (s *Session) snapshotLocked() Snapshot {
	st := s.calc.State()
	var pending, active string
	if st.PendingOperator != engine.OpNone {
		pending = st.PendingOperator.String()
	}
	if op := keypad.ActiveOperator(st); op != engine.OpNone {
		active = op.Symbol()
	}
	return Snapshot{
		ID:              s.ID,
		Display:         s.calc.Display(),
		CurrentInput:    st.CurrentInput,
		PendingOperator: pending,
		StoredOperand:   st.StoredOperand,
		ResetNext:       st.ResetNext,
		Phase:           s.calc.Phase().String(),
		ClearLabel:      keypad.ClearLabel(st),
		ActiveOperator:  active,
	}
}

// SessionStore holds sessions in memory. Sessions idle for longer than the
// TTL are dropped the next time the store is accessed.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store. A ttl of zero or less disables expiry.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session.
func (st *SessionStore) Create() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.evictLocked(now)
	s := newSession(now)
	st.sessions[s.ID] = s
	activeSessions.Set(float64(len(st.sessions)))
	return s
}

// Get returns the session with id and marks it as used.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.evictLocked(now)
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
	return s, nil
}

// Delete removes the session with id.
func (st *SessionStore) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.evictLocked(st.now())
	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	activeSessions.Set(float64(len(st.sessions)))
	return nil
}

// Len reports the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.evictLocked(st.now())
	return len(st.sessions)
}

func (st *SessionStore) evictLocked(now time.Time) {
	if st.ttl <= 0 {
		return
	}
	before := len(st.sessions)
	for id, s := range st.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastUsed)
		s.mu.Unlock()
		if idle > st.ttl {
			delete(st.sessions, id)
		}
	}
	if len(st.sessions) != before {
		activeSessions.Set(float64(len(st.sessions)))
	}
}
