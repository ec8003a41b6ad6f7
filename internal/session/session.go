// Package session holds per-user conversation state.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"docchat/internal/domain"
	"docchat/internal/index"
	"docchat/internal/logger"
)

// Session is one user's conversation: the index built from their documents
// (nil until the first successful process) and the dialogue so far.
type Session struct {
	ID        string
	CreatedAt time.Time

	// action serializes Process and Ask on this session.
	action sync.Mutex

	mu      sync.RWMutex
	idx     *index.Index
	history []domain.Turn
	ended   bool
}

// New returns an uninitialized session.
func New() *Session {
	return &Session{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
}

// Lock blocks until no other action runs on this session.
func (s *Session) Lock() { s.action.Lock() }

func (s *Session) Unlock() { s.action.Unlock() }

// Ended reports whether the session was ended. Actions must check it after
// Lock and refuse to touch an ended session.
func (s *Session) Ended() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ended
}

// Ready reports whether questions can be answered.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx != nil
}

func (s *Session) Index() *index.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx
}

// SetIndex installs idx and returns the index it replaced, if any.
func (s *Session) SetIndex(idx *index.Index) *index.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.idx
	s.idx = idx
	return prev
}

// History returns a copy of the dialogue.
func (s *Session) History() []domain.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// AppendTurns adds turns to the dialogue and returns the new state.
func (s *Session) AppendTurns(turns ...domain.Turn) []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, turns...)
	out := make([]domain.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// end marks the session ended, drops the index and the dialogue and returns
// the dropped index.
func (s *Session) end() *index.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.idx
	s.idx = nil
	s.history = nil
	s.ended = true
	return prev
}

// Manager tracks live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	log      *logger.Logger
}

func NewManager(log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{sessions: make(map[string]*Session), log: log}
}

func (m *Manager) Create() *Session {
	s := New()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.log.Debug("session created", "session", s.ID)
	return s
}

// Get returns the live session with id or domain.ErrSessionNotFound.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// End removes the session, waits for its running action, then releases its
// index.
func (m *Manager) End(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}

	s.Lock()
	defer s.Unlock()
	if idx := s.end(); idx != nil {
		if err := idx.Close(ctx); err != nil {
			m.log.Warn("release index failed", "session", id, "error", err)
			return err
		}
	}
	m.log.Debug("session ended", "session", id)
	return nil
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown ends every live session.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	for _, id := range ids {
		_ = m.End(ctx, id)
	}
}
