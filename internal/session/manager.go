// Package session tracks the live editor sessions, each owning one canvas
// document with its history.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pagecraft/backend/internal/canvas"
	"github.com/pagecraft/backend/internal/models"
)

// MaxSessions limits concurrent sessions to prevent memory exhaustion.
const MaxSessions = 50

// SessionMaxAge is how long an idle session survives before cleanup.
const SessionMaxAge = 30 * time.Minute

// SessionKeepAliveWindow protects recently accessed sessions from cleanup.
const SessionKeepAliveWindow = 5 * time.Minute

// Session is one editor session: a document plus persistence bookkeeping.
type Session struct {
	ID             string
	Doc            *canvas.Document
	CreatedAt      time.Time
	LastAccessedAt time.Time
	Persist        models.PersistState
}

// Info summarizes the session for the API layer.
func (s *Session) Info() models.SessionInfo {
	state := s.Doc.State()
	hist := s.Doc.History().Info()
	persist := s.Persist
	persist.IsDirty = s.Doc.IsDirty()
	return models.SessionInfo{
		ID:             s.ID,
		CreatedAt:      s.CreatedAt.UnixMilli(),
		LastAccessedAt: s.LastAccessedAt.UnixMilli(),
		ComponentCount: state.Components.Len(),
		CanUndo:        hist.CanUndo,
		CanRedo:        hist.CanRedo,
		Persist:        persist,
	}
}

// Manager owns the active editor sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     canvas.Options
	logger   *slog.Logger
	now      func() time.Time
}

// NewManager creates a session manager whose documents use opts.
func NewManager(opts canvas.Options) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		opts:     opts,
		logger:   slog.Default().With("component", "session"),
		now:      time.Now,
	}
}

// Create starts a new session with an empty document. Returns nil when the
// session limit is reached and no idle session could be evicted.
func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= MaxSessions {
		m.evictIdleLocked()
	}
	if len(m.sessions) >= MaxSessions {
		m.logger.Warn("session limit reached", "max", MaxSessions)
		return nil
	}

	now := m.now()
	s := &Session{
		ID:             uuid.New().String(),
		Doc:            canvas.NewDocument(m.opts),
		CreatedAt:      now,
		LastAccessedAt: now,
		Persist:        models.PersistState{AutoSaveEnabled: true},
	}
	m.sessions[s.ID] = s
	m.logger.Info("session created", "id", s.ID)
	return s
}

// Get returns a session and bumps its keep-alive timestamp.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	s.LastAccessedAt = m.now()
	return s, true
}

// Delete removes a session.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	m.logger.Info("session deleted", "id", id)
	return true
}

// List returns summaries of all sessions.
func (m *Manager) List() []models.SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.SessionInfo, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Info())
	}
	return out
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupOldSessions removes sessions idle longer than maxAge, keeping any
// accessed within the keep-alive window.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	keepAlive := m.now().Add(-SessionKeepAliveWindow)
	removed := 0
	for id, s := range m.sessions {
		if s.LastAccessedAt.After(keepAlive) {
			continue
		}
		if s.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
			m.logger.Info("session expired", "id", id,
				"idle", m.now().Sub(s.LastAccessedAt).Round(time.Second).String())
		}
	}
	return removed
}

// evictIdleLocked drops the single longest-idle session outside the
// keep-alive window to make room for a new one.
func (m *Manager) evictIdleLocked() {
	keepAlive := m.now().Add(-SessionKeepAliveWindow)
	var oldest *Session
	for _, s := range m.sessions {
		if s.LastAccessedAt.After(keepAlive) {
			continue
		}
		if oldest == nil || s.LastAccessedAt.Before(oldest.LastAccessedAt) {
			oldest = s
		}
	}
	if oldest != nil {
		delete(m.sessions, oldest.ID)
		m.logger.Info("session evicted for capacity", "id", oldest.ID)
	}
}
