// Package watch multiplexes OS-level change notifications into per-session
// event streams. Each session owns its own debounce buffer, timer, and
// outbound channel; sessions never share state, so unrelated watches never
// serialize against each other.
package watch

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/glimmerdesk/fsbridge/internal/shared/fserr"
	"github.com/glimmerdesk/fsbridge/internal/shared/id"
)

func errShutdown() error {
	return fserr.Newf(fserr.KindIOError, "watch manager is shut down")
}

// Manager owns every active watch session.
type Manager struct {
	mu       sync.RWMutex
	sessions map[id.WatchID]*Session
	logger   *zap.Logger
	closed   bool
}

// NewManager creates an empty manager.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[id.WatchID]*Session),
		logger:   logger,
	}
}

// Watch creates a session over pre-resolved, pre-authorized roots. Setup is
// all-or-nothing: if any root cannot be subscribed no session exists and no
// subscription is left behind.
func (m *Manager) Watch(roots []string, recursive bool, debounce time.Duration) (*Session, error) {
	sid := id.NewWatchID()
	session, err := newSession(sid, roots, recursive, debounce, m.logger)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		session.Stop()
		return nil, errShutdown()
	}
	m.sessions[sid] = session
	m.mu.Unlock()

	m.logger.Info("watch session started",
		zap.String("session", sid.String()),
		zap.Strings("roots", roots),
		zap.Bool("recursive", recursive),
		zap.Duration("debounce", debounce),
	)
	return session, nil
}

// Get returns a live session.
func (m *Manager) Get(sid id.WatchID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sid]
	return s, ok
}

// Unwatch stops and removes a session. Idempotent: unknown or
// already-stopped sessions are a no-op, since the front-end may race a
// close against an already-fired terminal watcher error.
func (m *Manager) Unwatch(sid id.WatchID) {
	m.mu.Lock()
	session, ok := m.sessions[sid]
	if ok {
		delete(m.sessions, sid)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	session.Stop()
	m.logger.Info("watch session stopped", zap.String("session", sid.String()))
}

// Len reports the number of active sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll stops every session at process teardown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[id.WatchID]*Session)
	m.closed = true
	m.mu.Unlock()

	for _, s := range sessions {
		s.Stop()
	}
}
