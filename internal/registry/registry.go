// Package registry keeps interview sessions in memory and serialises access to each of them.
package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spigell/hh-screener/internal/interview"
	"github.com/spigell/hh-screener/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("session not found")

type entry struct {
	mu      sync.Mutex
	session *interview.Session
}

// Registry maps session ids to sessions. Lookups and inserts are safe for concurrent
// use; With holds the per-session lock so one session never sees two writers.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func New(m *metrics.Metrics, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*entry),
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Create registers a new session and runs fn on it under its lock.
func (r *Registry) Create(fn func(*interview.Session) error) (string, error) {
	id := uuid.NewString()
	e := &entry{session: interview.NewSession(id, r.now().UTC())}

	e.mu.Lock()
	defer e.mu.Unlock()

	r.mu.Lock()
	r.sessions[id] = e
	count := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(count)
	r.logger.Debug("session created", zap.String("session_id", id))

	if fn == nil {
		return id, nil
	}
	if err := fn(e.session); err != nil {
		return id, fmt.Errorf("initialise session %s: %w", id, err)
	}
	return id, nil
}

// With runs fn with exclusive access to the session.
func (r *Registry) With(id string, fn func(*interview.Session) error) error {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Reset drops the session and creates a fresh one in its place, returning the new id.
func (r *Registry) Reset(id string, fn func(*interview.Session) error) (string, error) {
	if err := r.Delete(id); err != nil {
		return "", err
	}
	return r.Create(fn)
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	count := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	r.metrics.SetActiveSessions(count)
	r.logger.Debug("session deleted", zap.String("session_id", id))
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
