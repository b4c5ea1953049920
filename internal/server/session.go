package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Zachdehooge/mpg-dashboard/internal/pipeline"
)

// ExecutorFactory builds the executor of a new session, with its own store
// and dataset cache.
type ExecutorFactory func() *pipeline.Executor

// Session is one browser's widget state and executor.
type Session struct {
	ID       string
	Executor *pipeline.Executor

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Registry maps session ids to sessions. Sessions never share mutable state.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	factory  ExecutorFactory
	now      func() time.Time
	log      logrus.FieldLogger
}

// NewRegistry expires sessions idle for longer than ttl.
func NewRegistry(ttl time.Duration, factory ExecutorFactory, log logrus.FieldLogger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
		log:      log.WithField("component", "sessions"),
	}
}

// Get returns a live session and marks it used.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.touch(r.now())
	return s, true
}

// Create starts a session and performs its initial render.
func (r *Registry) Create() (*Session, error) {
	s := &Session{
		ID:       uuid.NewString(),
		Executor: r.factory(),
		lastSeen: r.now(),
	}
	if _, err := s.Executor.Run(); err != nil {
		return nil, errors.Wrap(err, "initial render")
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	sessionsActive.Set(float64(n))
	r.log.WithField("session", s.ID).Debug("session created")
	return s, nil
}

// Sweep drops expired sessions and reports how many went.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	removed := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	sessionsActive.Set(float64(n))
	if removed > 0 {
		r.log.WithFields(logrus.Fields{"removed": removed, "active": n}).Info("expired sessions swept")
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// ReloadAll drops every session's cached dataset and re-renders it.
func (r *Registry) ReloadAll() {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		if _, err := s.Executor.Reload(); err != nil {
			r.log.WithError(err).WithField("session", s.ID).Error("reload failed")
		}
	}
	r.log.WithField("sessions", len(sessions)).Info("dataset reloaded")
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
