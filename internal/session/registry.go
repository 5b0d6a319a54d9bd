package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/dataset"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/observability"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/pipeline"
)

var (
	// ErrSessionNotFound means the id is unknown or already expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions means the registry is at capacity.
	ErrTooManySessions = errors.New("session limit reached")
)

// Registry tracks live explorer sessions by id. Sessions idle longer than
// the TTL are evicted by the sweep loop; every Get refreshes the idle
// timer. The clock is injected so tests can advance time.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry

	store   *dataset.Store
	deriver *pipeline.Deriver
	clock   clockwork.Clock
	ttl     time.Duration
	limit   int
	logger  *slog.Logger
	metrics *observability.Metrics
}

type entry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// NewRegistry creates a registry enforcing the given idle TTL and session
// capacity.
func NewRegistry(store *dataset.Store, deriver *pipeline.Deriver, clk clockwork.Clock, ttl time.Duration, limit int, logger *slog.Logger, metrics *observability.Metrics) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		store:    store,
		deriver:  deriver,
		clock:    clk,
		ttl:      ttl,
		limit:    limit,
		logger:   logger,
		metrics:  metrics,
	}
}

// Create registers a new session and returns its id and controller.
func (r *Registry) Create() (string, *Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.limit {
		return "", nil, ErrTooManySessions
	}

	id := uuid.NewString()
	ctrl := NewController(r.store, r.deriver)
	r.sessions[id] = &entry{ctrl: ctrl, lastSeen: r.clock.Now()}

	r.metrics.SessionsCreated.Inc()
	r.metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.logger.Info("session created", "session_id", id, "active", len(r.sessions))
	return id, ctrl, nil
}

// Get returns the session's controller and refreshes its idle timer.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = r.clock.Now()
	return e.ctrl, nil
}

// Remove drops a session. Returns false when the id is unknown.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	r.metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.logger.Info("session removed", "session_id", id, "active", len(r.sessions))
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// PruneIdle evicts sessions idle past the TTL and returns how many were
// dropped.
func (r *Registry) PruneIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.clock.Now().Add(-r.ttl)
	pruned := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) || e.lastSeen.Equal(cutoff) {
			delete(r.sessions, id)
			pruned++
			r.logger.Info("session expired", "session_id", id, "idle", r.ttl.String())
		}
	}
	if pruned > 0 {
		r.metrics.SessionsExpired.Add(float64(pruned))
		r.metrics.ActiveSessions.Set(float64(len(r.sessions)))
	}
	return pruned
}

// Sweep prunes idle sessions on the given interval until the context is
// cancelled. Run it in its own goroutine.
func (r *Registry) Sweep(ctx context.Context, every time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.clock.After(every):
			r.PruneIdle()
		}
	}
}
