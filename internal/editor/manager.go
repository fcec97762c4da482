package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("editor: session not found")

type session struct {
	store    *Store
	lastSeen time.Time
}

// Manager owns the live editing sessions. Each session holds one Store
// constructed with the injected dependencies; sessions idle past the TTL are
// swept away.
type Manager struct {
	cfg    Config
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewManager constructs a session manager creating stores from cfg.
func NewManager(cfg Config, ttl time.Duration, logger zerolog.Logger) (*Manager, error) {
	if cfg.Repo == nil {
		return nil, errors.New("editor: repository is required")
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Manager{
		cfg:      cfg,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}, nil
}

// Create opens a new editing session with an empty draft.
func (m *Manager) Create() (string, *Store, error) {
	store, err := NewStore(m.cfg)
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = &session{store: store, lastSeen: m.now()}
	m.mu.Unlock()
	return id, store, nil
}

// Get returns the session's store, refreshing its idle deadline.
func (m *Manager) Get(id string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = m.now()
	return sess.store, nil
}

// Delete destroys a session, discarding its draft.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Run sweeps idle sessions until the context is cancelled.
func (m *Manager) Run(ctx context.Context) {
	interval := m.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	cutoff := m.now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sess := range m.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			m.logger.Debug().Str("session_id", id).Msg("editor session expired")
		}
	}
}
