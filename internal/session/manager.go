package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"low-altitude/uavops/internal/logging"
)

var ErrSessionNotFound = errors.New("session not found")

// Manager owns live sessions. Idle sessions expire after the TTL and are
// closed by the eviction hook.
type Manager struct {
	cfg   Config
	cache *cache.Cache
}

func NewManager(cfg Config, idleTTL time.Duration) *Manager {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	cleanup := idleTTL / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}

	c := cache.New(idleTTL, cleanup)
	m := &Manager{cfg: cfg, cache: c}
	c.OnEvicted(func(id string, v interface{}) {
		if s, ok := v.(*Session); ok {
			s.Close()
		}
		if cfg.Metrics != nil {
			cfg.Metrics.SessionsActive.Dec()
		}
		logging.Info("Session evicted", "session_id", id)
	})
	return m
}

// Create opens a new session with a random id.
func (m *Manager) Create() *Session {
	s := New(uuid.NewString(), m.cfg)
	m.cache.SetDefault(s.ID, s)
	if m.cfg.Metrics != nil {
		m.cfg.Metrics.SessionsActive.Inc()
	}
	logging.Info("Session created", "session_id", s.ID)
	return s
}

// Get returns a live session and refreshes its idle deadline.
func (m *Manager) Get(id string) (*Session, error) {
	v, ok := m.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s := v.(*Session)
	select {
	case <-s.Done():
		m.cache.Delete(id)
		return nil, ErrSessionNotFound
	default:
	}
	// Replace fails once the entry has been evicted, so a session closed
	// after the lookup is never put back.
	if err := m.cache.Replace(id, s, cache.DefaultExpiration); err != nil {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close ends a session now.
func (m *Manager) Close(id string) error {
	if _, ok := m.cache.Get(id); !ok {
		return ErrSessionNotFound
	}
	m.cache.Delete(id)
	return nil
}

func (m *Manager) Count() int {
	return m.cache.ItemCount()
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	for id := range m.cache.Items() {
		m.cache.Delete(id)
	}
}
