package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type sessionEntry struct {
	session  *CheckoutSession
	lastSeen time.Time
}

// SessionManager hands out one checkout session per user and forgets idle ones.
type SessionManager struct {
	deps   SessionDeps
	idle   time.Duration
	logger zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewSessionManager(deps SessionDeps, idle time.Duration) *SessionManager {
	return &SessionManager{
		deps:     deps,
		idle:     idle,
		logger:   deps.Logger.With().Str("component", "session_manager").Logger(),
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Get returns the user's session, creating and opening it on first use.
func (m *SessionManager) Get(ctx context.Context, userID string) *CheckoutSession {
	m.mu.Lock()
	entry, ok := m.sessions[userID]
	if !ok {
		entry = &sessionEntry{session: NewCheckoutSession(userID, m.deps)}
		m.sessions[userID] = entry
	}
	entry.lastSeen = m.now()
	m.mu.Unlock()

	entry.session.Open(ctx)
	return entry.session
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Evict drops sessions unused for longer than the idle timeout and reports how many went.
// The cart itself survives in the snapshot store.
func (m *SessionManager) Evict() int {
	if m.idle <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idle)

	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for userID, entry := range m.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(m.sessions, userID)
			evicted++
		}
	}
	return evicted
}

// Run evicts idle sessions every interval until ctx is done.
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Evict(); n > 0 {
				m.logger.Debug().Int("evicted", n).Msg("idle checkout sessions evicted")
			}
		}
	}
}
