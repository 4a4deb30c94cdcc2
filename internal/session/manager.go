package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/entitlements"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/reconcile"
)

// startSyncTimeout bounds the reconciliation kicked off for a new session.
const startSyncTimeout = 30 * time.Second

// Manager keys live sessions by user id. Sessions are created on first use
// and evicted on logout or by the idle sweep.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session

	fetcher reconcile.Fetcher
	policy  reconcile.RetryPolicy
	log     *zap.Logger
}

func NewManager(fetcher reconcile.Fetcher, policy reconcile.RetryPolicy, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[int64]*Session),
		fetcher:  fetcher,
		policy:   policy,
		log:      log,
	}
}

// GetOrCreate returns the live session for the user, creating one with a
// dedicated reconciler when none exists. Role is only applied on creation;
// an existing session keeps its authoritative role.
func (m *Manager) GetOrCreate(userID int64, role enums.Role) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		return s
	}

	s := newSession(
		entitlements.Account{UserID: userID, Role: role},
		reconcile.New(m.fetcher, m.policy, m.log),
	)
	m.sessions[userID] = s
	go m.startSync(userID, s)
	return s
}

// startSync runs the session-start reconciliation in the background so a
// returning subscriber's tariff is visible before their first attempt, not
// only after the first mutation or the periodic resync.
func (m *Manager) startSync(userID int64, s *Session) {
	ctx, cancel := context.WithTimeout(context.Background(), startSyncTimeout)
	defer cancel()

	err := s.Reconciler().Sync(ctx, userID, s.ApplySnapshot)
	if err != nil && !errors.Is(err, reconcile.ErrSuperseded) {
		m.log.Warn("session start reconciliation failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}

func (m *Manager) Get(userID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// Remove drops the session; its state is discarded per session-end
// semantics.
func (m *Manager) Remove(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// SweepIdle evicts sessions not touched since the cutoff and returns how
// many were dropped.
func (m *Manager) SweepIdle(ttl time.Duration, now time.Time) int {
	cutoff := now.Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// ForEach visits every live session. The callback runs outside the manager
// lock so it may touch session state freely.
func (m *Manager) ForEach(fn func(*Session)) {
	m.mu.Lock()
	snapshot := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		snapshot = append(snapshot, s)
	}
	m.mu.Unlock()

	for _, s := range snapshot {
		fn(s)
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
