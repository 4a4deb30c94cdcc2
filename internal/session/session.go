package session

import (
	"sync"
	"time"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/entitlements"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/points"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/reconcile"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/tariffs"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/usage"
)

// Session owns all mutable per-account metering state for one active
// client session: account identity, tariff state, usage counters and the
// points ledger. It replaces the ambient store fields of the original
// client; everything that needs the state gets a handle to the session.
type Session struct {
	mu sync.Mutex

	account  entitlements.Account
	tariff   entitlements.TariffState
	limits   *tariffs.Limits
	counters *usage.Counters
	ledger   *points.Ledger

	reconciler *reconcile.Reconciler
	lastSeen   time.Time
	now        func() time.Time
}

func newSession(account entitlements.Account, reconciler *reconcile.Reconciler) *Session {
	s := &Session{
		account:    account,
		counters:   usage.NewCounters(),
		ledger:     points.NewLedger(0),
		reconciler: reconciler,
		now:        time.Now,
	}
	s.lastSeen = s.now().UTC()
	return s
}

func (s *Session) Account() entitlements.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

func (s *Session) Tariff() entitlements.TariffState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tariff
}

func (s *Session) Counters() *usage.Counters {
	return s.counters
}

func (s *Session) Ledger() *points.Ledger {
	return s.ledger
}

func (s *Session) Reconciler() *reconcile.Reconciler {
	return s.reconciler
}

// CheckInput assembles the entitlement engine's view of this session for
// one attempt.
func (s *Session) CheckInput(category enums.ActionCategory, mode enums.AttemptMode) entitlements.CheckInput {
	s.mu.Lock()
	account := s.account
	tariff := s.tariff
	limits := s.limits
	s.mu.Unlock()

	return entitlements.CheckInput{
		Account:       account,
		Tariff:        tariff,
		Limits:        limits,
		Usage:         s.counters.Snapshot(),
		PointsBalance: s.ledger.Balance(),
		Category:      category,
		Mode:          mode,
	}
}

// ApplySnapshot installs one reconciled authoritative view: tariff state,
// per-account limits, usage counters and points balance.
func (s *Session) ApplySnapshot(snap reconcile.Snapshot) {
	s.mu.Lock()
	s.tariff = snap.Tariff
	if snap.TariffLimits != nil {
		s.limits = &tariffs.Limits{
			DailyGenerationLimit: snap.TariffLimits.DailyGenerationLimit,
			DailyImageLimit:      snap.TariffLimits.DailyImageLimit,
			PointsCost:           snap.TariffLimits.PointsCost,
		}
	} else {
		s.limits = nil
	}
	s.mu.Unlock()

	s.counters.Reconcile(snap.Usage)
	s.ledger.SetBalance(snap.Points)
}

// ApplyTariffPurchase installs the freshly bought tariff and grants the
// fresh daily allotment immediately rather than waiting for the next
// calendar day.
func (s *Session) ApplyTariffPurchase(tariff enums.TariffType, validUntil *time.Time) {
	s.mu.Lock()
	s.tariff = entitlements.TariffState{Type: tariff, ValidUntil: validUntil}
	s.limits = nil
	s.mu.Unlock()

	s.counters.ResetDaily()
}

// Touch marks the session as recently used for the idle sweep.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = s.now().UTC()
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
