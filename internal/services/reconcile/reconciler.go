package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/remote/accountapi"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/entitlements"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/usage"
)

type State string

const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching"
	StateReconciled State = "reconciled"
	StateDegraded   State = "degraded"
)

var ErrSuperseded = errors.New("reconciliation superseded by a newer trigger")

// Fetcher is the read side of the account service the reconciler needs.
type Fetcher interface {
	GetTariffInfo(ctx context.Context, userID int64) (accountapi.TariffInfo, error)
	GetUsageStats(ctx context.Context, userID int64) (accountapi.UsageStats, error)
}

// Snapshot is one consistent authoritative view fetched from the account
// service, handed to the session for application.
type Snapshot struct {
	Tariff       entitlements.TariffState
	TariffLimits *accountapi.LimitInfo
	Usage        usage.ServerSnapshot
	Points       int
}

// Reconciler refreshes one session's tariff and usage state from the
// account service. Sync runs the bounded retry loop; concurrent triggers
// race safely because only the newest trigger's result is applied — an
// older fetch that loses the race is discarded, not cancelled.
type Reconciler struct {
	fetcher Fetcher
	policy  RetryPolicy
	log     *zap.Logger

	mu     sync.Mutex
	state  State
	latest uint64

	sleep func(ctx context.Context, d time.Duration) error
}

func New(fetcher Fetcher, policy RetryPolicy, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		fetcher: fetcher,
		policy:  policy.normalized(),
		log:     log,
		state:   StateIdle,
		sleep:   sleepCtx,
	}
}

func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Sync fetches the authoritative snapshot with retries and applies it via
// the callback. Callers run it in the background; the apply callback fires
// on the Sync goroutine only if this trigger is still the newest.
func (r *Reconciler) Sync(ctx context.Context, userID int64, apply func(Snapshot)) error {
	r.mu.Lock()
	r.latest++
	gen := r.latest
	r.state = StateFetching
	r.mu.Unlock()

	snapshot, err := r.fetch(ctx, userID, gen)
	if err != nil {
		if errors.Is(err, ErrSuperseded) {
			return err
		}
		r.finish(gen, StateDegraded)
		r.log.Warn("reconciliation degraded",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	r.mu.Lock()
	if gen != r.latest {
		r.mu.Unlock()
		return ErrSuperseded
	}
	r.state = StateReconciled
	r.mu.Unlock()

	apply(snapshot)
	return nil
}

func (r *Reconciler) fetch(ctx context.Context, userID int64, gen uint64) (Snapshot, error) {
	var lastErr error

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := r.sleep(ctx, r.policy.Delay(attempt-1)); err != nil {
				return Snapshot{}, err
			}
		}
		if r.superseded(gen) {
			return Snapshot{}, ErrSuperseded
		}

		snapshot, err := r.fetchOnce(ctx, userID)
		if err == nil {
			return snapshot, nil
		}
		lastErr = err
	}

	return Snapshot{}, fmt.Errorf("reconcile after %d attempts: %w", r.policy.MaxAttempts, lastErr)
}

func (r *Reconciler) fetchOnce(ctx context.Context, userID int64) (Snapshot, error) {
	tariff, err := r.fetcher.GetTariffInfo(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch tariff info: %w", err)
	}

	stats, err := r.fetcher.GetUsageStats(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch usage stats: %w", err)
	}

	return Snapshot{
		Tariff: entitlements.TariffState{
			Type:       tariff.Type,
			ValidUntil: tariff.ValidUntil,
		},
		TariffLimits: tariff.Limits,
		Usage: usage.ServerSnapshot{
			DailyGenerations: stats.DailyGenerations,
			DailyImages:      stats.DailyImages,
			TotalGenerations: stats.TotalGenerations,
			TotalImages:      stats.TotalImages,
			LastActive:       stats.LastActive,
		},
		Points: tariff.Points,
	}, nil
}

func (r *Reconciler) superseded(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return gen != r.latest
}

func (r *Reconciler) finish(gen uint64, state State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen == r.latest {
		r.state = state
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
