package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/remote/accountapi"
)

type fetcherStub struct {
	mu          sync.Mutex
	tariffCalls int
	usageCalls  int
	tariffErr   error
	usageErr    error
	tariff      accountapi.TariffInfo
	usage       accountapi.UsageStats
	gate        chan struct{}
}

func (f *fetcherStub) GetTariffInfo(_ context.Context, _ int64) (accountapi.TariffInfo, error) {
	f.mu.Lock()
	f.tariffCalls++
	first := f.tariffCalls == 1
	gate := f.gate
	f.mu.Unlock()
	if gate != nil && first {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tariffErr != nil {
		return accountapi.TariffInfo{}, f.tariffErr
	}
	return f.tariff, nil
}

func (f *fetcherStub) setTariff(info accountapi.TariffInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tariff = info
}

func (f *fetcherStub) GetUsageStats(_ context.Context, _ int64) (accountapi.UsageStats, error) {
	f.mu.Lock()
	f.usageCalls++
	f.mu.Unlock()
	if f.usageErr != nil {
		return accountapi.UsageStats{}, f.usageErr
	}
	return f.usage, nil
}

func (f *fetcherStub) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tariffCalls
}

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}
}

func TestSyncAppliesSnapshotAndReconciles(t *testing.T) {
	fetcher := &fetcherStub{
		tariff: accountapi.TariffInfo{Type: enums.TariffTypeBasic, Points: 75},
		usage:  accountapi.UsageStats{DailyGenerations: 2, TotalGenerations: 40},
	}
	r := New(fetcher, fastPolicy(3), nil)
	r.sleep = noSleep

	var applied Snapshot
	err := r.Sync(context.Background(), 42, func(s Snapshot) { applied = s })
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if r.State() != StateReconciled {
		t.Fatalf("expected reconciled state, got %s", r.State())
	}
	if applied.Tariff.Type != enums.TariffTypeBasic || applied.Points != 75 {
		t.Fatalf("unexpected snapshot: %+v", applied)
	}
	if applied.Usage.TotalGenerations != 40 {
		t.Fatalf("usage not propagated: %+v", applied.Usage)
	}
}

func TestSyncExhaustsRetriesAndDegrades(t *testing.T) {
	fetcher := &fetcherStub{tariffErr: accountapi.ErrUnavailable}
	r := New(fetcher, fastPolicy(3), nil)
	r.sleep = noSleep

	err := r.Sync(context.Background(), 42, func(Snapshot) {
		t.Fatalf("apply must not run on failure")
	})
	if !errors.Is(err, accountapi.ErrUnavailable) {
		t.Fatalf("expected wrapped ErrUnavailable, got %v", err)
	}
	if r.State() != StateDegraded {
		t.Fatalf("expected degraded state, got %s", r.State())
	}
	if fetcher.calls() != 3 {
		t.Fatalf("expected 3 attempts, got %d", fetcher.calls())
	}
}

func TestSyncRetriesUntilSuccess(t *testing.T) {
	fetcher := &fetcherStub{usage: accountapi.UsageStats{DailyGenerations: 1}}
	fetcher.usageErr = accountapi.ErrUnavailable
	r := New(fetcher, fastPolicy(5), nil)
	r.sleep = func(_ context.Context, _ time.Duration) error {
		// Heal the remote before the second attempt.
		fetcher.usageErr = nil
		return nil
	}

	applied := false
	if err := r.Sync(context.Background(), 42, func(Snapshot) { applied = true }); err != nil {
		t.Fatalf("sync should recover: %v", err)
	}
	if !applied {
		t.Fatalf("snapshot not applied after recovery")
	}
}

func TestStaleSyncResultIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	slow := &fetcherStub{
		tariff: accountapi.TariffInfo{Type: enums.TariffTypeBasic},
		gate:   gate,
	}
	r := New(slow, fastPolicy(1), nil)
	r.sleep = noSleep

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- r.Sync(context.Background(), 42, func(Snapshot) {
			t.Errorf("stale result must not be applied")
		})
	}()

	// Wait for the first fetch to be in flight, then supersede it.
	for slow.calls() == 0 {
		time.Sleep(time.Millisecond)
	}
	slow.setTariff(accountapi.TariffInfo{Type: enums.TariffTypePremium})

	var newest Snapshot
	if err := r.Sync(context.Background(), 42, func(s Snapshot) { newest = s }); err != nil {
		t.Fatalf("newest sync failed: %v", err)
	}
	close(gate)

	if err := <-firstDone; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded for the stale sync, got %v", err)
	}
	if newest.Tariff.Type != enums.TariffTypePremium {
		t.Fatalf("newest snapshot lost: %+v", newest)
	}
	if r.State() != StateReconciled {
		t.Fatalf("state should reflect the newest sync, got %s", r.State())
	}
}

func TestSyncHonorsContextCancellation(t *testing.T) {
	fetcher := &fetcherStub{tariffErr: accountapi.ErrUnavailable}
	r := New(fetcher, RetryPolicy{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Sync(ctx, 42, func(Snapshot) {})
	if err == nil {
		t.Fatalf("expected error from cancelled context")
	}
}

func TestRetryPolicyDelayDoublesAndCaps(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, InitialDelay: 500 * time.Millisecond, MaxDelay: 3 * time.Second}

	want := []time.Duration{
		500 * time.Millisecond,
		time.Second,
		2 * time.Second,
		3 * time.Second,
		3 * time.Second,
	}
	for i, w := range want {
		if got := p.Delay(i + 1); got != w {
			t.Fatalf("delay(%d): expected %v, got %v", i+1, w, got)
		}
	}
}
