package usage

import (
	"testing"
	"time"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
)

func TestIncrementBumpsDailyTotalAndSeq(t *testing.T) {
	c := NewCounters()

	c.Increment(enums.ActionCategoryGeneration)
	c.Increment(enums.ActionCategoryGeneration)
	c.Increment(enums.ActionCategoryImage)

	snap := c.Snapshot()
	if snap.DailyGenerations != 2 || snap.TotalGenerations != 2 {
		t.Fatalf("unexpected generation counts: %+v", snap)
	}
	if snap.DailyImages != 1 || snap.TotalImages != 1 {
		t.Fatalf("unexpected image counts: %+v", snap)
	}
	if snap.Seq != 3 {
		t.Fatalf("expected seq 3, got %d", snap.Seq)
	}
}

func TestResetDailyKeepsTotals(t *testing.T) {
	c := NewCounters()
	c.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }

	c.Increment(enums.ActionCategoryGeneration)
	c.Increment(enums.ActionCategoryImage)
	c.ResetDaily()

	snap := c.Snapshot()
	if snap.DailyGenerations != 0 || snap.DailyImages != 0 {
		t.Fatalf("daily counters not reset: %+v", snap)
	}
	if snap.TotalGenerations != 1 || snap.TotalImages != 1 {
		t.Fatalf("totals must survive reset: %+v", snap)
	}
	if !snap.LastResetAt.Equal(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("lastResetAt not updated: %v", snap.LastResetAt)
	}
}

func TestReconcileAdoptsServerValuesWhenLocalIsQuiet(t *testing.T) {
	c := NewCounters()

	c.Reconcile(ServerSnapshot{
		DailyGenerations: 4,
		DailyImages:      1,
		TotalGenerations: 120,
		TotalImages:      30,
	})

	snap := c.Snapshot()
	if snap.DailyGenerations != 4 || snap.TotalGenerations != 120 {
		t.Fatalf("server values not adopted: %+v", snap)
	}
	if !snap.Loaded {
		t.Fatalf("counters should be loaded after reconcile")
	}
}

func TestReconcileStaleSnapshotNeverDecreasesTotals(t *testing.T) {
	c := NewCounters()
	c.Reconcile(ServerSnapshot{TotalGenerations: 100, DailyGenerations: 5})

	c.Reconcile(ServerSnapshot{TotalGenerations: 90, DailyGenerations: 3})

	snap := c.Snapshot()
	if snap.TotalGenerations != 100 {
		t.Fatalf("stale snapshot decreased total: %d", snap.TotalGenerations)
	}
	if snap.DailyGenerations != 3 {
		t.Fatalf("quiet local should adopt server daily: %d", snap.DailyGenerations)
	}
}

func TestReconcileConflictTakesMaxDaily(t *testing.T) {
	c := NewCounters()
	c.Reconcile(ServerSnapshot{DailyGenerations: 2, TotalGenerations: 50})

	// Local increments after the last reconciliation.
	c.Increment(enums.ActionCategoryGeneration)
	c.Increment(enums.ActionCategoryGeneration)

	c.Reconcile(ServerSnapshot{DailyGenerations: 3, TotalGenerations: 51})

	snap := c.Snapshot()
	if snap.DailyGenerations != 4 {
		t.Fatalf("conflict daily should be max(local=4, server=3), got %d", snap.DailyGenerations)
	}
	if snap.TotalGenerations != 52 {
		t.Fatalf("total should keep local lead, got %d", snap.TotalGenerations)
	}
}

func TestReconcileCorrectsDailyAboveTotal(t *testing.T) {
	c := NewCounters()

	corrected := c.Reconcile(ServerSnapshot{
		DailyGenerations: 10,
		TotalGenerations: 4,
	})

	if !corrected {
		t.Fatalf("expected divergence correction to be reported")
	}
	snap := c.Snapshot()
	if snap.DailyGenerations > snap.TotalGenerations {
		t.Fatalf("daily must not exceed total after reconcile: %+v", snap)
	}
}
