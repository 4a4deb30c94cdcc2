package rules

import (
	"testing"
	"time"
)

func TestDayKeyUTCFallback(t *testing.T) {
	now := time.Date(2025, 3, 14, 23, 30, 0, 0, time.UTC)
	if got := DayKey(now, nil); got != "2025-03-14" {
		t.Fatalf("expected 2025-03-14, got %s", got)
	}
}

func TestDayKeyRespectsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2025, 3, 14, 23, 30, 0, 0, time.UTC)
	if got := DayKey(now, loc); got != "2025-03-15" {
		t.Fatalf("expected 2025-03-15, got %s", got)
	}
}

func TestNextResetAtIsLocalMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	reset := NextResetAt(now, loc)

	want := time.Date(2025, 3, 14, 21, 0, 0, 0, time.UTC)
	if !reset.Equal(want) {
		t.Fatalf("expected reset at %v, got %v", want, reset)
	}
}

func TestFallbackForKnownTiers(t *testing.T) {
	limits, ok := FallbackFor("basic")
	if !ok {
		t.Fatalf("expected fallback for basic tier")
	}
	if limits.DailyGenerationLimit != 6 || limits.DailyImageLimit != 3 {
		t.Fatalf("unexpected basic limits: %+v", limits)
	}
}

func TestFallbackForUnknownTier(t *testing.T) {
	if _, ok := FallbackFor("tariff_99"); ok {
		t.Fatalf("expected no fallback for unknown tier")
	}
}
