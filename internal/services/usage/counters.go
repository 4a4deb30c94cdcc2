package usage

import (
	"sync"
	"time"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
)

// Snapshot is the local read view of the counters.
type Snapshot struct {
	DailyGenerations int
	DailyImages      int
	TotalGenerations int
	TotalImages      int
	LastResetAt      time.Time
	Seq              uint64
	Loaded           bool
}

// ServerSnapshot is what the remote account service reports during
// reconciliation.
type ServerSnapshot struct {
	DailyGenerations int
	DailyImages      int
	TotalGenerations int
	TotalImages      int
	LastActive       time.Time
}

// Counters holds the per-session usage state. Every local increment bumps a
// monotonic sequence number; Reconcile uses it to tell whether local state
// moved since the last successful reconciliation.
type Counters struct {
	mu sync.Mutex

	dailyGenerations int
	dailyImages      int
	totalGenerations int
	totalImages      int
	lastResetAt      time.Time

	seq           uint64
	reconciledSeq uint64
	loaded        bool

	now func() time.Time
}

func NewCounters() *Counters {
	return &Counters{now: time.Now}
}

// Increment applies one optimistic local bump for the category.
func (c *Counters) Increment(category enums.ActionCategory) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch category {
	case enums.ActionCategoryImage:
		c.dailyImages++
		c.totalImages++
	default:
		c.dailyGenerations++
		c.totalGenerations++
	}
	c.seq++
}

// ResetDaily zeroes the daily counters. Totals are untouched.
func (c *Counters) ResetDaily() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dailyGenerations = 0
	c.dailyImages = 0
	c.lastResetAt = c.now().UTC()
	c.seq++
}

// Reconcile merges a server snapshot into the local counters.
//
// Totals are monotonically non-decreasing, so a stale snapshot can never
// pull them down. Dailies adopt the server value outright unless local
// increments happened after the last reconciliation; in that conflict the
// daily becomes the max of both sides so a quota the user already consumed
// server-side is not re-granted. The return value reports whether a
// daily>total divergence had to be corrected.
func (c *Counters) Reconcile(snapshot ServerSnapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	conflict := c.seq > c.reconciledSeq

	c.totalGenerations = maxInt(c.totalGenerations, snapshot.TotalGenerations)
	c.totalImages = maxInt(c.totalImages, snapshot.TotalImages)

	if conflict {
		c.dailyGenerations = maxInt(c.dailyGenerations, snapshot.DailyGenerations)
		c.dailyImages = maxInt(c.dailyImages, snapshot.DailyImages)
	} else {
		c.dailyGenerations = snapshot.DailyGenerations
		c.dailyImages = snapshot.DailyImages
	}

	corrected := false
	if c.dailyGenerations > c.totalGenerations {
		c.dailyGenerations = snapshot.DailyGenerations
		c.totalGenerations = maxInt(c.totalGenerations, c.dailyGenerations)
		corrected = true
	}
	if c.dailyImages > c.totalImages {
		c.dailyImages = snapshot.DailyImages
		c.totalImages = maxInt(c.totalImages, c.dailyImages)
		corrected = true
	}

	c.reconciledSeq = c.seq
	c.loaded = true
	return corrected
}

func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		DailyGenerations: c.dailyGenerations,
		DailyImages:      c.dailyImages,
		TotalGenerations: c.totalGenerations,
		TotalImages:      c.totalImages,
		LastResetAt:      c.lastResetAt,
		Seq:              c.seq,
		Loaded:           c.loaded,
	}
}

// Daily returns the current daily count for the category.
func (s Snapshot) Daily(category enums.ActionCategory) int {
	if category == enums.ActionCategoryImage {
		return s.DailyImages
	}
	return s.DailyGenerations
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
