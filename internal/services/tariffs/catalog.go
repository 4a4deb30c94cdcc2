package tariffs

import (
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/config"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
)

// Limits is one catalog row. A zero Limits means "no allowance": callers can
// always compare against it without a presence check.
type Limits struct {
	DailyGenerationLimit int
	DailyImageLimit      int
	PointsCost           int
}

// Catalog is the immutable tariffType -> limits mapping built at process
// start. It is never mutated after New returns.
type Catalog struct {
	entries     map[enums.TariffType]Limits
	actionCosts map[enums.ActionCategory]int
}

func New(cfg config.MeteringConfig) *Catalog {
	entries := make(map[enums.TariffType]Limits, len(cfg.Tariffs))
	for _, t := range cfg.Tariffs {
		entries[enums.TariffType(t.Type)] = Limits{
			DailyGenerationLimit: t.DailyGenerationLimit,
			DailyImageLimit:      t.DailyImageLimit,
			PointsCost:           t.PointsCost,
		}
	}

	return &Catalog{
		entries: entries,
		actionCosts: map[enums.ActionCategory]int{
			enums.ActionCategoryGeneration: cfg.PointsCosts.Generation,
			enums.ActionCategoryImage:      cfg.PointsCosts.Image,
		},
	}
}

// Limits never errors: an unknown tariff type yields the zero row so the
// engine can proceed to a decision instead of crashing on missing metadata.
func (c *Catalog) Limits(tariff enums.TariffType) Limits {
	return c.entries[tariff]
}

// Known reports whether the catalog holds an entry for the tariff type.
func (c *Catalog) Known(tariff enums.TariffType) bool {
	_, ok := c.entries[tariff]
	return ok
}

// PointsCost is the price of one action when billed against the points
// ledger. Unknown categories cost zero.
func (c *Catalog) PointsCost(category enums.ActionCategory) int {
	return c.actionCosts[category]
}

// DailyLimit picks the per-category daily limit out of a row.
func (l Limits) DailyLimit(category enums.ActionCategory) int {
	switch category {
	case enums.ActionCategoryImage:
		return l.DailyImageLimit
	default:
		return l.DailyGenerationLimit
	}
}
