package rules

import "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"

// FallbackLimits are the hard-coded per-tariff limits used while the
// authoritative catalog entry is unavailable. They exist only to keep a
// paying user unblocked during an outage; any successful reconciliation
// replaces them with catalog data.
type FallbackLimits struct {
	DailyGenerationLimit int
	DailyImageLimit      int
	PointsCost           int
}

var fallbackTable = map[enums.TariffType]FallbackLimits{
	enums.TariffTypeBasic:    {DailyGenerationLimit: 6, DailyImageLimit: 3, PointsCost: 400},
	enums.TariffTypeStandard: {DailyGenerationLimit: 15, DailyImageLimit: 8, PointsCost: 900},
	enums.TariffTypePremium:  {DailyGenerationLimit: 40, DailyImageLimit: 20, PointsCost: 1900},
}

// FallbackFor returns the static limits for a recognized tariff type.
// Unknown types get no fallback: the second return is false and the caller
// must deny rather than guess.
func FallbackFor(tariff enums.TariffType) (FallbackLimits, bool) {
	limits, ok := fallbackTable[tariff]
	return limits, ok
}
