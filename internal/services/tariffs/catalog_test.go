package tariffs

import (
	"testing"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/config"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
)

func testCatalog() *Catalog {
	return New(config.MeteringConfig{
		Tariffs: []config.TariffConfig{
			{Type: "basic", DailyGenerationLimit: 6, DailyImageLimit: 3, PointsCost: 400},
			{Type: "premium", DailyGenerationLimit: 40, DailyImageLimit: 20, PointsCost: 1900},
		},
		PointsCosts: config.PointsCosts{Generation: 8, Image: 15},
	})
}

func TestLimitsKnownTariff(t *testing.T) {
	c := testCatalog()

	limits := c.Limits(enums.TariffTypeBasic)
	if limits.DailyGenerationLimit != 6 || limits.DailyImageLimit != 3 || limits.PointsCost != 400 {
		t.Fatalf("unexpected basic limits: %+v", limits)
	}
	if !c.Known(enums.TariffTypeBasic) {
		t.Fatalf("basic should be known")
	}
}

func TestLimitsUnknownTariffIsZeroNotError(t *testing.T) {
	c := testCatalog()

	limits := c.Limits(enums.TariffType("tariff_99"))
	if limits != (Limits{}) {
		t.Fatalf("unknown tariff should yield the zero row, got %+v", limits)
	}
	if c.Known(enums.TariffType("tariff_99")) {
		t.Fatalf("tariff_99 should not be known")
	}
}

func TestPointsCostPerCategory(t *testing.T) {
	c := testCatalog()

	if got := c.PointsCost(enums.ActionCategoryGeneration); got != 8 {
		t.Fatalf("unexpected generation cost: %d", got)
	}
	if got := c.PointsCost(enums.ActionCategoryImage); got != 15 {
		t.Fatalf("unexpected image cost: %d", got)
	}
	if got := c.PointsCost(enums.ActionCategory("video")); got != 0 {
		t.Fatalf("unknown category should cost 0, got %d", got)
	}
}

func TestDailyLimitSelector(t *testing.T) {
	limits := Limits{DailyGenerationLimit: 10, DailyImageLimit: 4}
	if limits.DailyLimit(enums.ActionCategoryGeneration) != 10 {
		t.Fatalf("wrong generation limit")
	}
	if limits.DailyLimit(enums.ActionCategoryImage) != 4 {
		t.Fatalf("wrong image limit")
	}
}
