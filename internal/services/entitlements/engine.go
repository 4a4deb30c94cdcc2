package entitlements

import (
	"time"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/rules"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/tariffs"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/usage"
)

const (
	ReasonInsufficientPoints = "insufficient points"
	ReasonNoActiveTariff     = "no active tariff"
	ReasonUnknownTariff      = "unknown tariff"
	ReasonDailyLimitReached  = "daily limit reached"
)

// Account is the acting identity. Role comes from the remote identity
// service and is never overridden locally.
type Account struct {
	UserID int64
	Role   enums.Role
}

// TariffState is the account's current subscription, possibly absent.
type TariffState struct {
	Type       enums.TariffType
	ValidUntil *time.Time
}

// ActiveAt reports whether the tariff grants quotas at the given instant.
// A nil ValidUntil means no expiry.
func (t TariffState) ActiveAt(now time.Time) bool {
	if t.Type.IsZero() {
		return false
	}
	if t.ValidUntil == nil {
		return true
	}
	return t.ValidUntil.After(now)
}

// TypeForCostsAt returns the tariff type usable for point-cost lookups. An
// expired tariff keeps serving cost lookups for a grace window past
// ValidUntil even though it grants no quota.
func (t TariffState) TypeForCostsAt(now time.Time) (enums.TariffType, bool) {
	if t.Type.IsZero() {
		return enums.TariffTypeNone, false
	}
	if t.ValidUntil == nil || t.ValidUntil.Add(rules.ExpiredTariffGrace).After(now) {
		return t.Type, true
	}
	return enums.TariffTypeNone, false
}

// Decision is the engine's answer for one attempt. It is produced fresh per
// check and never persisted.
type Decision struct {
	Allowed    bool
	Mode       enums.AccountingMode
	Reason     string
	DailyLimit int
	PointsCost int
	Fallback   bool
}

// CheckInput bundles the state the decision is made against. Limits, when
// set, is the authoritative per-account row fetched from the remote service
// and takes precedence over the catalog and the fallback table.
type CheckInput struct {
	Account       Account
	Tariff        TariffState
	Limits        *tariffs.Limits
	Usage         usage.Snapshot
	PointsBalance int
	Category      enums.ActionCategory
	Mode          enums.AttemptMode
}

// Engine decides whether an action may proceed and under which accounting
// regime. Every branch returns a well-formed Decision; the engine never
// panics and never errors.
type Engine struct {
	catalog *tariffs.Catalog
	now     func() time.Time
}

func NewEngine(catalog *tariffs.Catalog) *Engine {
	return &Engine{
		catalog: catalog,
		now:     time.Now,
	}
}

func (e *Engine) Check(in CheckInput) Decision {
	// Unlimited roles short-circuit everything else. Unknown roles never do.
	if in.Account.Role.Unlimited() {
		return Decision{Allowed: true, Mode: enums.AccountingModeUnlimited}
	}

	if in.Mode == enums.AttemptModeForcePoints {
		return e.checkPoints(in)
	}

	now := e.now().UTC()
	if !in.Tariff.ActiveAt(now) {
		return Decision{
			Allowed: false,
			Mode:    enums.AccountingModeDenied,
			Reason:  ReasonNoActiveTariff,
		}
	}

	limit, fallback, ok := e.resolveDailyLimit(in.Limits, in.Tariff.Type, in.Category)
	if !ok {
		return Decision{
			Allowed: false,
			Mode:    enums.AccountingModeDenied,
			Reason:  ReasonUnknownTariff,
		}
	}

	// Counters that were never loaded and never bumped are treated
	// permissively: the first attempt goes through rather than blocking a
	// user whose stats have not arrived yet.
	if !in.Usage.Loaded && in.Usage.Seq == 0 {
		return Decision{
			Allowed:    true,
			Mode:       enums.AccountingModeTariffQuota,
			DailyLimit: limit,
			Fallback:   fallback,
		}
	}

	// A counter equal to the limit is the limit reached, not one more
	// allowed.
	if in.Usage.Daily(in.Category) < limit {
		return Decision{
			Allowed:    true,
			Mode:       enums.AccountingModeTariffQuota,
			DailyLimit: limit,
			Fallback:   fallback,
		}
	}

	// The engine reports the denial only; offering the points alternative
	// is the caller's choice.
	return Decision{
		Allowed:    false,
		Mode:       enums.AccountingModeDenied,
		Reason:     ReasonDailyLimitReached,
		DailyLimit: limit,
		Fallback:   fallback,
	}
}

func (e *Engine) checkPoints(in CheckInput) Decision {
	cost := e.catalog.PointsCost(in.Category)
	if in.PointsBalance < cost {
		return Decision{
			Allowed:    false,
			Mode:       enums.AccountingModeDenied,
			Reason:     ReasonInsufficientPoints,
			PointsCost: cost,
		}
	}
	return Decision{
		Allowed:    true,
		Mode:       enums.AccountingModePoints,
		PointsCost: cost,
	}
}

// RenewalCost quotes the points price of renewing the account's current
// tariff. An expired tariff keeps its quote through the grace window so the
// client can still offer a one-tap renewal right after expiry.
func (e *Engine) RenewalCost(t TariffState) (enums.TariffType, int, bool) {
	typ, ok := t.TypeForCostsAt(e.now().UTC())
	if !ok || !e.catalog.Known(typ) {
		return enums.TariffTypeNone, 0, false
	}
	return typ, e.catalog.Limits(typ).PointsCost, true
}

// resolveDailyLimit prefers the authoritative reconciled row, then the
// catalog; a tariff neither knows degrades to the static fallback table
// instead of blocking a paying user on missing metadata. Only a type absent
// from all three is unresolvable.
func (e *Engine) resolveDailyLimit(authoritative *tariffs.Limits, tariff enums.TariffType, category enums.ActionCategory) (int, bool, bool) {
	if authoritative != nil {
		return authoritative.DailyLimit(category), false, true
	}
	if e.catalog.Known(tariff) {
		return e.catalog.Limits(tariff).DailyLimit(category), false, true
	}

	fb, ok := rules.FallbackFor(tariff)
	if !ok {
		return 0, false, false
	}
	if category == enums.ActionCategoryImage {
		return fb.DailyImageLimit, true, true
	}
	return fb.DailyGenerationLimit, true, true
}
