package rules

import "time"

// ExpiredTariffGrace is how long after validUntil an expired tariff's type
// may still be used for point-cost lookups. Quota checks treat the tariff
// as absent the moment it expires.
const ExpiredTariffGrace = 24 * time.Hour

func DayKey(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format("2006-01-02")
}

func NextResetAt(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return next.UTC()
}
