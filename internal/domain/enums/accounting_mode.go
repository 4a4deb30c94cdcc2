package enums

// AccountingMode is the regime an allowed action is billed under.
type AccountingMode string

const (
	AccountingModeUnlimited   AccountingMode = "unlimited"
	AccountingModeTariffQuota AccountingMode = "tariff_quota"
	AccountingModePoints      AccountingMode = "points"
	AccountingModeDenied      AccountingMode = "denied"
)
