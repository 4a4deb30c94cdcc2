package enums

// AttemptMode is the caller's request: auto resolves the accounting regime
// from tariff state, force_points spends the points ledger explicitly.
type AttemptMode string

const (
	AttemptModeAuto        AttemptMode = "auto"
	AttemptModeForcePoints AttemptMode = "force_points"
)

func (m AttemptMode) Valid() bool {
	switch m {
	case AttemptModeAuto, AttemptModeForcePoints:
		return true
	default:
		return false
	}
}
