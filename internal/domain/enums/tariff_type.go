package enums

type TariffType string

const (
	TariffTypeNone     TariffType = ""
	TariffTypeBasic    TariffType = "basic"
	TariffTypeStandard TariffType = "standard"
	TariffTypePremium  TariffType = "premium"
)

func (t TariffType) IsZero() bool {
	return t == TariffTypeNone
}
