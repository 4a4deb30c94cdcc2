package enums

type ActionCategory string

const (
	ActionCategoryGeneration ActionCategory = "generation"
	ActionCategoryImage      ActionCategory = "image"
)

func (c ActionCategory) Valid() bool {
	switch c {
	case ActionCategoryGeneration, ActionCategoryImage:
		return true
	default:
		return false
	}
}
