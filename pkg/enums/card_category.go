package enums

import "fmt"

// CardCategory is the discrete classification dimension for standalone items.
type CardCategory string

const (
	CardCategoryBaseball   CardCategory = "BASEBALL"
	CardCategoryBasketball CardCategory = "BASKETBALL"
	CardCategoryFootball   CardCategory = "FOOTBALL"
	CardCategoryHockey     CardCategory = "HOCKEY"
	CardCategorySoccer     CardCategory = "SOCCER"
	CardCategoryTCG        CardCategory = "TCG"
	CardCategoryOther      CardCategory = "OTHER"
)

var validCardCategories = []CardCategory{
	CardCategoryBaseball,
	CardCategoryBasketball,
	CardCategoryFootball,
	CardCategoryHockey,
	CardCategorySoccer,
	CardCategoryTCG,
	CardCategoryOther,
}

// String implements fmt.Stringer.
func (c CardCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CardCategory.
func (c CardCategory) IsValid() bool {
	for _, candidate := range validCardCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCardCategory converts raw input into a CardCategory.
func ParseCardCategory(value string) (CardCategory, error) {
	for _, candidate := range validCardCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid card category %q", value)
}
