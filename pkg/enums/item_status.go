package enums

import "fmt"

// ItemStatus captures where a standalone collectible currently sits.
type ItemStatus string

const (
	ItemStatusCollection ItemStatus = "COLLECTION"
	ItemStatusForSale    ItemStatus = "FOR_SALE"
	ItemStatusSold       ItemStatus = "SOLD"
	ItemStatusDisplay    ItemStatus = "DISPLAY"
	ItemStatusGrading    ItemStatus = "GRADING"
)

var validItemStatuses = []ItemStatus{
	ItemStatusCollection,
	ItemStatusForSale,
	ItemStatusSold,
	ItemStatusDisplay,
	ItemStatusGrading,
}

// String implements fmt.Stringer.
func (s ItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ItemStatus.
func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseItemStatus converts raw input into an ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
