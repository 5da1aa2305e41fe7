package models

// All lists the models owned by this service, in dependency order.
func All() []any {
	return []any{
		&ItemSequence{},
		&Item{},
		&TrackedItem{},
		&UsagePeriod{},
	}
}
