package models

import "github.com/google/uuid"

// ItemSequence stores the last item number handed out per owner and kind.
type ItemSequence struct {
	OwnerID    uuid.UUID `gorm:"column:owner_id;type:uuid;primaryKey"`
	Kind       string    `gorm:"column:kind;primaryKey"`
	LastNumber int64     `gorm:"column:last_number;not null;default:0"`
}

func (ItemSequence) TableName() string {
	return "item_sequences"
}
