package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UsagePeriod is one interval during which a tracked item was in use.
// EndDate NULL means the period is still open; a closed period is never
// modified again.
type UsagePeriod struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ItemID    uuid.UUID         `gorm:"column:item_id;type:uuid;not null;index"`
	StartDate time.Time         `gorm:"column:start_date;not null"`
	EndDate   *time.Time        `gorm:"column:end_date"`
	Location  *string           `gorm:"column:location"`
	Notes     *string           `gorm:"column:notes"`
	Readings  datatypes.JSONMap `gorm:"column:readings"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (UsagePeriod) TableName() string {
	return "usage_periods"
}

// IsOpen reports whether the period has not been closed yet.
func (p UsagePeriod) IsOpen() bool {
	return p.EndDate == nil
}

// BeforeCreate assigns the primary key client side so SQLite and Postgres behave alike.
func (p *UsagePeriod) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
