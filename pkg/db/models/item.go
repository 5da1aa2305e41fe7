package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stashkeeper-backend/pkg/enums"
)

// Item is a standalone collectible such as a graded card.
type Item struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID       uuid.UUID           `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:items_owner_number_idx,priority:1"`
	ItemNumber    int64               `gorm:"column:item_number;not null;uniqueIndex:items_owner_number_idx,priority:2"`
	Name          string              `gorm:"column:name;not null"`
	Category      enums.CardCategory  `gorm:"column:category;not null"`
	Brand         *string             `gorm:"column:brand"`
	Year          *int                `gorm:"column:year"`
	Grade         *string             `gorm:"column:grade"`
	Description   *string             `gorm:"column:description"`
	PurchasePrice decimal.NullDecimal `gorm:"column:purchase_price;type:numeric(12,2)"`
	CurrentValue  decimal.NullDecimal `gorm:"column:current_value;type:numeric(12,2)"`
	Status        enums.ItemStatus    `gorm:"column:status;not null;default:COLLECTION"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Item) TableName() string {
	return "items"
}

// BeforeCreate assigns the primary key client side so SQLite and Postgres behave alike.
func (i *Item) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
