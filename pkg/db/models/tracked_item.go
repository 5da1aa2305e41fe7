package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stashkeeper-backend/pkg/enums"
)

// TrackedItem is a collectible whose periods of active use are recorded, such
// as a quilt moving between a bed and a storage chest.
type TrackedItem struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID       uuid.UUID           `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:tracked_items_owner_number_idx,priority:1"`
	ItemNumber    int64               `gorm:"column:item_number;not null;uniqueIndex:tracked_items_owner_number_idx,priority:2"`
	Name          string              `gorm:"column:name;not null"`
	Season        enums.Season        `gorm:"column:season;not null"`
	Material      *string             `gorm:"column:material"`
	Dimensions    *string             `gorm:"column:dimensions"`
	Description   *string             `gorm:"column:description"`
	PurchasePrice decimal.NullDecimal `gorm:"column:purchase_price;type:numeric(12,2)"`
	CurrentValue  decimal.NullDecimal `gorm:"column:current_value;type:numeric(12,2)"`
	Status        enums.TrackedStatus `gorm:"column:status;not null;default:STORAGE"`
	UsagePeriods  []UsagePeriod       `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (TrackedItem) TableName() string {
	return "tracked_items"
}

// BeforeCreate assigns the primary key client side so SQLite and Postgres behave alike.
func (t *TrackedItem) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
