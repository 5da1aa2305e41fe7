package items

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/stashkeeper-backend/pkg/cache"
	"github.com/angelmondragon/stashkeeper-backend/pkg/db/models"
	"github.com/angelmondragon/stashkeeper-backend/pkg/enums"
	"github.com/angelmondragon/stashkeeper-backend/pkg/types"
)

// ItemDTO is the public representation of an item. Money renders with two
// fractional digits or null.
type ItemDTO struct {
	ID            uuid.UUID          `json:"id"`
	ItemNumber    int64              `json:"item_number"`
	Name          string             `json:"name"`
	Category      enums.CardCategory `json:"category"`
	Brand         *string            `json:"brand,omitempty"`
	Year          *int               `json:"year,omitempty"`
	Grade         *string            `json:"grade,omitempty"`
	Description   *string            `json:"description,omitempty"`
	PurchasePrice *string            `json:"purchase_price"`
	CurrentValue  *string            `json:"current_value"`
	Status        enums.ItemStatus   `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// CreateItemInput holds the payload to create an item. Money fields are
// decimal strings; an empty string stores NULL.
type CreateItemInput struct {
	Name          string            `json:"name" validate:"required,max=200"`
	Category      string            `json:"category" validate:"required"`
	Brand         *string           `json:"brand" validate:"omitempty,max=120"`
	Year          *int              `json:"year" validate:"omitempty,gte=1800,lte=2100"`
	Grade         *string           `json:"grade" validate:"omitempty,max=40"`
	Description   *string           `json:"description" validate:"omitempty,max=4000"`
	PurchasePrice *string           `json:"purchase_price"`
	CurrentValue  *string           `json:"current_value"`
	Status        *enums.ItemStatus `json:"status"`
}

// UpdateItemInput holds optional mutations; nil leaves a field untouched and
// an empty string clears an optional one.
type UpdateItemInput struct {
	Name          *string           `json:"name" validate:"omitempty,min=1,max=200"`
	Category      *string           `json:"category"`
	Brand         *string           `json:"brand" validate:"omitempty,max=120"`
	Year          *int              `json:"year" validate:"omitempty,gte=1800,lte=2100"`
	Grade         *string           `json:"grade" validate:"omitempty,max=40"`
	Description   *string           `json:"description" validate:"omitempty,max=4000"`
	PurchasePrice *string           `json:"purchase_price"`
	CurrentValue  *string           `json:"current_value"`
	Status        *enums.ItemStatus `json:"status"`
}

func toDTO(item *models.Item) *ItemDTO {
	return &ItemDTO{
		ID:            item.ID,
		ItemNumber:    item.ItemNumber,
		Name:          item.Name,
		Category:      item.Category,
		Brand:         item.Brand,
		Year:          item.Year,
		Grade:         item.Grade,
		Description:   item.Description,
		PurchasePrice: types.FormatMoney(item.PurchasePrice),
		CurrentValue:  types.FormatMoney(item.CurrentValue),
		Status:        item.Status,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

func rowOf(item *models.Item) *cache.Row {
	if item == nil {
		return nil
	}
	return &cache.Row{
		Kind:      string(enums.ItemKindItem),
		ID:        item.ID.String(),
		Status:    string(item.Status),
		Dimension: string(item.Category),
	}
}
