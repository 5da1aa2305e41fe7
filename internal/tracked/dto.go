package tracked

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/stashkeeper-backend/pkg/cache"
	"github.com/angelmondragon/stashkeeper-backend/pkg/db/models"
	"github.com/angelmondragon/stashkeeper-backend/pkg/enums"
	"github.com/angelmondragon/stashkeeper-backend/pkg/types"
)

// TrackedItemDTO is the public representation of a tracked item.
type TrackedItemDTO struct {
	ID            uuid.UUID           `json:"id"`
	ItemNumber    int64               `json:"item_number"`
	Name          string              `json:"name"`
	Season        enums.Season        `json:"season"`
	Material      *string             `json:"material,omitempty"`
	Dimensions    *string             `json:"dimensions,omitempty"`
	Description   *string             `json:"description,omitempty"`
	PurchasePrice *string             `json:"purchase_price"`
	CurrentValue  *string             `json:"current_value"`
	Status        enums.TrackedStatus `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// UsagePeriodDTO is one entry of an item's usage history.
type UsagePeriodDTO struct {
	ID        uuid.UUID      `json:"id"`
	ItemID    uuid.UUID      `json:"item_id"`
	StartDate time.Time      `json:"start_date"`
	EndDate   *time.Time     `json:"end_date"`
	Open      bool           `json:"open"`
	Location  *string        `json:"location,omitempty"`
	Notes     *string        `json:"notes,omitempty"`
	Readings  map[string]any `json:"readings,omitempty"`
}

// TransitionDTO reports the item after a transition and the periods it touched.
type TransitionDTO struct {
	Item    *TrackedItemDTO     `json:"item"`
	From    enums.TrackedStatus `json:"from"`
	Changed bool                `json:"changed"`
	Opened  *UsagePeriodDTO     `json:"opened_period,omitempty"`
	Closed  *UsagePeriodDTO     `json:"closed_period,omitempty"`
}

// CreateTrackedItemInput holds the payload to create a tracked item. New items
// always start in STORAGE.
type CreateTrackedItemInput struct {
	Name          string  `json:"name" validate:"required,max=200"`
	Season        string  `json:"season" validate:"required"`
	Material      *string `json:"material" validate:"omitempty,max=120"`
	Dimensions    *string `json:"dimensions" validate:"omitempty,max=120"`
	Description   *string `json:"description" validate:"omitempty,max=4000"`
	PurchasePrice *string `json:"purchase_price"`
	CurrentValue  *string `json:"current_value"`
}

// UpdateTrackedItemInput edits descriptive attributes. Status changes only
// through transitions.
type UpdateTrackedItemInput struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=200"`
	Season        *string `json:"season"`
	Material      *string `json:"material" validate:"omitempty,max=120"`
	Dimensions    *string `json:"dimensions" validate:"omitempty,max=120"`
	Description   *string `json:"description" validate:"omitempty,max=4000"`
	PurchasePrice *string `json:"purchase_price"`
	CurrentValue  *string `json:"current_value"`
}

func toDTO(item *models.TrackedItem) *TrackedItemDTO {
	return &TrackedItemDTO{
		ID:            item.ID,
		ItemNumber:    item.ItemNumber,
		Name:          item.Name,
		Season:        item.Season,
		Material:      item.Material,
		Dimensions:    item.Dimensions,
		Description:   item.Description,
		PurchasePrice: types.FormatMoney(item.PurchasePrice),
		CurrentValue:  types.FormatMoney(item.CurrentValue),
		Status:        item.Status,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

func periodDTO(period *models.UsagePeriod) *UsagePeriodDTO {
	if period == nil {
		return nil
	}
	var readings map[string]any
	if len(period.Readings) > 0 {
		readings = map[string]any(period.Readings)
	}
	return &UsagePeriodDTO{
		ID:        period.ID,
		ItemID:    period.ItemID,
		StartDate: period.StartDate,
		EndDate:   period.EndDate,
		Open:      period.IsOpen(),
		Location:  period.Location,
		Notes:     period.Notes,
		Readings:  readings,
	}
}

func transitionDTO(result *TransitionResult) *TransitionDTO {
	return &TransitionDTO{
		Item:    toDTO(result.Item),
		From:    result.Before,
		Changed: result.Changed,
		Opened:  periodDTO(result.Opened),
		Closed:  periodDTO(result.Closed),
	}
}

func rowOf(item *models.TrackedItem) *cache.Row {
	if item == nil {
		return nil
	}
	return &cache.Row{
		Kind:      string(enums.ItemKindTracked),
		ID:        item.ID.String(),
		Status:    string(item.Status),
		Dimension: string(item.Season),
	}
}
