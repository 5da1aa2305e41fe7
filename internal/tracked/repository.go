package tracked

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stashkeeper-backend/internal/filters"
	"github.com/angelmondragon/stashkeeper-backend/internal/numbering"
	"github.com/angelmondragon/stashkeeper-backend/internal/repo"
	"github.com/angelmondragon/stashkeeper-backend/pkg/db/models"
	"github.com/angelmondragon/stashkeeper-backend/pkg/enums"
	"github.com/angelmondragon/stashkeeper-backend/pkg/pagination"
)

var searchColumns = []string{"name", "material", "description"}

// Repository persists tracked items and their usage periods. It enforces no
// policy; the transition engine owns the status and period invariants.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// FindByID returns gorm.ErrRecordNotFound for missing rows and rows of other owners.
func (r *Repository) FindByID(ctx context.Context, owner, id uuid.UUID) (*models.TrackedItem, error) {
	var item models.TrackedItem
	if err := r.DB(ctx).First(&item, "id = ? AND owner_id = ?", id, owner).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// LockByID is FindByID holding the row lock until the transaction ends.
func (r *Repository) LockByID(ctx context.Context, owner, id uuid.UUID) (*models.TrackedItem, error) {
	var item models.TrackedItem
	if err := repo.ForUpdate(r.DB(ctx)).First(&item, "id = ? AND owner_id = ?", id, owner).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// List pages through the owner's tracked items, newest number first.
func (r *Repository) List(ctx context.Context, owner uuid.UUID, q filters.Query) (pagination.Page[models.TrackedItem], error) {
	query := r.DB(ctx).Model(&models.TrackedItem{}).Where("owner_id = ?", owner)
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Dimension != "" {
		query = query.Where("season = ?", q.Dimension)
	}
	query = repo.Search(query, q.Search, searchColumns...)
	return repo.Paginate[models.TrackedItem](query, q.Params, "item_number DESC")
}

// Create numbers and inserts item. Call it on a transaction-bound repository.
func (r *Repository) Create(ctx context.Context, item *models.TrackedItem) (*models.TrackedItem, error) {
	number, err := numbering.Next(ctx, r.Raw(), item.OwnerID, enums.ItemKindTracked)
	if err != nil {
		return nil, err
	}
	item.ItemNumber = number
	if err := r.DB(ctx).Omit("UsagePeriods").Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Update writes every column of item except its periods.
func (r *Repository) Update(ctx context.Context, item *models.TrackedItem) (*models.TrackedItem, error) {
	if err := r.DB(ctx).Omit("UsagePeriods").Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateStatus changes only the status column.
func (r *Repository) UpdateStatus(ctx context.Context, item *models.TrackedItem, status enums.TrackedStatus) error {
	return r.DB(ctx).Model(item).Update("status", status).Error
}

// Delete removes the owner's item with its periods and reports whether a row
// existed.
func (r *Repository) Delete(ctx context.Context, owner, id uuid.UUID) (bool, error) {
	db := r.DB(ctx)
	owned := db.Model(&models.TrackedItem{}).Select("id").Where("id = ? AND owner_id = ?", id, owner)
	if err := db.Where("item_id IN (?)", owned).Delete(&models.UsagePeriod{}).Error; err != nil {
		return false, err
	}
	res := db.Where("id = ? AND owner_id = ?", id, owner).Delete(&models.TrackedItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListOpenPeriods returns the periods of itemID that have no end date.
func (r *Repository) ListOpenPeriods(ctx context.Context, itemID uuid.UUID) ([]models.UsagePeriod, error) {
	var periods []models.UsagePeriod
	if err := r.DB(ctx).
		Where("item_id = ? AND end_date IS NULL", itemID).
		Order("start_date ASC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// CountOpenPeriods counts the periods of itemID that have no end date.
func (r *Repository) CountOpenPeriods(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	if err := r.DB(ctx).
		Model(&models.UsagePeriod{}).
		Where("item_id = ? AND end_date IS NULL", itemID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// InsertPeriod stores a new usage period.
func (r *Repository) InsertPeriod(ctx context.Context, period *models.UsagePeriod) error {
	return r.DB(ctx).Create(period).Error
}

// ClosePeriod sets end_date on an open period. A closed period is never
// touched; the returned count is 0 when the period was already closed.
func (r *Repository) ClosePeriod(ctx context.Context, periodID uuid.UUID, endDate time.Time) (int64, error) {
	res := r.DB(ctx).
		Model(&models.UsagePeriod{}).
		Where("id = ? AND end_date IS NULL", periodID).
		Update("end_date", endDate)
	return res.RowsAffected, res.Error
}

// ListPeriods returns the usage history of itemID, newest first.
func (r *Repository) ListPeriods(ctx context.Context, itemID uuid.UUID) ([]models.UsagePeriod, error) {
	var periods []models.UsagePeriod
	if err := r.DB(ctx).
		Where("item_id = ?", itemID).
		Order("start_date DESC").
		Order("created_at DESC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}
