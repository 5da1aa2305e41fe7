package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stashkeeper-backend/internal/filters"
	"github.com/angelmondragon/stashkeeper-backend/internal/numbering"
	"github.com/angelmondragon/stashkeeper-backend/internal/repo"
	"github.com/angelmondragon/stashkeeper-backend/pkg/db/models"
	"github.com/angelmondragon/stashkeeper-backend/pkg/enums"
	"github.com/angelmondragon/stashkeeper-backend/pkg/pagination"
)

var searchColumns = []string{"name", "brand", "description"}

// Repository persists standalone items. Every read is scoped to an owner.
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
func (r *Repository) FindByID(ctx context.Context, owner, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.DB(ctx).First(&item, "id = ? AND owner_id = ?", id, owner).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// LockByID is FindByID holding the row lock until the transaction ends.
func (r *Repository) LockByID(ctx context.Context, owner, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := repo.ForUpdate(r.DB(ctx)).First(&item, "id = ? AND owner_id = ?", id, owner).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// List pages through the owner's items, newest number first.
func (r *Repository) List(ctx context.Context, owner uuid.UUID, q filters.Query) (pagination.Page[models.Item], error) {
	query := r.DB(ctx).Model(&models.Item{}).Where("owner_id = ?", owner)
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Dimension != "" {
		query = query.Where("category = ?", q.Dimension)
	}
	query = repo.Search(query, q.Search, searchColumns...)
	return repo.Paginate[models.Item](query, q.Params, "item_number DESC")
}

// Create numbers and inserts item. Call it on a transaction-bound repository
// so the number and the row commit together.
func (r *Repository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	number, err := numbering.Next(ctx, r.Raw(), item.OwnerID, enums.ItemKindItem)
	if err != nil {
		return nil, err
	}
	item.ItemNumber = number
	if err := r.DB(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Update writes every column of item.
func (r *Repository) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.DB(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes the owner's item and reports whether a row existed.
func (r *Repository) Delete(ctx context.Context, owner, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ? AND owner_id = ?", id, owner).Delete(&models.Item{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
