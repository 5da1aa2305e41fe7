package items

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stashkeeper-backend/internal/filters"
	"github.com/angelmondragon/stashkeeper-backend/pkg/auth"
	"github.com/angelmondragon/stashkeeper-backend/pkg/cache"
	"github.com/angelmondragon/stashkeeper-backend/pkg/db"
	"github.com/angelmondragon/stashkeeper-backend/pkg/db/models"
	"github.com/angelmondragon/stashkeeper-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stashkeeper-backend/pkg/errors"
	"github.com/angelmondragon/stashkeeper-backend/pkg/logger"
	"github.com/angelmondragon/stashkeeper-backend/pkg/pagination"
	"github.com/angelmondragon/stashkeeper-backend/pkg/types"
	"github.com/angelmondragon/stashkeeper-backend/pkg/validation"
)

// Service exposes the owner-scoped item operations. Reads go through the
// cache; writes invalidate it after commit.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	List(ctx context.Context, filter filters.Filter) (*pagination.Page[ItemDTO], error)
	Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo  *Repository
	tx    db.TxRunner
	cache *cache.Cache
	users auth.UserProvider
	logg  *logger.Logger
}

// NewService constructs an item service instance. A nil cache disables caching.
func NewService(repo *Repository, tx db.TxRunner, c *cache.Cache, users auth.UserProvider, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("db client required")
	}
	if users == nil {
		return nil, fmt.Errorf("user provider required")
	}
	if c == nil {
		c = cache.Disabled()
	}
	return &service{repo: repo, tx: tx, cache: c, users: users, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	owner, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	shape := cache.QueryShape{
		Kind:  string(enums.ItemKindItem),
		Owner: owner.String(),
		Type:  cache.ShapeDetail,
		ID:    id.String(),
	}
	return cache.Fetch(ctx, s.cache, shape, func(ctx context.Context) (*ItemDTO, error) {
		item, err := s.repo.FindByID(ctx, owner, id)
		if err != nil {
			return nil, mapStoreError(err, "db: load item")
		}
		return toDTO(item), nil
	})
}

func (s *service) List(ctx context.Context, filter filters.Filter) (*pagination.Page[ItemDTO], error) {
	owner, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	query, err := filters.Normalize(filter, validStatus, validCategory)
	if err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.cache, query.Shape(enums.ItemKindItem, owner), func(ctx context.Context) (*pagination.Page[ItemDTO], error) {
		page, err := s.repo.List(ctx, owner, query)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list items")
		}
		out := pagination.Map(page, func(item models.Item) ItemDTO { return *toDTO(&item) })
		return &out, nil
	})
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	owner, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}
	status := enums.ItemStatusCollection
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, validation.Field("status", "is invalid")
		}
		status = *input.Status
	}
	purchase, err := parseMoneyField("purchase_price", input.PurchasePrice)
	if err != nil {
		return nil, err
	}
	current, err := parseMoneyField("current_value", input.CurrentValue)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		OwnerID:       owner,
		Name:          strings.TrimSpace(input.Name),
		Category:      category,
		Brand:         types.NullableText(input.Brand),
		Year:          input.Year,
		Grade:         types.NullableText(input.Grade),
		Description:   types.NullableText(input.Description),
		PurchasePrice: purchase,
		CurrentValue:  current,
		Status:        status,
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, item); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "item number already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert item")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.invalidate(ctx, nil, item)
	if s.logg != nil {
		s.logg.Info(s.logg.WithItem(ctx, string(enums.ItemKindItem), item.ID.String()), "items.created")
	}
	return toDTO(item), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	owner, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	patch, err := buildPatch(input)
	if err != nil {
		return nil, err
	}

	var before, after *models.Item
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		current, err := txRepo.LockByID(ctx, owner, id)
		if err != nil {
			return mapStoreError(err, "db: load item")
		}
		snapshot := *current
		before = &snapshot
		patch(current)
		updated, err := txRepo.Update(ctx, current)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update item")
		}
		after = updated
		return nil
	}); err != nil {
		return nil, err
	}

	s.invalidate(ctx, before, after)
	return toDTO(after), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	owner, err := s.users.CurrentUser(ctx)
	if err != nil {
		return false, err
	}

	var deleted *models.Item
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		current, err := txRepo.LockByID(ctx, owner, id)
		if db.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load item")
		}
		ok, err := txRepo.Delete(ctx, owner, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete item")
		}
		if ok {
			deleted = current
		}
		return nil
	}); err != nil {
		return false, err
	}
	if deleted == nil {
		return false, nil
	}

	s.invalidate(ctx, deleted, nil)
	return true, nil
}

// invalidate runs after commit; errors are logged by the cache and never fail
// the committed write.
func (s *service) invalidate(ctx context.Context, before, after *models.Item) {
	_ = s.cache.Invalidate(context.WithoutCancel(ctx), cache.TagsAffectedBy(rowOf(before), rowOf(after))...)
}

func buildPatch(input UpdateItemInput) (func(*models.Item), error) {
	var category *enums.CardCategory
	if input.Category != nil {
		parsed, err := parseCategory(*input.Category)
		if err != nil {
			return nil, err
		}
		category = &parsed
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, validation.Field("status", "is invalid")
	}
	purchase, err := parseMoneyField("purchase_price", input.PurchasePrice)
	if err != nil {
		return nil, err
	}
	current, err := parseMoneyField("current_value", input.CurrentValue)
	if err != nil {
		return nil, err
	}

	return func(item *models.Item) {
		if input.Name != nil {
			item.Name = strings.TrimSpace(*input.Name)
		}
		if category != nil {
			item.Category = *category
		}
		if input.Brand != nil {
			item.Brand = types.NullableText(input.Brand)
		}
		if input.Year != nil {
			item.Year = input.Year
		}
		if input.Grade != nil {
			item.Grade = types.NullableText(input.Grade)
		}
		if input.Description != nil {
			item.Description = types.NullableText(input.Description)
		}
		if input.PurchasePrice != nil {
			item.PurchasePrice = purchase
		}
		if input.CurrentValue != nil {
			item.CurrentValue = current
		}
		if input.Status != nil {
			item.Status = *input.Status
		}
	}, nil
}
