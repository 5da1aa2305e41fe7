package tracked

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

// TransitionRequest is the caller facing form of TransitionInput.
type TransitionRequest struct {
	Status         string     `json:"status" validate:"required"`
	ExpectedStatus *string    `json:"expected_status"`
	Usage          UsageInput `json:"usage"`
}

// Service exposes owner-scoped tracked item operations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*TrackedItemDTO, error)
	List(ctx context.Context, filter filters.Filter) (*pagination.Page[TrackedItemDTO], error)
	Create(ctx context.Context, input CreateTrackedItemInput) (*TrackedItemDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateTrackedItemInput) (*TrackedItemDTO, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Transition(ctx context.Context, id uuid.UUID, req TransitionRequest) (*TransitionDTO, error)
	History(ctx context.Context, id uuid.UUID) ([]UsagePeriodDTO, error)
}

type service struct {
	repo   *Repository
	engine *Engine
	tx     db.TxRunner
	cache  *cache.Cache
	users  auth.UserProvider
	logg   *logger.Logger
}

// NewService constructs a tracked item service. A nil cache disables caching.
func NewService(repo *Repository, engine *Engine, tx db.TxRunner, c *cache.Cache, users auth.UserProvider, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tracked repository required")
	}
	if engine == nil {
		return nil, fmt.Errorf("transition engine required")
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
	return &service{repo: repo, engine: engine, tx: tx, cache: c, users: users, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*TrackedItemDTO, error) {
	owner, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	shape := cache.QueryShape{
		Kind:  string(enums.ItemKindTracked),
		Owner: owner.String(),
		Type:  cache.ShapeDetail,
		ID:    id.String(),
	}
	return cache.Fetch(ctx, s.cache, shape, func(ctx context.Context) (*TrackedItemDTO, error) {
		item, err := s.repo.FindByID(ctx, owner, id)
		if err != nil {
			return nil, mapStoreError(err, "db: load tracked item")
		}
		return toDTO(item), nil
	})
}

func (s *service) List(ctx context.Context, filter filters.Filter) (*pagination.Page[TrackedItemDTO], error) {
	owner, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	query, err := filters.Normalize(filter, validStatus, validSeason)
	if err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.cache, query.Shape(enums.ItemKindTracked, owner), func(ctx context.Context) (*pagination.Page[TrackedItemDTO], error) {
		page, err := s.repo.List(ctx, owner, query)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list tracked items")
		}
		out := pagination.Map(page, func(item models.TrackedItem) TrackedItemDTO { return *toDTO(&item) })
		return &out, nil
	})
}

func (s *service) Create(ctx context.Context, input CreateTrackedItemInput) (*TrackedItemDTO, error) {
	owner, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	season, err := parseSeason(input.Season)
	if err != nil {
		return nil, err
	}
	purchase, err := parseMoneyField("purchase_price", input.PurchasePrice)
	if err != nil {
		return nil, err
	}
	current, err := parseMoneyField("current_value", input.CurrentValue)
	if err != nil {
		return nil, err
	}

	item := &models.TrackedItem{
		OwnerID:       owner,
		Name:          strings.TrimSpace(input.Name),
		Season:        season,
		Material:      types.NullableText(input.Material),
		Dimensions:    types.NullableText(input.Dimensions),
		Description:   types.NullableText(input.Description),
		PurchasePrice: purchase,
		CurrentValue:  current,
		Status:        enums.TrackedStatusStorage,
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, item); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "item number already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert tracked item")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.invalidate(ctx, nil, item)
	if s.logg != nil {
		s.logg.Info(s.logg.WithItem(ctx, string(enums.ItemKindTracked), item.ID.String()), "tracked.created")
	}
	return toDTO(item), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateTrackedItemInput) (*TrackedItemDTO, error) {
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

	var before, after *models.TrackedItem
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		current, err := txRepo.LockByID(ctx, owner, id)
		if err != nil {
			return mapStoreError(err, "db: load tracked item")
		}
		snapshot := *current
		before = &snapshot
		patch(current)
		updated, err := txRepo.Update(ctx, current)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update tracked item")
		}
		after = updated
		return nil
	}); err != nil {
		return nil, err
	}

	s.invalidate(ctx, before, after)
	return toDTO(after), nil
}

// Delete removes the item and its usage history. A missing item reports false.
func (s *service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	owner, err := s.users.CurrentUser(ctx)
	if err != nil {
		return false, err
	}

	var deleted *models.TrackedItem
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		current, err := txRepo.LockByID(ctx, owner, id)
		if db.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load tracked item")
		}
		ok, err := txRepo.Delete(ctx, owner, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete tracked item")
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

func (s *service) Transition(ctx context.Context, id uuid.UUID, req TransitionRequest) (*TransitionDTO, error) {
	owner, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	status, err := enums.ParseTrackedStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if err != nil {
		return nil, validation.Field("status", "is invalid")
	}
	in := TransitionInput{ItemID: id, Status: status, Usage: req.Usage}
	if req.ExpectedStatus != nil {
		expected, err := enums.ParseTrackedStatus(strings.ToUpper(strings.TrimSpace(*req.ExpectedStatus)))
		if err != nil {
			return nil, validation.Field("expected_status", "is invalid")
		}
		in.ExpectedStatus = &expected
	}
	in.Usage.Location = types.NullableText(in.Usage.Location)
	in.Usage.Notes = types.NullableText(in.Usage.Notes)

	result, err := s.engine.Transition(ctx, owner, in)
	if err != nil {
		return nil, err
	}
	if result.Changed {
		before := *result.Item
		before.Status = result.Before
		s.invalidate(ctx, &before, result.Item)
	}
	return transitionDTO(result), nil
}

// History lists the item's usage periods, newest first.
func (s *service) History(ctx context.Context, id uuid.UUID) ([]UsagePeriodDTO, error) {
	owner, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	shape := cache.QueryShape{
		Kind:  string(enums.ItemKindTracked),
		Owner: owner.String(),
		Type:  cache.ShapeHistory,
		ID:    id.String(),
	}
	return cache.Fetch(ctx, s.cache, shape, func(ctx context.Context) ([]UsagePeriodDTO, error) {
		if _, err := s.repo.FindByID(ctx, owner, id); err != nil {
			return nil, mapStoreError(err, "db: load tracked item")
		}
		periods, err := s.repo.ListPeriods(ctx, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list usage periods")
		}
		out := make([]UsagePeriodDTO, 0, len(periods))
		for i := range periods {
			out = append(out, *periodDTO(&periods[i]))
		}
		return out, nil
	})
}

// invalidate runs after commit and survives caller cancellation; failures are
// logged by the cache.
func (s *service) invalidate(ctx context.Context, before, after *models.TrackedItem) {
	_ = s.cache.Invalidate(context.WithoutCancel(ctx), cache.TagsAffectedBy(rowOf(before), rowOf(after))...)
}

func buildPatch(input UpdateTrackedItemInput) (func(*models.TrackedItem), error) {
	var season *enums.Season
	if input.Season != nil {
		parsed, err := parseSeason(*input.Season)
		if err != nil {
			return nil, err
		}
		season = &parsed
	}
	purchase, err := parseMoneyField("purchase_price", input.PurchasePrice)
	if err != nil {
		return nil, err
	}
	current, err := parseMoneyField("current_value", input.CurrentValue)
	if err != nil {
		return nil, err
	}

	return func(item *models.TrackedItem) {
		if input.Name != nil {
			item.Name = strings.TrimSpace(*input.Name)
		}
		if season != nil {
			item.Season = *season
		}
		if input.Material != nil {
			item.Material = types.NullableText(input.Material)
		}
		if input.Dimensions != nil {
			item.Dimensions = types.NullableText(input.Dimensions)
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
	}, nil
}
