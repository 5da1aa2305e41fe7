package tracked

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/stashkeeper-backend/pkg/db"
	"github.com/angelmondragon/stashkeeper-backend/pkg/db/models"
	"github.com/angelmondragon/stashkeeper-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stashkeeper-backend/pkg/errors"
	"github.com/angelmondragon/stashkeeper-backend/pkg/logger"
	"github.com/angelmondragon/stashkeeper-backend/pkg/metrics"
	"github.com/angelmondragon/stashkeeper-backend/pkg/validation"
)

// UsageInput describes the period opened by a transition into IN_USE. It is
// ignored for every other target status.
type UsageInput struct {
	Location     *string  `json:"location" validate:"omitempty,max=200"`
	Notes        *string  `json:"notes" validate:"omitempty,max=2000"`
	TemperatureC *float64 `json:"temperature_c" validate:"omitempty,gte=-60,lte=80"`
	HumidityPct  *float64 `json:"humidity_pct" validate:"omitempty,gte=0,lte=100"`
}

// TransitionInput requests a status change. ExpectedStatus is the status the
// caller last observed; when nil the engine reads it before locking.
type TransitionInput struct {
	ItemID         uuid.UUID
	Status         enums.TrackedStatus
	ExpectedStatus *enums.TrackedStatus
	Usage          UsageInput
}

// TransitionResult is the committed outcome. Changed is false for an
// idempotent repeat of the current status.
type TransitionResult struct {
	Before  enums.TrackedStatus
	Item    *models.TrackedItem
	Opened  *models.UsagePeriod
	Closed  *models.UsagePeriod
	Changed bool
}

// Engine moves tracked items between statuses while keeping exactly one open
// usage period for every IN_USE item and none otherwise.
type Engine struct {
	repo    *Repository
	tx      db.TxRunner
	logg    *logger.Logger
	metrics *metrics.TransitionMetrics
	now     func() time.Time
}

// NewEngine wires the engine. logg and m may be nil.
func NewEngine(repo *Repository, tx db.TxRunner, logg *logger.Logger, m *metrics.TransitionMetrics) (*Engine, error) {
	if repo == nil {
		return nil, fmt.Errorf("tracked repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &Engine{repo: repo, tx: tx, logg: logg, metrics: m, now: time.Now}, nil
}

// Transition applies in for owner inside one transaction holding the item's
// row lock. A conflict means the item moved since the caller read it; the
// caller may re-read and retry.
func (e *Engine) Transition(ctx context.Context, owner uuid.UUID, in TransitionInput) (result *TransitionResult, err error) {
	started := e.now()
	from := ""
	defer func() {
		e.metrics.Observe(from, string(in.Status), outcomeOf(result, err), e.now().Sub(started))
	}()

	if !in.Status.IsValid() {
		return nil, validation.Field("status", "is invalid")
	}
	if in.ExpectedStatus != nil && !in.ExpectedStatus.IsValid() {
		return nil, validation.Field("expected_status", "is invalid")
	}
	if err := validation.Struct(in.Usage); err != nil {
		return nil, err
	}

	expected := in.ExpectedStatus
	if expected == nil {
		observed, err := e.repo.FindByID(ctx, owner, in.ItemID)
		if err != nil {
			return nil, mapStoreError(err, "db: read tracked item")
		}
		expected = &observed.Status
	}

	err = e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := e.repo.WithTx(tx)
		item, err := txRepo.LockByID(ctx, owner, in.ItemID)
		if err != nil {
			return mapStoreError(err, "db: lock tracked item")
		}
		from = string(item.Status)

		if item.Status == in.Status {
			if *expected != in.Status {
				return conflict(item, *expected, "item already moved to the requested status")
			}
			if err := e.verifyResting(ctx, txRepo, item); err != nil {
				return err
			}
			result = &TransitionResult{Before: item.Status, Item: item}
			return nil
		}
		if item.Status != *expected {
			return conflict(item, *expected, "item status changed since it was read")
		}

		open, err := txRepo.ListOpenPeriods(ctx, item.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list open usage periods")
		}
		now := e.now().UTC()
		res := &TransitionResult{Before: item.Status, Item: item, Changed: true}

		if item.Status == enums.TrackedStatusInUse {
			if len(open) != 1 {
				return e.fault(ctx, item, len(open), "in-use item must have exactly one open usage period")
			}
			closed, err := txRepo.ClosePeriod(ctx, open[0].ID, now)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: close usage period")
			}
			if closed != 1 {
				return e.fault(ctx, item, 0, "open usage period was closed outside the item lock")
			}
			period := open[0]
			period.EndDate = &now
			res.Closed = &period
		} else if len(open) > 0 {
			if in.Status == enums.TrackedStatusInUse {
				return conflict(item, *expected, "item already has an open usage period")
			}
			return e.fault(ctx, item, len(open), "item not in use has an open usage period")
		}

		if in.Status == enums.TrackedStatusInUse {
			period := &models.UsagePeriod{
				ItemID:    item.ID,
				StartDate: now,
				Location:  in.Usage.Location,
				Notes:     in.Usage.Notes,
				Readings:  readingsOf(in.Usage),
			}
			if err := txRepo.InsertPeriod(ctx, period); err != nil {
				if db.IsUniqueViolation(err, "") {
					return conflict(item, *expected, "item already has an open usage period")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert usage period")
			}
			res.Opened = period
		}

		if err := txRepo.UpdateStatus(ctx, item, in.Status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update tracked item status")
		}
		item.Status = in.Status
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	if e.logg != nil && result.Changed {
		ctx = e.logg.WithItem(ctx, string(enums.ItemKindTracked), result.Item.ID.String())
		ctx = e.logg.WithTransition(ctx, string(result.Before), string(result.Item.Status))
		e.logg.Info(ctx, "tracked.transition")
	}
	return result, nil
}

// verifyResting checks the coupling for an item that is not changing status.
func (e *Engine) verifyResting(ctx context.Context, txRepo *Repository, item *models.TrackedItem) error {
	open, err := txRepo.CountOpenPeriods(ctx, item.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count open usage periods")
	}
	want := int64(0)
	if item.Status == enums.TrackedStatusInUse {
		want = 1
	}
	if open != want {
		return e.fault(ctx, item, int(open), "usage periods do not match item status")
	}
	return nil
}

func (e *Engine) fault(ctx context.Context, item *models.TrackedItem, open int, msg string) error {
	err := pkgerrors.New(pkgerrors.CodeConsistency, msg)
	if e.logg != nil {
		ctx = e.logg.WithItem(ctx, string(enums.ItemKindTracked), item.ID.String())
		ctx = e.logg.WithFields(ctx, map[string]any{"status": string(item.Status), "open_periods": open})
		e.logg.Error(ctx, "tracked.consistency_fault", err)
	}
	return err
}

func conflict(item *models.TrackedItem, expected enums.TrackedStatus, msg string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, msg).WithDetails(map[string]any{
		"item_id":         item.ID.String(),
		"current_status":  string(item.Status),
		"expected_status": string(expected),
	})
}

func readingsOf(usage UsageInput) datatypes.JSONMap {
	if usage.TemperatureC == nil && usage.HumidityPct == nil {
		return nil
	}
	readings := datatypes.JSONMap{}
	if usage.TemperatureC != nil {
		readings["temperature_c"] = *usage.TemperatureC
	}
	if usage.HumidityPct != nil {
		readings["humidity_pct"] = *usage.HumidityPct
	}
	return readings
}

func outcomeOf(result *TransitionResult, err error) string {
	if err == nil {
		if result != nil && !result.Changed {
			return metrics.OutcomeNoop
		}
		return metrics.OutcomeApplied
	}
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeConflict:
		return metrics.OutcomeConflict
	case pkgerrors.CodeConsistency:
		return metrics.OutcomeFault
	case pkgerrors.CodeNotFound:
		return metrics.OutcomeNotFound
	case pkgerrors.CodeValidation:
		return metrics.OutcomeValidation
	default:
		return metrics.OutcomeFailed
	}
}
