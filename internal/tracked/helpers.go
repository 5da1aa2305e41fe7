package tracked

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/stashkeeper-backend/pkg/db"
	"github.com/angelmondragon/stashkeeper-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stashkeeper-backend/pkg/errors"
	"github.com/angelmondragon/stashkeeper-backend/pkg/types"
	"github.com/angelmondragon/stashkeeper-backend/pkg/validation"
)

func validStatus(v string) bool { return enums.TrackedStatus(v).IsValid() }
func validSeason(v string) bool { return enums.Season(v).IsValid() }

func parseSeason(raw string) (enums.Season, error) {
	season, err := enums.ParseSeason(strings.ToUpper(strings.TrimSpace(raw)))
	if err != nil {
		return "", validation.Field("season", "is invalid")
	}
	return season, nil
}

func parseMoneyField(field string, raw *string) (decimal.NullDecimal, error) {
	amount, err := types.ParseMoneyPtr(raw)
	if err != nil {
		return decimal.NullDecimal{}, validation.Field(field, err.Error())
	}
	return amount, nil
}

func mapStoreError(err error, msg string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "tracked item not found")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
