package types

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits stored for monetary columns.
const MoneyScale = 2

var (
	ErrMoneyNotNumeric = errors.New("must be a decimal number")
	ErrMoneyNegative   = errors.New("must not be negative")
)

// ParseMoney normalises user input into a nullable amount. Blank input is
// NULL, never zero.
func ParseMoney(raw string) (decimal.NullDecimal, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.NullDecimal{}, nil
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, ErrMoneyNotNumeric
	}
	if amount.IsNegative() {
		return decimal.NullDecimal{}, ErrMoneyNegative
	}
	return decimal.NewNullDecimal(amount.Round(MoneyScale)), nil
}

// ParseMoneyPtr is ParseMoney for optional request fields; nil means absent.
func ParseMoneyPtr(raw *string) (decimal.NullDecimal, error) {
	if raw == nil {
		return decimal.NullDecimal{}, nil
	}
	return ParseMoney(*raw)
}

// FormatMoney renders the canonical two-place representation or nil for NULL.
func FormatMoney(amount decimal.NullDecimal) *string {
	if !amount.Valid {
		return nil
	}
	out := amount.Decimal.StringFixed(MoneyScale)
	return &out
}
