package shared

import (
	"math"

	"github.com/shopspring/decimal"
)

// Money columns are NUMERIC(12,2) and quantities are INTEGER.
const (
	MoneyScale  = 2
	MaxQuantity = math.MaxInt32
)

// MaxAmount is the largest value a money column holds.
var MaxAmount = decimal.New(1, 10).Sub(decimal.New(1, -MoneyScale))

// CheckAmount rejects amounts the store would round or overflow. The sign is
// left to the caller.
func CheckAmount(field string, d decimal.Decimal) error {
	if !d.Equal(d.Round(MoneyScale)) {
		return Validation(field, "must have at most 2 decimal places")
	}
	if d.Abs().GreaterThan(MaxAmount) {
		return Validation(field, "must not exceed "+MaxAmount.StringFixed(MoneyScale))
	}
	return nil
}

// CheckQuantity rejects quantities outside 1..MaxQuantity.
func CheckQuantity(field string, q int) error {
	if q < 1 {
		return Validation(field, "must be at least 1")
	}
	if q > MaxQuantity {
		return Validation(field, "must not exceed 2147483647")
	}
	return nil
}
