package money

import "github.com/shopspring/decimal"

// Cents is a monetary amount in minor units. All arithmetic inside the
// system stays integral; decimal conversion happens only at display
// boundaries (reports, CSV export).
type Cents = int64

var hundred = decimal.NewFromInt(100)

// ToDecimal converts minor units to a major-unit decimal (1234 -> 12.34).
func ToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred)
}

// Format renders minor units as a fixed two-decimal string (1234 -> "12.34").
func Format(cents int64) string {
	return ToDecimal(cents).StringFixed(2)
}

// FromDecimal converts a major-unit decimal to minor units, rounding half
// away from zero.
func FromDecimal(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}
