package enums

import "fmt"

// StockChangeReason tags every stock log entry with why the quantity moved.
type StockChangeReason string

const (
	StockChangeReasonSale       StockChangeReason = "sale"
	StockChangeReasonRestock    StockChangeReason = "restock"
	StockChangeReasonAdjustment StockChangeReason = "adjustment"
	StockChangeReasonReturn     StockChangeReason = "return"
)

var validStockChangeReasons = []StockChangeReason{
	StockChangeReasonSale,
	StockChangeReasonRestock,
	StockChangeReasonAdjustment,
	StockChangeReasonReturn,
}

// String implements fmt.Stringer.
func (s StockChangeReason) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockChangeReason.
func (s StockChangeReason) IsValid() bool {
	for _, candidate := range validStockChangeReasons {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockChangeReason converts raw input into a StockChangeReason.
func ParseStockChangeReason(value string) (StockChangeReason, error) {
	for _, candidate := range validStockChangeReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock change reason %q", value)
}
