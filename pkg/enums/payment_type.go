package enums

import "fmt"

// PaymentType describes how a merch sale was settled at the table.
type PaymentType string

const (
	PaymentTypeCash  PaymentType = "cash"
	PaymentTypeCard  PaymentType = "card"
	PaymentTypeOther PaymentType = "other"
)

var validPaymentTypes = []PaymentType{
	PaymentTypeCash,
	PaymentTypeCard,
	PaymentTypeOther,
}

// String implements fmt.Stringer.
func (p PaymentType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentType.
func (p PaymentType) IsValid() bool {
	for _, candidate := range validPaymentTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentType converts raw input into a PaymentType.
func ParsePaymentType(value string) (PaymentType, error) {
	for _, candidate := range validPaymentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment type %q", value)
}
