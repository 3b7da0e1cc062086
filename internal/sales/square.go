package sales

import (
	"context"
	"errors"

	"github.com/roadcasehq/merchtable-backend/pkg/square"
)

// SquareCharger adapts the Square client to the card capture surface the
// commit flow needs.
type SquareCharger struct {
	client *square.Client
}

// NewSquareCharger wraps the provided Square client.
func NewSquareCharger(client *square.Client) (*SquareCharger, error) {
	if client == nil {
		return nil, errors.New("square client required")
	}
	return &SquareCharger{client: client}, nil
}

// Charge captures a card payment and returns the Square payment id. A nil
// receiver reports the missing client instead of dereferencing it.
func (c *SquareCharger) Charge(ctx context.Context, amountCents int64, sourceID, note, referenceID string) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("square client not configured")
	}
	payment, err := c.client.CreatePayment(ctx, square.PaymentCreateParams{
		AmountCents: amountCents,
		Currency:    "USD",
		SourceID:    sourceID,
		Note:        note,
		ReferenceID: referenceID,
	})
	if err != nil {
		return "", err
	}
	if payment == nil || payment.GetID() == nil {
		return "", errors.New("square payment missing id")
	}
	return *payment.GetID(), nil
}
