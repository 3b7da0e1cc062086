package analytics

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roadcasehq/merchtable-backend/pkg/enums"
	"github.com/roadcasehq/merchtable-backend/pkg/outbox"
)

// SaleFact is one sale line flattened for the warehouse.
type SaleFact struct {
	EventID       string    `bigquery:"event_id"`
	BatchID       string    `bigquery:"batch_id"`
	SaleID        string    `bigquery:"sale_id"`
	MerchandiseID string    `bigquery:"merchandise_id"`
	ShowID        string    `bigquery:"show_id"`
	Quantity      int       `bigquery:"quantity"`
	UnitPrice     float64   `bigquery:"unit_price"`
	Total         float64   `bigquery:"total"`
	PaymentType   string    `bigquery:"payment_type"`
	SoldAt        time.Time `bigquery:"sold_at"`
	RecordedBy    string    `bigquery:"recorded_by"`
	IngestedAt    time.Time `bigquery:"ingested_at"`
}

// BuildSaleFacts flattens a sale.recorded envelope into warehouse rows,
// one per line in the batch.
func BuildSaleFacts(envelope *Envelope, now time.Time) ([]any, error) {
	if envelope.EventType != enums.EventSaleRecorded {
		return nil, fmt.Errorf("unexpected event type %q", envelope.EventType)
	}

	var payload outbox.SaleRecordedPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		return nil, fmt.Errorf("decoding sale payload: %w", err)
	}

	showID := ""
	if payload.ShowID != nil {
		showID = *payload.ShowID
	}
	recordedBy := ""
	if envelope.Actor != nil {
		recordedBy = envelope.Actor.UserID
	}

	rows := make([]any, 0, len(payload.Lines))
	for _, line := range payload.Lines {
		rows = append(rows, &SaleFact{
			EventID:       envelope.EventID,
			BatchID:       payload.BatchID,
			SaleID:        line.SaleID,
			MerchandiseID: line.MerchandiseID,
			ShowID:        showID,
			Quantity:      line.Quantity,
			UnitPrice:     float64(line.UnitPriceCents) / 100,
			Total:         float64(line.TotalCents) / 100,
			PaymentType:   line.PaymentType,
			SoldAt:        payload.SoldAt,
			RecordedBy:    recordedBy,
			IngestedAt:    now,
		})
	}
	return rows, nil
}
