package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/roadcasehq/merchtable-backend/pkg/logger"
	"github.com/roadcasehq/merchtable-backend/pkg/outbox"
)

type captureSink struct {
	table string
	rows  []any
	err   error
	calls int
}

func (c *captureSink) InsertRows(ctx context.Context, table string, rows []any) error {
	c.calls++
	c.table = table
	c.rows = rows
	return c.err
}

type memDedupe struct {
	seen map[string]bool
	err  error
}

func (m *memDedupe) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func newTestWorker(sink *captureSink, dedupe *memDedupe) *Worker {
	return &Worker{
		sink:   sink,
		dedupe: dedupe,
		table:  "sale_facts",
		logg:   logger.New(logger.Options{ServiceName: "analytics-test"}),
		now:    func() time.Time { return time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func saleMessage(t *testing.T, eventID string) (map[string]string, []byte) {
	t.Helper()
	payload, err := json.Marshal(outbox.SaleRecordedPayload{
		BatchID: uuid.NewString(),
		Lines: []outbox.SaleLine{
			{SaleID: uuid.NewString(), MerchandiseID: uuid.NewString(), Quantity: 2, UnitPriceCents: 2500, TotalCents: 5000, PaymentType: "cash"},
			{SaleID: uuid.NewString(), MerchandiseID: uuid.NewString(), Quantity: 1, UnitPriceCents: 1000, TotalCents: 1000, PaymentType: "cash"},
		},
		TotalCents: 6000,
		SoldAt:     time.Date(2026, 6, 30, 22, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	body, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Date(2026, 6, 30, 22, 0, 1, 0, time.UTC),
		Actor:      &outbox.ActorRef{UserID: "user-1"},
		Data:       payload,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	attributes := map[string]string{
		"event_id":       eventID,
		"event_type":     "sale.recorded",
		"aggregate_type": "sale_batch",
		"aggregate_id":   uuid.NewString(),
	}
	return attributes, body
}

func TestHandleIngestsSaleFacts(t *testing.T) {
	sink := &captureSink{}
	worker := newTestWorker(sink, &memDedupe{})

	attributes, body := saleMessage(t, uuid.NewString())
	if !worker.handle(context.Background(), attributes, body) {
		t.Fatalf("expected ack")
	}
	if sink.table != "sale_facts" {
		t.Fatalf("unexpected table %q", sink.table)
	}
	if len(sink.rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(sink.rows))
	}
	fact, ok := sink.rows[0].(*SaleFact)
	if !ok {
		t.Fatalf("row type mismatch")
	}
	if fact.UnitPrice != 25.0 || fact.Total != 50.0 {
		t.Fatalf("unexpected money conversion: unit %v total %v", fact.UnitPrice, fact.Total)
	}
	if fact.RecordedBy != "user-1" {
		t.Fatalf("expected actor user id, got %q", fact.RecordedBy)
	}
}

func TestHandleSkipsDuplicateEvents(t *testing.T) {
	sink := &captureSink{}
	worker := newTestWorker(sink, &memDedupe{})

	attributes, body := saleMessage(t, uuid.NewString())
	if !worker.handle(context.Background(), attributes, body) {
		t.Fatalf("expected first delivery to ack")
	}
	if !worker.handle(context.Background(), attributes, body) {
		t.Fatalf("expected redelivery to ack")
	}
	if sink.calls != 1 {
		t.Fatalf("expected one insert, got %d", sink.calls)
	}
}

func TestHandleDropsMalformedMessages(t *testing.T) {
	sink := &captureSink{}
	worker := newTestWorker(sink, &memDedupe{})

	if !worker.handle(context.Background(), map[string]string{"event_type": "nope"}, []byte("{}")) {
		t.Fatalf("malformed message should ack so it is not redelivered")
	}
	if sink.calls != 0 {
		t.Fatalf("expected no inserts, got %d", sink.calls)
	}
}

func TestHandleNacksOnSinkFailure(t *testing.T) {
	sink := &captureSink{err: context.DeadlineExceeded}
	worker := newTestWorker(sink, &memDedupe{})

	attributes, body := saleMessage(t, uuid.NewString())
	if worker.handle(context.Background(), attributes, body) {
		t.Fatalf("expected nack on sink failure")
	}
}

func TestHandleIgnoresOtherEventTypes(t *testing.T) {
	sink := &captureSink{}
	worker := newTestWorker(sink, &memDedupe{})

	body, err := json.Marshal(outbox.PayloadEnvelope{Version: 1, EventID: uuid.NewString(), Data: []byte(`{}`)})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	attributes := map[string]string{
		"event_type":     "stock.alert_raised",
		"aggregate_type": "merchandise",
		"aggregate_id":   uuid.NewString(),
	}
	if !worker.handle(context.Background(), attributes, body) {
		t.Fatalf("expected ack")
	}
	if sink.calls != 0 {
		t.Fatalf("expected no inserts, got %d", sink.calls)
	}
}
