package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/roadcasehq/merchtable-backend/pkg/config"
	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
	"github.com/roadcasehq/merchtable-backend/pkg/enums"
	"github.com/roadcasehq/merchtable-backend/pkg/logger"
	"github.com/roadcasehq/merchtable-backend/pkg/outbox"
)

type fakeRepo struct {
	events    []models.OutboxEvent
	published []string
	failed    []string
}

func (r *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	return r.events, nil
}

func (r *fakeRepo) MarkPublished(id string) error {
	r.published = append(r.published, id)
	return nil
}

func (r *fakeRepo) MarkFailed(id string, err error) error {
	r.failed = append(r.failed, id)
	return nil
}

type fakePubSub struct{}

func (fakePubSub) Ping(context.Context) error            { return nil }
func (fakePubSub) SalesPublisher() *gcppubsub.Publisher  { return nil }
func (fakePubSub) AlertsPublisher() *gcppubsub.Publisher { return nil }

type fakePublishResult struct {
	err error
}

func (r fakePublishResult) Get(context.Context) (string, error) {
	return "server-id", r.err
}

type fakePublisher struct {
	results  []publishResult
	messages []*gcppubsub.Message
}

func (p *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	p.messages = append(p.messages, msg)
	if len(p.results) == 0 {
		return fakePublishResult{}
	}
	result := p.results[0]
	p.results = p.results[1:]
	return result
}

func newTestService(t *testing.T, repo outboxRepository, pub publisher) *Service {
	t.Helper()
	cfg := &config.Config{}
	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logger.New(logger.Options{ServiceName: "outbox-publisher-test"}),
		Repository: repo,
		PubSub:     fakePubSub{},
		Router: func(enums.OutboxEventType) publisher {
			return pub
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func envelopePayload(t *testing.T, eventID string) json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{}`),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return payload
}

func saleEvent(t *testing.T, eventID string) models.OutboxEvent {
	t.Helper()
	return models.OutboxEvent{
		ID:            uuid.NewString(),
		EventType:     enums.EventSaleRecorded,
		AggregateType: enums.AggregateSaleBatch,
		AggregateID:   uuid.NewString(),
		Payload:       envelopePayload(t, eventID),
		CreatedAt:     time.Now().UTC(),
	}
}

func TestProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			saleEvent(t, "event-one"),
			saleEvent(t, "event-two"),
		},
	}
	pub := &fakePublisher{
		results: []publishResult{
			fakePublishResult{err: errors.New("transient")},
			fakePublishResult{},
		},
	}
	service := newTestService(t, repo, pub)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if got := len(repo.failed); got != 1 {
		t.Fatalf("unexpected number of failed rows: %d", got)
	}
	if got := len(repo.published); got != 1 {
		t.Fatalf("unexpected number of published rows: %d", got)
	}
	if repo.failed[0] != repo.events[0].ID {
		t.Fatalf("failed row recorded wrong ID")
	}
	if repo.published[0] != repo.events[1].ID {
		t.Fatalf("published row recorded wrong ID")
	}
}

func TestProcessBatchReportsIdleWhenEmpty(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakePublisher{})

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if processed {
		t.Fatalf("expected idle batch")
	}
}

func TestPublishEventCarriesEnvelopeAttributes(t *testing.T) {
	event := saleEvent(t, "event-attrs")
	pub := &fakePublisher{}
	service := newTestService(t, &fakeRepo{events: []models.OutboxEvent{event}}, pub)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected one published message, got %d", len(pub.messages))
	}

	msg := pub.messages[0]
	if msg.Attributes["event_id"] != "event-attrs" {
		t.Fatalf("unexpected event_id attribute: %q", msg.Attributes["event_id"])
	}
	if msg.Attributes["event_type"] != string(enums.EventSaleRecorded) {
		t.Fatalf("unexpected event_type attribute: %q", msg.Attributes["event_type"])
	}
	if msg.Attributes["aggregate_id"] != event.AggregateID {
		t.Fatalf("unexpected aggregate_id attribute: %q", msg.Attributes["aggregate_id"])
	}
	if string(msg.Data) != string(event.Payload) {
		t.Fatalf("message body should be the stored payload")
	}
}

func TestPublishEventFailsWithoutRoute(t *testing.T) {
	event := saleEvent(t, "event-unrouted")
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	service := newTestService(t, repo, &fakePublisher{})
	service.route = func(enums.OutboxEventType) publisher { return nil }

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(repo.failed) != 1 {
		t.Fatalf("expected the unrouted event to be marked failed")
	}
}
