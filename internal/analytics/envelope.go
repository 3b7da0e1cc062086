package analytics

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roadcasehq/merchtable-backend/pkg/enums"
	"github.com/roadcasehq/merchtable-backend/pkg/outbox"
)

// Envelope is one domain event as it arrives off the wire: routing
// attributes plus the outbox payload envelope.
type Envelope struct {
	EventID       string
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   string
	OccurredAt    time.Time
	Actor         *outbox.ActorRef
	Data          json.RawMessage
}

// ParseEnvelope decodes a published outbox message. Attributes carry the
// routing fields; the body is the payload envelope written at emit time.
func ParseEnvelope(attributes map[string]string, body []byte) (*Envelope, error) {
	eventType, err := enums.ParseOutboxEventType(attributes["event_type"])
	if err != nil {
		return nil, err
	}
	aggregateType := enums.OutboxAggregateType(attributes["aggregate_type"])
	if !aggregateType.IsValid() {
		return nil, fmt.Errorf("invalid aggregate type %q", attributes["aggregate_type"])
	}

	var payload outbox.PayloadEnvelope
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding payload envelope: %w", err)
	}
	if payload.EventID == "" {
		return nil, fmt.Errorf("payload envelope missing event id")
	}

	return &Envelope{
		EventID:       payload.EventID,
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   attributes["aggregate_id"],
		OccurredAt:    payload.OccurredAt,
		Actor:         payload.Actor,
		Data:          payload.Data,
	}, nil
}
