package analytics

import (
	"context"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/roadcasehq/merchtable-backend/pkg/enums"
	"github.com/roadcasehq/merchtable-backend/pkg/logger"
)

const (
	dedupeKeyPrefix = "analytics:event:"
	dedupeTTL       = 24 * time.Hour
)

type factSink interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

type dedupeStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
}

// Worker drains sale events from Pub/Sub into the warehouse. Redis keeps
// a short dedupe window since Pub/Sub delivery is at-least-once.
type Worker struct {
	subscription *gcppubsub.Subscriber
	sink         factSink
	dedupe       dedupeStore
	table        string
	logg         *logger.Logger
	now          func() time.Time
}

// NewWorker builds the analytics worker.
func NewWorker(subscription *gcppubsub.Subscriber, sink factSink, dedupe dedupeStore, table string, logg *logger.Logger) (*Worker, error) {
	if subscription == nil {
		return nil, errors.New("sales subscription required")
	}
	if sink == nil {
		return nil, errors.New("warehouse sink required")
	}
	if dedupe == nil {
		return nil, errors.New("dedupe store required")
	}
	if table == "" {
		return nil, errors.New("sale facts table required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &Worker{
		subscription: subscription,
		sink:         sink,
		dedupe:       dedupe,
		table:        table,
		logg:         logg,
		now:          time.Now,
	}, nil
}

// Run consumes messages until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return w.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if w.handle(innerCtx, msg.Attributes, msg.Data) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// handle returns true when the message should be acked.
func (w *Worker) handle(ctx context.Context, attributes map[string]string, body []byte) bool {
	envelope, err := ParseEnvelope(attributes, body)
	if err != nil {
		// malformed messages never become valid; drop them
		w.logg.Warn(w.logg.WithField(ctx, "error", err.Error()), "dropping malformed event")
		return true
	}

	logCtx := w.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": envelope.EventType,
	})

	if envelope.EventType != enums.EventSaleRecorded {
		return true
	}

	fresh, err := w.dedupe.SetNX(ctx, dedupeKeyPrefix+envelope.EventID, 1, dedupeTTL)
	if err != nil {
		w.logg.Error(logCtx, "dedupe check failed", err)
		return false
	}
	if !fresh {
		w.logg.Info(logCtx, "event already ingested")
		return true
	}

	rows, err := BuildSaleFacts(envelope, w.now().UTC())
	if err != nil {
		w.logg.Warn(w.logg.WithField(logCtx, "error", err.Error()), "dropping undecodable sale event")
		return true
	}

	if err := w.sink.InsertRows(ctx, w.table, rows); err != nil {
		w.logg.Error(logCtx, "warehouse insert failed", err)
		return false
	}

	w.logg.Info(w.logg.WithField(logCtx, "rows", len(rows)), "sale facts ingested")
	return true
}
