package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/internal/inventory"
	"github.com/roadcasehq/merchtable-backend/internal/session"
	"github.com/roadcasehq/merchtable-backend/internal/stocklog"
	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
	"github.com/roadcasehq/merchtable-backend/pkg/enums"
	pkgerrors "github.com/roadcasehq/merchtable-backend/pkg/errors"
	"github.com/roadcasehq/merchtable-backend/pkg/logger"
	"github.com/roadcasehq/merchtable-backend/pkg/metrics"
	"github.com/roadcasehq/merchtable-backend/pkg/outbox"
	"github.com/roadcasehq/merchtable-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sessionAccess interface {
	Get(ctx context.Context, userID string) (*session.Document, error)
	Clear(ctx context.Context, userID string) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CardCharger captures a card payment during commit. Wiring is optional;
// callers pass nil when no payment processor is configured.
type CardCharger interface {
	Charge(ctx context.Context, amountCents int64, sourceID, note, referenceID string) (string, error)
}

// ValidationError describes why one session line failed validation.
type ValidationError struct {
	MerchandiseID string `json:"merchandise_id"`
	Reason        string `json:"reason"`
	Requested     int    `json:"requested,omitempty"`
	Stock         *int   `json:"stock,omitempty"`
}

const (
	reasonNotFound          = "not_found"
	reasonInactive          = "inactive"
	reasonInsufficientStock = "insufficient_stock"
	reasonEmptySession      = "empty_session"
)

// ValidationResult partitions the session into sellable lines and errors.
type ValidationResult struct {
	ValidItems []session.EnrichedItem `json:"valid_items"`
	Errors     []ValidationError      `json:"errors"`
}

// Valid reports whether every line passed.
func (r *ValidationResult) Valid() bool {
	return r != nil && len(r.Errors) == 0
}

// RecordingInput is the commit payload for the pending session.
type RecordingInput struct {
	PaymentType  enums.PaymentType
	ShowID       *string
	SalesPageID  *string
	Notes        string
	CardSourceID string
}

// RecordingResult is the structured outcome of a commit attempt.
// Validation failures land in Errors with Success false; only storage or
// payment faults surface as Go errors.
type RecordingResult struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	BatchID    string            `json:"batch_id,omitempty"`
	TotalCents int64             `json:"total_cents,omitempty"`
	Sales      []models.Sale     `json:"sales,omitempty"`
	Errors     []ValidationError `json:"errors,omitempty"`
}

// Service exposes the session validation and commit workflow.
type Service interface {
	ValidateSession(ctx context.Context, userID string) (*ValidationResult, error)
	ProcessRecording(ctx context.Context, userID string, input RecordingInput) (*RecordingResult, error)
	ListSales(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Sale, error)
	GetBatch(ctx context.Context, batchID string) ([]models.Sale, error)
}

type service struct {
	repo     *Repository
	merch    *inventory.Repository
	stockLog *stocklog.Repository
	sessions sessionAccess
	tx       txRunner
	events   eventEmitter
	charger  CardCharger
	metrics  *metrics.SalesMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the sales service. The charger and metrics are
// optional; everything else is required.
func NewService(
	repo *Repository,
	merch *inventory.Repository,
	stockLog *stocklog.Repository,
	sessions sessionAccess,
	tx txRunner,
	events eventEmitter,
	charger CardCharger,
	salesMetrics *metrics.SalesMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if merch == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if stockLog == nil {
		return nil, fmt.Errorf("stock log repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session access required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{
		repo:     repo,
		merch:    merch,
		stockLog: stockLog,
		sessions: sessions,
		tx:       tx,
		events:   events,
		charger:  charger,
		metrics:  salesMetrics,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// ValidateSession re-checks every pending line against live stock. It
// never mutates the session or inventory.
func (s *service) ValidateSession(ctx context.Context, userID string) (*ValidationResult, error) {
	doc, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.validateItems(ctx, doc.Items, s.merch)
}

func (s *service) validateItems(ctx context.Context, items []session.Item, merchRepo *inventory.Repository) (*ValidationResult, error) {
	result := &ValidationResult{
		ValidItems: []session.EnrichedItem{},
		Errors:     []ValidationError{},
	}

	for _, item := range items {
		merch, err := merchRepo.GetByID(ctx, item.MerchandiseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Errors = append(result.Errors, ValidationError{
					MerchandiseID: item.MerchandiseID,
					Reason:        reasonNotFound,
					Requested:     item.Quantity,
				})
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load merchandise")
		}
		if !merch.Active {
			result.Errors = append(result.Errors, ValidationError{
				MerchandiseID: item.MerchandiseID,
				Reason:        reasonInactive,
				Requested:     item.Quantity,
			})
			continue
		}
		if merch.Tracked() && item.Quantity > *merch.Stock {
			stock := *merch.Stock
			result.Errors = append(result.Errors, ValidationError{
				MerchandiseID: item.MerchandiseID,
				Reason:        reasonInsufficientStock,
				Requested:     item.Quantity,
				Stock:         &stock,
			})
			continue
		}
		result.ValidItems = append(result.ValidItems, session.EnrichedItem{
			MerchandiseID:  merch.ID,
			Name:           merch.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: merch.PriceCents,
			SubtotalCents:  merch.PriceCents * int64(item.Quantity),
			Stock:          merch.Stock,
		})
	}
	return result, nil
}

// errValidationFailed aborts the commit transaction when re-validation
// inside the transaction finds a stale session.
var errValidationFailed = errors.New("session validation failed")

// ProcessRecording commits the pending session: one Sale row per line,
// stock decremented with a matching audit entry, all inside a single
// transaction. Any invalid line aborts the whole batch with no writes.
func (s *service) ProcessRecording(ctx context.Context, userID string, input RecordingInput) (*RecordingResult, error) {
	if !input.PaymentType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment type").
			WithDetails(map[string]any{"payment_type": string(input.PaymentType)})
	}
	if input.PaymentType == enums.PaymentTypeCard && input.CardSourceID != "" && s.charger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card capture is not configured")
	}

	doc, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc.Empty() {
		s.metrics.IncRejected(reasonEmptySession)
		return &RecordingResult{
			Success: false,
			Message: "sales session is empty",
			Errors:  []ValidationError{{Reason: reasonEmptySession}},
		}, nil
	}

	batchID := uuid.NewString()
	soldAt := s.now()

	var (
		committed        []models.Sale
		totalCents       int64
		validationErrors []ValidationError
	)

	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		merchRepo := s.merch.WithTx(tx)

		// re-validate inside the transaction so stock drops between
		// request and commit abort the batch rather than oversell
		result, err := s.validateItems(ctx, doc.Items, merchRepo)
		if err != nil {
			return err
		}
		if !result.Valid() {
			validationErrors = result.Errors
			return errValidationFailed
		}

		for _, item := range doc.Items {
			merch, err := merchRepo.GetByID(ctx, item.MerchandiseID)
			if err != nil {
				return err
			}

			sale := models.Sale{
				ID:             uuid.NewString(),
				BatchID:        batchID,
				BandID:         merch.BandID,
				MerchandiseID:  merch.ID,
				ShowID:         input.ShowID,
				SalesPageID:    input.SalesPageID,
				RecordedByID:   userID,
				Quantity:       item.Quantity,
				UnitPriceCents: merch.PriceCents,
				TotalCents:     merch.PriceCents * int64(item.Quantity),
				PaymentType:    input.PaymentType,
				Notes:          strings.TrimSpace(input.Notes),
				SoldAt:         soldAt,
			}
			if err := s.repo.InsertTx(tx, &sale); err != nil {
				return err
			}

			if merch.Tracked() {
				previous := *merch.Stock
				newStock := previous - item.Quantity
				if newStock < 0 {
					newStock = 0
				}
				if err := merchRepo.UpdateStock(ctx, merch.ID, newStock); err != nil {
					return err
				}
				entry := models.StockLogEntry{
					MerchandiseID: merch.ID,
					PreviousStock: previous,
					NewStock:      newStock,
					ChangeReason:  enums.StockChangeReasonSale,
					ChangedByID:   &userID,
					SaleID:        &sale.ID,
				}
				if err := s.stockLog.InsertTx(tx, &entry); err != nil {
					return err
				}
			}

			totalCents += sale.TotalCents
			committed = append(committed, sale)
		}

		if input.PaymentType == enums.PaymentTypeCard && s.charger != nil && input.CardSourceID != "" {
			paymentID, err := s.charger.Charge(ctx, totalCents, input.CardSourceID, "merch table sale", batchID)
			if err != nil {
				return err
			}
			if err := s.repo.SetBatchPaymentTx(tx, batchID, paymentID); err != nil {
				return err
			}
			for i := range committed {
				pid := paymentID
				committed[i].SquarePayment = &pid
			}
		}

		lines := make([]outbox.SaleLine, 0, len(committed))
		for _, sale := range committed {
			lines = append(lines, outbox.SaleLine{
				SaleID:         sale.ID,
				MerchandiseID:  sale.MerchandiseID,
				Quantity:       sale.Quantity,
				UnitPriceCents: sale.UnitPriceCents,
				TotalCents:     sale.TotalCents,
				PaymentType:    string(sale.PaymentType),
			})
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSaleRecorded,
			AggregateType: enums.AggregateSaleBatch,
			AggregateID:   batchID,
			Actor:         &outbox.ActorRef{UserID: userID},
			Version:       1,
			Data: outbox.SaleRecordedPayload{
				BatchID:    batchID,
				ShowID:     input.ShowID,
				Lines:      lines,
				TotalCents: totalCents,
				SoldAt:     soldAt,
			},
		})
	})

	if txErr != nil {
		if errors.Is(txErr, errValidationFailed) {
			for _, vErr := range validationErrors {
				s.metrics.IncRejected(vErr.Reason)
			}
			return &RecordingResult{
				Success: false,
				Message: "session failed validation",
				Errors:  validationErrors,
			}, nil
		}
		if typed := pkgerrors.As(txErr); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "commit sales session")
	}

	// the sale is durable; a failed session clear only risks a stale cart
	if err := s.sessions.Clear(ctx, userID); err != nil && s.logg != nil {
		s.logg.Error(ctx, "clear session after commit", err)
	}

	s.metrics.ObserveBatchLines(len(committed))
	for _, sale := range committed {
		s.metrics.IncCommitted(string(sale.PaymentType))
		s.metrics.AddRevenue(string(sale.PaymentType), sale.TotalCents)
	}

	return &RecordingResult{
		Success:    true,
		Message:    fmt.Sprintf("recorded %d sale(s)", len(committed)),
		BatchID:    batchID,
		TotalCents: totalCents,
		Sales:      committed,
	}, nil
}

func (s *service) ListSales(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Sale, error) {
	rows, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	return rows, nil
}

func (s *service) GetBatch(ctx context.Context, batchID string) ([]models.Sale, error) {
	if strings.TrimSpace(batchID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch id is required")
	}
	rows, err := s.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load batch")
	}
	return rows, nil
}
