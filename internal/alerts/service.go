package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
	"github.com/roadcasehq/merchtable-backend/pkg/enums"
	pkgerrors "github.com/roadcasehq/merchtable-backend/pkg/errors"
	"github.com/roadcasehq/merchtable-backend/pkg/logger"
	"github.com/roadcasehq/merchtable-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type lowStockLister interface {
	ListLowStock(ctx context.Context) ([]models.Merchandise, error)
}

type eventEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// SweepResult summarizes one pass over the inventory.
type SweepResult struct {
	Raised   int `json:"raised"`
	Resolved int `json:"resolved"`
}

// Service raises and retires low-stock alerts.
type Service interface {
	Sweep(ctx context.Context) (*SweepResult, error)
	ListActive(ctx context.Context) ([]models.StockAlert, error)
	ListByStatus(ctx context.Context, status enums.AlertStatus) ([]models.StockAlert, error)
	Resolve(ctx context.Context, id string) error
	Dismiss(ctx context.Context, id string) error
}

type service struct {
	repo   *Repository
	merch  lowStockLister
	tx     txRunner
	events eventEmitter
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the alert service. The logger is optional.
func NewService(repo *Repository, merch lowStockLister, tx txRunner, events eventEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("alert repository required")
	}
	if merch == nil {
		return nil, fmt.Errorf("low stock lister required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{
		repo:   repo,
		merch:  merch,
		tx:     tx,
		events: events,
		logg:   logg,
		now:    time.Now,
	}, nil
}

// Sweep raises an alert for each tracked item at or below its threshold
// that has no open alert, and resolves open alerts whose item recovered.
func (s *service) Sweep(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{}

	low, err := s.merch.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}
	lowByID := make(map[string]models.Merchandise, len(low))
	for _, merch := range low {
		lowByID[merch.ID] = merch
	}

	for _, merch := range low {
		raised, err := s.raiseIfMissing(ctx, merch)
		if err != nil {
			return nil, err
		}
		if raised {
			result.Raised++
		}
	}

	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active alerts")
	}
	for _, alert := range active {
		if _, still := lowByID[alert.MerchandiseID]; still {
			continue
		}
		resolvedAt := s.now()
		changed, err := s.repo.SetStatus(ctx, alert.ID, enums.AlertStatusResolved, &resolvedAt)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve alert")
		}
		if changed > 0 {
			result.Resolved++
		}
	}

	if s.logg != nil && (result.Raised > 0 || result.Resolved > 0) {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"raised":   result.Raised,
			"resolved": result.Resolved,
		})
		s.logg.Info(logCtx, "stock alert sweep finished")
	}
	return result, nil
}

func (s *service) raiseIfMissing(ctx context.Context, merch models.Merchandise) (bool, error) {
	if !merch.Tracked() {
		return false, nil
	}

	var raised bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		_, err := repo.GetActiveByMerchandise(ctx, merch.ID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		alert := &models.StockAlert{
			ID:            uuid.NewString(),
			MerchandiseID: merch.ID,
			StockAtAlert:  *merch.Stock,
			Threshold:     merch.LowStockThreshold,
			Status:        enums.AlertStatusActive,
		}
		if _, err := repo.Create(ctx, alert); err != nil {
			return err
		}
		raised = true

		return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStockAlertRaise,
			AggregateType: enums.AggregateMerchandise,
			AggregateID:   merch.ID,
			Version:       1,
			Data: outbox.StockAlertRaisedPayload{
				AlertID:       alert.ID,
				MerchandiseID: merch.ID,
				Stock:         *merch.Stock,
				Threshold:     merch.LowStockThreshold,
			},
		})
	})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "raise alert")
	}
	return raised, nil
}

func (s *service) ListActive(ctx context.Context) ([]models.StockAlert, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list alerts")
	}
	return rows, nil
}

func (s *service) ListByStatus(ctx context.Context, status enums.AlertStatus) ([]models.StockAlert, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid alert status")
	}
	rows, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list alerts")
	}
	return rows, nil
}

// Resolve closes an alert because stock recovered.
func (s *service) Resolve(ctx context.Context, id string) error {
	return s.close(ctx, id, enums.AlertStatusResolved)
}

// Dismiss closes an alert without restocking.
func (s *service) Dismiss(ctx context.Context, id string) error {
	return s.close(ctx, id, enums.AlertStatusDismissed)
}

func (s *service) close(ctx context.Context, id string, status enums.AlertStatus) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "alert id is required")
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "alert not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load alert")
	}

	resolvedAt := s.now()
	changed, err := s.repo.SetStatus(ctx, id, status, &resolvedAt)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update alert")
	}
	if changed == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "alert is not active")
	}
	return nil
}
