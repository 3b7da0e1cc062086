package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
	"github.com/roadcasehq/merchtable-backend/pkg/enums"
	pkgerrors "github.com/roadcasehq/merchtable-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockLogWriter interface {
	InsertTx(tx *gorm.DB, entry *models.StockLogEntry) error
}

// CreateInput captures the payload for a new merchandise item.
type CreateInput struct {
	BandID            string
	Name              string
	SKU               string
	Category          string
	PriceCents        int64
	Stock             *int
	LowStockThreshold *int
}

// UpdateInput captures a partial merchandise edit. Nil fields are untouched.
// Stock is deliberately absent: stock moves only through AdjustStock or a
// committed sale so every change lands in the audit trail.
type UpdateInput struct {
	Name       *string
	SKU        *string
	Category   *string
	PriceCents *int64
	Threshold  *int
	Active     *bool
}

// AdjustStockInput describes a manual stock correction.
type AdjustStockInput struct {
	NewStock int
	Reason   enums.StockChangeReason
	UserID   string
	Note     string
}

// Service exposes merchandise management operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Merchandise, error)
	Update(ctx context.Context, id string, input UpdateInput) (*models.Merchandise, error)
	Get(ctx context.Context, id string) (*models.Merchandise, error)
	ListByBand(ctx context.Context, bandID string, activeOnly bool) ([]models.Merchandise, error)
	AdjustStock(ctx context.Context, id string, input AdjustStockInput) (*models.Merchandise, error)
	Deactivate(ctx context.Context, id string) error
}

type service struct {
	repo     *Repository
	tx       txRunner
	stockLog stockLogWriter
}

// NewService builds an inventory service backed by the provided stack.
func NewService(repo *Repository, tx txRunner, stockLog stockLogWriter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stockLog == nil {
		return nil, fmt.Errorf("stock log writer required")
	}
	return &service{repo: repo, tx: tx, stockLog: stockLog}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Merchandise, error) {
	if strings.TrimSpace(input.BandID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "band id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if input.Stock != nil && *input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
	}

	merch := &models.Merchandise{
		ID:         uuid.NewString(),
		BandID:     input.BandID,
		Name:       strings.TrimSpace(input.Name),
		SKU:        strings.TrimSpace(input.SKU),
		Category:   strings.TrimSpace(input.Category),
		PriceCents: input.PriceCents,
		Stock:      input.Stock,
		Active:     true,
	}
	if input.LowStockThreshold != nil {
		if *input.LowStockThreshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "low stock threshold must be non-negative")
		}
		merch.LowStockThreshold = *input.LowStockThreshold
	} else {
		merch.LowStockThreshold = 5
	}

	created, err := s.repo.Create(ctx, merch)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create merchandise")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (*models.Merchandise, error) {
	merch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		merch.Name = strings.TrimSpace(*input.Name)
	}
	if input.SKU != nil {
		merch.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.Category != nil {
		merch.Category = strings.TrimSpace(*input.Category)
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
		}
		merch.PriceCents = *input.PriceCents
	}
	if input.Threshold != nil {
		if *input.Threshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "low stock threshold must be non-negative")
		}
		merch.LowStockThreshold = *input.Threshold
	}
	if input.Active != nil {
		merch.Active = *input.Active
	}

	updated, err := s.repo.Update(ctx, merch)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update merchandise")
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Merchandise, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchandise id is required")
	}
	merch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeMerchNotFound, "merchandise not found").
				WithDetails(map[string]any{"merchandise_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load merchandise")
	}
	return merch, nil
}

func (s *service) ListByBand(ctx context.Context, bandID string, activeOnly bool) ([]models.Merchandise, error) {
	if strings.TrimSpace(bandID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "band id is required")
	}
	rows, err := s.repo.ListByBand(ctx, bandID, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list merchandise")
	}
	return rows, nil
}

// AdjustStock sets the tracked quantity and writes the matching audit
// entry in the same transaction.
func (s *service) AdjustStock(ctx context.Context, id string, input AdjustStockInput) (*models.Merchandise, error) {
	if input.NewStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
	}
	if !input.Reason.IsValid() || input.Reason == enums.StockChangeReasonSale {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid stock change reason")
	}

	var adjusted *models.Merchandise
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		merch, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeMerchNotFound, "merchandise not found")
			}
			return err
		}
		if !merch.Tracked() {
			return pkgerrors.New(pkgerrors.CodeValidation, "stock is not tracked for this item")
		}

		previous := *merch.Stock
		if err := repo.UpdateStock(ctx, id, input.NewStock); err != nil {
			return err
		}

		entry := &models.StockLogEntry{
			MerchandiseID: id,
			PreviousStock: previous,
			NewStock:      input.NewStock,
			ChangeReason:  input.Reason,
			Note:          strings.TrimSpace(input.Note),
		}
		if input.UserID != "" {
			entry.ChangedByID = &input.UserID
		}
		if err := s.stockLog.InsertTx(tx, entry); err != nil {
			return err
		}

		newStock := input.NewStock
		merch.Stock = &newStock
		adjusted = merch
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
	}
	return adjusted, nil
}

func (s *service) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate merchandise")
	}
	return nil
}
