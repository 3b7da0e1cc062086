package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
	pkgerrors "github.com/roadcasehq/merchtable-backend/pkg/errors"
)

type merchLoader interface {
	GetByID(ctx context.Context, id string) (*models.Merchandise, error)
}

// Service exposes the per-user sales session operations. Every mutation
// rewrites the whole document so the session survives across requests.
type Service interface {
	Add(ctx context.Context, userID, merchandiseID string, quantity int) (*Document, error)
	Update(ctx context.Context, userID, merchandiseID string, quantity int) (*Document, error)
	Remove(ctx context.Context, userID, merchandiseID string) (*Document, error)
	Clear(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (*Document, error)
	Items(ctx context.Context, userID string) ([]EnrichedItem, error)
}

type service struct {
	store Store
	merch merchLoader
	now   func() time.Time
}

// NewService builds a session service backed by the provided store.
func NewService(store Store, merch merchLoader) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if merch == nil {
		return nil, fmt.Errorf("merchandise loader required")
	}
	return &service{store: store, merch: merch, now: time.Now}, nil
}

// Add inserts or overwrites the session entry for the merchandise id.
// Re-adding an id already in the session replaces its quantity.
func (s *service) Add(ctx context.Context, userID, merchandiseID string, quantity int) (*Document, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if _, err := s.checkQuantity(ctx, merchandiseID, quantity); err != nil {
		return nil, err
	}

	doc, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if idx := doc.Find(merchandiseID); idx >= 0 {
		doc.Items[idx].Quantity = quantity
	} else {
		doc.Items = append(doc.Items, Item{
			MerchandiseID: merchandiseID,
			Quantity:      quantity,
			AddedAt:       now,
		})
	}
	doc.UpdatedAt = now

	if err := s.store.Save(ctx, userID, doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist session")
	}
	return doc, nil
}

// Update replaces the quantity of an entry already in the session.
func (s *service) Update(ctx context.Context, userID, merchandiseID string, quantity int) (*Document, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if _, err := s.checkQuantity(ctx, merchandiseID, quantity); err != nil {
		return nil, err
	}

	doc, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := doc.Find(merchandiseID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotInSession, "item not in sales session").
			WithDetails(map[string]any{"merchandise_id": merchandiseID})
	}
	doc.Items[idx].Quantity = quantity
	doc.UpdatedAt = s.now()

	if err := s.store.Save(ctx, userID, doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist session")
	}
	return doc, nil
}

// Remove drops the entry if present. Removing an absent id succeeds.
func (s *service) Remove(ctx context.Context, userID, merchandiseID string) (*Document, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	doc, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := doc.Find(merchandiseID)
	if idx < 0 {
		return doc, nil
	}
	doc.Items = append(doc.Items[:idx], doc.Items[idx+1:]...)
	doc.UpdatedAt = s.now()

	if err := s.store.Save(ctx, userID, doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist session")
	}
	return doc, nil
}

// Clear empties the session entirely.
func (s *service) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session")
	}
	return nil
}

// Get returns the raw session document, never nil.
func (s *service) Get(ctx context.Context, userID string) (*Document, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.load(ctx, userID)
}

// Items returns the session enriched with live prices and subtotals.
// Prices are read at call time, so a merch price edit shows up immediately.
func (s *service) Items(ctx context.Context, userID string) ([]EnrichedItem, error) {
	doc, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	enriched := make([]EnrichedItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		merch, err := s.merch.GetByID(ctx, item.MerchandiseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load merchandise")
		}
		enriched = append(enriched, EnrichedItem{
			MerchandiseID:  merch.ID,
			Name:           merch.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: merch.PriceCents,
			SubtotalCents:  merch.PriceCents * int64(item.Quantity),
			Stock:          merch.Stock,
		})
	}
	return enriched, nil
}

func (s *service) load(ctx context.Context, userID string) (*Document, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	if doc == nil {
		doc = &Document{}
	}
	return doc, nil
}

// checkQuantity enforces the add/update constraints: positive quantity,
// merchandise exists, quantity within current stock for tracked items.
func (s *service) checkQuantity(ctx context.Context, merchandiseID string, quantity int) (*models.Merchandise, error) {
	if merchandiseID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchandise id is required")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}

	merch, err := s.merch.GetByID(ctx, merchandiseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeMerchNotFound, "merchandise not found").
				WithDetails(map[string]any{"merchandise_id": merchandiseID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load merchandise")
	}

	if merch.Tracked() && quantity > *merch.Stock {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "quantity exceeds current stock").
			WithDetails(map[string]any{
				"merchandise_id": merchandiseID,
				"requested":      quantity,
				"stock":          *merch.Stock,
			})
	}
	return merch, nil
}
