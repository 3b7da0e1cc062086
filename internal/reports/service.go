package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
	pkgerrors "github.com/roadcasehq/merchtable-backend/pkg/errors"
	"github.com/roadcasehq/merchtable-backend/pkg/money"
)

type merchReader interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.Merchandise, error)
	ListByBand(ctx context.Context, bandID string, activeOnly bool) ([]models.Merchandise, error)
}

// Report bundles the aggregates for one filtered period.
type Report struct {
	Summary       *Summary           `json:"summary"`
	ByPaymentType []PaymentTypeTotal `json:"by_payment_type"`
	ByMerchandise []MerchandiseTotal `json:"by_merchandise"`
	ByShow        []ShowTotal        `json:"by_show"`
}

// InventoryRow is one line of the stock snapshot.
type InventoryRow struct {
	MerchandiseID string `json:"merchandise_id"`
	Name          string `json:"name"`
	SKU           string `json:"sku,omitempty"`
	PriceCents    int64  `json:"price_cents"`
	Stock         *int   `json:"stock,omitempty"`
	Threshold     int    `json:"threshold"`
	LowStock      bool   `json:"low_stock"`
	Active        bool   `json:"active"`
}

// Service assembles sales reports and exports.
type Service interface {
	SalesReport(ctx context.Context, filter Filter) (*Report, error)
	InventorySnapshot(ctx context.Context, bandID string) ([]InventoryRow, error)
	ExportSalesCSV(ctx context.Context, filter Filter, w io.Writer) error
}

type service struct {
	repo  *Repository
	merch merchReader
}

// NewService builds the reporting service.
func NewService(repo *Repository, merch merchReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	if merch == nil {
		return nil, fmt.Errorf("merchandise reader required")
	}
	return &service{repo: repo, merch: merch}, nil
}

func (s *service) SalesReport(ctx context.Context, filter Filter) (*Report, error) {
	if err := checkRange(filter); err != nil {
		return nil, err
	}

	summary, err := s.repo.Summarize(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize sales")
	}
	byPayment, err := s.repo.ByPaymentType(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "group by payment type")
	}
	byMerch, err := s.repo.ByMerchandise(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "group by merchandise")
	}
	byShow, err := s.repo.ByShow(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "group by show")
	}

	return &Report{
		Summary:       summary,
		ByPaymentType: byPayment,
		ByMerchandise: byMerch,
		ByShow:        byShow,
	}, nil
}

func (s *service) InventorySnapshot(ctx context.Context, bandID string) ([]InventoryRow, error) {
	if strings.TrimSpace(bandID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "band id is required")
	}
	items, err := s.merch.ListByBand(ctx, bandID, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list merchandise")
	}

	rows := make([]InventoryRow, 0, len(items))
	for _, item := range items {
		row := InventoryRow{
			MerchandiseID: item.ID,
			Name:          item.Name,
			SKU:           item.SKU,
			PriceCents:    item.PriceCents,
			Stock:         item.Stock,
			Threshold:     item.LowStockThreshold,
			Active:        item.Active,
		}
		if item.Tracked() && *item.Stock <= item.LowStockThreshold {
			row.LowStock = true
		}
		rows = append(rows, row)
	}
	return rows, nil
}

var csvHeader = []string{
	"sold_at", "batch_id", "merchandise", "sku", "quantity",
	"unit_price", "total", "payment_type", "show_id", "notes",
}

// ExportSalesCSV streams the filtered sales as CSV, oldest first. Money
// columns are formatted in major units.
func (s *service) ExportSalesCSV(ctx context.Context, filter Filter, w io.Writer) error {
	if err := checkRange(filter); err != nil {
		return err
	}

	sales, err := s.repo.ListSales(ctx, filter)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales for export")
	}

	ids := make([]string, 0, len(sales))
	seen := map[string]bool{}
	for _, sale := range sales {
		if !seen[sale.MerchandiseID] {
			seen[sale.MerchandiseID] = true
			ids = append(ids, sale.MerchandiseID)
		}
	}
	merchByID, err := s.merch.GetByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load merchandise for export")
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, sale := range sales {
		name := sale.MerchandiseID
		sku := ""
		if merch, ok := merchByID[sale.MerchandiseID]; ok {
			name = merch.Name
			sku = merch.SKU
		}
		showID := ""
		if sale.ShowID != nil {
			showID = *sale.ShowID
		}
		record := []string{
			sale.SoldAt.UTC().Format(time.RFC3339),
			sale.BatchID,
			name,
			sku,
			strconv.Itoa(sale.Quantity),
			money.Format(sale.UnitPriceCents),
			money.Format(sale.TotalCents),
			string(sale.PaymentType),
			showID,
			sale.Notes,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func checkRange(filter Filter) error {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return pkgerrors.New(pkgerrors.CodeValidation, "date range end precedes start")
	}
	return nil
}
