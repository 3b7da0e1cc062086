package reports

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/internal/inventory"
	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
	"github.com/roadcasehq/merchtable-backend/pkg/enums"
)

func setupReportsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	merchandise := `
CREATE TABLE IF NOT EXISTS merchandise (
  id TEXT PRIMARY KEY,
  band_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sku TEXT,
  category TEXT,
  price_cents INTEGER NOT NULL,
  stock INTEGER,
  low_stock_threshold INTEGER NOT NULL DEFAULT 5,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	sales := `
CREATE TABLE IF NOT EXISTS sales (
  id TEXT PRIMARY KEY,
  batch_id TEXT NOT NULL,
  band_id TEXT NOT NULL,
  merchandise_id TEXT NOT NULL,
  show_id TEXT,
  sales_page_id TEXT,
  recorded_by_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  payment_type TEXT NOT NULL,
  square_payment_id TEXT,
  notes TEXT,
  sold_at DATETIME NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(merchandise).Error)
	require.NoError(t, db.Exec(sales).Error)
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), inventory.NewRepository(db))
	require.NoError(t, err)
	return svc
}

type saleSeed struct {
	merch       *models.Merchandise
	quantity    int
	paymentType enums.PaymentType
	showID      *string
	soldAt      time.Time
}

func seedSale(t *testing.T, db *gorm.DB, seed saleSeed) *models.Sale {
	t.Helper()
	sale := &models.Sale{
		ID:             uuid.NewString(),
		BatchID:        uuid.NewString(),
		BandID:         seed.merch.BandID,
		MerchandiseID:  seed.merch.ID,
		ShowID:         seed.showID,
		RecordedByID:   uuid.NewString(),
		Quantity:       seed.quantity,
		UnitPriceCents: seed.merch.PriceCents,
		TotalCents:     seed.merch.PriceCents * int64(seed.quantity),
		PaymentType:    seed.paymentType,
		SoldAt:         seed.soldAt,
	}
	require.NoError(t, db.Create(sale).Error)
	return sale
}

func seedMerch(t *testing.T, db *gorm.DB, bandID, name, sku string, price int64, stock *int) *models.Merchandise {
	t.Helper()
	merch := &models.Merchandise{
		ID:                uuid.NewString(),
		BandID:            bandID,
		Name:              name,
		SKU:               sku,
		PriceCents:        price,
		Stock:             stock,
		LowStockThreshold: 5,
		Active:            true,
	}
	require.NoError(t, db.Create(merch).Error)
	return merch
}

func TestSalesReportAggregates(t *testing.T) {
	db := setupReportsTestDB(t)
	svc := newTestService(t, db)

	bandID := uuid.NewString()
	shirt := seedMerch(t, db, bandID, "Tour Shirt", "TS-01", 2500, intPtr(100))
	poster := seedMerch(t, db, bandID, "Poster", "PO-01", 1000, intPtr(40))
	showID := uuid.NewString()
	day := time.Date(2026, 6, 14, 21, 0, 0, 0, time.UTC)

	seedSale(t, db, saleSeed{merch: shirt, quantity: 2, paymentType: enums.PaymentTypeCash, showID: &showID, soldAt: day})
	seedSale(t, db, saleSeed{merch: shirt, quantity: 1, paymentType: enums.PaymentTypeCard, showID: &showID, soldAt: day.Add(time.Hour)})
	seedSale(t, db, saleSeed{merch: poster, quantity: 3, paymentType: enums.PaymentTypeCash, soldAt: day.Add(2 * time.Hour)})

	report, err := svc.SalesReport(context.Background(), Filter{BandID: bandID})
	require.NoError(t, err)

	assert.Equal(t, int64(3), report.Summary.SaleCount)
	assert.Equal(t, int64(6), report.Summary.Quantity)
	assert.Equal(t, int64(2500*3+1000*3), report.Summary.TotalCents)

	require.Len(t, report.ByPaymentType, 2)
	byType := map[string]PaymentTypeTotal{}
	for _, row := range report.ByPaymentType {
		byType[row.PaymentType] = row
	}
	assert.Equal(t, int64(5000+3000), byType["cash"].TotalCents)
	assert.Equal(t, int64(2500), byType["card"].TotalCents)

	require.Len(t, report.ByMerchandise, 2)
	assert.Equal(t, "Tour Shirt", report.ByMerchandise[0].Name)
	assert.Equal(t, int64(7500), report.ByMerchandise[0].TotalCents)

	require.Len(t, report.ByShow, 2)
}

func TestSalesReportDateRange(t *testing.T) {
	db := setupReportsTestDB(t)
	svc := newTestService(t, db)

	bandID := uuid.NewString()
	shirt := seedMerch(t, db, bandID, "Tour Shirt", "", 2000, intPtr(10))

	seedSale(t, db, saleSeed{merch: shirt, quantity: 1, paymentType: enums.PaymentTypeCash, soldAt: time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)})
	seedSale(t, db, saleSeed{merch: shirt, quantity: 1, paymentType: enums.PaymentTypeCash, soldAt: time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)})

	from := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	report, err := svc.SalesReport(context.Background(), Filter{BandID: bandID, From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Summary.SaleCount)

	_, err = svc.SalesReport(context.Background(), Filter{BandID: bandID, From: &to, To: &from})
	require.Error(t, err)
}

func TestInventorySnapshotFlagsLowStock(t *testing.T) {
	db := setupReportsTestDB(t)
	svc := newTestService(t, db)

	bandID := uuid.NewString()
	seedMerch(t, db, bandID, "Tour Shirt", "TS-01", 2500, intPtr(3))
	seedMerch(t, db, bandID, "Poster", "PO-01", 1000, intPtr(40))
	seedMerch(t, db, bandID, "Download Code", "", 500, nil)

	rows, err := svc.InventorySnapshot(context.Background(), bandID)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byName := map[string]InventoryRow{}
	for _, row := range rows {
		byName[row.Name] = row
	}
	assert.True(t, byName["Tour Shirt"].LowStock)
	assert.False(t, byName["Poster"].LowStock)
	assert.False(t, byName["Download Code"].LowStock)
	assert.Nil(t, byName["Download Code"].Stock)
}

func TestExportSalesCSV(t *testing.T) {
	db := setupReportsTestDB(t)
	svc := newTestService(t, db)

	bandID := uuid.NewString()
	shirt := seedMerch(t, db, bandID, "Tour Shirt", "TS-01", 2500, intPtr(100))
	seedSale(t, db, saleSeed{merch: shirt, quantity: 2, paymentType: enums.PaymentTypeCash, soldAt: time.Date(2026, 6, 14, 21, 0, 0, 0, time.UTC)})

	var buf bytes.Buffer
	err := svc.ExportSalesCSV(context.Background(), Filter{BandID: bandID}, &buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "sold_at,batch_id,merchandise,sku,quantity,unit_price,total,payment_type,show_id,notes", lines[0])
	assert.Contains(t, lines[1], "Tour Shirt")
	assert.Contains(t, lines[1], "TS-01")
	assert.Contains(t, lines[1], "25.00")
	assert.Contains(t, lines[1], "50.00")
	assert.Contains(t, lines[1], "cash")
}

func intPtr(v int) *int { return &v }
