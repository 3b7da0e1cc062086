package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/internal/stocklog"
	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
	"github.com/roadcasehq/merchtable-backend/pkg/enums"
	pkgerrors "github.com/roadcasehq/merchtable-backend/pkg/errors"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
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
	stockLog := `
CREATE TABLE IF NOT EXISTS stock_log (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  merchandise_id TEXT NOT NULL,
  previous_stock INTEGER NOT NULL,
  new_stock INTEGER NOT NULL,
  change_reason TEXT NOT NULL,
  changed_by_id TEXT,
  sale_id TEXT,
  note TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(merchandise).Error)
	require.NoError(t, db.Exec(stockLog).Error)
	return db
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type failingStockLog struct{}

func (failingStockLog) InsertTx(tx *gorm.DB, entry *models.StockLogEntry) error {
	return errors.New("stock log unavailable")
}

func seedItem(t *testing.T, db *gorm.DB, stock *int) *models.Merchandise {
	t.Helper()
	merch := &models.Merchandise{
		ID:                uuid.NewString(),
		BandID:            uuid.NewString(),
		Name:              "Tour Shirt",
		PriceCents:        2500,
		Stock:             stock,
		LowStockThreshold: 5,
		Active:            true,
	}
	require.NoError(t, db.Create(merch).Error)
	return merch
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), testTxRunner{db: db}, stocklog.NewRepository(db))
	require.NoError(t, err)
	return svc
}

func intPtr(v int) *int { return &v }

func TestAdjustStockWritesAuditEntry(t *testing.T) {
	db := setupInventoryTestDB(t)
	merch := seedItem(t, db, intPtr(10))
	svc := newTestService(t, db)

	userID := uuid.NewString()
	adjusted, err := svc.AdjustStock(context.Background(), merch.ID, AdjustStockInput{
		NewStock: 25,
		Reason:   enums.StockChangeReasonRestock,
		UserID:   userID,
		Note:     "box from the van",
	})
	require.NoError(t, err)
	require.NotNil(t, adjusted.Stock)
	assert.Equal(t, 25, *adjusted.Stock)

	var stored models.Merchandise
	require.NoError(t, db.First(&stored, "id = ?", merch.ID).Error)
	assert.Equal(t, 25, *stored.Stock)

	var entries []models.StockLogEntry
	require.NoError(t, db.Where("merchandise_id = ?", merch.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, 10, entries[0].PreviousStock)
	assert.Equal(t, 25, entries[0].NewStock)
	assert.Equal(t, enums.StockChangeReasonRestock, entries[0].ChangeReason)
	require.NotNil(t, entries[0].ChangedByID)
	assert.Equal(t, userID, *entries[0].ChangedByID)
	assert.Equal(t, "box from the van", entries[0].Note)
	assert.Nil(t, entries[0].SaleID)
}

func TestAdjustStockRejectsUntrackedItem(t *testing.T) {
	db := setupInventoryTestDB(t)
	download := seedItem(t, db, nil)
	svc := newTestService(t, db)

	_, err := svc.AdjustStock(context.Background(), download.ID, AdjustStockInput{
		NewStock: 5,
		Reason:   enums.StockChangeReasonAdjustment,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	var logCount int64
	require.NoError(t, db.Model(&models.StockLogEntry{}).Where("merchandise_id = ?", download.ID).Count(&logCount).Error)
	assert.Zero(t, logCount)
}

func TestAdjustStockRejectsSaleReason(t *testing.T) {
	db := setupInventoryTestDB(t)
	merch := seedItem(t, db, intPtr(10))
	svc := newTestService(t, db)

	// sale entries come only from a committed batch
	_, err := svc.AdjustStock(context.Background(), merch.ID, AdjustStockInput{
		NewStock: 9,
		Reason:   enums.StockChangeReasonSale,
	})
	require.Error(t, err)

	var stored models.Merchandise
	require.NoError(t, db.First(&stored, "id = ?", merch.ID).Error)
	assert.Equal(t, 10, *stored.Stock)
}

func TestAdjustStockRejectsNegativeStock(t *testing.T) {
	db := setupInventoryTestDB(t)
	merch := seedItem(t, db, intPtr(10))
	svc := newTestService(t, db)

	_, err := svc.AdjustStock(context.Background(), merch.ID, AdjustStockInput{
		NewStock: -1,
		Reason:   enums.StockChangeReasonAdjustment,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestAdjustStockMissingMerchandise(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.AdjustStock(context.Background(), uuid.NewString(), AdjustStockInput{
		NewStock: 5,
		Reason:   enums.StockChangeReasonReturn,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeMerchNotFound, typed.Code())
}

func TestAdjustStockRollsBackWhenAuditInsertFails(t *testing.T) {
	db := setupInventoryTestDB(t)
	merch := seedItem(t, db, intPtr(10))

	svc, err := NewService(NewRepository(db), testTxRunner{db: db}, failingStockLog{})
	require.NoError(t, err)

	_, err = svc.AdjustStock(context.Background(), merch.ID, AdjustStockInput{
		NewStock: 25,
		Reason:   enums.StockChangeReasonRestock,
	})
	require.Error(t, err)

	// no stock change without its audit entry
	var stored models.Merchandise
	require.NoError(t, db.First(&stored, "id = ?", merch.ID).Error)
	assert.Equal(t, 10, *stored.Stock)
}

func TestCreateDefaultsThreshold(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newTestService(t, db)

	created, err := svc.Create(context.Background(), CreateInput{
		BandID:     uuid.NewString(),
		Name:       "  Poster ",
		PriceCents: 1000,
		Stock:      intPtr(40),
	})
	require.NoError(t, err)
	assert.Equal(t, "Poster", created.Name)
	assert.Equal(t, 5, created.LowStockThreshold)
	assert.True(t, created.Active)
}

func TestUpdateDoesNotTouchStock(t *testing.T) {
	db := setupInventoryTestDB(t)
	merch := seedItem(t, db, intPtr(10))
	svc := newTestService(t, db)

	price := int64(3000)
	updated, err := svc.Update(context.Background(), merch.ID, UpdateInput{PriceCents: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), updated.PriceCents)
	require.NotNil(t, updated.Stock)
	assert.Equal(t, 10, *updated.Stock)

	var logCount int64
	require.NoError(t, db.Model(&models.StockLogEntry{}).Where("merchandise_id = ?", merch.ID).Count(&logCount).Error)
	assert.Zero(t, logCount)
}
