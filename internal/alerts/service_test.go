package alerts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/internal/inventory"
	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
	"github.com/roadcasehq/merchtable-backend/pkg/enums"
	"github.com/roadcasehq/merchtable-backend/pkg/outbox"
)

func setupAlertsTestDB(t *testing.T) *gorm.DB {
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
	stockAlerts := `
CREATE TABLE IF NOT EXISTS stock_alerts (
  id TEXT PRIMARY KEY,
  merchandise_id TEXT NOT NULL,
  stock_at_alert INTEGER NOT NULL,
  threshold INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  resolved_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	outboxEvents := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT,
  published_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(merchandise).Error)
	require.NoError(t, db.Exec(stockAlerts).Error)
	require.NoError(t, db.Exec(outboxEvents).Error)
	return db
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(
		NewRepository(db),
		inventory.NewRepository(db),
		testTxRunner{db: db},
		outbox.NewService(outbox.NewRepository(db), nil),
		nil,
	)
	require.NoError(t, err)
	return svc
}

func seedMerch(t *testing.T, db *gorm.DB, stock *int, threshold int) *models.Merchandise {
	t.Helper()
	merch := &models.Merchandise{
		ID:                uuid.NewString(),
		BandID:            uuid.NewString(),
		Name:              "Vinyl LP",
		PriceCents:        3000,
		Stock:             stock,
		LowStockThreshold: threshold,
		Active:            true,
	}
	require.NoError(t, db.Create(merch).Error)
	return merch
}

func activeAlertFor(t *testing.T, db *gorm.DB, merchandiseID string) *models.StockAlert {
	t.Helper()
	var alert models.StockAlert
	err := db.Where("merchandise_id = ? AND status = ?", merchandiseID, enums.AlertStatusActive).First(&alert).Error
	if err != nil {
		return nil
	}
	return &alert
}

func TestSweepRaisesAlertOnce(t *testing.T) {
	db := setupAlertsTestDB(t)
	merch := seedMerch(t, db, intPtr(3), 5)
	svc := newTestService(t, db)

	result, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Raised, 1)

	alert := activeAlertFor(t, db, merch.ID)
	require.NotNil(t, alert)
	assert.Equal(t, 3, alert.StockAtAlert)
	assert.Equal(t, 5, alert.Threshold)

	var events int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).
		Where("event_type = ? AND aggregate_id = ?", enums.EventStockAlertRaise, merch.ID).
		Count(&events).Error)
	assert.Equal(t, int64(1), events)

	// second pass must not duplicate the open alert
	_, err = svc.Sweep(context.Background())
	require.NoError(t, err)

	var alertCount int64
	require.NoError(t, db.Model(&models.StockAlert{}).
		Where("merchandise_id = ? AND status = ?", merch.ID, enums.AlertStatusActive).
		Count(&alertCount).Error)
	assert.Equal(t, int64(1), alertCount)
}

func TestSweepResolvesRecoveredItem(t *testing.T) {
	db := setupAlertsTestDB(t)
	merch := seedMerch(t, db, intPtr(2), 5)
	svc := newTestService(t, db)

	_, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	require.NotNil(t, activeAlertFor(t, db, merch.ID))

	require.NoError(t, db.Model(&models.Merchandise{}).Where("id = ?", merch.ID).Update("stock", 40).Error)

	_, err = svc.Sweep(context.Background())
	require.NoError(t, err)

	assert.Nil(t, activeAlertFor(t, db, merch.ID))
	var alert models.StockAlert
	require.NoError(t, db.Where("merchandise_id = ?", merch.ID).First(&alert).Error)
	assert.Equal(t, enums.AlertStatusResolved, alert.Status)
	require.NotNil(t, alert.ResolvedAt)
}

func TestSweepIgnoresHealthyAndUntrackedItems(t *testing.T) {
	db := setupAlertsTestDB(t)
	healthy := seedMerch(t, db, intPtr(80), 5)
	untracked := seedMerch(t, db, nil, 5)
	svc := newTestService(t, db)

	_, err := svc.Sweep(context.Background())
	require.NoError(t, err)

	assert.Nil(t, activeAlertFor(t, db, healthy.ID))
	assert.Nil(t, activeAlertFor(t, db, untracked.ID))
}

func TestDismissClosesActiveAlert(t *testing.T) {
	db := setupAlertsTestDB(t)
	merch := seedMerch(t, db, intPtr(1), 5)
	svc := newTestService(t, db)

	_, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	alert := activeAlertFor(t, db, merch.ID)
	require.NotNil(t, alert)

	require.NoError(t, svc.Dismiss(context.Background(), alert.ID))

	var stored models.StockAlert
	require.NoError(t, db.First(&stored, "id = ?", alert.ID).Error)
	assert.Equal(t, enums.AlertStatusDismissed, stored.Status)

	// already closed
	err = svc.Dismiss(context.Background(), alert.ID)
	require.Error(t, err)
}

func TestResolveUnknownAlert(t *testing.T) {
	db := setupAlertsTestDB(t)
	svc := newTestService(t, db)

	err := svc.Resolve(context.Background(), uuid.NewString())
	require.Error(t, err)
}

func intPtr(v int) *int { return &v }
