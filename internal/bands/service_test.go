package bands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/internal/inventory"
	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
)

func setupBandsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS bands (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  website TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS tours (
  id TEXT PRIMARY KEY,
  band_id TEXT NOT NULL,
  name TEXT NOT NULL,
  start_date DATETIME,
  end_date DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS shows (
  id TEXT PRIMARY KEY,
  band_id TEXT NOT NULL,
  tour_id TEXT,
  venue TEXT NOT NULL,
  city TEXT,
  country TEXT,
  show_date DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS sales_pages (
  id TEXT PRIMARY KEY,
  band_id TEXT NOT NULL,
  show_id TEXT,
  title TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS sales_page_items (
  id TEXT PRIMARY KEY,
  sales_page_id TEXT NOT NULL,
  merchandise_id TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS merchandise (
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
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
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
	svc, err := NewService(NewRepository(db), inventory.NewRepository(db), testTxRunner{db: db})
	require.NoError(t, err)
	return svc
}

func seedMerch(t *testing.T, db *gorm.DB, bandID string) *models.Merchandise {
	t.Helper()
	merch := &models.Merchandise{
		ID:                uuid.NewString(),
		BandID:            bandID,
		Name:              "Enamel Pin",
		PriceCents:        800,
		LowStockThreshold: 5,
		Active:            true,
	}
	require.NoError(t, db.Create(merch).Error)
	return merch
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Night Owls":          "night-owls",
		"Night Owls, Vol. 2":  "night-owls-vol-2",
		"  spaced   out  ":    "spaced-out",
		"UPPER-case":          "upper-case",
		"---":                 "",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "input %q", input)
	}
}

func TestCreateBandDerivesSlug(t *testing.T) {
	db := setupBandsTestDB(t)
	svc := newTestService(t, db)

	name := "The Amp Eaters " + uuid.NewString()[:8]
	band, err := svc.CreateBand(context.Background(), CreateBandInput{Name: name})
	require.NoError(t, err)
	assert.Equal(t, Slugify(name), band.Slug)

	// same name, same derived slug
	_, err = svc.CreateBand(context.Background(), CreateBandInput{Name: name})
	require.Error(t, err)
}

func TestCreateTourRejectsInvertedDates(t *testing.T) {
	db := setupBandsTestDB(t)
	svc := newTestService(t, db)

	band, err := svc.CreateBand(context.Background(), CreateBandInput{Name: "Tour Dates " + uuid.NewString()[:8]})
	require.NoError(t, err)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -10)
	_, err = svc.CreateTour(context.Background(), CreateTourInput{
		BandID:    band.ID,
		Name:      "Fall Run",
		StartDate: &start,
		EndDate:   &end,
	})
	require.Error(t, err)

	end = start.AddDate(0, 1, 0)
	tour, err := svc.CreateTour(context.Background(), CreateTourInput{
		BandID:    band.ID,
		Name:      "Fall Run",
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	assert.Equal(t, band.ID, tour.BandID)
}

func TestCreateShowRejectsForeignTour(t *testing.T) {
	db := setupBandsTestDB(t)
	svc := newTestService(t, db)

	bandA, err := svc.CreateBand(context.Background(), CreateBandInput{Name: "Band A " + uuid.NewString()[:8]})
	require.NoError(t, err)
	bandB, err := svc.CreateBand(context.Background(), CreateBandInput{Name: "Band B " + uuid.NewString()[:8]})
	require.NoError(t, err)

	tour, err := svc.CreateTour(context.Background(), CreateTourInput{BandID: bandA.ID, Name: "Spring Run"})
	require.NoError(t, err)

	_, err = svc.CreateShow(context.Background(), CreateShowInput{
		BandID: bandB.ID,
		TourID: &tour.ID,
		Venue:  "The Basement",
	})
	require.Error(t, err)

	show, err := svc.CreateShow(context.Background(), CreateShowInput{
		BandID: bandA.ID,
		TourID: &tour.ID,
		Venue:  "The Basement",
		City:   "Nashville",
	})
	require.NoError(t, err)
	assert.Equal(t, bandA.ID, show.BandID)
}

func TestSetSalesPageItems(t *testing.T) {
	db := setupBandsTestDB(t)
	svc := newTestService(t, db)

	band, err := svc.CreateBand(context.Background(), CreateBandInput{Name: "Lineup " + uuid.NewString()[:8]})
	require.NoError(t, err)
	page, err := svc.CreateSalesPage(context.Background(), CreateSalesPageInput{
		BandID: band.ID,
		Title:  "Merch Table " + uuid.NewString()[:8],
	})
	require.NoError(t, err)

	first := seedMerch(t, db, band.ID)
	second := seedMerch(t, db, band.ID)

	updated, err := svc.SetSalesPageItems(context.Background(), page.ID, []PageItemInput{
		{MerchandiseID: second.ID, Position: 0},
		{MerchandiseID: first.ID, Position: 1},
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, second.ID, updated.Items[0].MerchandiseID)
	assert.Equal(t, first.ID, updated.Items[1].MerchandiseID)

	// replacing drops rows that are no longer listed
	updated, err = svc.SetSalesPageItems(context.Background(), page.ID, []PageItemInput{
		{MerchandiseID: first.ID, Position: 0},
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)

	foreign := seedMerch(t, db, uuid.NewString())
	_, err = svc.SetSalesPageItems(context.Background(), page.ID, []PageItemInput{
		{MerchandiseID: foreign.ID, Position: 0},
	})
	require.Error(t, err)
}
