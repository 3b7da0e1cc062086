package bands

import (
	"context"

	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
)

// Repository persists bands, tours, shows, and sales pages.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) GetBand(ctx context.Context, id string) (*models.Band, error) {
	var band models.Band
	if err := r.db.WithContext(ctx).First(&band, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &band, nil
}

func (r *Repository) GetBandBySlug(ctx context.Context, slug string) (*models.Band, error) {
	var band models.Band
	if err := r.db.WithContext(ctx).First(&band, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &band, nil
}

func (r *Repository) ListBands(ctx context.Context) ([]models.Band, error) {
	var rows []models.Band
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) CreateBand(ctx context.Context, band *models.Band) (*models.Band, error) {
	if err := r.db.WithContext(ctx).Create(band).Error; err != nil {
		return nil, err
	}
	return band, nil
}

func (r *Repository) UpdateBand(ctx context.Context, band *models.Band) (*models.Band, error) {
	if err := r.db.WithContext(ctx).Save(band).Error; err != nil {
		return nil, err
	}
	return band, nil
}

func (r *Repository) GetTour(ctx context.Context, id string) (*models.Tour, error) {
	var tour models.Tour
	if err := r.db.WithContext(ctx).First(&tour, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tour, nil
}

func (r *Repository) ListTours(ctx context.Context, bandID string) ([]models.Tour, error) {
	var rows []models.Tour
	err := r.db.WithContext(ctx).
		Where("band_id = ?", bandID).
		Order("start_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) CreateTour(ctx context.Context, tour *models.Tour) (*models.Tour, error) {
	if err := r.db.WithContext(ctx).Create(tour).Error; err != nil {
		return nil, err
	}
	return tour, nil
}

func (r *Repository) GetShow(ctx context.Context, id string) (*models.Show, error) {
	var show models.Show
	if err := r.db.WithContext(ctx).First(&show, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &show, nil
}

func (r *Repository) ListShows(ctx context.Context, bandID string, tourID string) ([]models.Show, error) {
	query := r.db.WithContext(ctx).Where("band_id = ?", bandID)
	if tourID != "" {
		query = query.Where("tour_id = ?", tourID)
	}
	var rows []models.Show
	err := query.Order("show_date DESC").Find(&rows).Error
	return rows, err
}

func (r *Repository) CreateShow(ctx context.Context, show *models.Show) (*models.Show, error) {
	if err := r.db.WithContext(ctx).Create(show).Error; err != nil {
		return nil, err
	}
	return show, nil
}

func (r *Repository) GetSalesPage(ctx context.Context, id string) (*models.SalesPage, error) {
	var page models.SalesPage
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sales_page_items.position ASC")
		}).
		Preload("Items.Merchandise").
		First(&page, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *Repository) GetSalesPageBySlug(ctx context.Context, slug string) (*models.SalesPage, error) {
	var page models.SalesPage
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sales_page_items.position ASC")
		}).
		Preload("Items.Merchandise").
		First(&page, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *Repository) ListSalesPages(ctx context.Context, bandID string, activeOnly bool) ([]models.SalesPage, error) {
	query := r.db.WithContext(ctx).Where("band_id = ?", bandID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var rows []models.SalesPage
	err := query.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *Repository) CreateSalesPage(ctx context.Context, page *models.SalesPage) (*models.SalesPage, error) {
	if err := r.db.WithContext(ctx).Create(page).Error; err != nil {
		return nil, err
	}
	return page, nil
}

func (r *Repository) UpdateSalesPage(ctx context.Context, page *models.SalesPage) (*models.SalesPage, error) {
	if err := r.db.WithContext(ctx).Save(page).Error; err != nil {
		return nil, err
	}
	return page, nil
}

// ReplaceSalesPageItems swaps the pinned items of a page inside one
// transaction, keeping the given order.
func (r *Repository) ReplaceSalesPageItems(tx *gorm.DB, pageID string, items []models.SalesPageItem) error {
	if err := tx.Where("sales_page_id = ?", pageID).Delete(&models.SalesPageItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}
