package reports

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
)

// Filter narrows report queries. Zero fields are ignored.
type Filter struct {
	BandID        string
	ShowID        string
	MerchandiseID string
	From          *time.Time
	To            *time.Time
}

// PaymentTypeTotal is revenue grouped by payment type.
type PaymentTypeTotal struct {
	PaymentType string `json:"payment_type"`
	SaleCount   int64  `json:"sale_count"`
	Quantity    int64  `json:"quantity"`
	TotalCents  int64  `json:"total_cents"`
}

// MerchandiseTotal is revenue grouped by item.
type MerchandiseTotal struct {
	MerchandiseID string `json:"merchandise_id"`
	Name          string `json:"name"`
	Quantity      int64  `json:"quantity"`
	TotalCents    int64  `json:"total_cents"`
}

// ShowTotal is revenue grouped by show. Sales recorded outside a show
// collapse into a row with an empty ShowID.
type ShowTotal struct {
	ShowID     string `json:"show_id"`
	Quantity   int64  `json:"quantity"`
	TotalCents int64  `json:"total_cents"`
}

// Summary is the headline aggregate for a filtered period.
type Summary struct {
	SaleCount  int64 `json:"sale_count"`
	Quantity   int64 `json:"quantity"`
	TotalCents int64 `json:"total_cents"`
}

// Repository runs the aggregate queries behind sales reports.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Summarize returns the headline totals for the filter.
func (r *Repository) Summarize(ctx context.Context, filter Filter) (*Summary, error) {
	var summary Summary
	err := r.scoped(ctx, filter).
		Select("COUNT(*) AS sale_count, COALESCE(SUM(quantity), 0) AS quantity, COALESCE(SUM(total_cents), 0) AS total_cents").
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// ByPaymentType groups totals per payment type.
func (r *Repository) ByPaymentType(ctx context.Context, filter Filter) ([]PaymentTypeTotal, error) {
	var rows []PaymentTypeTotal
	err := r.scoped(ctx, filter).
		Select("payment_type, COUNT(*) AS sale_count, SUM(quantity) AS quantity, SUM(total_cents) AS total_cents").
		Group("payment_type").
		Order("total_cents DESC").
		Scan(&rows).Error
	return rows, err
}

// ByMerchandise groups totals per item, top sellers first.
func (r *Repository) ByMerchandise(ctx context.Context, filter Filter) ([]MerchandiseTotal, error) {
	var rows []MerchandiseTotal
	err := r.scoped(ctx, filter).
		Select("sales.merchandise_id, merchandise.name AS name, SUM(sales.quantity) AS quantity, SUM(sales.total_cents) AS total_cents").
		Joins("JOIN merchandise ON merchandise.id = sales.merchandise_id").
		Group("sales.merchandise_id, merchandise.name").
		Order("total_cents DESC").
		Scan(&rows).Error
	return rows, err
}

// ByShow groups totals per show.
func (r *Repository) ByShow(ctx context.Context, filter Filter) ([]ShowTotal, error) {
	var rows []ShowTotal
	err := r.scoped(ctx, filter).
		Select("COALESCE(show_id, '') AS show_id, SUM(quantity) AS quantity, SUM(total_cents) AS total_cents").
		Group("show_id").
		Order("total_cents DESC").
		Scan(&rows).Error
	return rows, err
}

// ListSales returns the raw filtered rows, oldest first, for export.
func (r *Repository) ListSales(ctx context.Context, filter Filter) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.scoped(ctx, filter).
		Order("sold_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) scoped(ctx context.Context, filter Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Sale{})
	if filter.BandID != "" {
		query = query.Where("sales.band_id = ?", filter.BandID)
	}
	if filter.ShowID != "" {
		query = query.Where("sales.show_id = ?", filter.ShowID)
	}
	if filter.MerchandiseID != "" {
		query = query.Where("sales.merchandise_id = ?", filter.MerchandiseID)
	}
	if filter.From != nil {
		query = query.Where("sales.sold_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("sales.sold_at < ?", *filter.To)
	}
	return query
}
