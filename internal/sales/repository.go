package sales

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
	"github.com/roadcasehq/merchtable-backend/pkg/pagination"
)

// ListFilter narrows sale queries for history and reporting reads.
type ListFilter struct {
	BandID        string
	ShowID        string
	MerchandiseID string
	From          *time.Time
	To            *time.Time
}

// Repository persists committed sales. Rows are immutable once written;
// there is no update or delete path.
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

// InsertTx writes one sale row inside the caller's transaction.
func (r *Repository) InsertTx(tx *gorm.DB, sale *models.Sale) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(sale).Error
}

// SetBatchPaymentTx stamps the captured payment id on every row of a batch.
func (r *Repository) SetBatchPaymentTx(tx *gorm.DB, batchID, paymentID string) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Model(&models.Sale{}).
		Where("batch_id = ?", batchID).
		Update("square_payment_id", paymentID).Error
}

// ListByBatch returns the rows of one committed session in insert order.
func (r *Repository) ListByBatch(ctx context.Context, batchID string) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// List returns sales matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Sale, error) {
	query := r.db.WithContext(ctx).Model(&models.Sale{})
	query = applyFilter(query, filter)

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.Sale
	err := query.
		Order("sold_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func applyFilter(query *gorm.DB, filter ListFilter) *gorm.DB {
	if filter.BandID != "" {
		query = query.Where("band_id = ?", filter.BandID)
	}
	if filter.ShowID != "" {
		query = query.Where("show_id = ?", filter.ShowID)
	}
	if filter.MerchandiseID != "" {
		query = query.Where("merchandise_id = ?", filter.MerchandiseID)
	}
	if filter.From != nil {
		query = query.Where("sold_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("sold_at < ?", *filter.To)
	}
	return query
}
