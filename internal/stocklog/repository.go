package stocklog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
	"github.com/roadcasehq/merchtable-backend/pkg/pagination"
)

// Repository persists the append-only stock audit trail. There is no
// update or delete path on purpose.
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

// Insert appends one entry. Callers performing stock mutations must pass
// their transaction so the entry commits with the mutation it records.
func (r *Repository) Insert(ctx context.Context, entry *models.StockLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// InsertTx appends an entry inside the caller's transaction.
func (r *Repository) InsertTx(tx *gorm.DB, entry *models.StockLogEntry) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(entry).Error
}

// ListByMerchandise returns entries for one item, newest first.
func (r *Repository) ListByMerchandise(ctx context.Context, merchandiseID string, params pagination.Params) ([]models.StockLogEntry, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.StockLogEntry
	err := r.db.WithContext(ctx).
		Where("merchandise_id = ?", merchandiseID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
