package alerts

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
	"github.com/roadcasehq/merchtable-backend/pkg/enums"
)

// Repository persists low-stock alerts.
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

// GetByID loads one alert row.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.StockAlert, error) {
	var alert models.StockAlert
	if err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// GetActiveByMerchandise returns the open alert for an item, if any.
func (r *Repository) GetActiveByMerchandise(ctx context.Context, merchandiseID string) (*models.StockAlert, error) {
	var alert models.StockAlert
	err := r.db.WithContext(ctx).
		Where("merchandise_id = ? AND status = ?", merchandiseID, enums.AlertStatusActive).
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// ListActive returns all open alerts with their merchandise loaded.
func (r *Repository) ListActive(ctx context.Context) ([]models.StockAlert, error) {
	var rows []models.StockAlert
	err := r.db.WithContext(ctx).
		Preload("Merchandise").
		Where("status = ?", enums.AlertStatusActive).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListByStatus returns alerts filtered by status, newest first.
func (r *Repository) ListByStatus(ctx context.Context, status enums.AlertStatus) ([]models.StockAlert, error) {
	var rows []models.StockAlert
	err := r.db.WithContext(ctx).
		Preload("Merchandise").
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// Create inserts a new alert row.
func (r *Repository) Create(ctx context.Context, alert *models.StockAlert) (*models.StockAlert, error) {
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		return nil, err
	}
	return alert, nil
}

// SetStatus moves an alert to the given status if it is still active.
// Returns the number of rows changed so callers can detect races.
func (r *Repository) SetStatus(ctx context.Context, id string, status enums.AlertStatus, resolvedAt *time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StockAlert{}).
		Where("id = ? AND status = ?", id, enums.AlertStatusActive).
		Updates(map[string]interface{}{
			"status":      status,
			"resolved_at": resolvedAt,
		})
	return result.RowsAffected, result.Error
}
