package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/pkg/db/models"
)

// Repository wires together merchandise persistence helpers.
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

// GetByID loads the merchandise row without associations.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Merchandise, error) {
	var merch models.Merchandise
	if err := r.db.WithContext(ctx).First(&merch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &merch, nil
}

// GetByIDs loads a batch of merchandise rows keyed by id.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Merchandise, error) {
	if len(ids) == 0 {
		return map[string]*models.Merchandise{}, nil
	}
	var rows []models.Merchandise
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Merchandise, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	return byID, nil
}

// ListByBand returns all merchandise for a band, active first.
func (r *Repository) ListByBand(ctx context.Context, bandID string, activeOnly bool) ([]models.Merchandise, error) {
	query := r.db.WithContext(ctx).Where("band_id = ?", bandID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var rows []models.Merchandise
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListLowStock returns tracked merchandise at or below its threshold.
func (r *Repository) ListLowStock(ctx context.Context) ([]models.Merchandise, error) {
	var rows []models.Merchandise
	err := r.db.WithContext(ctx).
		Where("stock IS NOT NULL AND stock <= low_stock_threshold AND active = ?", true).
		Find(&rows).Error
	return rows, err
}

// Create inserts a new merchandise row.
func (r *Repository) Create(ctx context.Context, merch *models.Merchandise) (*models.Merchandise, error) {
	if err := r.db.WithContext(ctx).Create(merch).Error; err != nil {
		return nil, err
	}
	return merch, nil
}

// Update saves an existing merchandise row.
func (r *Repository) Update(ctx context.Context, merch *models.Merchandise) (*models.Merchandise, error) {
	if err := r.db.WithContext(ctx).Save(merch).Error; err != nil {
		return nil, err
	}
	return merch, nil
}

// UpdateStock writes only the stock column.
func (r *Repository) UpdateStock(ctx context.Context, id string, stock int) error {
	return r.db.WithContext(ctx).
		Model(&models.Merchandise{}).
		Where("id = ?", id).
		Update("stock", stock).Error
}

// Delete soft-disables the item so sale history stays intact.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.Merchandise{}).
		Where("id = ?", id).
		Update("active", false).Error
}
