package models

import "time"

// Merchandise is a sellable item. Stock is nullable: a NULL value means
// the item is untracked and sales against it never touch inventory.
type Merchandise struct {
	ID                string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BandID            string    `gorm:"type:uuid;not null;index" json:"band_id"`
	Name              string    `gorm:"not null" json:"name"`
	SKU               string    `gorm:"column:sku" json:"sku,omitempty"`
	Category          string    `json:"category,omitempty"`
	PriceCents        int64     `gorm:"not null" json:"price_cents"`
	Stock             *int      `json:"stock,omitempty"`
	LowStockThreshold int       `gorm:"not null;default:5" json:"low_stock_threshold"`
	Active            bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Band *Band `gorm:"foreignKey:BandID" json:"band,omitempty"`
}

// TableName overrides the default gorm table name.
func (Merchandise) TableName() string {
	return "merchandise"
}

// Tracked reports whether inventory is managed for this item.
func (m *Merchandise) Tracked() bool {
	return m.Stock != nil
}
