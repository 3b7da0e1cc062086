package models

import (
	"time"

	"github.com/roadcasehq/merchtable-backend/pkg/enums"
)

// StockAlert flags merchandise at or below its low-stock threshold.
// At most one active alert exists per item.
type StockAlert struct {
	ID            string            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MerchandiseID string            `gorm:"type:uuid;not null;index" json:"merchandise_id"`
	StockAtAlert  int               `gorm:"not null" json:"stock_at_alert"`
	Threshold     int               `gorm:"not null" json:"threshold"`
	Status        enums.AlertStatus `gorm:"not null;default:'active';index" json:"status"`
	ResolvedAt    *time.Time        `json:"resolved_at,omitempty"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	Merchandise *Merchandise `gorm:"foreignKey:MerchandiseID" json:"merchandise,omitempty"`
}

// TableName overrides the default gorm table name.
func (StockAlert) TableName() string {
	return "stock_alerts"
}
