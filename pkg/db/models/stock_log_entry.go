package models

import (
	"time"

	"github.com/roadcasehq/merchtable-backend/pkg/enums"
)

// StockLogEntry is an append-only record of a stock mutation. Entries are
// never updated or deleted; the pair previous/new makes drift auditable.
type StockLogEntry struct {
	ID            string                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MerchandiseID string                  `gorm:"type:uuid;not null;index" json:"merchandise_id"`
	PreviousStock int                     `gorm:"not null" json:"previous_stock"`
	NewStock      int                     `gorm:"not null" json:"new_stock"`
	ChangeReason  enums.StockChangeReason `gorm:"not null" json:"change_reason"`
	ChangedByID   *string                 `gorm:"type:uuid" json:"changed_by_id,omitempty"`
	SaleID        *string                 `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	Note          string                  `json:"note,omitempty"`
	CreatedAt     time.Time               `gorm:"autoCreateTime;index" json:"created_at"`

	Merchandise *Merchandise `gorm:"foreignKey:MerchandiseID" json:"merchandise,omitempty"`
}

// TableName overrides the default gorm table name.
func (StockLogEntry) TableName() string {
	return "stock_log"
}
