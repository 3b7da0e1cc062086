package models

import (
	"time"

	"github.com/roadcasehq/merchtable-backend/pkg/enums"
)

// Sale is one line of a committed sales session. Price and total are
// captured at commit time so later price edits never rewrite history.
type Sale struct {
	ID             string            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BatchID        string            `gorm:"type:uuid;not null;index" json:"batch_id"`
	BandID         string            `gorm:"type:uuid;not null;index" json:"band_id"`
	MerchandiseID  string            `gorm:"type:uuid;not null;index" json:"merchandise_id"`
	ShowID         *string           `gorm:"type:uuid;index" json:"show_id,omitempty"`
	SalesPageID    *string           `gorm:"type:uuid;index" json:"sales_page_id,omitempty"`
	RecordedByID   string            `gorm:"type:uuid;not null;index" json:"recorded_by_id"`
	Quantity       int               `gorm:"not null" json:"quantity"`
	UnitPriceCents int64             `gorm:"not null" json:"unit_price_cents"`
	TotalCents     int64             `gorm:"not null" json:"total_cents"`
	PaymentType    enums.PaymentType `gorm:"not null" json:"payment_type"`
	SquarePayment  *string           `gorm:"column:square_payment_id" json:"square_payment_id,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	SoldAt         time.Time         `gorm:"not null;index" json:"sold_at"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`

	Merchandise *Merchandise `gorm:"foreignKey:MerchandiseID" json:"merchandise,omitempty"`
	Show        *Show        `gorm:"foreignKey:ShowID" json:"show,omitempty"`
	RecordedBy  *User        `gorm:"foreignKey:RecordedByID" json:"recorded_by,omitempty"`
}

// TableName overrides the default gorm table name.
func (Sale) TableName() string {
	return "sales"
}
