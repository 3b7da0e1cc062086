package models

import "time"

// SalesPage is a per-show selling surface that curates which merchandise
// the table offers that night.
type SalesPage struct {
	ID        string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BandID    string    `gorm:"type:uuid;not null;index" json:"band_id"`
	ShowID    *string   `gorm:"type:uuid;index" json:"show_id,omitempty"`
	Title     string    `gorm:"not null" json:"title"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Band  *Band              `gorm:"foreignKey:BandID" json:"band,omitempty"`
	Show  *Show              `gorm:"foreignKey:ShowID" json:"show,omitempty"`
	Items []SalesPageItem    `gorm:"foreignKey:SalesPageID" json:"items,omitempty"`
}

// TableName overrides the default gorm table name.
func (SalesPage) TableName() string {
	return "sales_pages"
}

// SalesPageItem pins one merchandise item to a sales page in display order.
type SalesPageItem struct {
	ID            string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SalesPageID   string    `gorm:"type:uuid;not null;index:idx_sales_page_merch,unique" json:"sales_page_id"`
	MerchandiseID string    `gorm:"type:uuid;not null;index:idx_sales_page_merch,unique" json:"merchandise_id"`
	Position      int       `gorm:"not null;default:0" json:"position"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	Merchandise *Merchandise `gorm:"foreignKey:MerchandiseID" json:"merchandise,omitempty"`
}

// TableName overrides the default gorm table name.
func (SalesPageItem) TableName() string {
	return "sales_page_items"
}
