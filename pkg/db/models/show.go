package models

import "time"

// Show is a single date on a tour. Sales recorded at the table attach to
// the show so per-night reports line up with settlement.
type Show struct {
	ID        string     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BandID    string     `gorm:"type:uuid;not null;index" json:"band_id"`
	TourID    *string    `gorm:"type:uuid;index" json:"tour_id,omitempty"`
	Venue     string     `gorm:"not null" json:"venue"`
	City      string     `json:"city,omitempty"`
	Country   string     `json:"country,omitempty"`
	ShowDate  *time.Time `json:"show_date,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Band *Band `gorm:"foreignKey:BandID" json:"band,omitempty"`
	Tour *Tour `gorm:"foreignKey:TourID" json:"tour,omitempty"`
}

// TableName overrides the default gorm table name.
func (Show) TableName() string {
	return "shows"
}
