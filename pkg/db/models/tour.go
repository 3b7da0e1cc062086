package models

import "time"

// Tour groups a run of shows under one banner for reporting.
type Tour struct {
	ID        string     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BandID    string     `gorm:"type:uuid;not null;index" json:"band_id"`
	Name      string     `gorm:"not null" json:"name"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Band *Band `gorm:"foreignKey:BandID" json:"band,omitempty"`
}

// TableName overrides the default gorm table name.
func (Tour) TableName() string {
	return "tours"
}
