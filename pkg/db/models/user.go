package models

import (
	"time"

	"github.com/roadcasehq/merchtable-backend/pkg/enums"
)

// User is a staff account that can work the merch table.
type User struct {
	ID           string         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Name         string         `json:"name,omitempty"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         enums.UserRole `gorm:"not null;default:'crew'" json:"role"`
	BandID       *string        `gorm:"type:uuid;index" json:"band_id,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName overrides the default gorm table name.
func (User) TableName() string {
	return "users"
}
