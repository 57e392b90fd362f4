package models

import (
	"time"

	"github.com/google/uuid"
)

// Dealer represents a dealership branch that fulfils orders and hosts
// test drives.
type Dealer struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	Code      string     `gorm:"column:code;not null;uniqueIndex:idx_dealers_code"`
	Address   string     `gorm:"column:address;not null"`
	City      string     `gorm:"column:city;not null"`
	Phone     *string    `gorm:"column:phone"`
	Email     *string    `gorm:"column:email"`
	IsActive  bool       `gorm:"column:is_active;not null"`
	DeletedAt *time.Time `gorm:"column:deleted_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
