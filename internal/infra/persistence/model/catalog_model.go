package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialModel is the GORM-specific struct for the 'materials' table.
type MaterialModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description string          `gorm:"type:varchar(150)"`
	Price       decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (MaterialModel) TableName() string {
	return "materials"
}

// AddressModel is the GORM-specific struct for the 'addresses' table.
type AddressModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CEP          string    `gorm:"type:varchar(15);not null"`
	State        string    `gorm:"type:varchar(50);not null"`
	City         string    `gorm:"type:varchar(50);not null"`
	Neighborhood string    `gorm:"type:varchar(50);not null"`
	Street       string    `gorm:"type:varchar(50);not null"`
	Number       int       `gorm:"not null"`
	Complement   string    `gorm:"type:varchar(100)"`
	Latitude     float64   `gorm:"type:decimal(10,8);not null"`
	Longitude    float64   `gorm:"type:decimal(11,8);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (AddressModel) TableName() string {
	return "addresses"
}
