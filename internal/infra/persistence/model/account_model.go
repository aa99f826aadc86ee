package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel is the GORM-specific struct for the 'users' table.
type UserModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name         string     `gorm:"type:varchar(100);not null"`
	Username     string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email        string     `gorm:"type:varchar(100)"`
	Phone        string     `gorm:"type:varchar(20)"`
	PasswordHash string     `gorm:"type:text;not null"`
	AddressID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ClientModel mirrors the 'clients' table.
type ClientModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	User      UserModel `gorm:"foreignKey:UserID"`
	CPF       string    `gorm:"type:varchar(15);not null;uniqueIndex"`
	BirthDate time.Time `gorm:"type:date;not null"`
	Sex       string    `gorm:"type:varchar(1);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (ClientModel) TableName() string {
	return "clients"
}

// PartnerModel mirrors the 'partners' table.
type PartnerModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	User      UserModel `gorm:"foreignKey:UserID"`
	CNPJ      string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (PartnerModel) TableName() string {
	return "partners"
}

// PartnerMaterialModel is the partner/material capability join.
type PartnerMaterialModel struct {
	PartnerID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	MaterialID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

// TableName explicitly sets the table name for GORM.
func (PartnerMaterialModel) TableName() string {
	return "partner_materials"
}
