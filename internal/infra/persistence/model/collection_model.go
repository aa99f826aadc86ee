package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestModel mirrors the 'requests' table.
type RequestModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	State       string    `gorm:"type:varchar(10);not null;index"`
	Notes       string    `gorm:"type:varchar(100)"`
	FinalizedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (RequestModel) TableName() string {
	return "requests"
}

// PaymentModel mirrors the 'payments' table.
type PaymentModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	State     string          `gorm:"type:varchar(10);not null;index"`
	Amount    decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Balance   decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (PaymentModel) TableName() string {
	return "payments"
}

// CollectionModel mirrors the 'collections' table.
type CollectionModel struct {
	ID         uuid.UUID              `gorm:"type:uuid;primaryKey"`
	ClientID   uuid.UUID              `gorm:"type:uuid;not null;index"`
	PartnerID  *uuid.UUID             `gorm:"type:uuid;index"`
	MaterialID uuid.UUID              `gorm:"type:uuid;not null;index"`
	Weight     decimal.NullDecimal    `gorm:"type:numeric(15,4)"`
	Quantity   *int                   `gorm:"type:integer"`
	AddressID  uuid.UUID              `gorm:"type:uuid;not null"`
	RequestID  uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex"`
	PaymentID  uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex"`
	Request    RequestModel           `gorm:"foreignKey:RequestID"`
	Payment    PaymentModel           `gorm:"foreignKey:PaymentID"`
	Images     []CollectionImageModel `gorm:"foreignKey:CollectionID"`
	CreatedAt  time.Time              `gorm:"index"`
	UpdatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (CollectionModel) TableName() string {
	return "collections"
}

// CollectionImageModel mirrors the 'collection_images' table.
type CollectionImageModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CollectionID uuid.UUID `gorm:"type:uuid;not null;index"`
	URL          string    `gorm:"type:text;not null"`
	FileID       string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (CollectionImageModel) TableName() string {
	return "collection_images"
}

// RatingModel mirrors the 'ratings' table.
type RatingModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	CollectionID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ClientID         uuid.UUID `gorm:"type:uuid;not null;index"`
	PartnerID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ScoreByClient    int       `gorm:"type:smallint;not null;default:0"`
	CommentByClient  string    `gorm:"type:varchar(300)"`
	ScoreByPartner   int       `gorm:"type:smallint;not null;default:0"`
	CommentByPartner string    `gorm:"type:varchar(300)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName explicitly sets the table name for GORM.
func (RatingModel) TableName() string {
	return "ratings"
}

// All lists every model for schema migration, parents first.
func All() []any {
	return []any{
		&UserModel{},
		&ClientModel{},
		&MaterialModel{},
		&PartnerModel{},
		&PartnerMaterialModel{},
		&AddressModel{},
		&RequestModel{},
		&PaymentModel{},
		&CollectionModel{},
		&CollectionImageModel{},
		&RatingModel{},
	}
}
