package usecase

import (
	"context"

	"greencycle/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateMaterialInput defines a new catalogue material.
type CreateMaterialInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
}

// MaterialUsecase manages the material catalogue.
type MaterialUsecase interface {
	CreateMaterial(ctx context.Context, input *CreateMaterialInput) (*entity.Material, error)
	GetMaterial(ctx context.Context, materialID uuid.UUID) (*entity.Material, error)
	ListMaterials(ctx context.Context) ([]*entity.Material, error)
}

// AddressInput defines the fields of a Brazilian street address.
type AddressInput struct {
	CEP          string
	State        string
	City         string
	Neighborhood string
	Street       string
	Number       int
	Complement   string
}

// AddressUsecase manages geocoded addresses.
type AddressUsecase interface {
	CreateAddress(ctx context.Context, input *AddressInput) (*entity.Address, error)
	GetAddress(ctx context.Context, addressID uuid.UUID) (*entity.Address, error)
	// UpdateAddress re-geocodes only when a location field changes.
	UpdateAddress(ctx context.Context, addressID uuid.UUID, input *AddressInput) (*entity.Address, error)
}
