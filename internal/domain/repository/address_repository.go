package repository

import (
	"context"

	"greencycle/internal/domain/entity"

	"github.com/google/uuid"
)

// AddressRepository persists geocoded addresses.
type AddressRepository interface {
	Create(ctx context.Context, a *entity.Address) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Address, error)
	Update(ctx context.Context, a *entity.Address) error
}
