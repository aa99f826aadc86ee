package repository

import (
	"context"

	"greencycle/internal/domain/entity"

	"github.com/google/uuid"
)

// MaterialRepository persists the material catalogue.
type MaterialRepository interface {
	Create(ctx context.Context, m *entity.Material) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Material, error)
	// FindByIDs returns the materials found among ids, in name order.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Material, error)
	List(ctx context.Context) ([]*entity.Material, error)
}
