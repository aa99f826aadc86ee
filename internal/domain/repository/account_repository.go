package repository

import (
	"context"

	"greencycle/internal/domain/entity"

	"github.com/google/uuid"
)

// ClientRepository persists clients and their user identity.
type ClientRepository interface {
	// Create inserts the user and client rows. Returns ErrDuplicate on a taken username or CPF.
	Create(ctx context.Context, c *entity.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Client, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// PartnerRepository persists partners and the materials they work with.
type PartnerRepository interface {
	// Create inserts the user, partner and capability rows. Returns ErrDuplicate on a taken username or CNPJ.
	Create(ctx context.Context, p *entity.Partner) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Partner, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// FindMaterialIDs returns the materials the partner works with.
	FindMaterialIDs(ctx context.Context, partnerID uuid.UUID) ([]uuid.UUID, error)

	// HandlesMaterial reports whether the partner works with materialID.
	HandlesMaterial(ctx context.Context, partnerID, materialID uuid.UUID) (bool, error)

	// FindIDsByMaterial returns every partner that works with materialID.
	FindIDsByMaterial(ctx context.Context, materialID uuid.UUID) ([]uuid.UUID, error)

	// ReplaceMaterials sets the partner's capability set to exactly materialIDs.
	ReplaceMaterials(ctx context.Context, partnerID uuid.UUID, materialIDs []uuid.UUID) error
}
