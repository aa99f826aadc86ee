package usecase

import (
	"context"
	"time"

	"greencycle/internal/domain/entity"

	"github.com/google/uuid"
)

// UserInput holds the login identity fields shared by both account kinds.
type UserInput struct {
	Name      string
	Username  string
	Email     string
	Phone     string
	Password  string
	AddressID *uuid.UUID
}

// RegisterClientInput defines the data required to register a client.
type RegisterClientInput struct {
	User      UserInput
	CPF       string
	BirthDate time.Time
	Sex       string
}

// RegisterPartnerInput defines the data required to register a partner.
type RegisterPartnerInput struct {
	User        UserInput
	CNPJ        string
	MaterialIDs []uuid.UUID
}

// AccountUsecase manages client and partner accounts.
type AccountUsecase interface {
	RegisterClient(ctx context.Context, input *RegisterClientInput) (*entity.Client, error)
	RegisterPartner(ctx context.Context, input *RegisterPartnerInput) (*entity.Partner, error)
	GetClient(ctx context.Context, clientID uuid.UUID) (*entity.Client, error)
	GetPartner(ctx context.Context, partnerID uuid.UUID) (*entity.Partner, error)
	// UpdatePartnerMaterials replaces the set of materials the partner works with.
	UpdatePartnerMaterials(ctx context.Context, partnerID uuid.UUID, materialIDs []uuid.UUID) (*entity.Partner, error)
}
