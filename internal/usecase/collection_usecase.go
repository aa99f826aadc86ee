// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"greencycle/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"
)

// CreateCollectionInput defines the data a client supplies to offer material for pickup.
// Exactly one of Weight or Quantity must be set.
type CreateCollectionInput struct {
	ClientID      uuid.UUID
	MaterialID    uuid.UUID
	AddressID     uuid.UUID
	Weight        *decimal.Decimal
	Quantity      *int
	Notes         string
	PaymentAmount decimal.Decimal
}

// CollectionDetail is a collection together with the records it references.
type CollectionDetail struct {
	Collection *entity.Collection
	Material   *entity.Material
	Address    *entity.Address
	// Rating is nil until the collection is finalized.
	Rating *entity.Rating
}

// FinalizeOutput is the result of settling a collection.
type FinalizeOutput struct {
	Collection    *entity.Collection
	RatingCreated bool
}

// CollectionUsecase drives the collection lifecycle.
// Every state-changing call runs in a single transaction over locked rows.
type CollectionUsecase interface {
	CreateCollection(ctx context.Context, input *CreateCollectionInput) (*entity.Collection, error)
	GetCollection(ctx context.Context, collectionID uuid.UUID) (*CollectionDetail, error)

	// Lifecycle actions
	Accept(ctx context.Context, collectionID, partnerID uuid.UUID) (*entity.Collection, error)
	MarkCollected(ctx context.Context, collectionID uuid.UUID) (*entity.Collection, error)
	Cancel(ctx context.Context, collectionID uuid.UUID) (*entity.Collection, error)
	Finalize(ctx context.Context, collectionID uuid.UUID) (*FinalizeOutput, error)

	// ListPendingForPartner lists open collections of the materials the partner works with.
	// When origin is set each item carries its distance from it.
	ListPendingForPartner(ctx context.Context, partnerID uuid.UUID, origin *orb.Point) ([]*entity.CollectionSummary, error)

	// Pickup QR codes
	GeneratePickupQR(ctx context.Context, collectionID uuid.UUID) ([]byte, error)
	ScanPickup(ctx context.Context, partnerID uuid.UUID, qrData string) (*entity.Collection, error)
}
