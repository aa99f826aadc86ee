package repository

import (
	"context"

	"greencycle/internal/domain/entity"

	"github.com/google/uuid"
)

// CollectionRepository persists collections together with their request and payment rows.
type CollectionRepository interface {
	// Create inserts the collection, its request and its payment.
	Create(ctx context.Context, c *entity.Collection) error

	// FindByID loads a collection with its request, payment and images.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Collection, error)

	// FindByIDForUpdate loads a collection and locks its collection, request and payment rows
	// until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Collection, error)

	// SaveTransition writes c's partner, request state and payment state,
	// guarded on the rows still holding from. Returns ErrStaleState when they do not.
	SaveTransition(ctx context.Context, c *entity.Collection, from entity.Status) error

	// FindPendingByMaterials lists unassigned pending collections of the given materials, newest first.
	FindPendingByMaterials(ctx context.Context, materialIDs []uuid.UUID) ([]*entity.CollectionSummary, error)

	// CountSettledByClient counts the client's finalized and paid collections.
	CountSettledByClient(ctx context.Context, clientID uuid.UUID) (int64, error)

	// CountSettledByPartner counts the partner's finalized and paid collections.
	CountSettledByPartner(ctx context.Context, partnerID uuid.UUID) (int64, error)

	// AddImage attaches an uploaded image record.
	AddImage(ctx context.Context, img *entity.CollectionImage) error

	// FindImage loads one image of a collection.
	FindImage(ctx context.Context, collectionID, imageID uuid.UUID) (*entity.CollectionImage, error)

	// DeleteImage removes an image record.
	DeleteImage(ctx context.Context, imageID uuid.UUID) error
}
