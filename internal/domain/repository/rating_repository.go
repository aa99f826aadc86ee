package repository

import (
	"context"

	"greencycle/internal/domain/entity"

	"github.com/google/uuid"
)

// RatingRepository persists the per-collection mutual ratings.
type RatingRepository interface {
	// Create inserts a rating. Returns ErrDuplicate if the collection already has one.
	Create(ctx context.Context, r *entity.Rating) error

	// FindByCollection loads the rating of a collection.
	FindByCollection(ctx context.Context, collectionID uuid.UUID) (*entity.Rating, error)

	// FindByCollectionForUpdate loads and locks the rating of a collection.
	FindByCollectionForUpdate(ctx context.Context, collectionID uuid.UUID) (*entity.Rating, error)

	// Update writes both halves of the rating.
	Update(ctx context.Context, r *entity.Rating) error

	// FindScoresForClient returns every score partners gave the client.
	FindScoresForClient(ctx context.Context, clientID uuid.UUID) ([]int, error)

	// FindScoresForPartner returns every score clients gave the partner.
	FindScoresForPartner(ctx context.Context, partnerID uuid.UUID) ([]int, error)
}
