package usecase

import (
	"context"

	"greencycle/internal/domain/entity"

	"github.com/google/uuid"
)

// SubmitRatingInput carries one side's score for a finalized collection.
// ActorID is the client or the partner submitting it.
type SubmitRatingInput struct {
	CollectionID uuid.UUID
	ActorID      uuid.UUID
	Score        int
	Comment      string
}

// RatingUsecase defines the mutual rating operations.
type RatingUsecase interface {
	// SubmitClientRating records the score the client gives the partner.
	SubmitClientRating(ctx context.Context, input *SubmitRatingInput) (*entity.Rating, error)
	// SubmitPartnerRating records the score the partner gives the client.
	SubmitPartnerRating(ctx context.Context, input *SubmitRatingInput) (*entity.Rating, error)

	GetByCollection(ctx context.Context, collectionID uuid.UUID) (*entity.Rating, error)

	StatisticsForClient(ctx context.Context, clientID uuid.UUID) (*entity.RatingStatistics, error)
	StatisticsForPartner(ctx context.Context, partnerID uuid.UUID) (*entity.RatingStatistics, error)
}
