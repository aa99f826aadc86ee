package impl

import (
	"context"
	"log/slog"
	"time"

	"greencycle/config"
	deliverycontext "greencycle/internal/delivery/context"
	"greencycle/internal/domain/entity"
	domainerrors "greencycle/internal/domain/errors"
	"greencycle/internal/domain/repository"
	"greencycle/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// ratingSide selects which half of a rating a submission writes.
type ratingSide int

const (
	clientSide ratingSide = iota
	partnerSide
)

type ratingService struct {
	txManager      repository.TransactionManager
	ratingRepo     repository.RatingRepository
	collectionRepo repository.CollectionRepository
	clientRepo     repository.ClientRepository
	partnerRepo    repository.PartnerRepository
	allowRevision  bool
	logger         *slog.Logger
	now            func() time.Time
}

// RatingServiceParams holds dependencies for RatingService, injected by Fx.
type RatingServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	RatingRepo     repository.RatingRepository
	CollectionRepo repository.CollectionRepository
	ClientRepo     repository.ClientRepository
	PartnerRepo    repository.PartnerRepository
	Config         *config.Config
	Logger         *slog.Logger
}

// NewRatingService creates a new rating service. Revisions are allowed unless configured otherwise.
func NewRatingService(params RatingServiceParams) usecase.RatingUsecase {
	allowRevision := true
	if params.Config != nil && params.Config.Rating != nil {
		allowRevision = params.Config.Rating.AllowRevision
	}

	return &ratingService{
		txManager:      params.TxManager,
		ratingRepo:     params.RatingRepo,
		collectionRepo: params.CollectionRepo,
		clientRepo:     params.ClientRepo,
		partnerRepo:    params.PartnerRepo,
		allowRevision:  allowRevision,
		logger:         params.Logger,
		now:            time.Now,
	}
}

func (srv *ratingService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SubmitClientRating overwrites the client's half of the rating.
func (srv *ratingService) SubmitClientRating(ctx context.Context, input *usecase.SubmitRatingInput) (*entity.Rating, error) {
	return srv.submit(ctx, input, clientSide)
}

// SubmitPartnerRating overwrites the partner's half of the rating.
func (srv *ratingService) SubmitPartnerRating(ctx context.Context, input *usecase.SubmitRatingInput) (*entity.Rating, error) {
	return srv.submit(ctx, input, partnerSide)
}

func (srv *ratingService) submit(ctx context.Context, input *usecase.SubmitRatingInput, side ratingSide) (*entity.Rating, error) {
	var result *entity.Rating

	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		collection, err := findCollection(ctx, repos.CollectionRepo(), input.CollectionID)
		if err != nil {
			return err
		}

		isParty := collection.IsOwnedByClient(input.ActorID)
		if side == partnerSide {
			isParty = collection.Partner.Is(input.ActorID)
		}
		if !isParty {
			return domainerrors.ErrNotAuthorized
		}
		if !collection.Status().IsSettled() {
			return domainerrors.ErrNotFinalized
		}
		if err := entity.ValidateRatingInput(input.Score, input.Comment); err != nil {
			return err
		}

		rating, err := repos.RatingRepo().FindByCollectionForUpdate(ctx, input.CollectionID)
		if err != nil {
			return notFoundAs(err, domainerrors.ErrRatingNotFound)
		}

		now := srv.now()
		switch side {
		case clientSide:
			if !srv.allowRevision && rating.ScoreByClient > entity.MinScore {
				return domainerrors.ErrRatingAlreadySubmitted
			}
			rating.SetClientSide(input.Score, input.Comment, now)
		case partnerSide:
			if !srv.allowRevision && rating.ScoreByPartner > entity.MinScore {
				return domainerrors.ErrRatingAlreadySubmitted
			}
			rating.SetPartnerSide(input.Score, input.Comment, now)
		}

		if err := repos.RatingRepo().Update(ctx, rating); err != nil {
			return err
		}
		result = rating

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Rating submitted",
		slog.Any("collection_id", input.CollectionID),
		slog.Any("actor_id", input.ActorID),
		slog.Int("score", input.Score))

	return result, nil
}

// GetByCollection returns the rating of a finalized collection.
func (srv *ratingService) GetByCollection(ctx context.Context, collectionID uuid.UUID) (*entity.Rating, error) {
	rating, err := srv.ratingRepo.FindByCollection(ctx, collectionID)
	if err != nil {
		return nil, notFoundAs(err, domainerrors.ErrRatingNotFound)
	}

	return rating, nil
}

// StatisticsForClient aggregates the scores partners gave the client.
func (srv *ratingService) StatisticsForClient(ctx context.Context, clientID uuid.UUID) (*entity.RatingStatistics, error) {
	if err := ensureClient(ctx, srv.clientRepo, clientID); err != nil {
		return nil, err
	}

	scores, err := srv.ratingRepo.FindScoresForClient(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find client scores")
	}
	completed, err := srv.collectionRepo.CountSettledByClient(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count client collections")
	}

	stats := entity.NewRatingStatistics(scores, completed)

	return &stats, nil
}

// StatisticsForPartner aggregates the scores clients gave the partner.
func (srv *ratingService) StatisticsForPartner(ctx context.Context, partnerID uuid.UUID) (*entity.RatingStatistics, error) {
	if err := ensurePartner(ctx, srv.partnerRepo, partnerID); err != nil {
		return nil, err
	}

	scores, err := srv.ratingRepo.FindScoresForPartner(ctx, partnerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find partner scores")
	}
	completed, err := srv.collectionRepo.CountSettledByPartner(ctx, partnerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count partner collections")
	}

	stats := entity.NewRatingStatistics(scores, completed)

	return &stats, nil
}
