package postgres

import (
	"context"

	"greencycle/internal/domain/entity"
	domainerrors "greencycle/internal/domain/errors"
	"greencycle/internal/domain/repository"
	"greencycle/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ratingRepository implements repository.RatingRepository using GORM.
type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository is the constructor for ratingRepository.
func NewRatingRepository(db *gorm.DB) repository.RatingRepository {
	return &ratingRepository{db: db}
}

// Create inserts a rating; a second rating for the same collection is rejected.
func (repo *ratingRepository) Create(ctx context.Context, r *entity.Rating) error {
	if err := repo.db.WithContext(ctx).Create(fromRatingDomain(r)).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return errors.Wrap(repository.ErrDuplicate, "collection already has a rating")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create rating")
	}

	return nil
}

// FindByCollection loads the rating of a collection.
func (repo *ratingRepository) FindByCollection(ctx context.Context, collectionID uuid.UUID) (*entity.Rating, error) {
	return repo.find(repo.db.WithContext(ctx), collectionID)
}

// FindByCollectionForUpdate loads and locks the rating of a collection.
func (repo *ratingRepository) FindByCollectionForUpdate(ctx context.Context, collectionID uuid.UUID) (*entity.Rating, error) {
	return repo.find(repo.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), collectionID)
}

func (repo *ratingRepository) find(db *gorm.DB, collectionID uuid.UUID) (*entity.Rating, error) {
	var ratingM model.RatingModel
	if err := db.First(&ratingM, "collection_id = ?", collectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}

		return nil, errors.Wrap(err, "failed to find rating by collection")
	}

	return toRatingDomain(&ratingM), nil
}

// Update writes both halves of the rating.
func (repo *ratingRepository) Update(ctx context.Context, r *entity.Rating) error {
	res := repo.db.WithContext(ctx).
		Model(&model.RatingModel{}).
		Where("id = ?", r.ID).
		Updates(map[string]any{
			"score_by_client":    r.ScoreByClient,
			"comment_by_client":  r.CommentByClient,
			"score_by_partner":   r.ScoreByPartner,
			"comment_by_partner": r.CommentByPartner,
			"updated_at":         r.UpdatedAt,
		})
	if res.Error != nil {
		return domainerrors.NewDatabaseExecuteError(res.Error, "failed to update rating")
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// FindScoresForClient returns every score partners gave the client.
func (repo *ratingRepository) FindScoresForClient(ctx context.Context, clientID uuid.UUID) ([]int, error) {
	return repo.pluckScores(ctx, "client_id", "score_by_partner", clientID)
}

// FindScoresForPartner returns every score clients gave the partner.
func (repo *ratingRepository) FindScoresForPartner(ctx context.Context, partnerID uuid.UUID) ([]int, error) {
	return repo.pluckScores(ctx, "partner_id", "score_by_client", partnerID)
}

func (repo *ratingRepository) pluckScores(ctx context.Context, owner, column string, id uuid.UUID) ([]int, error) {
	scores := make([]int, 0)
	err := repo.db.WithContext(ctx).
		Model(&model.RatingModel{}).
		Where(clause.Eq{Column: clause.Column{Name: owner}, Value: id}).
		Pluck(column, &scores).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load rating scores")
	}

	return scores, nil
}

func toRatingDomain(data *model.RatingModel) *entity.Rating {
	if data == nil {
		return nil
	}

	return &entity.Rating{
		ID:               data.ID,
		CollectionID:     data.CollectionID,
		ClientID:         data.ClientID,
		PartnerID:        data.PartnerID,
		ScoreByClient:    data.ScoreByClient,
		CommentByClient:  data.CommentByClient,
		ScoreByPartner:   data.ScoreByPartner,
		CommentByPartner: data.CommentByPartner,
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
}

func fromRatingDomain(data *entity.Rating) *model.RatingModel {
	if data == nil {
		return nil
	}

	return &model.RatingModel{
		ID:               data.ID,
		CollectionID:     data.CollectionID,
		ClientID:         data.ClientID,
		PartnerID:        data.PartnerID,
		ScoreByClient:    data.ScoreByClient,
		CommentByClient:  data.CommentByClient,
		ScoreByPartner:   data.ScoreByPartner,
		CommentByPartner: data.CommentByPartner,
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
}
