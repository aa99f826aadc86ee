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
)

// materialRepository implements repository.MaterialRepository using GORM.
type materialRepository struct {
	db *gorm.DB
}

// NewMaterialRepository is the constructor for materialRepository.
func NewMaterialRepository(db *gorm.DB) repository.MaterialRepository {
	return &materialRepository{db: db}
}

func (repo *materialRepository) Create(ctx context.Context, m *entity.Material) error {
	if err := repo.db.WithContext(ctx).Create(fromMaterialDomain(m)).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return errors.Wrap(repository.ErrDuplicate, "material name already exists")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create material")
	}

	return nil
}

func (repo *materialRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Material, error) {
	var materialM model.MaterialModel
	if err := repo.db.WithContext(ctx).First(&materialM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}

		return nil, errors.Wrap(err, "failed to find material by ID")
	}

	return toMaterialDomain(&materialM), nil
}

func (repo *materialRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Material, error) {
	if len(ids) == 0 {
		return []*entity.Material{}, nil
	}

	var materialModels []model.MaterialModel
	err := repo.db.WithContext(ctx).
		Where("id IN ?", uuidStrings(ids)).
		Order("name ASC").
		Find(&materialModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find materials by IDs")
	}

	return toMaterialDomains(materialModels), nil
}

func (repo *materialRepository) List(ctx context.Context) ([]*entity.Material, error) {
	var materialModels []model.MaterialModel
	if err := repo.db.WithContext(ctx).Order("name ASC").Find(&materialModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list materials")
	}

	return toMaterialDomains(materialModels), nil
}

func toMaterialDomains(models []model.MaterialModel) []*entity.Material {
	result := make([]*entity.Material, 0, len(models))
	for i := range models {
		result = append(result, toMaterialDomain(&models[i]))
	}

	return result
}

func toMaterialDomain(data *model.MaterialModel) *entity.Material {
	if data == nil {
		return nil
	}

	return &entity.Material{
		ID:          data.ID,
		Name:        data.Name,
		Description: data.Description,
		Price:       data.Price,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func fromMaterialDomain(data *entity.Material) *model.MaterialModel {
	if data == nil {
		return nil
	}

	return &model.MaterialModel{
		ID:          data.ID,
		Name:        data.Name,
		Description: data.Description,
		Price:       data.Price,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
