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

// addressRepository implements repository.AddressRepository using GORM.
type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository is the constructor for addressRepository.
func NewAddressRepository(db *gorm.DB) repository.AddressRepository {
	return &addressRepository{db: db}
}

// Create persists a new address.
func (repo *addressRepository) Create(ctx context.Context, address *entity.Address) error {
	if err := repo.db.WithContext(ctx).Create(fromAddressDomain(address)).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create address")
	}

	return nil
}

// FindByID retrieves an address by its unique ID.
func (repo *addressRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Address, error) {
	var addressM model.AddressModel
	if err := repo.db.WithContext(ctx).First(&addressM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}

		return nil, errors.Wrap(err, "failed to find address by ID")
	}

	return toAddressDomain(&addressM), nil
}

// Update overwrites an existing address record.
func (repo *addressRepository) Update(ctx context.Context, address *entity.Address) error {
	res := repo.db.WithContext(ctx).
		Model(&model.AddressModel{}).
		Where("id = ?", address.ID).
		Updates(map[string]any{
			"cep":          address.CEP,
			"state":        address.State,
			"city":         address.City,
			"neighborhood": address.Neighborhood,
			"street":       address.Street,
			"number":       address.Number,
			"complement":   address.Complement,
			"latitude":     address.Latitude,
			"longitude":    address.Longitude,
			"updated_at":   address.UpdatedAt,
		})
	if res.Error != nil {
		return domainerrors.NewDatabaseExecuteError(res.Error, "failed to update address")
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func toAddressDomain(data *model.AddressModel) *entity.Address {
	if data == nil {
		return nil
	}

	return &entity.Address{
		ID:           data.ID,
		CEP:          data.CEP,
		State:        data.State,
		City:         data.City,
		Neighborhood: data.Neighborhood,
		Street:       data.Street,
		Number:       data.Number,
		Complement:   data.Complement,
		Latitude:     data.Latitude,
		Longitude:    data.Longitude,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

func fromAddressDomain(data *entity.Address) *model.AddressModel {
	if data == nil {
		return nil
	}

	return &model.AddressModel{
		ID:           data.ID,
		CEP:          data.CEP,
		State:        data.State,
		City:         data.City,
		Neighborhood: data.Neighborhood,
		Street:       data.Street,
		Number:       data.Number,
		Complement:   data.Complement,
		Latitude:     data.Latitude,
		Longitude:    data.Longitude,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}
