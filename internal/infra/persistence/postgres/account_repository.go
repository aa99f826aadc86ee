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

// clientRepository implements repository.ClientRepository using GORM.
type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository is the constructor for clientRepository.
func NewClientRepository(db *gorm.DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

// Create inserts the user row followed by the client row.
func (repo *clientRepository) Create(ctx context.Context, c *entity.Client) error {
	db := repo.db.WithContext(ctx)
	if err := createUser(db, &c.User); err != nil {
		return err
	}

	clientM := &model.ClientModel{
		ID:        c.ID,
		UserID:    c.User.ID,
		CPF:       c.CPF,
		BirthDate: c.BirthDate,
		Sex:       c.Sex,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if err := db.Omit(clause.Associations).Create(clientM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return errors.Wrap(repository.ErrDuplicate, "CPF already registered")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create client")
	}

	return nil
}

func (repo *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	var clientM model.ClientModel
	if err := repo.db.WithContext(ctx).Preload("User").First(&clientM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}

		return nil, errors.Wrap(err, "failed to find client by ID")
	}

	return &entity.Client{
		ID:        clientM.ID,
		User:      toUserDomain(&clientM.User),
		CPF:       clientM.CPF,
		BirthDate: clientM.BirthDate,
		Sex:       clientM.Sex,
		CreatedAt: clientM.CreatedAt,
		UpdatedAt: clientM.UpdatedAt,
	}, nil
}

func (repo *clientRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(repo.db.WithContext(ctx), &model.ClientModel{}, id)
}

// partnerRepository implements repository.PartnerRepository using GORM.
type partnerRepository struct {
	db *gorm.DB
}

// NewPartnerRepository is the constructor for partnerRepository.
func NewPartnerRepository(db *gorm.DB) repository.PartnerRepository {
	return &partnerRepository{db: db}
}

// Create inserts the user, partner and capability rows.
func (repo *partnerRepository) Create(ctx context.Context, p *entity.Partner) error {
	db := repo.db.WithContext(ctx)
	if err := createUser(db, &p.User); err != nil {
		return err
	}

	partnerM := &model.PartnerModel{
		ID:        p.ID,
		UserID:    p.User.ID,
		CNPJ:      p.CNPJ,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if err := db.Omit(clause.Associations).Create(partnerM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return errors.Wrap(repository.ErrDuplicate, "CNPJ already registered")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create partner")
	}

	return repo.ReplaceMaterials(ctx, p.ID, p.MaterialIDs)
}

func (repo *partnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Partner, error) {
	var partnerM model.PartnerModel
	if err := repo.db.WithContext(ctx).Preload("User").First(&partnerM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}

		return nil, errors.Wrap(err, "failed to find partner by ID")
	}

	materialIDs, err := repo.FindMaterialIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	return &entity.Partner{
		ID:          partnerM.ID,
		User:        toUserDomain(&partnerM.User),
		CNPJ:        partnerM.CNPJ,
		MaterialIDs: materialIDs,
		CreatedAt:   partnerM.CreatedAt,
		UpdatedAt:   partnerM.UpdatedAt,
	}, nil
}

func (repo *partnerRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(repo.db.WithContext(ctx), &model.PartnerModel{}, id)
}

// FindMaterialIDs returns the materials the partner works with.
func (repo *partnerRepository) FindMaterialIDs(ctx context.Context, partnerID uuid.UUID) ([]uuid.UUID, error) {
	var rows []model.PartnerMaterialModel
	err := repo.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("material_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load partner materials")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.MaterialID)
	}

	return ids, nil
}

// HandlesMaterial reports whether the partner works with materialID.
func (repo *partnerRepository) HandlesMaterial(ctx context.Context, partnerID, materialID uuid.UUID) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.PartnerMaterialModel{}).
		Where("partner_id = ? AND material_id = ?", partnerID, materialID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check partner material")
	}

	return count > 0, nil
}

// FindIDsByMaterial returns every partner that works with materialID.
func (repo *partnerRepository) FindIDsByMaterial(ctx context.Context, materialID uuid.UUID) ([]uuid.UUID, error) {
	var rows []model.PartnerMaterialModel
	if err := repo.db.WithContext(ctx).Where("material_id = ?", materialID).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load material partners")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PartnerID)
	}

	return ids, nil
}

// ReplaceMaterials sets the partner's capability set to exactly materialIDs.
func (repo *partnerRepository) ReplaceMaterials(ctx context.Context, partnerID uuid.UUID, materialIDs []uuid.UUID) error {
	db := repo.db.WithContext(ctx)
	if err := db.Where("partner_id = ?", partnerID).Delete(&model.PartnerMaterialModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to clear partner materials")
	}
	if len(materialIDs) == 0 {
		return nil
	}

	rows := make([]model.PartnerMaterialModel, 0, len(materialIDs))
	seen := make(map[uuid.UUID]struct{}, len(materialIDs))
	for _, id := range materialIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, model.PartnerMaterialModel{PartnerID: partnerID, MaterialID: id})
	}
	if err := db.Create(&rows).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return errors.Wrap(repository.ErrForeignKey, "unknown material")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to save partner materials")
	}

	return nil
}

func createUser(db *gorm.DB, u *entity.User) error {
	userM := &model.UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		AddressID:    u.AddressID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if err := db.Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return errors.Wrap(repository.ErrDuplicate, "username already taken")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	return nil
}

func toUserDomain(data *model.UserModel) entity.User {
	return entity.User{
		ID:           data.ID,
		Name:         data.Name,
		Username:     data.Username,
		Email:        data.Email,
		Phone:        data.Phone,
		PasswordHash: data.PasswordHash,
		AddressID:    data.AddressID,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

func exists(db *gorm.DB, m any, id uuid.UUID) (bool, error) {
	var count int64
	if err := db.Model(m).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to check existence")
	}

	return count > 0, nil
}
