// Package postgres contains the concrete implementation of the persistence layer using GORM.
// PostgreSQL is the production database; SQLite serves local runs and tests.
package postgres

import (
	"context"
	"time"

	"greencycle/internal/domain/entity"
	domainerrors "greencycle/internal/domain/errors"
	"greencycle/internal/domain/repository"
	"greencycle/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// collectionRepository implements repository.CollectionRepository using GORM.
type collectionRepository struct {
	db *gorm.DB
}

// NewCollectionRepository is the constructor for collectionRepository.
func NewCollectionRepository(db *gorm.DB) repository.CollectionRepository {
	return &collectionRepository{db: db}
}

// Create inserts the request, payment and collection rows.
func (repo *collectionRepository) Create(ctx context.Context, c *entity.Collection) error {
	collectionM := fromCollectionDomain(c)
	db := repo.db.WithContext(ctx)

	if err := db.Create(&collectionM.Request).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create request")
	}
	if err := db.Create(&collectionM.Payment).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create payment")
	}
	if err := db.Omit(clause.Associations).Create(collectionM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return errors.Wrap(repository.ErrForeignKey, "collection references an unknown row")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create collection")
	}

	return nil
}

// FindByID loads a collection with its request, payment and images.
func (repo *collectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Collection, error) {
	var collectionM model.CollectionModel
	err := repo.db.WithContext(ctx).
		Preload("Request").
		Preload("Payment").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&collectionM, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}

		return nil, errors.Wrap(err, "failed to find collection by ID")
	}

	return toCollectionDomain(&collectionM), nil
}

// FindByIDForUpdate locks the collection, request and payment rows in that order.
func (repo *collectionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Collection, error) {
	db := repo.db.WithContext(ctx)
	lock := clause.Locking{Strength: "UPDATE"}

	var collectionM model.CollectionModel
	if err := db.Clauses(lock).First(&collectionM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}

		return nil, errors.Wrap(err, "failed to lock collection")
	}
	if err := db.Clauses(lock).First(&collectionM.Request, "id = ?", collectionM.RequestID).Error; err != nil {
		return nil, errors.Wrap(err, "failed to lock request")
	}
	if err := db.Clauses(lock).First(&collectionM.Payment, "id = ?", collectionM.PaymentID).Error; err != nil {
		return nil, errors.Wrap(err, "failed to lock payment")
	}
	if err := db.Where("collection_id = ?", id).Order("created_at ASC").Find(&collectionM.Images).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load collection images")
	}

	return toCollectionDomain(&collectionM), nil
}

// SaveTransition writes the new status with compare-and-set guards on the previous one.
func (repo *collectionRepository) SaveTransition(ctx context.Context, c *entity.Collection, from entity.Status) error {
	db := repo.db.WithContext(ctx)

	res := db.Model(&model.RequestModel{}).
		Where("id = ? AND state = ?", c.Request.ID, from.Request.String()).
		Updates(map[string]any{
			"state":        c.Request.State.String(),
			"finalized_at": c.Request.FinalizedAt,
			"updated_at":   c.Request.UpdatedAt,
		})
	if res.Error != nil {
		return domainerrors.NewDatabaseExecuteError(res.Error, "failed to update request state")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(repository.ErrStaleState, "request")
	}

	if c.Payment.State != from.Payment {
		res = db.Model(&model.PaymentModel{}).
			Where("id = ? AND state = ?", c.Payment.ID, from.Payment.String()).
			Updates(map[string]any{
				"state":      c.Payment.State.String(),
				"updated_at": c.Payment.UpdatedAt,
			})
		if res.Error != nil {
			return domainerrors.NewDatabaseExecuteError(res.Error, "failed to update payment state")
		}
		if res.RowsAffected == 0 {
			return errors.Wrap(repository.ErrStaleState, "payment")
		}
	}

	q := db.Model(&model.CollectionModel{}).Where("id = ?", c.ID)
	if from.Request == entity.RequestPending && c.Partner.IsAssigned() {
		q = q.Where("partner_id IS NULL")
	}
	res = q.Updates(map[string]any{
		"partner_id": c.Partner.Ptr(),
		"updated_at": c.UpdatedAt,
	})
	if res.Error != nil {
		return domainerrors.NewDatabaseExecuteError(res.Error, "failed to update collection")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(repository.ErrStaleState, "collection partner")
	}

	return nil
}

type pendingRow struct {
	ID           uuid.UUID
	ClientID     uuid.UUID
	MaterialID   uuid.UUID
	MaterialName string
	Weight       decimal.NullDecimal
	Quantity     *int
	AddressID    uuid.UUID
	Street       string
	Number       int
	Complement   string
	Neighborhood string
	City         string
	AddressState string
	Latitude     float64
	Longitude    float64
	Notes        string
	Amount       decimal.Decimal
	CreatedAt    time.Time
}

// FindPendingByMaterials lists open collections of the given materials, newest first.
func (repo *collectionRepository) FindPendingByMaterials(ctx context.Context, materialIDs []uuid.UUID) ([]*entity.CollectionSummary, error) {
	if len(materialIDs) == 0 {
		return []*entity.CollectionSummary{}, nil
	}

	var rows []pendingRow
	err := repo.db.WithContext(ctx).
		Table("collections AS c").
		Select(`c.id, c.client_id, c.material_id, m.name AS material_name, c.weight, c.quantity,
			c.address_id, a.street, a.number, a.complement, a.neighborhood, a.city, a.state AS address_state,
			a.latitude, a.longitude, r.notes, p.amount, c.created_at`).
		Joins("JOIN requests r ON r.id = c.request_id").
		Joins("JOIN payments p ON p.id = c.payment_id").
		Joins("JOIN materials m ON m.id = c.material_id").
		Joins("JOIN addresses a ON a.id = c.address_id").
		Where("c.material_id IN ?", uuidStrings(materialIDs)).
		Where("r.state = ?", entity.RequestPending.String()).
		Where("c.partner_id IS NULL").
		Order("c.created_at DESC").
		Order("c.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pending collections")
	}

	result := make([]*entity.CollectionSummary, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		address := entity.Address{
			Street:       row.Street,
			Number:       row.Number,
			Complement:   row.Complement,
			Neighborhood: row.Neighborhood,
			City:         row.City,
			State:        row.AddressState,
		}
		result = append(result, &entity.CollectionSummary{
			ID:            row.ID,
			ClientID:      row.ClientID,
			MaterialID:    row.MaterialID,
			MaterialName:  row.MaterialName,
			Measure:       toMeasure(row.Weight, row.Quantity),
			AddressID:     row.AddressID,
			AddressLine:   address.Line(),
			Latitude:      row.Latitude,
			Longitude:     row.Longitude,
			Notes:         row.Notes,
			PaymentAmount: row.Amount,
			CreatedAt:     row.CreatedAt,
		})
	}

	return result, nil
}

// CountSettledByClient counts the client's finalized and paid collections.
func (repo *collectionRepository) CountSettledByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	return repo.countSettled(ctx, "c.client_id = ?", clientID)
}

// CountSettledByPartner counts the partner's finalized and paid collections.
func (repo *collectionRepository) CountSettledByPartner(ctx context.Context, partnerID uuid.UUID) (int64, error) {
	return repo.countSettled(ctx, "c.partner_id = ?", partnerID)
}

func (repo *collectionRepository) countSettled(ctx context.Context, cond string, id uuid.UUID) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Table("collections AS c").
		Joins("JOIN requests r ON r.id = c.request_id").
		Joins("JOIN payments p ON p.id = c.payment_id").
		Where(cond, id).
		Where("r.state = ? AND p.state = ?", entity.RequestFinalized.String(), entity.PaymentPaid.String()).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count settled collections")
	}

	return count, nil
}

// AddImage attaches an uploaded image record.
func (repo *collectionRepository) AddImage(ctx context.Context, img *entity.CollectionImage) error {
	imageM := fromImageDomain(img)
	if err := repo.db.WithContext(ctx).Create(imageM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return errors.Wrap(repository.ErrForeignKey, "image references an unknown collection")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create collection image")
	}

	return nil
}

// FindImage loads one image of a collection.
func (repo *collectionRepository) FindImage(ctx context.Context, collectionID, imageID uuid.UUID) (*entity.CollectionImage, error) {
	var imageM model.CollectionImageModel
	err := repo.db.WithContext(ctx).
		First(&imageM, "id = ? AND collection_id = ?", imageID, collectionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}

		return nil, errors.Wrap(err, "failed to find collection image")
	}

	return toImageDomain(&imageM), nil
}

// DeleteImage removes an image record.
func (repo *collectionRepository) DeleteImage(ctx context.Context, imageID uuid.UUID) error {
	res := repo.db.WithContext(ctx).Delete(&model.CollectionImageModel{}, "id = ?", imageID)
	if res.Error != nil {
		return domainerrors.NewDatabaseExecuteError(res.Error, "failed to delete collection image")
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func toMeasure(weight decimal.NullDecimal, quantity *int) entity.Measure {
	m := entity.Measure{Quantity: quantity}
	if weight.Valid {
		w := weight.Decimal
		m.Weight = &w
	}

	return m
}

func toCollectionDomain(data *model.CollectionModel) *entity.Collection {
	if data == nil {
		return nil
	}

	images := make([]entity.CollectionImage, 0, len(data.Images))
	for i := range data.Images {
		images = append(images, *toImageDomain(&data.Images[i]))
	}

	return &entity.Collection{
		ID:         data.ID,
		ClientID:   data.ClientID,
		Partner:    entity.AssignmentFromPtr(data.PartnerID),
		MaterialID: data.MaterialID,
		Measure:    toMeasure(data.Weight, data.Quantity),
		AddressID:  data.AddressID,
		Request: entity.Request{
			ID:          data.Request.ID,
			State:       entity.RequestState(data.Request.State),
			Notes:       data.Request.Notes,
			FinalizedAt: data.Request.FinalizedAt,
			CreatedAt:   data.Request.CreatedAt,
			UpdatedAt:   data.Request.UpdatedAt,
		},
		Payment: entity.Payment{
			ID:        data.Payment.ID,
			State:     entity.PaymentState(data.Payment.State),
			Amount:    data.Payment.Amount,
			Balance:   data.Payment.Balance,
			CreatedAt: data.Payment.CreatedAt,
			UpdatedAt: data.Payment.UpdatedAt,
		},
		Images:    images,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromCollectionDomain(data *entity.Collection) *model.CollectionModel {
	if data == nil {
		return nil
	}

	m := &model.CollectionModel{
		ID:         data.ID,
		ClientID:   data.ClientID,
		PartnerID:  data.Partner.Ptr(),
		MaterialID: data.MaterialID,
		Quantity:   data.Measure.Quantity,
		AddressID:  data.AddressID,
		RequestID:  data.Request.ID,
		PaymentID:  data.Payment.ID,
		Request: model.RequestModel{
			ID:          data.Request.ID,
			State:       data.Request.State.String(),
			Notes:       data.Request.Notes,
			FinalizedAt: data.Request.FinalizedAt,
			CreatedAt:   data.Request.CreatedAt,
			UpdatedAt:   data.Request.UpdatedAt,
		},
		Payment: model.PaymentModel{
			ID:        data.Payment.ID,
			State:     data.Payment.State.String(),
			Amount:    data.Payment.Amount,
			Balance:   data.Payment.Balance,
			CreatedAt: data.Payment.CreatedAt,
			UpdatedAt: data.Payment.UpdatedAt,
		},
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
	if data.Measure.Weight != nil {
		m.Weight = decimal.NewNullDecimal(*data.Measure.Weight)
	}

	return m
}

func toImageDomain(data *model.CollectionImageModel) *entity.CollectionImage {
	if data == nil {
		return nil
	}

	return &entity.CollectionImage{
		ID:           data.ID,
		CollectionID: data.CollectionID,
		URL:          data.URL,
		FileID:       data.FileID,
		CreatedAt:    data.CreatedAt,
	}
}

func fromImageDomain(data *entity.CollectionImage) *model.CollectionImageModel {
	if data == nil {
		return nil
	}

	return &model.CollectionImageModel{
		ID:           data.ID,
		CollectionID: data.CollectionID,
		URL:          data.URL,
		FileID:       data.FileID,
		CreatedAt:    data.CreatedAt,
	}
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}

	return out
}
