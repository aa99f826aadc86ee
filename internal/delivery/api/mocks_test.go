package api

import (
	"context"
	"io"

	"greencycle/internal/domain/entity"
	"greencycle/internal/usecase"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/mock"
)

type mockCollectionUsecase struct {
	mock.Mock
}

func (m *mockCollectionUsecase) CreateCollection(ctx context.Context, input *usecase.CreateCollectionInput) (*entity.Collection, error) {
	args := m.Called(ctx, input)
	c, _ := args.Get(0).(*entity.Collection)

	return c, args.Error(1)
}

func (m *mockCollectionUsecase) GetCollection(ctx context.Context, collectionID uuid.UUID) (*usecase.CollectionDetail, error) {
	args := m.Called(ctx, collectionID)
	d, _ := args.Get(0).(*usecase.CollectionDetail)

	return d, args.Error(1)
}

func (m *mockCollectionUsecase) Accept(ctx context.Context, collectionID, partnerID uuid.UUID) (*entity.Collection, error) {
	args := m.Called(ctx, collectionID, partnerID)
	c, _ := args.Get(0).(*entity.Collection)

	return c, args.Error(1)
}

func (m *mockCollectionUsecase) MarkCollected(ctx context.Context, collectionID uuid.UUID) (*entity.Collection, error) {
	args := m.Called(ctx, collectionID)
	c, _ := args.Get(0).(*entity.Collection)

	return c, args.Error(1)
}

func (m *mockCollectionUsecase) Cancel(ctx context.Context, collectionID uuid.UUID) (*entity.Collection, error) {
	args := m.Called(ctx, collectionID)
	c, _ := args.Get(0).(*entity.Collection)

	return c, args.Error(1)
}

func (m *mockCollectionUsecase) Finalize(ctx context.Context, collectionID uuid.UUID) (*usecase.FinalizeOutput, error) {
	args := m.Called(ctx, collectionID)
	out, _ := args.Get(0).(*usecase.FinalizeOutput)

	return out, args.Error(1)
}

func (m *mockCollectionUsecase) ListPendingForPartner(ctx context.Context, partnerID uuid.UUID, origin *orb.Point) ([]*entity.CollectionSummary, error) {
	args := m.Called(ctx, partnerID, origin)
	items, _ := args.Get(0).([]*entity.CollectionSummary)

	return items, args.Error(1)
}

func (m *mockCollectionUsecase) GeneratePickupQR(ctx context.Context, collectionID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, collectionID)
	png, _ := args.Get(0).([]byte)

	return png, args.Error(1)
}

func (m *mockCollectionUsecase) ScanPickup(ctx context.Context, partnerID uuid.UUID, qrData string) (*entity.Collection, error) {
	args := m.Called(ctx, partnerID, qrData)
	c, _ := args.Get(0).(*entity.Collection)

	return c, args.Error(1)
}

type mockImageUsecase struct {
	mock.Mock
}

func (m *mockImageUsecase) AddImage(ctx context.Context, collectionID uuid.UUID, filename string, r io.Reader) (*entity.CollectionImage, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, collectionID, filename, body)
	img, _ := args.Get(0).(*entity.CollectionImage)

	return img, args.Error(1)
}

func (m *mockImageUsecase) DeleteImage(ctx context.Context, collectionID, imageID uuid.UUID) error {
	return m.Called(ctx, collectionID, imageID).Error(0)
}

type mockRatingUsecase struct {
	mock.Mock
}

func (m *mockRatingUsecase) SubmitClientRating(ctx context.Context, input *usecase.SubmitRatingInput) (*entity.Rating, error) {
	args := m.Called(ctx, input)
	r, _ := args.Get(0).(*entity.Rating)

	return r, args.Error(1)
}

func (m *mockRatingUsecase) SubmitPartnerRating(ctx context.Context, input *usecase.SubmitRatingInput) (*entity.Rating, error) {
	args := m.Called(ctx, input)
	r, _ := args.Get(0).(*entity.Rating)

	return r, args.Error(1)
}

func (m *mockRatingUsecase) GetByCollection(ctx context.Context, collectionID uuid.UUID) (*entity.Rating, error) {
	args := m.Called(ctx, collectionID)
	r, _ := args.Get(0).(*entity.Rating)

	return r, args.Error(1)
}

func (m *mockRatingUsecase) StatisticsForClient(ctx context.Context, clientID uuid.UUID) (*entity.RatingStatistics, error) {
	args := m.Called(ctx, clientID)
	s, _ := args.Get(0).(*entity.RatingStatistics)

	return s, args.Error(1)
}

func (m *mockRatingUsecase) StatisticsForPartner(ctx context.Context, partnerID uuid.UUID) (*entity.RatingStatistics, error) {
	args := m.Called(ctx, partnerID)
	s, _ := args.Get(0).(*entity.RatingStatistics)

	return s, args.Error(1)
}

type mockMaterialUsecase struct {
	mock.Mock
}

func (m *mockMaterialUsecase) CreateMaterial(ctx context.Context, input *usecase.CreateMaterialInput) (*entity.Material, error) {
	args := m.Called(ctx, input)
	mat, _ := args.Get(0).(*entity.Material)

	return mat, args.Error(1)
}

func (m *mockMaterialUsecase) GetMaterial(ctx context.Context, materialID uuid.UUID) (*entity.Material, error) {
	args := m.Called(ctx, materialID)
	mat, _ := args.Get(0).(*entity.Material)

	return mat, args.Error(1)
}

func (m *mockMaterialUsecase) ListMaterials(ctx context.Context) ([]*entity.Material, error) {
	args := m.Called(ctx)
	mats, _ := args.Get(0).([]*entity.Material)

	return mats, args.Error(1)
}

type mockAddressUsecase struct {
	mock.Mock
}

func (m *mockAddressUsecase) CreateAddress(ctx context.Context, input *usecase.AddressInput) (*entity.Address, error) {
	args := m.Called(ctx, input)
	a, _ := args.Get(0).(*entity.Address)

	return a, args.Error(1)
}

func (m *mockAddressUsecase) GetAddress(ctx context.Context, addressID uuid.UUID) (*entity.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(*entity.Address)

	return a, args.Error(1)
}

func (m *mockAddressUsecase) UpdateAddress(ctx context.Context, addressID uuid.UUID, input *usecase.AddressInput) (*entity.Address, error) {
	args := m.Called(ctx, addressID, input)
	a, _ := args.Get(0).(*entity.Address)

	return a, args.Error(1)
}

type mockAccountUsecase struct {
	mock.Mock
}

func (m *mockAccountUsecase) RegisterClient(ctx context.Context, input *usecase.RegisterClientInput) (*entity.Client, error) {
	args := m.Called(ctx, input)
	c, _ := args.Get(0).(*entity.Client)

	return c, args.Error(1)
}

func (m *mockAccountUsecase) RegisterPartner(ctx context.Context, input *usecase.RegisterPartnerInput) (*entity.Partner, error) {
	args := m.Called(ctx, input)
	p, _ := args.Get(0).(*entity.Partner)

	return p, args.Error(1)
}

func (m *mockAccountUsecase) GetClient(ctx context.Context, clientID uuid.UUID) (*entity.Client, error) {
	args := m.Called(ctx, clientID)
	c, _ := args.Get(0).(*entity.Client)

	return c, args.Error(1)
}

func (m *mockAccountUsecase) GetPartner(ctx context.Context, partnerID uuid.UUID) (*entity.Partner, error) {
	args := m.Called(ctx, partnerID)
	p, _ := args.Get(0).(*entity.Partner)

	return p, args.Error(1)
}

func (m *mockAccountUsecase) UpdatePartnerMaterials(ctx context.Context, partnerID uuid.UUID, materialIDs []uuid.UUID) (*entity.Partner, error) {
	args := m.Called(ctx, partnerID, materialIDs)
	p, _ := args.Get(0).(*entity.Partner)

	return p, args.Error(1)
}
