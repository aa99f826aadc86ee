package impl

import (
	"context"
	"strings"
	"testing"
	"time"

	domainerrors "greencycle/internal/domain/errors"
	"greencycle/internal/domain/service"
	"greencycle/internal/usecase"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func (env *testEnv) newAddressService(geocoder *mockGeocoder) *addressService {
	srv := NewAddressService(AddressServiceParams{
		AddressRepo: env.addressRepo,
		Geocoder:    geocoder,
		Config:      newTestConfig(true),
		Logger:      env.logger,
	}).(*addressService)
	srv.now = func() time.Time { return fixedNow }

	return srv
}

func addressInput() *usecase.AddressInput {
	return &usecase.AddressInput{
		CEP:          "70722-000",
		State:        "df",
		City:         "Brasília",
		Neighborhood: "Asa Norte",
		Street:       "SQN 210 Bloco A",
		Number:       12,
	}
}

func TestMaterialService(t *testing.T) {
	env := newTestEnv(t)
	srv := NewMaterialService(MaterialServiceParams{MaterialRepo: env.materialRepo, Logger: env.logger})
	ctx := context.Background()

	created, err := srv.CreateMaterial(ctx, &usecase.CreateMaterialInput{
		Name:        "  Alumínio ",
		Description: "Latas",
		Price:       decimal.RequireFromString("7.25"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alumínio", created.Name)

	_, err = srv.CreateMaterial(ctx, &usecase.CreateMaterialInput{Name: "Alumínio"})
	assert.ErrorIs(t, err, domainerrors.ErrMaterialAlreadyExists)

	_, err = srv.CreateMaterial(ctx, &usecase.CreateMaterialInput{Name: strings.Repeat("x", maxMaterialNameLength+1)})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	_, err = srv.CreateMaterial(ctx, &usecase.CreateMaterialInput{Name: "Cobre", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	found, err := srv.GetMaterial(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("7.25").Equal(found.Price))

	_, err = srv.GetMaterial(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrMaterialNotFound)

	list, err := srv.ListMaterials(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAddressService_CreateAddress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	geocoder := &mockGeocoder{}
	geocoder.On("Geocode", mock.Anything, "SQN 210 Bloco A, 12, Asa Norte, Brasília, DF, 70722000, Brasil").
		Return(orb.Point{-47.88, -15.76}, nil).Once()
	srv := env.newAddressService(geocoder)

	address, err := srv.CreateAddress(ctx, addressInput())
	require.NoError(t, err)
	assert.Equal(t, "70722000", address.CEP)
	assert.Equal(t, "DF", address.State)
	assert.InDelta(t, -15.76, address.Latitude, 1e-9)
	assert.InDelta(t, -47.88, address.Longitude, 1e-9)

	stored, err := srv.GetAddress(ctx, address.ID)
	require.NoError(t, err)
	assert.InDelta(t, -15.76, stored.Latitude, 1e-9)
	geocoder.AssertExpectations(t)
}

func TestAddressService_CreateAddress_FallsBack(t *testing.T) {
	env := newTestEnv(t)
	geocoder := &mockGeocoder{}
	geocoder.On("Geocode", mock.Anything, mock.Anything).Return(orb.Point{}, service.ErrLocationNotFound).Once()
	srv := env.newAddressService(geocoder)

	address, err := srv.CreateAddress(context.Background(), addressInput())
	require.NoError(t, err)
	assert.InDelta(t, -15.7801, address.Latitude, 1e-9)
	assert.InDelta(t, -47.9292, address.Longitude, 1e-9)
}

func TestAddressService_CreateAddress_InvalidCEP(t *testing.T) {
	env := newTestEnv(t)
	geocoder := &mockGeocoder{}
	srv := env.newAddressService(geocoder)

	input := addressInput()
	input.CEP = "7072"
	_, err := srv.CreateAddress(context.Background(), input)
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestAddressService_UpdateAddress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	geocoder := &mockGeocoder{}
	geocoder.On("Geocode", mock.Anything, mock.Anything).Return(orb.Point{-47.88, -15.76}, nil).Once()
	srv := env.newAddressService(geocoder)

	address, err := srv.CreateAddress(ctx, addressInput())
	require.NoError(t, err)

	// Only the complement changes, so no lookup happens.
	input := addressInput()
	input.Complement = "Apto 302"
	updated, err := srv.UpdateAddress(ctx, address.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Apto 302", updated.Complement)
	assert.InDelta(t, -15.76, updated.Latitude, 1e-9)

	// A new number re-geocodes; a failed lookup keeps the old position.
	geocoder.On("Geocode", mock.Anything, mock.Anything).Return(orb.Point{}, service.ErrLocationNotFound).Once()
	input.Number = 99
	updated, err = srv.UpdateAddress(ctx, address.ID, input)
	require.NoError(t, err)
	assert.Equal(t, 99, updated.Number)
	assert.InDelta(t, -15.76, updated.Latitude, 1e-9)
	assert.InDelta(t, -47.88, updated.Longitude, 1e-9)

	geocoder.On("Geocode", mock.Anything, mock.Anything).Return(orb.Point{-47.90, -15.80}, nil).Once()
	input.Street = "SQN 211 Bloco B"
	updated, err = srv.UpdateAddress(ctx, address.ID, input)
	require.NoError(t, err)
	assert.InDelta(t, -15.80, updated.Latitude, 1e-9)

	_, err = srv.UpdateAddress(ctx, uuid.New(), input)
	assert.ErrorIs(t, err, domainerrors.ErrAddressNotFound)

	geocoder.AssertNumberOfCalls(t, "Geocode", 3)
}
