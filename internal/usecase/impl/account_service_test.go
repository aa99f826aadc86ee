package impl

import (
	"context"
	"testing"
	"time"

	domainerrors "greencycle/internal/domain/errors"
	"greencycle/internal/infra/auth"
	"greencycle/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func (env *testEnv) newAccountService() *accountService {
	srv := NewAccountService(AccountServiceParams{
		TxManager:    env.txManager,
		ClientRepo:   env.clientRepo,
		PartnerRepo:  env.partnerRepo,
		Hasher:       auth.NewBcryptHasher(bcrypt.MinCost),
		PendingCache: env.pendingCache,
		Logger:       env.logger,
	}).(*accountService)
	srv.now = func() time.Time { return fixedNow }

	return srv
}

func clientInput(username, cpf string) *usecase.RegisterClientInput {
	return &usecase.RegisterClientInput{
		User: usecase.UserInput{
			Name:     "Maria Souza",
			Username: username,
			Email:    "Maria@Example.com",
			Phone:    "(61) 99876-5432",
			Password: "segredo123",
		},
		CPF:       cpf,
		BirthDate: time.Date(1992, 5, 17, 0, 0, 0, 0, time.UTC),
		Sex:       "f",
	}
}

func TestAccountService_RegisterClient(t *testing.T) {
	env := newTestEnv(t)
	srv := env.newAccountService()
	ctx := context.Background()

	client, err := srv.RegisterClient(ctx, clientInput("maria", "52998224725"))
	require.NoError(t, err)
	assert.Equal(t, "529.982.247-25", client.CPF)
	assert.Equal(t, "F", client.Sex)
	assert.Equal(t, "maria@example.com", client.User.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(client.User.PasswordHash), []byte("segredo123")))

	stored, err := srv.GetClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "maria", stored.User.Username)
	assert.Equal(t, "529.982.247-25", stored.CPF)

	_, err = srv.RegisterClient(ctx, clientInput("maria", "11144477735"))
	assert.ErrorIs(t, err, domainerrors.ErrAccountAlreadyExists)

	_, err = srv.RegisterClient(ctx, clientInput("joana", "529.982.247-25"))
	assert.ErrorIs(t, err, domainerrors.ErrAccountAlreadyExists)

	_, err = srv.RegisterClient(ctx, clientInput("ana", "52998224726"))
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	_, err = srv.GetClient(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrClientNotFound)
}

func TestAccountService_RegisterClient_UnknownAddress(t *testing.T) {
	env := newTestEnv(t)
	srv := env.newAccountService()

	input := clientInput("maria", "52998224725")
	addressID := uuid.New()
	input.User.AddressID = &addressID

	_, err := srv.RegisterClient(context.Background(), input)
	assert.ErrorIs(t, err, domainerrors.ErrAddressNotFound)
}

func TestAccountService_RegisterClient_HashFailure(t *testing.T) {
	env := newTestEnv(t)
	srv := env.newAccountService()

	hasher := &mockPasswordHasher{}
	hasher.On("Hash", "segredo123").Return("", errors.New("entropy exhausted")).Once()
	srv.hasher = hasher

	_, err := srv.RegisterClient(context.Background(), clientInput("maria", "52998224725"))
	assert.ErrorIs(t, err, domainerrors.ErrPasswordHashFailed)
	hasher.AssertExpectations(t)
}

func TestAccountService_RegisterPartner(t *testing.T) {
	env := newTestEnv(t)
	srv := env.newAccountService()
	ctx := context.Background()

	paper := env.seedMaterial(t, "Papel")
	glass := env.seedMaterial(t, "Vidro")

	partner, err := srv.RegisterPartner(ctx, &usecase.RegisterPartnerInput{
		User:        usecase.UserInput{Name: "Recicla DF", Username: "recicladf", Password: "segredo123"},
		CNPJ:        "11222333000181",
		MaterialIDs: []uuid.UUID{paper.ID, glass.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "11.222.333/0001-81", partner.CNPJ)

	stored, err := srv.GetPartner(ctx, partner.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{paper.ID, glass.ID}, stored.MaterialIDs)

	_, err = srv.RegisterPartner(ctx, &usecase.RegisterPartnerInput{
		User:        usecase.UserInput{Username: "outro", Password: "segredo123"},
		CNPJ:        "11444777000161",
		MaterialIDs: []uuid.UUID{uuid.New()},
	})
	assert.ErrorIs(t, err, domainerrors.ErrMaterialNotFound)

	_, err = srv.RegisterPartner(ctx, &usecase.RegisterPartnerInput{
		User: usecase.UserInput{Username: "outro", Password: "segredo123"},
		CNPJ: "11.222.333/0001-81",
	})
	assert.ErrorIs(t, err, domainerrors.ErrAccountAlreadyExists)

	_, err = srv.RegisterPartner(ctx, &usecase.RegisterPartnerInput{
		User: usecase.UserInput{Username: "outro", Password: "segredo123"},
		CNPJ: "11222333000182",
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestAccountService_UpdatePartnerMaterials(t *testing.T) {
	env := newTestEnv(t)
	srv := env.newAccountService()
	collections := env.newCollectionService()
	ctx := context.Background()

	f := env.seedFixture(t)
	metal := env.seedMaterial(t, "Metal")
	env.createCollection(t, collections, f)

	items, err := collections.ListPendingForPartner(ctx, f.partner.ID, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)

	partner, err := srv.UpdatePartnerMaterials(ctx, f.partner.ID, []uuid.UUID{metal.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{metal.ID}, partner.MaterialIDs)
	assert.False(t, env.pendingCache.cached(f.partner.ID))

	items, err = collections.ListPendingForPartner(ctx, f.partner.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = srv.UpdatePartnerMaterials(ctx, f.partner.ID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, domainerrors.ErrMaterialNotFound)

	_, err = srv.UpdatePartnerMaterials(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, domainerrors.ErrPartnerNotFound)
}

func TestAccountService_RejectsBadPhone(t *testing.T) {
	env := newTestEnv(t)
	srv := env.newAccountService()
	hasher := &mockPasswordHasher{}
	srv.hasher = hasher

	input := clientInput("maria", "52998224725")
	input.User.Phone = "123"

	_, err := srv.RegisterClient(context.Background(), input)
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	hasher.AssertNotCalled(t, "Hash", mock.Anything)
}
