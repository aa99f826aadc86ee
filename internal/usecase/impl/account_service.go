package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "greencycle/internal/delivery/context"
	"greencycle/internal/domain/entity"
	domainerrors "greencycle/internal/domain/errors"
	"greencycle/internal/domain/repository"
	"greencycle/internal/domain/service"
	"greencycle/internal/usecase"
	"greencycle/internal/util"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager    repository.TransactionManager
	clientRepo   repository.ClientRepository
	partnerRepo  repository.PartnerRepository
	hasher       service.PasswordHasher
	pendingCache service.PendingCache
	logger       *slog.Logger
	now          func() time.Time
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	ClientRepo   repository.ClientRepository
	PartnerRepo  repository.PartnerRepository
	Hasher       service.PasswordHasher
	PendingCache service.PendingCache
	Logger       *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		txManager:    params.TxManager,
		clientRepo:   params.ClientRepo,
		partnerRepo:  params.PartnerRepo,
		hasher:       params.Hasher,
		pendingCache: params.PendingCache,
		logger:       params.Logger,
		now:          time.Now,
	}
}

func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RegisterClient creates the user identity and the client profile in one transaction.
func (srv *accountService) RegisterClient(ctx context.Context, input *usecase.RegisterClientInput) (*entity.Client, error) {
	cpf, err := util.NormalizeCPF(input.CPF)
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}
	sex := strings.ToUpper(strings.TrimSpace(input.Sex))
	if len([]rune(sex)) != 1 {
		return nil, domainerrors.ErrValidationFailed.WithDetails("sexo deve ter exatamente 1 caractere")
	}

	user, err := srv.newUser(&input.User)
	if err != nil {
		return nil, err
	}

	client := &entity.Client{
		ID:        uuid.New(),
		User:      *user,
		CPF:       cpf,
		BirthDate: input.BirthDate,
		Sex:       sex,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.CreatedAt,
	}

	err = srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		if err := ensureAddress(ctx, repos.AddressRepo(), user.AddressID); err != nil {
			return err
		}

		return mapAccountWriteError(repos.ClientRepo().Create(ctx, client))
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Client registered", slog.Any("client_id", client.ID))

	return client, nil
}

// RegisterPartner creates the user identity, the partner profile and its materials in one transaction.
func (srv *accountService) RegisterPartner(ctx context.Context, input *usecase.RegisterPartnerInput) (*entity.Partner, error) {
	cnpj, err := util.NormalizeCNPJ(input.CNPJ)
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	user, err := srv.newUser(&input.User)
	if err != nil {
		return nil, err
	}

	partner := &entity.Partner{
		ID:          uuid.New(),
		User:        *user,
		CNPJ:        cnpj,
		MaterialIDs: input.MaterialIDs,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.CreatedAt,
	}

	err = srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		if err := ensureAddress(ctx, repos.AddressRepo(), user.AddressID); err != nil {
			return err
		}
		if err := ensureMaterials(ctx, repos.MaterialRepo(), input.MaterialIDs); err != nil {
			return err
		}

		return mapAccountWriteError(repos.PartnerRepo().Create(ctx, partner))
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Partner registered",
		slog.Any("partner_id", partner.ID),
		slog.Int("materials", len(partner.MaterialIDs)))

	return partner, nil
}

// GetClient returns a client with its user identity.
func (srv *accountService) GetClient(ctx context.Context, clientID uuid.UUID) (*entity.Client, error) {
	client, err := srv.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, notFoundAs(err, domainerrors.ErrClientNotFound)
	}

	return client, nil
}

// GetPartner returns a partner with its user identity and materials.
func (srv *accountService) GetPartner(ctx context.Context, partnerID uuid.UUID) (*entity.Partner, error) {
	partner, err := srv.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		return nil, notFoundAs(err, domainerrors.ErrPartnerNotFound)
	}

	return partner, nil
}

// UpdatePartnerMaterials replaces the partner's materials and drops its cached pending listing.
func (srv *accountService) UpdatePartnerMaterials(ctx context.Context, partnerID uuid.UUID, materialIDs []uuid.UUID) (*entity.Partner, error) {
	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		if err := ensurePartner(ctx, repos.PartnerRepo(), partnerID); err != nil {
			return err
		}
		if err := ensureMaterials(ctx, repos.MaterialRepo(), materialIDs); err != nil {
			return err
		}

		return repos.PartnerRepo().ReplaceMaterials(ctx, partnerID, materialIDs)
	})
	if err != nil {
		return nil, err
	}

	if err := srv.pendingCache.InvalidatePartners(ctx, partnerID); err != nil {
		srv.log(ctx).Warn("Failed to invalidate pending cache",
			slog.Any("partner_id", partnerID),
			slog.Any("error", err))
	}

	return srv.GetPartner(ctx, partnerID)
}

func (srv *accountService) newUser(input *usecase.UserInput) (*entity.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("nome de usuário é obrigatório")
	}
	if input.Password == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("senha é obrigatória")
	}
	if input.Phone != "" && !util.IsValidPhoneBR(input.Phone) {
		return nil, domainerrors.ErrValidationFailed.WithDetails("telefone inválido")
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, domainerrors.ErrPasswordHashFailed.WithDetails(err.Error())
	}

	now := srv.now()

	return &entity.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:        input.Phone,
		PasswordHash: hash,
		AddressID:    input.AddressID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func ensureAddress(ctx context.Context, repo repository.AddressRepository, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := repo.FindByID(ctx, *id); err != nil {
		return notFoundAs(err, domainerrors.ErrAddressNotFound)
	}

	return nil
}

func mapAccountWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		return domainerrors.ErrAccountAlreadyExists.WithDetails(err.Error())
	case errors.Is(err, repository.ErrForeignKey):
		return domainerrors.ErrMaterialNotFound
	}

	return err
}
