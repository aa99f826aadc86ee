package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	deliverycontext "greencycle/internal/delivery/context"
	"greencycle/internal/domain/entity"
	domainerrors "greencycle/internal/domain/errors"
	"greencycle/internal/domain/repository"
	"greencycle/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	maxMaterialNameLength        = 50
	maxMaterialDescriptionLength = 150
)

type materialService struct {
	materialRepo repository.MaterialRepository
	logger       *slog.Logger
	now          func() time.Time
}

// MaterialServiceParams holds dependencies for MaterialService, injected by Fx.
type MaterialServiceParams struct {
	fx.In

	MaterialRepo repository.MaterialRepository
	Logger       *slog.Logger
}

// NewMaterialService creates a new material catalogue service.
func NewMaterialService(params MaterialServiceParams) usecase.MaterialUsecase {
	return &materialService{
		materialRepo: params.MaterialRepo,
		logger:       params.Logger,
		now:          time.Now,
	}
}

func (srv *materialService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateMaterial adds a material with a unique name.
func (srv *materialService) CreateMaterial(ctx context.Context, input *usecase.CreateMaterialInput) (*entity.Material, error) {
	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		return nil, domainerrors.ErrValidationFailed.WithDetails("nome do material é obrigatório")
	case utf8.RuneCountInString(name) > maxMaterialNameLength:
		return nil, domainerrors.ErrValidationFailed.WithDetailsf("nome deve ter no máximo %d caracteres", maxMaterialNameLength)
	case utf8.RuneCountInString(input.Description) > maxMaterialDescriptionLength:
		return nil, domainerrors.ErrValidationFailed.WithDetailsf("descrição deve ter no máximo %d caracteres", maxMaterialDescriptionLength)
	case input.Price.IsNegative():
		return nil, domainerrors.ErrValidationFailed.WithDetails("preço não pode ser negativo")
	}

	now := srv.now()
	material := &entity.Material{
		ID:          uuid.New(),
		Name:        name,
		Description: input.Description,
		Price:       input.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := srv.materialRepo.Create(ctx, material); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domainerrors.ErrMaterialAlreadyExists
		}

		return nil, err
	}

	srv.log(ctx).Info("Material created", slog.Any("material_id", material.ID), slog.String("name", name))

	return material, nil
}

// GetMaterial returns one catalogue material.
func (srv *materialService) GetMaterial(ctx context.Context, materialID uuid.UUID) (*entity.Material, error) {
	material, err := srv.materialRepo.FindByID(ctx, materialID)
	if err != nil {
		return nil, notFoundAs(err, domainerrors.ErrMaterialNotFound)
	}

	return material, nil
}

// ListMaterials returns the catalogue in name order.
func (srv *materialService) ListMaterials(ctx context.Context) ([]*entity.Material, error) {
	materials, err := srv.materialRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list materials")
	}

	return materials, nil
}
