package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"greencycle/config"
	deliverycontext "greencycle/internal/delivery/context"
	"greencycle/internal/domain/entity"
	domainerrors "greencycle/internal/domain/errors"
	"greencycle/internal/domain/repository"
	"greencycle/internal/domain/service"
	"greencycle/internal/usecase"
	"greencycle/internal/util"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"go.uber.org/fx"
)

type addressService struct {
	addressRepo repository.AddressRepository
	geocoder    service.Geocoder
	fallback    orb.Point
	logger      *slog.Logger
	now         func() time.Time
}

// AddressServiceParams holds dependencies for AddressService, injected by Fx.
type AddressServiceParams struct {
	fx.In

	AddressRepo repository.AddressRepository
	Geocoder    service.Geocoder
	Config      *config.Config
	Logger      *slog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(params AddressServiceParams) usecase.AddressUsecase {
	var fallback orb.Point
	if params.Config != nil && params.Config.Geocoding != nil {
		fallback = orb.Point{params.Config.Geocoding.FallbackLongitude, params.Config.Geocoding.FallbackLatitude}
	}

	return &addressService{
		addressRepo: params.AddressRepo,
		geocoder:    params.Geocoder,
		fallback:    fallback,
		logger:      params.Logger,
		now:         time.Now,
	}
}

func (srv *addressService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateAddress stores the address with its geocoded position, or the fallback position.
func (srv *addressService) CreateAddress(ctx context.Context, input *usecase.AddressInput) (*entity.Address, error) {
	now := srv.now()
	address := &entity.Address{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyAddressInput(address, input); err != nil {
		return nil, err
	}

	point, ok := srv.locate(ctx, address)
	if !ok {
		point = srv.fallback
	}
	address.SetLocation(point)

	if err := srv.addressRepo.Create(ctx, address); err != nil {
		return nil, err
	}

	return address, nil
}

// GetAddress returns one address.
func (srv *addressService) GetAddress(ctx context.Context, addressID uuid.UUID) (*entity.Address, error) {
	address, err := srv.addressRepo.FindByID(ctx, addressID)
	if err != nil {
		return nil, notFoundAs(err, domainerrors.ErrAddressNotFound)
	}

	return address, nil
}

// UpdateAddress replaces the address fields. A failed re-geocode keeps the stored position.
func (srv *addressService) UpdateAddress(ctx context.Context, addressID uuid.UUID, input *usecase.AddressInput) (*entity.Address, error) {
	current, err := srv.GetAddress(ctx, addressID)
	if err != nil {
		return nil, err
	}

	updated := *current
	if err := applyAddressInput(&updated, input); err != nil {
		return nil, err
	}
	updated.UpdatedAt = srv.now()

	if !updated.SameLocation(current) {
		if point, ok := srv.locate(ctx, &updated); ok {
			updated.SetLocation(point)
		}
	}

	if err := srv.addressRepo.Update(ctx, &updated); err != nil {
		return nil, notFoundAs(err, domainerrors.ErrAddressNotFound)
	}

	return &updated, nil
}

// locate geocodes the full address. ok is false when the geocoder has no usable answer.
func (srv *addressService) locate(ctx context.Context, address *entity.Address) (orb.Point, bool) {
	point, err := srv.geocoder.Geocode(ctx, address.FullAddress())
	if err != nil {
		srv.log(ctx).Warn("Geocoding failed",
			slog.Any("address_id", address.ID),
			slog.Any("error", err))

		return orb.Point{}, false
	}

	return point, true
}

func applyAddressInput(address *entity.Address, input *usecase.AddressInput) error {
	cep, err := util.NormalizeCEP(input.CEP)
	if err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}
	if input.Number <= 0 {
		return domainerrors.ErrValidationFailed.WithDetails("número deve ser maior que zero")
	}

	address.CEP = cep
	address.State = strings.ToUpper(strings.TrimSpace(input.State))
	address.City = strings.TrimSpace(input.City)
	address.Neighborhood = strings.TrimSpace(input.Neighborhood)
	address.Street = strings.TrimSpace(input.Street)
	address.Number = input.Number
	address.Complement = strings.TrimSpace(input.Complement)

	return nil
}
