package main

import (
	"context"
	"log/slog"
	"os"

	"greencycle/config"
	"greencycle/internal/delivery"
	"greencycle/internal/delivery/api"
	"greencycle/internal/delivery/api/router/handler"
	"greencycle/internal/domain/service"
	"greencycle/internal/infra/auth"
	"greencycle/internal/infra/cache"
	"greencycle/internal/infra/geocoding"
	"greencycle/internal/infra/lock"
	logs "greencycle/internal/infra/log"
	"greencycle/internal/infra/persistence/postgres"
	"greencycle/internal/infra/pubsub"
	"greencycle/internal/infra/qrcode"
	"greencycle/internal/infra/storage"
	"greencycle/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		cache.NewRedisClient,
		storage.NewBucket,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewTransactionManager,
			postgres.NewCollectionRepository,
			postgres.NewRatingRepository,
			postgres.NewMaterialRepository,
			postgres.NewAddressRepository,
			postgres.NewClientRepository,
			postgres.NewPartnerRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasherFromConfig,
			cache.NewPendingCache,
			lock.NewActionGuard,
			geocoding.NewNominatimGeocoder,
			storage.NewImageHost,
			pubsub.NewEventPublisher,
			newQRCodeService,
		),
	)
}

// newQRCodeService creates the pickup QR code encoder from configuration
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewCollectionService,
			impl.NewImageService,
			impl.NewRatingService,
			impl.NewMaterialService,
			impl.NewAddressService,
			impl.NewAccountService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewCollectionHandler,
			handler.NewRatingHandler,
			handler.NewCatalogHandler,
			handler.NewAccountHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
