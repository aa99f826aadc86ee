package impl

import (
	"context"
	"io"
	"log/slog"
	"time"

	deliverycontext "greencycle/internal/delivery/context"
	"greencycle/internal/domain/entity"
	domainerrors "greencycle/internal/domain/errors"
	"greencycle/internal/domain/repository"
	"greencycle/internal/domain/service"
	"greencycle/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type imageService struct {
	collectionRepo repository.CollectionRepository
	imageHost      service.ImageHost
	logger         *slog.Logger
	now            func() time.Time
}

// ImageServiceParams holds dependencies for ImageService, injected by Fx.
type ImageServiceParams struct {
	fx.In

	CollectionRepo repository.CollectionRepository
	ImageHost      service.ImageHost
	Logger         *slog.Logger
}

// NewImageService creates a new collection image service.
func NewImageService(params ImageServiceParams) usecase.ImageUsecase {
	return &imageService{
		collectionRepo: params.CollectionRepo,
		imageHost:      params.ImageHost,
		logger:         params.Logger,
		now:            time.Now,
	}
}

func (srv *imageService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// AddImage uploads the image and records it. A failed insert removes the uploaded blob.
func (srv *imageService) AddImage(ctx context.Context, collectionID uuid.UUID, filename string, r io.Reader) (*entity.CollectionImage, error) {
	if _, err := findCollection(ctx, srv.collectionRepo, collectionID); err != nil {
		return nil, err
	}

	uploaded, err := srv.imageHost.Upload(ctx, filename, r)
	if err != nil {
		srv.log(ctx).Warn("Image upload failed",
			slog.Any("collection_id", collectionID),
			slog.Any("error", err))

		return nil, domainerrors.ErrImageUploadFailed.WithDetails(err.Error())
	}

	image := &entity.CollectionImage{
		ID:           uuid.New(),
		CollectionID: collectionID,
		URL:          uploaded.URL,
		FileID:       uploaded.FileID,
		CreatedAt:    srv.now(),
	}
	if err := srv.collectionRepo.AddImage(ctx, image); err != nil {
		if delErr := srv.imageHost.Delete(ctx, uploaded.FileID); delErr != nil {
			srv.log(ctx).Error("Failed to remove orphaned image",
				slog.String("file_id", uploaded.FileID),
				slog.Any("error", delErr))
		}

		if errors.Is(err, repository.ErrForeignKey) {
			return nil, domainerrors.ErrCollectionNotFound
		}

		return nil, err
	}

	srv.log(ctx).Info("Collection image added",
		slog.Any("collection_id", collectionID),
		slog.Any("image_id", image.ID))

	return image, nil
}

// DeleteImage removes the image record first, then its blob.
func (srv *imageService) DeleteImage(ctx context.Context, collectionID, imageID uuid.UUID) error {
	image, err := srv.collectionRepo.FindImage(ctx, collectionID, imageID)
	if err != nil {
		return notFoundAs(err, domainerrors.ErrImageNotFound)
	}

	if err := srv.collectionRepo.DeleteImage(ctx, image.ID); err != nil {
		return notFoundAs(err, domainerrors.ErrImageNotFound)
	}

	if err := srv.imageHost.Delete(ctx, image.FileID); err != nil {
		srv.log(ctx).Warn("Failed to delete image blob",
			slog.String("file_id", image.FileID),
			slog.Any("error", err))
	}

	return nil
}
