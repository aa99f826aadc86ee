package usecase

import (
	"context"
	"io"

	"greencycle/internal/domain/entity"

	"github.com/google/uuid"
)

// ImageUsecase manages the photos attached to a collection.
type ImageUsecase interface {
	AddImage(ctx context.Context, collectionID uuid.UUID, filename string, r io.Reader) (*entity.CollectionImage, error)
	DeleteImage(ctx context.Context, collectionID, imageID uuid.UUID) error
}
