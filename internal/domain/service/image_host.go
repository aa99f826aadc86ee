package service

import (
	"context"
	"io"

	"greencycle/internal/domain/entity"
)

// ImageHost stores collection images outside the database.
type ImageHost interface {
	// Upload stores the image read from r and returns where it lives.
	Upload(ctx context.Context, name string, r io.Reader) (*entity.UploadedImage, error)

	// Delete removes a previously uploaded image.
	Delete(ctx context.Context, fileID string) error
}
