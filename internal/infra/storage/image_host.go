// Package storage hosts collection images in a gocloud.dev blob bucket.
package storage

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"greencycle/config"
	"greencycle/internal/domain/entity"
	domainerrors "greencycle/internal/domain/errors"
	"greencycle/internal/domain/lifecycle"
	"greencycle/internal/domain/service"
	"greencycle/internal/util"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	// Bucket drivers selectable through storage.bucketUrl.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
)

const (
	keyPrefix       = "collections/"
	jpegContentType = "image/jpeg"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// NewBucket opens the configured bucket and closes it on shutdown.
func NewBucket(params Params) (*blob.Bucket, error) {
	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	bucket, err := blob.OpenBucket(ctx, params.Config.Storage.BucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", params.Config.Storage.BucketURL)
	}

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return errors.WithStack(bucket.Close())
		},
	})

	return bucket, nil
}

// blobImageHost implements service.ImageHost.
// Images are re-encoded as JPEG and fitted inside maxDimension before upload.
type blobImageHost struct {
	bucket        *blob.Bucket
	publicBaseURL string
	maxDimension  int
	jpegQuality   int
	logger        *slog.Logger
}

// NewImageHost wraps bucket as the collection image host.
func NewImageHost(bucket *blob.Bucket, cfg *config.Config, logger *slog.Logger) service.ImageHost {
	return &blobImageHost{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(cfg.Storage.PublicBaseURL, "/"),
		maxDimension:  cfg.Storage.MaxDimension,
		jpegQuality:   cfg.Storage.JPEGQuality,
		logger:        logger,
	}
}

// Upload normalises the image and writes it under a fresh key.
func (h *blobImageHost) Upload(ctx context.Context, name string, r io.Reader) (*entity.UploadedImage, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, domainerrors.ErrImageUploadFailed.WithDetails("arquivo não é uma imagem válida")
	}

	bounds := img.Bounds()
	if bounds.Dx() > h.maxDimension || bounds.Dy() > h.maxDimension {
		img = imaging.Fit(img, h.maxDimension, h.maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(h.jpegQuality)); err != nil {
		return nil, errors.Wrap(err, "failed to encode image")
	}

	key := keyPrefix + uuid.NewString() + ".jpg"
	if err := h.bucket.WriteAll(ctx, key, buf.Bytes(), &blob.WriterOptions{ContentType: jpegContentType}); err != nil {
		h.logger.Error("Image upload failed",
			slog.String("key", key),
			slog.String("original_name", name),
			slog.Any("error", err),
		)

		return nil, domainerrors.ErrImageUploadFailed.WithDetails("falha ao gravar a imagem")
	}

	h.logger.Debug("Image uploaded",
		slog.String("key", key),
		slog.String("size", util.FormatBytes(int64(buf.Len()))),
	)

	return &entity.UploadedImage{URL: h.publicURL(key), FileID: key}, nil
}

// Delete removes an uploaded image; a missing key is not an error.
func (h *blobImageHost) Delete(ctx context.Context, fileID string) error {
	if err := h.bucket.Delete(ctx, fileID); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil
		}

		return errors.Wrapf(err, "failed to delete image %s", fileID)
	}

	return nil
}

func (h *blobImageHost) publicURL(key string) string {
	if h.publicBaseURL == "" {
		return "/" + key
	}

	return h.publicBaseURL + "/" + key
}
