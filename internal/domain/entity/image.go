package entity

import (
	"time"

	"github.com/google/uuid"
)

// CollectionImage is a photo attached to a collection and stored on the image host.
type CollectionImage struct {
	ID           uuid.UUID
	CollectionID uuid.UUID
	URL          string
	FileID       string // Image-host key used for deletion.
	CreatedAt    time.Time
}

// UploadedImage is what the image host returns for a stored blob.
type UploadedImage struct {
	URL    string
	FileID string
}
