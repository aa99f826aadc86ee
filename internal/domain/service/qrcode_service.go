package service

import (
	"github.com/google/uuid"
)

// QRCodeService defines the interface for QR code generation and parsing services
type QRCodeService interface {
	// GeneratePickupQR generates a PNG QR code identifying a collection for pickup.
	GeneratePickupQR(collectionID uuid.UUID) ([]byte, error)

	// ParsePickupQR parses QR code data and returns the collection ID
	ParsePickupQR(qrData string) (uuid.UUID, error)
}
