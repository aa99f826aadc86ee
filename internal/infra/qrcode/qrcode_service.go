package qrcode

import (
	"encoding/json"
	"fmt"

	"greencycle/internal/domain/service"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// pickupType marks QR payloads that identify a collection for pickup.
const pickupType = "pickup"

// QRCodeData represents the QR code data structure
type QRCodeData struct {
	CollectionID string `json:"collection_id"`
	Type         string `json:"type"`
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	// Set error correction level
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// GeneratePickupQR encodes the collection id as a PNG QR code
func (s *qrcodeService) GeneratePickupQR(collectionID uuid.UUID) ([]byte, error) {
	data := QRCodeData{
		CollectionID: collectionID.String(),
		Type:         pickupType,
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal QR code data: %w", err)
	}

	qrCode, err := qrcode.New(string(jsonData), s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}

// ParsePickupQR parses QR code data and returns the collection ID
func (s *qrcodeService) ParsePickupQR(qrData string) (uuid.UUID, error) {
	var data QRCodeData
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return uuid.Nil, fmt.Errorf("failed to unmarshal QR code data: %w", err)
	}

	if data.Type != pickupType {
		return uuid.Nil, fmt.Errorf("invalid QR code type: %s", data.Type)
	}

	collectionID, err := uuid.Parse(data.CollectionID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse collection ID: %w", err)
	}

	return collectionID, nil
}
