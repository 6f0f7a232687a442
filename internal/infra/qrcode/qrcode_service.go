package qrcode

import (
	"encoding/json"
	"fmt"
	"strings"

	"pandore/internal/domain/entity"
	"pandore/internal/domain/service"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const shareType = "share"

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
	baseURL              string
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel, baseURL string) service.QRCodeService {
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

	if size <= 0 {
		size = 256
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
		baseURL:              strings.TrimRight(baseURL, "/"),
	}
}

// GenerateShareQR generates a PNG QR code pointing at a track or album page
func (s *qrcodeService) GenerateShareQR(itemType entity.ItemType, itemID uuid.UUID) ([]byte, error) {
	if !itemType.IsValid() {
		return nil, fmt.Errorf("invalid item type: %s", itemType)
	}

	data := service.ShareQR{
		Type:     shareType,
		ItemType: itemType,
		ItemID:   itemID,
		URL:      fmt.Sprintf("%s/%ss/%s", s.baseURL, itemType, itemID),
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

// ParseShareQR parses the JSON payload scanned from a share QR code
func (s *qrcodeService) ParseShareQR(qrData string) (*service.ShareQR, error) {
	var data service.ShareQR
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal QR code data: %w", err)
	}

	if data.Type != shareType {
		return nil, fmt.Errorf("invalid QR code type: %s", data.Type)
	}

	if !data.ItemType.IsValid() {
		return nil, fmt.Errorf("invalid item type: %s", data.ItemType)
	}

	if data.ItemID == uuid.Nil {
		return nil, fmt.Errorf("missing item id")
	}

	return &data, nil
}
