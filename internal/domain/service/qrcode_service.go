package service

import (
	"pandore/internal/domain/entity"

	"github.com/google/uuid"
)

// ShareQR is the payload encoded in a share QR code.
type ShareQR struct {
	Type     string          `json:"type"`
	ItemType entity.ItemType `json:"item_type"`
	ItemID   uuid.UUID       `json:"item_id"`
	URL      string          `json:"url"`
}

// QRCodeService generates and parses share QR codes for catalog items.
type QRCodeService interface {
	// GenerateShareQR returns a PNG encoding a link to the item.
	GenerateShareQR(itemType entity.ItemType, itemID uuid.UUID) ([]byte, error)

	// ParseShareQR decodes the payload of a share QR code.
	ParseShareQR(qrData string) (*ShareQR, error)
}
