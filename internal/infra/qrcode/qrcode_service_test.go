package qrcode

import (
	"testing"

	"pandore/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "H"},
		{"Default error correction", 256, "invalid"},
		{"Default size", 0, "M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(tt.size, tt.errorCorrectionLevel, "https://pandore.test")
			assert.NotNil(t, service)
		})
	}
}

func TestQRCodeService_GenerateShareQR(t *testing.T) {
	service := NewQRCodeService(256, "M", "https://pandore.test/")

	for _, itemType := range []entity.ItemType{entity.ItemTypeTrack, entity.ItemTypeAlbum} {
		qrBytes, err := service.GenerateShareQR(itemType, uuid.New())
		require.NoError(t, err)
		require.Greater(t, len(qrBytes), 4)

		// PNG magic number
		assert.Equal(t, byte(0x89), qrBytes[0])
		assert.Equal(t, byte(0x50), qrBytes[1])
		assert.Equal(t, byte(0x4E), qrBytes[2])
		assert.Equal(t, byte(0x47), qrBytes[3])
	}
}

func TestQRCodeService_GenerateShareQR_InvalidType(t *testing.T) {
	service := NewQRCodeService(256, "M", "https://pandore.test")

	_, err := service.GenerateShareQR(entity.ItemType("artist"), uuid.New())
	assert.Error(t, err)
}

func TestQRCodeService_ParseShareQR(t *testing.T) {
	service := NewQRCodeService(256, "M", "https://pandore.test")
	itemID := uuid.New()

	payload := `{"type":"share","item_type":"album","item_id":"` + itemID.String() + `","url":"https://pandore.test/albums/` + itemID.String() + `"}`

	parsed, err := service.ParseShareQR(payload)
	require.NoError(t, err)
	assert.Equal(t, entity.ItemTypeAlbum, parsed.ItemType)
	assert.Equal(t, itemID, parsed.ItemID)
	assert.Equal(t, "https://pandore.test/albums/"+itemID.String(), parsed.URL)
}

func TestQRCodeService_ParseShareQR_Invalid(t *testing.T) {
	service := NewQRCodeService(256, "M", "")
	itemID := uuid.New().String()

	tests := []struct {
		name    string
		payload string
		errText string
	}{
		{"invalid json", "invalid json", "failed to unmarshal QR code data"},
		{"wrong type", `{"type":"subscription","item_type":"track","item_id":"` + itemID + `"}`, "invalid QR code type"},
		{"wrong item type", `{"type":"share","item_type":"artist","item_id":"` + itemID + `"}`, "invalid item type"},
		{"bad uuid", `{"type":"share","item_type":"track","item_id":"nope"}`, "failed to unmarshal QR code data"},
		{"missing id", `{"type":"share","item_type":"track"}`, "missing item id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ParseShareQR(tt.payload)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}
