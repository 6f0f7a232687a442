package entity

// ItemType identifies a purchasable or likeable catalog item.
type ItemType string

const (
	ItemTypeTrack ItemType = "track"
	ItemTypeAlbum ItemType = "album"
)

// String returns the string representation of the ItemType.
func (t ItemType) String() string {
	return string(t)
}

// IsValid checks if the ItemType is a valid value.
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeTrack, ItemTypeAlbum:
		return true
	default:
		return false
	}
}
