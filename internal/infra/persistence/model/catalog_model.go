package model

import (
	"time"

	"github.com/google/uuid"
)

// MasteringData is the JSON shape of a track's mastering credits.
type MasteringData struct {
	Engineer string `json:"engineer,omitempty"`
	Studio   string `json:"studio,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// SplitData is the JSON shape of one revenue split.
type SplitData struct {
	Party   string  `json:"party"`
	Role    string  `json:"role,omitempty"`
	Percent float64 `json:"percent"`
}

// TrackModel mirrors the 'tracks' table.
type TrackModel struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ArtistID         uuid.UUID      `gorm:"type:uuid;not null;index"`
	ArtistName       string         `gorm:"type:varchar(100);not null"`
	AlbumID          *uuid.UUID     `gorm:"type:uuid;index"`
	Title            string         `gorm:"type:varchar(200);not null"`
	Price            int64          `gorm:"not null"`
	Genre            string         `gorm:"type:varchar(50);index"`
	Description      string         `gorm:"type:text"`
	Duration         int            `gorm:"not null;default:0"`
	PreviewStartTime int            `gorm:"not null;default:0"`
	FileURL          string         `gorm:"type:text"`
	PreviewURL       string         `gorm:"type:text"`
	CoverURL         string         `gorm:"type:text"`
	Status           string         `gorm:"type:varchar(20);not null"`
	Mastering        *MasteringData `gorm:"type:jsonb;serializer:json"`
	Splits           []SplitData    `gorm:"type:jsonb;serializer:json"`
	LikesCount       int64          `gorm:"not null;default:0"`
	SalesCount       int64          `gorm:"not null;default:0"`
	CreatedAt        time.Time      `gorm:"index"`
	UpdatedAt        time.Time
}

// TableName explicitly sets the table name for GORM.
func (TrackModel) TableName() string {
	return "tracks"
}

// AlbumModel mirrors the 'albums' table. Track membership lives on tracks.album_id.
type AlbumModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ArtistID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ArtistName  string     `gorm:"type:varchar(100);not null"`
	Title       string     `gorm:"type:varchar(200);not null"`
	Price       int64      `gorm:"not null"`
	Genre       string     `gorm:"type:varchar(50)"`
	Description string     `gorm:"type:text"`
	CoverURL    string     `gorm:"type:text"`
	ReleaseDate *time.Time `gorm:"type:date"`
	LikesCount  int64      `gorm:"not null;default:0"`
	SalesCount  int64      `gorm:"not null;default:0"`
	CreatedAt   time.Time  `gorm:"index"`
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (AlbumModel) TableName() string {
	return "albums"
}

// PlaylistModel mirrors the 'playlists' table. Track ids keep their order and duplicates.
type PlaylistModel struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID   `gorm:"type:uuid;not null;index"`
	Name        string      `gorm:"type:varchar(200);not null"`
	Description string      `gorm:"type:text"`
	IsPublic    bool        `gorm:"not null;default:false"`
	TrackIDs    []uuid.UUID `gorm:"type:jsonb;serializer:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (PlaylistModel) TableName() string {
	return "playlists"
}

// LikeModel mirrors the 'likes' table. One row per user and item.
type LikeModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_item"`
	ItemType  string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_likes_user_item"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_item"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (LikeModel) TableName() string {
	return "likes"
}
