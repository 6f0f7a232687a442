package entity

import (
	"time"

	"github.com/google/uuid"
)

// TrackStatus is the publication state of a track.
type TrackStatus string

const (
	TrackStatusDraft     TrackStatus = "draft"
	TrackStatusPublished TrackStatus = "published"
)

// Mastering describes who mastered a track and where.
type Mastering struct {
	Engineer string `json:"engineer,omitempty"`
	Studio   string `json:"studio,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Split is one party's share of the revenue of a track.
type Split struct {
	Party   string  `json:"party"`
	Role    string  `json:"role,omitempty"`
	Percent float64 `json:"percent"`
}

// Track is a single piece of music owned by one artist.
type Track struct {
	ID               uuid.UUID
	ArtistID         uuid.UUID
	ArtistName       string
	AlbumID          *uuid.UUID
	Title            string
	Price            int64 // minor currency units
	Genre            string
	Description      string
	Duration         int
	PreviewStartTime int
	FileURL          string
	PreviewURL       string
	CoverURL         string
	Status           TrackStatus
	Mastering        *Mastering
	Splits           []Split
	LikesCount       int64
	SalesCount       int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OwnedBy reports whether the given user owns the track.
func (t *Track) OwnedBy(userID uuid.UUID) bool {
	return t.ArtistID == userID
}

// Album groups tracks of one artist under a single price.
type Album struct {
	ID          uuid.UUID
	ArtistID    uuid.UUID
	ArtistName  string
	Title       string
	Price       int64
	Genre       string
	Description string
	CoverURL    string
	ReleaseDate *time.Time
	TrackIDs    []uuid.UUID // derived from tracks pointing at the album
	LikesCount  int64
	SalesCount  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy reports whether the given user owns the album.
func (a *Album) OwnedBy(userID uuid.UUID) bool {
	return a.ArtistID == userID
}

// Playlist is an ordered list of track ids owned by one user. Duplicates are allowed.
type Playlist struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Description string
	IsPublic    bool
	TrackIDs    []uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy reports whether the given user owns the playlist.
func (p *Playlist) OwnedBy(userID uuid.UUID) bool {
	return p.UserID == userID
}

// Like links a user to a liked track or album.
type Like struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ItemType  ItemType
	ItemID    uuid.UUID
	CreatedAt time.Time
}
