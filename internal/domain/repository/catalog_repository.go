package repository

import (
	"context"

	"pandore/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for catalog persistence.
var (
	ErrTrackNotFound    = errors.New("track not found")
	ErrAlbumNotFound    = errors.New("album not found")
	ErrPlaylistNotFound = errors.New("playlist not found")
)

// TrackFilter narrows a track listing.
type TrackFilter struct {
	Genre    string
	ArtistID *uuid.UUID
	AlbumID  *uuid.UUID
	Limit    int
	Skip     int
}

// TrackRepository persists tracks.
type TrackRepository interface {
	Create(ctx context.Context, track *entity.Track) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Track, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Track, error)
	List(ctx context.Context, filter TrackFilter) ([]*entity.Track, error)
	Update(ctx context.Context, track *entity.Track) error
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementLikes adds delta to likes_count atomically.
	IncrementLikes(ctx context.Context, id uuid.UUID, delta int) error
	// IncrementSales adds one to sales_count atomically.
	IncrementSales(ctx context.Context, id uuid.UUID) error
}

// AlbumRepository persists albums. Loaded albums carry the ids of their tracks.
type AlbumRepository interface {
	Create(ctx context.Context, album *entity.Album) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Album, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Album, error)
	List(ctx context.Context, artistID *uuid.UUID, limit, skip int) ([]*entity.Album, error)
	Update(ctx context.Context, album *entity.Album) error
	Delete(ctx context.Context, id uuid.UUID) error

	IncrementLikes(ctx context.Context, id uuid.UUID, delta int) error
	IncrementSales(ctx context.Context, id uuid.UUID) error
}

// PlaylistRepository persists playlists.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *entity.Playlist) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Playlist, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Playlist, error)
	UpdateTracks(ctx context.Context, id uuid.UUID, trackIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// LikeRepository persists likes. Insert and Delete report whether a row actually changed,
// which is what keeps the counters on the liked items exact.
type LikeRepository interface {
	// InsertIfAbsent returns true only when a new like row was written.
	InsertIfAbsent(ctx context.Context, like *entity.Like) (bool, error)
	// Delete returns true only when a like row was removed.
	Delete(ctx context.Context, userID uuid.UUID, itemType entity.ItemType, itemID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, itemType *entity.ItemType) ([]*entity.Like, error)
}
