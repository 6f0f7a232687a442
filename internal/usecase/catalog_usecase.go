package usecase

import (
	"context"
	"time"

	"pandore/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateTrackInput defines the data of a new track.
type CreateTrackInput struct {
	Title            string
	Price            int64
	Genre            string
	Description      string
	Duration         int
	PreviewStartTime int
	FileURL          string
	PreviewURL       string
	CoverURL         string
	AlbumID          *uuid.UUID
	Status           entity.TrackStatus
	Mastering        *entity.Mastering
	Splits           []entity.Split
}

// UpdateTrackInput is a partial update; nil fields are left unchanged.
type UpdateTrackInput struct {
	Title            *string
	Price            *int64
	Genre            *string
	Description      *string
	Duration         *int
	PreviewStartTime *int
	FileURL          *string
	PreviewURL       *string
	CoverURL         *string
	AlbumID          *uuid.UUID
	Status           *entity.TrackStatus
	Mastering        *entity.Mastering
	Splits           []entity.Split
}

// ListInput pages a public listing.
type ListInput struct {
	Genre string
	Limit int
	Skip  int
}

// TrackUsecase manages tracks.
type TrackUsecase interface {
	CreateTrack(ctx context.Context, artist *entity.User, input *CreateTrackInput) (*entity.Track, error)
	ListTracks(ctx context.Context, input *ListInput) ([]*entity.Track, error)
	GetTrack(ctx context.Context, id uuid.UUID) (*entity.Track, error)
	UpdateTrack(ctx context.Context, userID, id uuid.UUID, input *UpdateTrackInput) (*entity.Track, error)
	DeleteTrack(ctx context.Context, userID, id uuid.UUID) error
	ShareQR(ctx context.Context, id uuid.UUID) ([]byte, error)
}

// CreateAlbumInput defines the data of a new album.
type CreateAlbumInput struct {
	Title       string
	Price       int64
	Genre       string
	Description string
	CoverURL    string
	ReleaseDate *time.Time
}

// UpdateAlbumInput is a partial update; nil fields are left unchanged.
type UpdateAlbumInput struct {
	Title       *string
	Price       *int64
	Genre       *string
	Description *string
	CoverURL    *string
	ReleaseDate *time.Time
}

// AlbumUsecase manages albums.
type AlbumUsecase interface {
	CreateAlbum(ctx context.Context, artist *entity.User, input *CreateAlbumInput) (*entity.Album, error)
	ListAlbums(ctx context.Context, input *ListInput) ([]*entity.Album, error)
	GetAlbum(ctx context.Context, id uuid.UUID) (*entity.Album, error)
	UpdateAlbum(ctx context.Context, userID, id uuid.UUID, input *UpdateAlbumInput) (*entity.Album, error)
	DeleteAlbum(ctx context.Context, userID, id uuid.UUID) error
	ShareQR(ctx context.Context, id uuid.UUID) ([]byte, error)
}

// ArtistDetail is an artist with their catalog.
type ArtistDetail struct {
	Artist *entity.User
	Tracks []*entity.Track
	Albums []*entity.Album
}

// ArtistUsecase exposes artist profiles.
type ArtistUsecase interface {
	ListArtists(ctx context.Context, limit int) ([]*entity.User, error)
	GetArtist(ctx context.Context, id uuid.UUID) (*ArtistDetail, error)
}

// CreatePlaylistInput defines the data of a new playlist.
type CreatePlaylistInput struct {
	Name        string
	Description string
	IsPublic    bool
	TrackIDs    []uuid.UUID
}

// PlaylistUsecase manages a user's playlists. Every operation but create is owner only.
type PlaylistUsecase interface {
	CreatePlaylist(ctx context.Context, userID uuid.UUID, input *CreatePlaylistInput) (*entity.Playlist, error)
	ListPlaylists(ctx context.Context, userID uuid.UUID) ([]*entity.Playlist, error)
	GetPlaylist(ctx context.Context, userID, id uuid.UUID) (*entity.Playlist, error)
	ReplaceTracks(ctx context.Context, userID, id uuid.UUID, trackIDs []uuid.UUID) (*entity.Playlist, error)
	DeletePlaylist(ctx context.Context, userID, id uuid.UUID) error
}

// LikeOutput reports the like state after a like or unlike.
type LikeOutput struct {
	Message string
	Liked   bool
}

// LikeUsecase manages likes and keeps item counters exact.
type LikeUsecase interface {
	Like(ctx context.Context, userID uuid.UUID, itemType entity.ItemType, itemID uuid.UUID) (*LikeOutput, error)
	Unlike(ctx context.Context, userID uuid.UUID, itemType entity.ItemType, itemID uuid.UUID) (*LikeOutput, error)
	ListLikes(ctx context.Context, userID uuid.UUID, itemType *entity.ItemType) ([]*entity.Like, error)
}
