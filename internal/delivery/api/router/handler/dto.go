package handler

import (
	"strconv"
	"time"

	"pandore/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UserResponse is the public view of an account.
type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Picture    *string   `json:"picture"`
	Role       string    `json:"role"`
	ArtistName *string   `json:"artist_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// ArtistResponse is an artist as shown in the catalog, without private fields.
type ArtistResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ArtistName string    `json:"artist_name"`
	Picture    *string   `json:"picture"`
}

// TrackResponse is the public view of a track.
type TrackResponse struct {
	ID               uuid.UUID         `json:"id"`
	ArtistID         uuid.UUID         `json:"artist_id"`
	ArtistName       string            `json:"artist_name"`
	AlbumID          *uuid.UUID        `json:"album_id"`
	Title            string            `json:"title"`
	Price            int64             `json:"price"`
	Genre            string            `json:"genre"`
	Description      string            `json:"description"`
	Duration         int               `json:"duration"`
	PreviewStartTime int               `json:"preview_start_time"`
	FileURL          string            `json:"file_url"`
	PreviewURL       string            `json:"preview_url"`
	CoverURL         string            `json:"cover_url"`
	Status           string            `json:"status"`
	Mastering        *entity.Mastering `json:"mastering"`
	Splits           []entity.Split    `json:"splits"`
	LikesCount       int64             `json:"likes_count"`
	SalesCount       int64             `json:"sales_count"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// AlbumResponse is the public view of an album.
type AlbumResponse struct {
	ID          uuid.UUID   `json:"id"`
	ArtistID    uuid.UUID   `json:"artist_id"`
	ArtistName  string      `json:"artist_name"`
	Title       string      `json:"title"`
	Price       int64       `json:"price"`
	Genre       string      `json:"genre"`
	Description string      `json:"description"`
	CoverURL    string      `json:"cover_url"`
	ReleaseDate *time.Time  `json:"release_date"`
	TrackIDs    []uuid.UUID `json:"track_ids"`
	LikesCount  int64       `json:"likes_count"`
	SalesCount  int64       `json:"sales_count"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// PlaylistResponse is a playlist as seen by its owner.
type PlaylistResponse struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	IsPublic    bool        `json:"is_public"`
	TrackIDs    []uuid.UUID `json:"track_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// LikeResponse is one of the caller's likes.
type LikeResponse struct {
	ID        uuid.UUID `json:"id"`
	ItemType  string    `json:"item_type"`
	ItemID    uuid.UUID `json:"item_id"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *entity.User) *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Picture:    u.Picture,
		Role:       u.Role.String(),
		ArtistName: u.ArtistName,
		CreatedAt:  u.CreatedAt,
	}
}

func toArtistResponse(u *entity.User) *ArtistResponse {
	return &ArtistResponse{
		ID:         u.ID,
		Name:       u.Name,
		ArtistName: u.DisplayArtistName(),
		Picture:    u.Picture,
	}
}

func toTrackResponse(t *entity.Track) *TrackResponse {
	splits := t.Splits
	if splits == nil {
		splits = []entity.Split{}
	}

	return &TrackResponse{
		ID:               t.ID,
		ArtistID:         t.ArtistID,
		ArtistName:       t.ArtistName,
		AlbumID:          t.AlbumID,
		Title:            t.Title,
		Price:            t.Price,
		Genre:            t.Genre,
		Description:      t.Description,
		Duration:         t.Duration,
		PreviewStartTime: t.PreviewStartTime,
		FileURL:          t.FileURL,
		PreviewURL:       t.PreviewURL,
		CoverURL:         t.CoverURL,
		Status:           string(t.Status),
		Mastering:        t.Mastering,
		Splits:           splits,
		LikesCount:       t.LikesCount,
		SalesCount:       t.SalesCount,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func toTrackResponses(tracks []*entity.Track) []*TrackResponse {
	out := make([]*TrackResponse, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, toTrackResponse(t))
	}

	return out
}

func toAlbumResponse(a *entity.Album) *AlbumResponse {
	trackIDs := a.TrackIDs
	if trackIDs == nil {
		trackIDs = []uuid.UUID{}
	}

	return &AlbumResponse{
		ID:          a.ID,
		ArtistID:    a.ArtistID,
		ArtistName:  a.ArtistName,
		Title:       a.Title,
		Price:       a.Price,
		Genre:       a.Genre,
		Description: a.Description,
		CoverURL:    a.CoverURL,
		ReleaseDate: a.ReleaseDate,
		TrackIDs:    trackIDs,
		LikesCount:  a.LikesCount,
		SalesCount:  a.SalesCount,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toAlbumResponses(albums []*entity.Album) []*AlbumResponse {
	out := make([]*AlbumResponse, 0, len(albums))
	for _, a := range albums {
		out = append(out, toAlbumResponse(a))
	}

	return out
}

func toPlaylistResponse(p *entity.Playlist) *PlaylistResponse {
	trackIDs := p.TrackIDs
	if trackIDs == nil {
		trackIDs = []uuid.UUID{}
	}

	return &PlaylistResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		IsPublic:    p.IsPublic,
		TrackIDs:    trackIDs,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// queryInt reads an integer query parameter, falling back on absence or garbage.
func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func pathUUID(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}
