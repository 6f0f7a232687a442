package impl

import (
	"context"
	"log/slog"

	"pandore/internal/domain/entity"
	domainerrors "pandore/internal/domain/errors"
	"pandore/internal/domain/repository"
	"pandore/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type artistService struct {
	userRepo  repository.UserRepository
	trackRepo repository.TrackRepository
	albumRepo repository.AlbumRepository
	logger    *slog.Logger
}

// ArtistServiceParams holds dependencies for ArtistService, injected by Fx.
type ArtistServiceParams struct {
	fx.In

	UserRepo  repository.UserRepository
	TrackRepo repository.TrackRepository
	AlbumRepo repository.AlbumRepository
	Logger    *slog.Logger
}

// NewArtistService is the constructor for artistService.
func NewArtistService(params ArtistServiceParams) usecase.ArtistUsecase {
	return &artistService{
		userRepo:  params.UserRepo,
		trackRepo: params.TrackRepo,
		albumRepo: params.AlbumRepo,
		logger:    params.Logger,
	}
}

func (srv *artistService) ListArtists(ctx context.Context, limit int) ([]*entity.User, error) {
	limit, _ = normalizePaging(limit, 0)

	artists, err := srv.userRepo.ListArtists(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list artists")
	}

	return artists, nil
}

// GetArtist returns the artist with their full catalog.
func (srv *artistService) GetArtist(ctx context.Context, id uuid.UUID) (*usecase.ArtistDetail, error) {
	artist, err := srv.userRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrArtistNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find artist")
	}
	if !artist.IsArtist() {
		return nil, domainerrors.ErrArtistNotFound
	}

	tracks, err := srv.trackRepo.List(ctx, repository.TrackFilter{ArtistID: &id})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list artist tracks")
	}

	albums, err := srv.albumRepo.List(ctx, &id, 0, 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list artist albums")
	}

	return &usecase.ArtistDetail{Artist: artist, Tracks: tracks, Albums: albums}, nil
}
