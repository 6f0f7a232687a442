package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "pandore/internal/delivery/context"
	"pandore/internal/domain/entity"
	domainerrors "pandore/internal/domain/errors"
	"pandore/internal/domain/repository"
	"pandore/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type playlistService struct {
	playlistRepo repository.PlaylistRepository
	logger       *slog.Logger
}

// PlaylistServiceParams holds dependencies for PlaylistService, injected by Fx.
type PlaylistServiceParams struct {
	fx.In

	PlaylistRepo repository.PlaylistRepository
	Logger       *slog.Logger
}

// NewPlaylistService is the constructor for playlistService.
func NewPlaylistService(params PlaylistServiceParams) usecase.PlaylistUsecase {
	return &playlistService{
		playlistRepo: params.PlaylistRepo,
		logger:       params.Logger,
	}
}

func (srv *playlistService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *playlistService) CreatePlaylist(ctx context.Context, userID uuid.UUID, input *usecase.CreatePlaylistInput) (*entity.Playlist, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("name is required")
	}

	trackIDs := input.TrackIDs
	if trackIDs == nil {
		trackIDs = []uuid.UUID{}
	}

	playlist := &entity.Playlist{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: input.Description,
		IsPublic:    input.IsPublic,
		TrackIDs:    trackIDs,
	}

	if err := srv.playlistRepo.Create(ctx, playlist); err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Playlist created", slog.Any("playlistID", playlist.ID), slog.Any("userID", userID))

	return playlist, nil
}

func (srv *playlistService) ListPlaylists(ctx context.Context, userID uuid.UUID) ([]*entity.Playlist, error) {
	playlists, err := srv.playlistRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list playlists")
	}

	return playlists, nil
}

func (srv *playlistService) GetPlaylist(ctx context.Context, userID, id uuid.UUID) (*entity.Playlist, error) {
	playlist, err := srv.playlistRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrPlaylistNotFound) {
		return nil, domainerrors.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find playlist")
	}
	if !playlist.OwnedBy(userID) {
		return nil, domainerrors.ErrForbidden.WrapMessage("playlist belongs to another user")
	}

	return playlist, nil
}

// ReplaceTracks overwrites the ordered track list. Duplicates are kept.
func (srv *playlistService) ReplaceTracks(ctx context.Context, userID, id uuid.UUID, trackIDs []uuid.UUID) (*entity.Playlist, error) {
	playlist, err := srv.GetPlaylist(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if trackIDs == nil {
		trackIDs = []uuid.UUID{}
	}

	if err := srv.playlistRepo.UpdateTracks(ctx, id, trackIDs); err != nil {
		if errors.Is(err, repository.ErrPlaylistNotFound) {
			return nil, domainerrors.ErrPlaylistNotFound
		}

		return nil, err
	}

	playlist.TrackIDs = trackIDs

	return playlist, nil
}

func (srv *playlistService) DeletePlaylist(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := srv.GetPlaylist(ctx, userID, id); err != nil {
		return err
	}

	if err := srv.playlistRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPlaylistNotFound) {
			return domainerrors.ErrPlaylistNotFound
		}

		return err
	}

	return nil
}
