package postgres

import (
	"context"
	"time"

	"pandore/internal/domain/entity"
	domainerrors "pandore/internal/domain/errors"
	"pandore/internal/domain/repository"
	"pandore/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type playlistRepository struct {
	db *gorm.DB
}

// NewPlaylistRepository is the constructor for playlistRepository.
func NewPlaylistRepository(db *gorm.DB) repository.PlaylistRepository {
	return &playlistRepository{db: db}
}

func (repo *playlistRepository) Create(ctx context.Context, playlist *entity.Playlist) error {
	if playlist.ID == uuid.Nil {
		playlist.ID = uuid.New()
	}
	if playlist.TrackIDs == nil {
		playlist.TrackIDs = []uuid.UUID{}
	}
	playlistM := fromPlaylistDomain(playlist)

	if err := repo.db.WithContext(ctx).Create(playlistM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create playlist")
	}

	playlist.CreatedAt = playlistM.CreatedAt
	playlist.UpdatedAt = playlistM.UpdatedAt

	return nil
}

func (repo *playlistRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Playlist, error) {
	var playlistM model.PlaylistModel

	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&playlistM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPlaylistNotFound
		}

		return nil, errors.Wrap(err, "failed to find playlist by id")
	}

	return toPlaylistDomain(&playlistM), nil
}

func (repo *playlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Playlist, error) {
	var playlistModels []*model.PlaylistModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&playlistModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list playlists")
	}

	playlists := make([]*entity.Playlist, 0, len(playlistModels))
	for _, playlistM := range playlistModels {
		playlists = append(playlists, toPlaylistDomain(playlistM))
	}

	return playlists, nil
}

// UpdateTracks replaces the whole ordered track list.
func (repo *playlistRepository) UpdateTracks(ctx context.Context, id uuid.UUID, trackIDs []uuid.UUID) error {
	if trackIDs == nil {
		trackIDs = []uuid.UUID{}
	}

	result := repo.db.WithContext(ctx).
		Model(&model.PlaylistModel{ID: id}).
		Select("track_ids", "updated_at").
		Updates(&model.PlaylistModel{TrackIDs: trackIDs, UpdatedAt: time.Now()})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update playlist tracks")
	}
	if result.RowsAffected == 0 {
		return repository.ErrPlaylistNotFound
	}

	return nil
}

func (repo *playlistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PlaylistModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete playlist")
	}
	if result.RowsAffected == 0 {
		return repository.ErrPlaylistNotFound
	}

	return nil
}

func toPlaylistDomain(data *model.PlaylistModel) *entity.Playlist {
	trackIDs := data.TrackIDs
	if trackIDs == nil {
		trackIDs = []uuid.UUID{}
	}

	return &entity.Playlist{
		ID:          data.ID,
		UserID:      data.UserID,
		Name:        data.Name,
		Description: data.Description,
		IsPublic:    data.IsPublic,
		TrackIDs:    trackIDs,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func fromPlaylistDomain(data *entity.Playlist) *model.PlaylistModel {
	return &model.PlaylistModel{
		ID:          data.ID,
		UserID:      data.UserID,
		Name:        data.Name,
		Description: data.Description,
		IsPublic:    data.IsPublic,
		TrackIDs:    data.TrackIDs,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
