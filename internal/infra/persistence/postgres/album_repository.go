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

var albumEditableColumns = []string{
	"title", "price", "genre", "description", "cover_url", "release_date", "updated_at",
}

type albumRepository struct {
	db *gorm.DB
}

// NewAlbumRepository is the constructor for albumRepository.
func NewAlbumRepository(db *gorm.DB) repository.AlbumRepository {
	return &albumRepository{db: db}
}

func (repo *albumRepository) Create(ctx context.Context, album *entity.Album) error {
	if album.ID == uuid.Nil {
		album.ID = uuid.New()
	}
	albumM := fromAlbumDomain(album)

	if err := repo.db.WithContext(ctx).Create(albumM).Error; err != nil {
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required album information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create album")
	}

	album.CreatedAt = albumM.CreatedAt
	album.UpdatedAt = albumM.UpdatedAt
	if album.TrackIDs == nil {
		album.TrackIDs = []uuid.UUID{}
	}

	return nil
}

func (repo *albumRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Album, error) {
	var albumM model.AlbumModel

	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&albumM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAlbumNotFound
		}

		return nil, errors.Wrap(err, "failed to find album by id")
	}

	albums, err := repo.withTrackIDs(ctx, []*model.AlbumModel{&albumM})
	if err != nil {
		return nil, err
	}

	return albums[0], nil
}

func (repo *albumRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Album, error) {
	if len(ids) == 0 {
		return []*entity.Album{}, nil
	}

	var albumModels []*model.AlbumModel
	if err := repo.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&albumModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find albums by ids")
	}

	return repo.withTrackIDs(ctx, albumModels)
}

func (repo *albumRepository) List(ctx context.Context, artistID *uuid.UUID, limit, skip int) ([]*entity.Album, error) {
	query := repo.db.WithContext(ctx).Model(&model.AlbumModel{}).Order("created_at DESC")

	if artistID != nil {
		query = query.Where("artist_id = ?", *artistID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if skip > 0 {
		query = query.Offset(skip)
	}

	var albumModels []*model.AlbumModel
	if err := query.Find(&albumModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list albums")
	}

	return repo.withTrackIDs(ctx, albumModels)
}

func (repo *albumRepository) Update(ctx context.Context, album *entity.Album) error {
	album.UpdatedAt = time.Now()
	albumM := fromAlbumDomain(album)

	result := repo.db.WithContext(ctx).
		Model(&model.AlbumModel{ID: album.ID}).
		Select(albumEditableColumns).
		Updates(albumM)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update album")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAlbumNotFound
	}

	return nil
}

// Delete removes the album and detaches its tracks, which stay in the catalog as singles.
func (repo *albumRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.TrackModel{}).
			Where("album_id = ?", id).
			UpdateColumn("album_id", nil).Error; err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to detach album tracks")
		}

		result := tx.Where("id = ?", id).Delete(&model.AlbumModel{})
		if result.Error != nil {
			return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete album")
		}
		if result.RowsAffected == 0 {
			return repository.ErrAlbumNotFound
		}

		return nil
	})
}

func (repo *albumRepository) IncrementLikes(ctx context.Context, id uuid.UUID, delta int) error {
	return incrementCounter(ctx, repo.db, &model.AlbumModel{}, id, "likes_count", delta, repository.ErrAlbumNotFound)
}

func (repo *albumRepository) IncrementSales(ctx context.Context, id uuid.UUID) error {
	return incrementCounter(ctx, repo.db, &model.AlbumModel{}, id, "sales_count", 1, repository.ErrAlbumNotFound)
}

// withTrackIDs maps albums to entities, filling each one's track ids from tracks.album_id in creation order.
func (repo *albumRepository) withTrackIDs(ctx context.Context, albumModels []*model.AlbumModel) ([]*entity.Album, error) {
	albums := make([]*entity.Album, 0, len(albumModels))
	if len(albumModels) == 0 {
		return albums, nil
	}

	albumIDs := make([]uuid.UUID, 0, len(albumModels))
	for _, albumM := range albumModels {
		albumIDs = append(albumIDs, albumM.ID)
	}

	var rows []struct {
		ID      uuid.UUID
		AlbumID uuid.UUID
	}
	if err := repo.db.WithContext(ctx).
		Model(&model.TrackModel{}).
		Select("id", "album_id").
		Where("album_id IN ?", albumIDs).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load album track ids")
	}

	trackIDs := make(map[uuid.UUID][]uuid.UUID, len(albumModels))
	for _, row := range rows {
		trackIDs[row.AlbumID] = append(trackIDs[row.AlbumID], row.ID)
	}

	for _, albumM := range albumModels {
		album := toAlbumDomain(albumM)
		if ids, ok := trackIDs[albumM.ID]; ok {
			album.TrackIDs = ids
		}
		albums = append(albums, album)
	}

	return albums, nil
}

// --- Mapper Functions ---

func toAlbumDomain(data *model.AlbumModel) *entity.Album {
	if data == nil {
		return nil
	}

	return &entity.Album{
		ID:          data.ID,
		ArtistID:    data.ArtistID,
		ArtistName:  data.ArtistName,
		Title:       data.Title,
		Price:       data.Price,
		Genre:       data.Genre,
		Description: data.Description,
		CoverURL:    data.CoverURL,
		ReleaseDate: data.ReleaseDate,
		TrackIDs:    []uuid.UUID{},
		LikesCount:  data.LikesCount,
		SalesCount:  data.SalesCount,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func fromAlbumDomain(data *entity.Album) *model.AlbumModel {
	if data == nil {
		return nil
	}

	return &model.AlbumModel{
		ID:          data.ID,
		ArtistID:    data.ArtistID,
		ArtistName:  data.ArtistName,
		Title:       data.Title,
		Price:       data.Price,
		Genre:       data.Genre,
		Description: data.Description,
		CoverURL:    data.CoverURL,
		ReleaseDate: data.ReleaseDate,
		LikesCount:  data.LikesCount,
		SalesCount:  data.SalesCount,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
