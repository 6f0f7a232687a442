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

// trackEditableColumns are the columns an owner may change after creation.
var trackEditableColumns = []string{
	"album_id", "title", "price", "genre", "description", "duration", "preview_start_time",
	"file_url", "preview_url", "cover_url", "status", "mastering", "splits", "updated_at",
}

type trackRepository struct {
	db *gorm.DB
}

// NewTrackRepository is the constructor for trackRepository.
func NewTrackRepository(db *gorm.DB) repository.TrackRepository {
	return &trackRepository{db: db}
}

func (repo *trackRepository) Create(ctx context.Context, track *entity.Track) error {
	if track.ID == uuid.Nil {
		track.ID = uuid.New()
	}
	trackM := fromTrackDomain(track)

	if err := repo.db.WithContext(ctx).Create(trackM).Error; err != nil {
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required track information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create track")
	}

	track.CreatedAt = trackM.CreatedAt
	track.UpdatedAt = trackM.UpdatedAt

	return nil
}

func (repo *trackRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Track, error) {
	var trackM model.TrackModel

	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&trackM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTrackNotFound
		}

		return nil, errors.Wrap(err, "failed to find track by id")
	}

	return toTrackDomain(&trackM), nil
}

// FindByIDs returns the tracks that exist among ids, newest first. Missing ids are skipped.
func (repo *trackRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Track, error) {
	if len(ids) == 0 {
		return []*entity.Track{}, nil
	}

	var trackModels []*model.TrackModel
	if err := repo.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&trackModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find tracks by ids")
	}

	return toTrackDomains(trackModels), nil
}

func (repo *trackRepository) List(ctx context.Context, filter repository.TrackFilter) ([]*entity.Track, error) {
	query := repo.db.WithContext(ctx).Model(&model.TrackModel{})

	if filter.Genre != "" {
		query = query.Where("genre = ?", filter.Genre)
	}
	if filter.ArtistID != nil {
		query = query.Where("artist_id = ?", *filter.ArtistID)
	}
	if filter.AlbumID != nil {
		query = query.Where("album_id = ?", *filter.AlbumID).Order("created_at ASC")
	} else {
		query = query.Order("created_at DESC")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Skip > 0 {
		query = query.Offset(filter.Skip)
	}

	var trackModels []*model.TrackModel
	if err := query.Find(&trackModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list tracks")
	}

	return toTrackDomains(trackModels), nil
}

func (repo *trackRepository) Update(ctx context.Context, track *entity.Track) error {
	track.UpdatedAt = time.Now()
	trackM := fromTrackDomain(track)

	result := repo.db.WithContext(ctx).
		Model(&model.TrackModel{ID: track.ID}).
		Select(trackEditableColumns).
		Updates(trackM)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update track")
	}
	if result.RowsAffected == 0 {
		return repository.ErrTrackNotFound
	}

	return nil
}

func (repo *trackRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.TrackModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete track")
	}
	if result.RowsAffected == 0 {
		return repository.ErrTrackNotFound
	}

	return nil
}

func (repo *trackRepository) IncrementLikes(ctx context.Context, id uuid.UUID, delta int) error {
	return incrementCounter(ctx, repo.db, &model.TrackModel{}, id, "likes_count", delta, repository.ErrTrackNotFound)
}

func (repo *trackRepository) IncrementSales(ctx context.Context, id uuid.UUID) error {
	return incrementCounter(ctx, repo.db, &model.TrackModel{}, id, "sales_count", 1, repository.ErrTrackNotFound)
}

// incrementCounter adds delta to a counter column in a single UPDATE so concurrent callers never lose updates.
func incrementCounter(ctx context.Context, db *gorm.DB, table any, id uuid.UUID, column string, delta int, notFound error) error {
	result := db.WithContext(ctx).
		Model(table).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update "+column)
	}
	if result.RowsAffected == 0 {
		return notFound
	}

	return nil
}

// --- Mapper Functions ---

func toTrackDomains(trackModels []*model.TrackModel) []*entity.Track {
	tracks := make([]*entity.Track, 0, len(trackModels))
	for _, trackM := range trackModels {
		tracks = append(tracks, toTrackDomain(trackM))
	}

	return tracks
}

func toTrackDomain(data *model.TrackModel) *entity.Track {
	if data == nil {
		return nil
	}

	track := &entity.Track{
		ID:               data.ID,
		ArtistID:         data.ArtistID,
		ArtistName:       data.ArtistName,
		AlbumID:          data.AlbumID,
		Title:            data.Title,
		Price:            data.Price,
		Genre:            data.Genre,
		Description:      data.Description,
		Duration:         data.Duration,
		PreviewStartTime: data.PreviewStartTime,
		FileURL:          data.FileURL,
		PreviewURL:       data.PreviewURL,
		CoverURL:         data.CoverURL,
		Status:           entity.TrackStatus(data.Status),
		LikesCount:       data.LikesCount,
		SalesCount:       data.SalesCount,
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}

	if data.Mastering != nil {
		track.Mastering = &entity.Mastering{
			Engineer: data.Mastering.Engineer,
			Studio:   data.Mastering.Studio,
			Notes:    data.Mastering.Notes,
		}
	}
	if len(data.Splits) > 0 {
		track.Splits = make([]entity.Split, 0, len(data.Splits))
		for _, split := range data.Splits {
			track.Splits = append(track.Splits, entity.Split{Party: split.Party, Role: split.Role, Percent: split.Percent})
		}
	}

	return track
}

func fromTrackDomain(data *entity.Track) *model.TrackModel {
	if data == nil {
		return nil
	}

	trackM := &model.TrackModel{
		ID:               data.ID,
		ArtistID:         data.ArtistID,
		ArtistName:       data.ArtistName,
		AlbumID:          data.AlbumID,
		Title:            data.Title,
		Price:            data.Price,
		Genre:            data.Genre,
		Description:      data.Description,
		Duration:         data.Duration,
		PreviewStartTime: data.PreviewStartTime,
		FileURL:          data.FileURL,
		PreviewURL:       data.PreviewURL,
		CoverURL:         data.CoverURL,
		Status:           string(data.Status),
		LikesCount:       data.LikesCount,
		SalesCount:       data.SalesCount,
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}

	if data.Mastering != nil {
		trackM.Mastering = &model.MasteringData{
			Engineer: data.Mastering.Engineer,
			Studio:   data.Mastering.Studio,
			Notes:    data.Mastering.Notes,
		}
	}
	if len(data.Splits) > 0 {
		trackM.Splits = make([]model.SplitData, 0, len(data.Splits))
		for _, split := range data.Splits {
			trackM.Splits = append(trackM.Splits, model.SplitData{Party: split.Party, Role: split.Role, Percent: split.Percent})
		}
	}

	return trackM
}
