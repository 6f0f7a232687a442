package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "pandore/internal/delivery/context"
	"pandore/internal/domain/entity"
	domainerrors "pandore/internal/domain/errors"
	"pandore/internal/domain/repository"
	"pandore/internal/domain/service"
	"pandore/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

type trackService struct {
	trackRepo repository.TrackRepository
	albumRepo repository.AlbumRepository
	qrService service.QRCodeService
	logger    *slog.Logger
}

// TrackServiceParams holds dependencies for TrackService, injected by Fx.
type TrackServiceParams struct {
	fx.In

	TrackRepo repository.TrackRepository
	AlbumRepo repository.AlbumRepository
	QRService service.QRCodeService
	Logger    *slog.Logger
}

// NewTrackService is the constructor for trackService.
func NewTrackService(params TrackServiceParams) usecase.TrackUsecase {
	return &trackService{
		trackRepo: params.TrackRepo,
		albumRepo: params.AlbumRepo,
		qrService: params.QRService,
		logger:    params.Logger,
	}
}

func (srv *trackService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateTrack publishes a track under the artist's name.
func (srv *trackService) CreateTrack(ctx context.Context, artist *entity.User, input *usecase.CreateTrackInput) (*entity.Track, error) {
	if !artist.IsArtist() {
		return nil, domainerrors.ErrForbidden.WrapMessage("only artists can create tracks")
	}

	status := input.Status
	if status == "" {
		status = entity.TrackStatusPublished
	}
	if err := validateTrackFields(strings.TrimSpace(input.Title), input.Price, status, input.Splits); err != nil {
		return nil, err
	}

	if input.AlbumID != nil {
		if err := srv.checkAlbumOwnership(ctx, artist.ID, *input.AlbumID); err != nil {
			return nil, err
		}
	}

	track := &entity.Track{
		ID:               uuid.New(),
		ArtistID:         artist.ID,
		ArtistName:       artist.DisplayArtistName(),
		AlbumID:          input.AlbumID,
		Title:            strings.TrimSpace(input.Title),
		Price:            input.Price,
		Genre:            input.Genre,
		Description:      input.Description,
		Duration:         input.Duration,
		PreviewStartTime: input.PreviewStartTime,
		FileURL:          input.FileURL,
		PreviewURL:       input.PreviewURL,
		CoverURL:         input.CoverURL,
		Status:           status,
		Mastering:        input.Mastering,
		Splits:           input.Splits,
	}

	if err := srv.trackRepo.Create(ctx, track); err != nil {
		srv.log(ctx).Error("Failed to create track", slog.Any("artistID", artist.ID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Track created", slog.Any("trackID", track.ID), slog.Any("artistID", artist.ID))

	return track, nil
}

func (srv *trackService) ListTracks(ctx context.Context, input *usecase.ListInput) ([]*entity.Track, error) {
	limit, skip := normalizePaging(input.Limit, input.Skip)

	tracks, err := srv.trackRepo.List(ctx, repository.TrackFilter{Genre: input.Genre, Limit: limit, Skip: skip})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tracks")
	}

	return tracks, nil
}

func (srv *trackService) GetTrack(ctx context.Context, id uuid.UUID) (*entity.Track, error) {
	track, err := srv.trackRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrTrackNotFound) {
		return nil, domainerrors.ErrTrackNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find track")
	}

	return track, nil
}

// UpdateTrack applies a partial update. Only the owning artist may edit.
func (srv *trackService) UpdateTrack(ctx context.Context, userID, id uuid.UUID, input *usecase.UpdateTrackInput) (*entity.Track, error) {
	track, err := srv.GetTrack(ctx, id)
	if err != nil {
		return nil, err
	}
	if !track.OwnedBy(userID) {
		return nil, domainerrors.ErrForbidden.WrapMessage("only the owner can edit this track")
	}

	if input.AlbumID != nil && (track.AlbumID == nil || *track.AlbumID != *input.AlbumID) {
		if err := srv.checkAlbumOwnership(ctx, userID, *input.AlbumID); err != nil {
			return nil, err
		}
	}

	applyTrackUpdate(track, input)

	if err := validateTrackFields(track.Title, track.Price, track.Status, track.Splits); err != nil {
		return nil, err
	}

	if err := srv.trackRepo.Update(ctx, track); err != nil {
		if errors.Is(err, repository.ErrTrackNotFound) {
			return nil, domainerrors.ErrTrackNotFound
		}

		return nil, err
	}

	srv.log(ctx).Debug("Track updated", slog.Any("trackID", id))

	return track, nil
}

func (srv *trackService) DeleteTrack(ctx context.Context, userID, id uuid.UUID) error {
	track, err := srv.GetTrack(ctx, id)
	if err != nil {
		return err
	}
	if !track.OwnedBy(userID) {
		return domainerrors.ErrForbidden.WrapMessage("only the owner can delete this track")
	}

	if err := srv.trackRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrTrackNotFound) {
			return domainerrors.ErrTrackNotFound
		}

		return err
	}

	srv.log(ctx).Info("Track deleted", slog.Any("trackID", id))

	return nil
}

// ShareQR renders a QR code linking to the track.
func (srv *trackService) ShareQR(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if _, err := srv.GetTrack(ctx, id); err != nil {
		return nil, err
	}

	png, err := srv.qrService.GenerateShareQR(entity.ItemTypeTrack, id)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrInternalError, err.Error())
	}

	return png, nil
}

func (srv *trackService) checkAlbumOwnership(ctx context.Context, artistID, albumID uuid.UUID) error {
	album, err := srv.albumRepo.FindByID(ctx, albumID)
	if errors.Is(err, repository.ErrAlbumNotFound) {
		return domainerrors.ErrAlbumNotFound
	}
	if err != nil {
		return errors.Wrap(err, "failed to find album")
	}
	if !album.OwnedBy(artistID) {
		return domainerrors.ErrForbidden.WrapMessage("album belongs to another artist")
	}

	return nil
}

func applyTrackUpdate(track *entity.Track, input *usecase.UpdateTrackInput) {
	if input.Title != nil {
		track.Title = strings.TrimSpace(*input.Title)
	}
	if input.Price != nil {
		track.Price = *input.Price
	}
	if input.Genre != nil {
		track.Genre = *input.Genre
	}
	if input.Description != nil {
		track.Description = *input.Description
	}
	if input.Duration != nil {
		track.Duration = *input.Duration
	}
	if input.PreviewStartTime != nil {
		track.PreviewStartTime = *input.PreviewStartTime
	}
	if input.FileURL != nil {
		track.FileURL = *input.FileURL
	}
	if input.PreviewURL != nil {
		track.PreviewURL = *input.PreviewURL
	}
	if input.CoverURL != nil {
		track.CoverURL = *input.CoverURL
	}
	if input.AlbumID != nil {
		track.AlbumID = input.AlbumID
	}
	if input.Status != nil {
		track.Status = *input.Status
	}
	if input.Mastering != nil {
		track.Mastering = input.Mastering
	}
	if input.Splits != nil {
		track.Splits = input.Splits
	}
}

func validateTrackFields(title string, price int64, status entity.TrackStatus, splits []entity.Split) error {
	if title == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("title is required")
	}
	if price < 0 {
		return domainerrors.ErrValidationFailed.WrapMessage("price must not be negative")
	}
	if status != entity.TrackStatusDraft && status != entity.TrackStatusPublished {
		return domainerrors.ErrValidationFailed.WrapMessage("status must be draft or published")
	}

	var total float64
	for _, split := range splits {
		if split.Percent < 0 {
			return domainerrors.ErrValidationFailed.WrapMessage("split percent must not be negative")
		}
		total += split.Percent
	}
	if total > 100 {
		return domainerrors.ErrValidationFailed.WrapMessage("splits must not exceed 100 percent")
	}

	return nil
}

func normalizePaging(limit, skip int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if skip < 0 {
		skip = 0
	}

	return limit, skip
}
