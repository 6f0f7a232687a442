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

type albumService struct {
	albumRepo repository.AlbumRepository
	qrService service.QRCodeService
	logger    *slog.Logger
}

// AlbumServiceParams holds dependencies for AlbumService, injected by Fx.
type AlbumServiceParams struct {
	fx.In

	AlbumRepo repository.AlbumRepository
	QRService service.QRCodeService
	Logger    *slog.Logger
}

// NewAlbumService is the constructor for albumService.
func NewAlbumService(params AlbumServiceParams) usecase.AlbumUsecase {
	return &albumService{
		albumRepo: params.AlbumRepo,
		qrService: params.QRService,
		logger:    params.Logger,
	}
}

func (srv *albumService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *albumService) CreateAlbum(ctx context.Context, artist *entity.User, input *usecase.CreateAlbumInput) (*entity.Album, error) {
	if !artist.IsArtist() {
		return nil, domainerrors.ErrForbidden.WrapMessage("only artists can create albums")
	}

	title := strings.TrimSpace(input.Title)
	if err := validateAlbumFields(title, input.Price); err != nil {
		return nil, err
	}

	album := &entity.Album{
		ID:          uuid.New(),
		ArtistID:    artist.ID,
		ArtistName:  artist.DisplayArtistName(),
		Title:       title,
		Price:       input.Price,
		Genre:       input.Genre,
		Description: input.Description,
		CoverURL:    input.CoverURL,
		ReleaseDate: input.ReleaseDate,
	}

	if err := srv.albumRepo.Create(ctx, album); err != nil {
		srv.log(ctx).Error("Failed to create album", slog.Any("artistID", artist.ID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Album created", slog.Any("albumID", album.ID), slog.Any("artistID", artist.ID))

	return album, nil
}

func (srv *albumService) ListAlbums(ctx context.Context, input *usecase.ListInput) ([]*entity.Album, error) {
	limit, skip := normalizePaging(input.Limit, input.Skip)

	albums, err := srv.albumRepo.List(ctx, nil, limit, skip)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list albums")
	}

	return albums, nil
}

func (srv *albumService) GetAlbum(ctx context.Context, id uuid.UUID) (*entity.Album, error) {
	album, err := srv.albumRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrAlbumNotFound) {
		return nil, domainerrors.ErrAlbumNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find album")
	}

	return album, nil
}

func (srv *albumService) UpdateAlbum(ctx context.Context, userID, id uuid.UUID, input *usecase.UpdateAlbumInput) (*entity.Album, error) {
	album, err := srv.GetAlbum(ctx, id)
	if err != nil {
		return nil, err
	}
	if !album.OwnedBy(userID) {
		return nil, domainerrors.ErrForbidden.WrapMessage("only the owner can edit this album")
	}

	if input.Title != nil {
		album.Title = strings.TrimSpace(*input.Title)
	}
	if input.Price != nil {
		album.Price = *input.Price
	}
	if input.Genre != nil {
		album.Genre = *input.Genre
	}
	if input.Description != nil {
		album.Description = *input.Description
	}
	if input.CoverURL != nil {
		album.CoverURL = *input.CoverURL
	}
	if input.ReleaseDate != nil {
		album.ReleaseDate = input.ReleaseDate
	}

	if err := validateAlbumFields(album.Title, album.Price); err != nil {
		return nil, err
	}

	if err := srv.albumRepo.Update(ctx, album); err != nil {
		if errors.Is(err, repository.ErrAlbumNotFound) {
			return nil, domainerrors.ErrAlbumNotFound
		}

		return nil, err
	}

	return album, nil
}

func (srv *albumService) DeleteAlbum(ctx context.Context, userID, id uuid.UUID) error {
	album, err := srv.GetAlbum(ctx, id)
	if err != nil {
		return err
	}
	if !album.OwnedBy(userID) {
		return domainerrors.ErrForbidden.WrapMessage("only the owner can delete this album")
	}

	if err := srv.albumRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrAlbumNotFound) {
			return domainerrors.ErrAlbumNotFound
		}

		return err
	}

	srv.log(ctx).Info("Album deleted", slog.Any("albumID", id))

	return nil
}

func (srv *albumService) ShareQR(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if _, err := srv.GetAlbum(ctx, id); err != nil {
		return nil, err
	}

	png, err := srv.qrService.GenerateShareQR(entity.ItemTypeAlbum, id)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrInternalError, err.Error())
	}

	return png, nil
}

func validateAlbumFields(title string, price int64) error {
	if title == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("title is required")
	}
	if price < 0 {
		return domainerrors.ErrValidationFailed.WrapMessage("price must not be negative")
	}

	return nil
}
