package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "pandore/internal/delivery/context"
	"pandore/internal/domain/entity"
	domainerrors "pandore/internal/domain/errors"
	"pandore/internal/domain/repository"
	"pandore/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type likeService struct {
	txManager repository.TransactionManager
	likeRepo  repository.LikeRepository
	logger    *slog.Logger
}

// LikeServiceParams holds dependencies for LikeService, injected by Fx.
type LikeServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	LikeRepo  repository.LikeRepository
	Logger    *slog.Logger
}

// NewLikeService is the constructor for likeService.
func NewLikeService(params LikeServiceParams) usecase.LikeUsecase {
	return &likeService{
		txManager: params.TxManager,
		likeRepo:  params.LikeRepo,
		logger:    params.Logger,
	}
}

func (srv *likeService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Like records the like and bumps the item counter in one transaction. Repeating it changes nothing.
func (srv *likeService) Like(ctx context.Context, userID uuid.UUID, itemType entity.ItemType, itemID uuid.UUID) (*usecase.LikeOutput, error) {
	if !itemType.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("item_type must be track or album")
	}

	var inserted bool
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := ensureItemExists(ctx, repoFactory, itemType, itemID); err != nil {
			return err
		}

		var err error
		inserted, err = repoFactory.LikeRepo().InsertIfAbsent(ctx, &entity.Like{
			ID:        uuid.New(),
			UserID:    userID,
			ItemType:  itemType,
			ItemID:    itemID,
			CreatedAt: time.Now(),
		})
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}

		return mapItemNotFound(adjustLikes(ctx, repoFactory, itemType, itemID, 1))
	})
	if err != nil {
		return nil, err
	}

	if !inserted {
		return &usecase.LikeOutput{Message: "Already liked", Liked: true}, nil
	}

	srv.log(ctx).Debug("Item liked", slog.Any("userID", userID), slog.String("itemType", itemType.String()), slog.Any("itemID", itemID))

	return &usecase.LikeOutput{Message: "Liked", Liked: true}, nil
}

// Unlike removes the like and decrements the counter in one transaction. Repeating it changes nothing.
func (srv *likeService) Unlike(ctx context.Context, userID uuid.UUID, itemType entity.ItemType, itemID uuid.UUID) (*usecase.LikeOutput, error) {
	if !itemType.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("item_type must be track or album")
	}

	var removed bool
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		removed, err = repoFactory.LikeRepo().Delete(ctx, userID, itemType, itemID)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}

		// Likes of a deleted item can still be removed; there is no counter left to fix.
		err = adjustLikes(ctx, repoFactory, itemType, itemID, -1)
		if isItemNotFound(err) {
			return nil
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	if !removed {
		return &usecase.LikeOutput{Message: "Not liked", Liked: false}, nil
	}

	return &usecase.LikeOutput{Message: "Unliked", Liked: false}, nil
}

func (srv *likeService) ListLikes(ctx context.Context, userID uuid.UUID, itemType *entity.ItemType) ([]*entity.Like, error) {
	if itemType != nil && !itemType.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("item_type must be track or album")
	}

	likes, err := srv.likeRepo.ListByUser(ctx, userID, itemType)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list likes")
	}

	return likes, nil
}

func ensureItemExists(ctx context.Context, repoFactory repository.RepositoryFactory, itemType entity.ItemType, itemID uuid.UUID) error {
	var err error
	switch itemType {
	case entity.ItemTypeTrack:
		_, err = repoFactory.TrackRepo().FindByID(ctx, itemID)
	case entity.ItemTypeAlbum:
		_, err = repoFactory.AlbumRepo().FindByID(ctx, itemID)
	default:
		return domainerrors.ErrValidationFailed.WrapMessage("unsupported item type")
	}

	return mapItemNotFound(err)
}

func isItemNotFound(err error) bool {
	return errors.Is(err, repository.ErrTrackNotFound) || errors.Is(err, repository.ErrAlbumNotFound)
}

// mapItemNotFound turns repository misses into the matching domain errors.
func mapItemNotFound(err error) error {
	switch {
	case errors.Is(err, repository.ErrTrackNotFound):
		return domainerrors.ErrTrackNotFound
	case errors.Is(err, repository.ErrAlbumNotFound):
		return domainerrors.ErrAlbumNotFound
	}

	return err
}

func adjustLikes(ctx context.Context, repoFactory repository.RepositoryFactory, itemType entity.ItemType, itemID uuid.UUID, delta int) error {
	var err error
	if itemType == entity.ItemTypeTrack {
		err = repoFactory.TrackRepo().IncrementLikes(ctx, itemID, delta)
	} else {
		err = repoFactory.AlbumRepo().IncrementLikes(ctx, itemID, delta)
	}

	return err
}
