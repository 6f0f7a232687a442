package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "pandore/internal/delivery/context"
	"pandore/internal/domain/entity"
	"pandore/internal/domain/repository"
	"pandore/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type ledgerService struct {
	purchaseRepo repository.PurchaseRepository
	trackRepo    repository.TrackRepository
	albumRepo    repository.AlbumRepository
	logger       *slog.Logger
}

// LedgerServiceParams holds dependencies for LedgerService, injected by Fx.
type LedgerServiceParams struct {
	fx.In

	PurchaseRepo repository.PurchaseRepository
	TrackRepo    repository.TrackRepository
	AlbumRepo    repository.AlbumRepository
	Logger       *slog.Logger
}

// NewLedgerService is the constructor for ledgerService.
func NewLedgerService(params LedgerServiceParams) usecase.LedgerUsecase {
	return &ledgerService{
		purchaseRepo: params.PurchaseRepo,
		trackRepo:    params.TrackRepo,
		albumRepo:    params.AlbumRepo,
		logger:       params.Logger,
	}
}

func (srv *ledgerService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *ledgerService) HasPurchased(ctx context.Context, userID uuid.UUID, itemType entity.ItemType, itemID uuid.UUID) (bool, error) {
	owned, err := srv.purchaseRepo.Exists(ctx, userID, itemType, itemID)
	if err != nil {
		return false, errors.Wrap(err, "failed to check ownership")
	}

	return owned, nil
}

// Grant records the entitlement of a transaction at its price snapshot.
// Concurrent callers race on the store's unique index; exactly one of them sees granted=true.
func (srv *ledgerService) Grant(ctx context.Context, txn *entity.PaymentTransaction) (*entity.Purchase, bool, error) {
	purchase := &entity.Purchase{
		ID:        uuid.New(),
		UserID:    txn.UserID,
		ItemType:  txn.ItemType,
		ItemID:    txn.ItemID,
		Price:     txn.Amount,
		SessionID: txn.SessionID,
		CreatedAt: time.Now(),
	}

	granted, err := srv.purchaseRepo.InsertIfAbsent(ctx, purchase)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to grant purchase")
	}

	if granted {
		srv.log(ctx).Info("Purchase granted",
			slog.Any("purchaseID", purchase.ID),
			slog.Any("userID", purchase.UserID),
			slog.String("itemType", purchase.ItemType.String()),
			slog.Any("itemID", purchase.ItemID),
		)
	}

	return purchase, granted, nil
}

// Library resolves the user's purchases into the owned tracks and albums.
func (srv *ledgerService) Library(ctx context.Context, userID uuid.UUID) (*usecase.LibraryOutput, error) {
	purchases, err := srv.purchaseRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list purchases")
	}

	var trackIDs, albumIDs []uuid.UUID
	for _, purchase := range purchases {
		switch purchase.ItemType {
		case entity.ItemTypeTrack:
			trackIDs = append(trackIDs, purchase.ItemID)
		case entity.ItemTypeAlbum:
			albumIDs = append(albumIDs, purchase.ItemID)
		}
	}

	tracks, err := srv.trackRepo.FindByIDs(ctx, trackIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load purchased tracks")
	}

	albums, err := srv.albumRepo.FindByIDs(ctx, albumIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load purchased albums")
	}

	return &usecase.LibraryOutput{Tracks: tracks, Albums: albums}, nil
}
