package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "pandore/internal/delivery/context"
	"pandore/internal/domain/constants"
	"pandore/internal/domain/entity"
	domainerrors "pandore/internal/domain/errors"
	"pandore/internal/domain/repository"
	"pandore/internal/domain/service"
	"pandore/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type salesService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// SalesServiceParams holds dependencies for SalesService, injected by Fx.
type SalesServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Logger    *slog.Logger
}

// NewSalesService is the constructor for salesService.
func NewSalesService(params SalesServiceParams) usecase.SalesUsecase {
	return &salesService{
		txManager: params.TxManager,
		logger:    params.Logger,
	}
}

func (srv *salesService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RecordSale writes the sale record and bumps the item's sales counter in one transaction.
// A redelivered event finds the record already present and leaves the counter alone.
func (srv *salesService) RecordSale(ctx context.Context, event *service.PurchaseEvent) (bool, error) {
	if event.EventType != constants.EventTypePurchaseCompleted {
		srv.log(ctx).Debug("Ignoring event", slog.String("eventType", event.EventType))

		return false, nil
	}

	purchaseID, err := uuid.Parse(event.PurchaseID)
	if err != nil {
		return false, domainerrors.ErrValidationFailed.WrapMessage("invalid purchase_id")
	}
	itemID, err := uuid.Parse(event.ItemID)
	if err != nil {
		return false, domainerrors.ErrValidationFailed.WrapMessage("invalid item_id")
	}
	itemType := entity.ItemType(event.ItemType)
	if !itemType.IsValid() {
		return false, domainerrors.ErrValidationFailed.WrapMessage("invalid item_type")
	}

	var recorded bool
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		artistID, err := itemArtist(ctx, repoFactory, itemType, itemID)
		if err != nil {
			return err
		}

		recorded, err = repoFactory.SaleRepo().InsertIfAbsent(ctx, &entity.SaleRecord{
			PurchaseID: purchaseID,
			ItemType:   itemType,
			ItemID:     itemID,
			ArtistID:   artistID,
			Amount:     event.Amount,
			CreatedAt:  time.Now(),
		})
		if err != nil || !recorded {
			return err
		}

		if itemType == entity.ItemTypeTrack {
			return repoFactory.TrackRepo().IncrementSales(ctx, itemID)
		}

		return repoFactory.AlbumRepo().IncrementSales(ctx, itemID)
	})
	if isItemNotFound(err) {
		// The item was deleted after the purchase; there is nothing to count against.
		srv.log(ctx).Warn("Sale for missing item", slog.String("purchaseID", event.PurchaseID), slog.String("itemID", event.ItemID))

		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to record sale")
	}

	if recorded {
		srv.log(ctx).Info("Sale recorded", slog.String("purchaseID", event.PurchaseID), slog.String("itemType", event.ItemType))
	}

	return recorded, nil
}

func itemArtist(ctx context.Context, repoFactory repository.RepositoryFactory, itemType entity.ItemType, itemID uuid.UUID) (uuid.UUID, error) {
	if itemType == entity.ItemTypeTrack {
		track, err := repoFactory.TrackRepo().FindByID(ctx, itemID)
		if err != nil {
			return uuid.Nil, err
		}

		return track.ArtistID, nil
	}

	album, err := repoFactory.AlbumRepo().FindByID(ctx, itemID)
	if err != nil {
		return uuid.Nil, err
	}

	return album.ArtistID, nil
}
