package impl

import (
	"context"
	"log/slog"
	"time"

	"pandore/config"
	deliverycontext "pandore/internal/delivery/context"
	"pandore/internal/domain/entity"
	"pandore/internal/domain/repository"
	"pandore/internal/domain/service"
	"pandore/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	defaultStaleAfter     = 30 * time.Minute
	defaultReconcileBatch = 100
)

type reconcileService struct {
	checkout    *checkoutService
	paymentRepo repository.PaymentTransactionRepository
	gateway     service.PaymentGateway
	staleAfter  time.Duration
	batchSize   int
	logger      *slog.Logger
	now         func() time.Time
}

// ReconcileServiceParams holds dependencies for ReconcileService, injected by Fx.
type ReconcileServiceParams struct {
	fx.In

	TrackRepo   repository.TrackRepository
	AlbumRepo   repository.AlbumRepository
	PaymentRepo repository.PaymentTransactionRepository
	Ledger      usecase.LedgerUsecase
	Gateway     service.PaymentGateway
	Publisher   service.EventPublisher
	Config      *config.Config
	Logger      *slog.Logger
}

// NewReconcileService is the constructor for reconcileService.
func NewReconcileService(params ReconcileServiceParams) usecase.ReconcileUsecase {
	staleAfter := defaultStaleAfter
	batchSize := defaultReconcileBatch
	if params.Config != nil && params.Config.Reconcile != nil {
		if params.Config.Reconcile.StaleAfter > 0 {
			staleAfter = params.Config.Reconcile.StaleAfter
		}
		if params.Config.Reconcile.BatchSize > 0 {
			batchSize = params.Config.Reconcile.BatchSize
		}
	}

	return &reconcileService{
		checkout: newCheckoutService(CheckoutServiceParams{
			TrackRepo:   params.TrackRepo,
			AlbumRepo:   params.AlbumRepo,
			PaymentRepo: params.PaymentRepo,
			Ledger:      params.Ledger,
			Gateway:     params.Gateway,
			Publisher:   params.Publisher,
			Config:      params.Config,
			Logger:      params.Logger,
		}),
		paymentRepo: params.PaymentRepo,
		gateway:     params.Gateway,
		staleAfter:  staleAfter,
		batchSize:   batchSize,
		logger:      params.Logger,
		now:         time.Now,
	}
}

func (srv *reconcileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ReconcileStale asks the provider about old pending transactions and settles them the same way
// a poll would. A failure on one transaction is counted and the sweep goes on.
func (srv *reconcileService) ReconcileStale(ctx context.Context) (*usecase.ReconcileReport, error) {
	cutoff := srv.now().Add(-srv.staleAfter)

	txns, err := srv.paymentRepo.ListStalePending(ctx, cutoff, srv.batchSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list stale transactions")
	}

	report := &usecase.ReconcileReport{Scanned: len(txns)}
	for _, txn := range txns {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		providerStatus, err := srv.gateway.GetCheckoutStatus(ctx, txn.SessionID)
		if err != nil {
			report.Errors++
			srv.log(ctx).Warn("Failed to fetch checkout status", slog.String("sessionID", txn.SessionID), slog.Any("error", err))

			continue
		}

		target := entity.LifecycleFromProvider(providerStatus.Status, providerStatus.PaymentStatus)
		status, granted, err := srv.checkout.settle(ctx, txn, target, providerStatus.PaymentStatus)
		if err != nil {
			report.Errors++
			srv.log(ctx).Warn("Failed to settle transaction", slog.String("sessionID", txn.SessionID), slog.Any("error", err))

			continue
		}

		switch status {
		case entity.TransactionStatusComplete:
			report.Completed++
		case entity.TransactionStatusFailed:
			report.Failed++
		}
		if granted {
			report.Granted++
		}
	}

	srv.log(ctx).Info("Reconcile sweep finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("completed", report.Completed),
		slog.Int("failed", report.Failed),
		slog.Int("granted", report.Granted),
		slog.Int("errors", report.Errors),
	)

	return report, nil
}
