package main

import (
	"context"
	"log/slog"
	"os"

	"pandore/config"
	"pandore/internal/delivery"
	"pandore/internal/delivery/api"
	"pandore/internal/delivery/api/middleware"
	"pandore/internal/delivery/api/router/handler"
	"pandore/internal/domain/service"
	"pandore/internal/infra/auth"
	"pandore/internal/infra/auth/google"
	logs "pandore/internal/infra/log"
	"pandore/internal/infra/payment/stripe"
	"pandore/internal/infra/persistence/postgres"
	"pandore/internal/infra/pubsub"
	"pandore/internal/infra/qrcode"
	"pandore/internal/infra/storage"
	"pandore/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		storage.NewBucket,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewSessionRepository,
			postgres.NewTrackRepository,
			postgres.NewAlbumRepository,
			postgres.NewPlaylistRepository,
			postgres.NewLikeRepository,
			postgres.NewPaymentTransactionRepository,
			postgres.NewPurchaseRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			google.NewSessionExchanger,
			stripe.NewGateway,
			storage.NewBlobStorage,
			pubsub.NewEventPublisher,
			newQRCodeService,
		),
	)
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M", "")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel, cfg.QRCode.BaseURL)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewSessionResolver,
			impl.NewAuthService,
			impl.NewTrackService,
			impl.NewAlbumService,
			impl.NewArtistService,
			impl.NewPlaylistService,
			impl.NewLikeService,
			impl.NewLedgerService,
			impl.NewCheckoutService,
			impl.NewFileService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewTrackHandler,
			handler.NewAlbumHandler,
			handler.NewArtistHandler,
			handler.NewPlaylistHandler,
			handler.NewLikeHandler,
			handler.NewPurchaseHandler,
			handler.NewFileHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
