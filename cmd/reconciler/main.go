// Command reconciler settles stale pending checkouts once and exits.
package main

import (
	"context"
	"log/slog"
	"time"

	"pandore/config"
	"pandore/internal/domain/lifecycle"
	logs "pandore/internal/infra/log"
	"pandore/internal/infra/payment/stripe"
	"pandore/internal/infra/persistence/postgres"
	"pandore/internal/infra/pubsub"
	"pandore/internal/usecase"
	"pandore/internal/usecase/impl"
	"pandore/internal/util"

	"go.uber.org/fx"
)

type runParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Reconciler usecase.ReconcileUsecase
	Config     *config.Config
	Logger     *slog.Logger
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		fx.Invoke(
			runOnce,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewTrackRepository,
			postgres.NewAlbumRepository,
			postgres.NewPaymentTransactionRepository,
			postgres.NewPurchaseRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			stripe.NewGateway,
			pubsub.NewEventPublisher,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewLedgerService,
			impl.NewReconcileService,
		),
	)
}

// runOnce sweeps after startup hooks ran and shuts the app down with an exit code.
func runOnce(params runParams) {
	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*lifecycle.DefaultTimeout)
				defer cancel()

				exitCode := 0
				started := time.Now()
				report, err := params.Reconciler.ReconcileStale(ctx)
				switch {
				case err != nil:
					params.Logger.Error("Reconcile sweep failed", slog.Any("error", err))
					exitCode = 1
				default:
					params.Logger.Info("Reconcile sweep finished",
						slog.Int("scanned", report.Scanned),
						slog.Int("completed", report.Completed),
						slog.Int("failed", report.Failed),
						slog.Int("granted", report.Granted),
						slog.Int("errors", report.Errors),
						slog.Duration("staleAfter", params.Config.Reconcile.StaleAfter),
						slog.String("elapsed", util.FormatDuration(time.Since(started))),
					)
					if report.Errors > 0 {
						exitCode = 1
					}
				}

				if err := params.Shutdown(fx.ExitCode(exitCode)); err != nil {
					params.Logger.Error("Failed to shutdown gracefully", slog.Any("error", err))
				}
			}()

			return nil
		},
	})
}
