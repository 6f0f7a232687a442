package impl

import (
	"context"
	"log/slog"
	"strings"

	"pandore/config"
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

type checkoutService struct {
	trackRepo   repository.TrackRepository
	albumRepo   repository.AlbumRepository
	paymentRepo repository.PaymentTransactionRepository
	ledger      usecase.LedgerUsecase
	gateway     service.PaymentGateway
	publisher   service.EventPublisher
	currency    string
	logger      *slog.Logger
}

// CheckoutServiceParams holds dependencies for CheckoutService, injected by Fx.
type CheckoutServiceParams struct {
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

// NewCheckoutService is the constructor for checkoutService.
func NewCheckoutService(params CheckoutServiceParams) usecase.CheckoutUsecase {
	return newCheckoutService(params)
}

func newCheckoutService(params CheckoutServiceParams) *checkoutService {
	currency := "usd"
	if params.Config != nil && params.Config.Stripe != nil && params.Config.Stripe.Currency != "" {
		currency = params.Config.Stripe.Currency
	}

	return &checkoutService{
		trackRepo:   params.TrackRepo,
		albumRepo:   params.AlbumRepo,
		paymentRepo: params.PaymentRepo,
		ledger:      params.Ledger,
		gateway:     params.Gateway,
		publisher:   params.Publisher,
		currency:    currency,
		logger:      params.Logger,
	}
}

func (srv *checkoutService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// StartCheckout opens a hosted checkout for the item at its current price and records a
// pending transaction holding that price.
func (srv *checkoutService) StartCheckout(ctx context.Context, user *entity.User, input *usecase.StartCheckoutInput) (*usecase.CheckoutOutput, error) {
	if !input.ItemType.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("item_type must be track or album")
	}
	origin := strings.TrimRight(strings.TrimSpace(input.OriginURL), "/")
	if origin == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("origin_url is required")
	}

	name, price, err := srv.lookupItem(ctx, input.ItemType, input.ItemID)
	if err != nil {
		return nil, err
	}

	owned, err := srv.ledger.HasPurchased(ctx, user.ID, input.ItemType, input.ItemID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, domainerrors.ErrAlreadyOwned
	}

	metadata := map[string]string{
		"user_id":   user.ID.String(),
		"item_type": input.ItemType.String(),
		"item_id":   input.ItemID.String(),
	}

	session, err := srv.gateway.CreateCheckoutSession(ctx, &service.CheckoutRequest{
		ProductName: name,
		Amount:      price,
		Currency:    srv.currency,
		SuccessURL:  origin + "/library?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   origin + "/browse",
		Metadata:    metadata,
	})
	if err != nil {
		srv.log(ctx).Error("Failed to create checkout session", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPaymentProviderFailed, err.Error())
	}

	txn := &entity.PaymentTransaction{
		ID:            uuid.New(),
		SessionID:     session.SessionID,
		UserID:        user.ID,
		ItemType:      input.ItemType,
		ItemID:        input.ItemID,
		Amount:        price,
		Currency:      srv.currency,
		Status:        entity.TransactionStatusPending,
		PaymentStatus: entity.PaymentStatusUnpaid,
		Metadata:      metadata,
	}
	if err := srv.paymentRepo.Create(ctx, txn); err != nil {
		srv.log(ctx).Error("Failed to record checkout transaction", slog.String("sessionID", session.SessionID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Checkout started",
		slog.String("sessionID", session.SessionID),
		slog.Any("userID", user.ID),
		slog.String("itemType", input.ItemType.String()),
		slog.Int64("amount", price),
	)

	return &usecase.CheckoutOutput{URL: session.URL, SessionID: session.SessionID}, nil
}

// PollStatus syncs the transaction with the provider on behalf of the purchaser.
func (srv *checkoutService) PollStatus(ctx context.Context, userID uuid.UUID, sessionID string) (*usecase.CheckoutStatusOutput, error) {
	txn, err := srv.paymentRepo.FindBySessionID(ctx, sessionID)
	if errors.Is(err, repository.ErrTransactionNotFound) {
		return nil, domainerrors.ErrTransactionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find transaction")
	}
	if txn.UserID != userID {
		return nil, domainerrors.ErrForbidden.WrapMessage("transaction belongs to another user")
	}

	providerStatus, err := srv.gateway.GetCheckoutStatus(ctx, sessionID)
	if err != nil {
		srv.log(ctx).Error("Failed to get checkout status", slog.String("sessionID", sessionID), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPaymentProviderFailed, err.Error())
	}

	target := entity.LifecycleFromProvider(providerStatus.Status, providerStatus.PaymentStatus)
	status, _, err := srv.settle(ctx, txn, target, providerStatus.PaymentStatus)
	if err != nil {
		return nil, err
	}

	return &usecase.CheckoutStatusOutput{
		Status:        status,
		PaymentStatus: providerStatus.PaymentStatus,
		AmountTotal:   providerStatus.AmountTotal,
		Currency:      providerStatus.Currency,
	}, nil
}

// HandleWebhook applies a verified provider event. Unknown events and events for sessions
// we never recorded are acknowledged without effect.
func (srv *checkoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := srv.gateway.ParseWebhook(payload, signature)
	if err != nil {
		srv.log(ctx).Warn("Rejected webhook", slog.Any("error", err))

		return errors.Wrap(domainerrors.ErrInvalidSignature, err.Error())
	}

	var target entity.TransactionStatus
	paymentStatus := event.Session.PaymentStatus

	switch event.Type {
	case service.EventCheckoutCompleted, service.EventCheckoutAsyncPaymentSucceeded:
		target = entity.LifecycleFromProvider(event.Session.Status, paymentStatus)
	case service.EventCheckoutAsyncPaymentFailed, service.EventCheckoutExpired:
		target = entity.TransactionStatusFailed
	default:
		srv.log(ctx).Debug("Ignoring webhook event", slog.String("type", event.Type), slog.String("eventID", event.ID))

		return nil
	}

	txn, err := srv.paymentRepo.FindBySessionID(ctx, event.Session.SessionID)
	if errors.Is(err, repository.ErrTransactionNotFound) {
		srv.log(ctx).Warn("Webhook for unknown checkout session",
			slog.String("sessionID", event.Session.SessionID),
			slog.String("type", event.Type),
		)

		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to find transaction")
	}

	if _, _, err := srv.settle(ctx, txn, target, paymentStatus); err != nil {
		return err
	}

	srv.log(ctx).Info("Webhook processed", slog.String("type", event.Type), slog.String("sessionID", txn.SessionID))

	return nil
}

// GrantEntitlement writes the purchase and announces it when it is new.
func (srv *checkoutService) GrantEntitlement(ctx context.Context, txn *entity.PaymentTransaction) (bool, error) {
	purchase, granted, err := srv.ledger.Grant(ctx, txn)
	if err != nil {
		return false, err
	}
	if !granted {
		return false, nil
	}

	event := &service.PurchaseEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		EventType:  constants.EventTypePurchaseCompleted,
		PurchaseID: purchase.ID.String(),
		UserID:     purchase.UserID.String(),
		ItemType:   purchase.ItemType.String(),
		ItemID:     purchase.ItemID.String(),
		Amount:     purchase.Price,
		Currency:   txn.Currency,
		SessionID:  txn.SessionID,
	}
	if err := srv.publisher.PublishPurchaseEvent(ctx, event); err != nil {
		srv.log(ctx).Error("Failed to publish purchase event", slog.String("purchaseID", event.PurchaseID), slog.Any("error", err))
	}

	return true, nil
}

// settle moves a pending transaction to target and grants the item when the stored status ends up complete.
// It returns the status the transaction holds afterwards and whether this call wrote the purchase.
func (srv *checkoutService) settle(ctx context.Context, txn *entity.PaymentTransaction, target entity.TransactionStatus, paymentStatus string) (entity.TransactionStatus, bool, error) {
	updated, err := srv.paymentRepo.UpdateStatusIfPending(ctx, txn.SessionID, target, paymentStatus)
	if err != nil {
		return "", false, err
	}

	status := target
	if !updated {
		current, err := srv.paymentRepo.FindBySessionID(ctx, txn.SessionID)
		if err != nil {
			return "", false, errors.Wrap(err, "failed to reload transaction")
		}
		status = current.Status
	}

	// The stored status decides: a late paid event on a failed transaction grants nothing.
	if status != entity.TransactionStatusComplete {
		return status, false, nil
	}

	granted, err := srv.GrantEntitlement(ctx, txn)
	if err != nil {
		return "", false, err
	}

	return status, granted, nil
}

func (srv *checkoutService) lookupItem(ctx context.Context, itemType entity.ItemType, itemID uuid.UUID) (string, int64, error) {
	if itemType == entity.ItemTypeTrack {
		track, err := srv.trackRepo.FindByID(ctx, itemID)
		if errors.Is(err, repository.ErrTrackNotFound) {
			return "", 0, domainerrors.ErrTrackNotFound
		}
		if err != nil {
			return "", 0, errors.Wrap(err, "failed to find track")
		}

		return track.Title, track.Price, nil
	}

	album, err := srv.albumRepo.FindByID(ctx, itemID)
	if errors.Is(err, repository.ErrAlbumNotFound) {
		return "", 0, domainerrors.ErrAlbumNotFound
	}
	if err != nil {
		return "", 0, errors.Wrap(err, "failed to find album")
	}

	return album.Title, album.Price, nil
}
