package usecase

import (
	"context"

	"pandore/internal/domain/entity"
	"pandore/internal/domain/service"

	"github.com/google/uuid"
)

// StartCheckoutInput identifies the item to buy and where the storefront lives.
type StartCheckoutInput struct {
	ItemType  entity.ItemType
	ItemID    uuid.UUID
	OriginURL string
}

// CheckoutOutput is the hosted checkout to redirect to.
type CheckoutOutput struct {
	URL       string
	SessionID string
}

// CheckoutStatusOutput is the lifecycle state of a checkout after syncing with the provider.
type CheckoutStatusOutput struct {
	Status        entity.TransactionStatus
	PaymentStatus string
	AmountTotal   int64
	Currency      string
}

// LibraryOutput lists everything a user owns.
type LibraryOutput struct {
	Tracks []*entity.Track
	Albums []*entity.Album
}

// CheckoutUsecase drives a purchase from checkout to entitlement.
type CheckoutUsecase interface {
	StartCheckout(ctx context.Context, user *entity.User, input *StartCheckoutInput) (*CheckoutOutput, error)
	PollStatus(ctx context.Context, userID uuid.UUID, sessionID string) (*CheckoutStatusOutput, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error

	// GrantEntitlement is idempotent: true only for the call that created the purchase.
	GrantEntitlement(ctx context.Context, txn *entity.PaymentTransaction) (bool, error)
}

// LedgerUsecase answers ownership questions and writes entitlements.
type LedgerUsecase interface {
	HasPurchased(ctx context.Context, userID uuid.UUID, itemType entity.ItemType, itemID uuid.UUID) (bool, error)
	Grant(ctx context.Context, txn *entity.PaymentTransaction) (*entity.Purchase, bool, error)
	Library(ctx context.Context, userID uuid.UUID) (*LibraryOutput, error)
}

// ReconcileReport summarizes one sweep over stale pending transactions.
type ReconcileReport struct {
	Scanned   int
	Completed int
	Failed    int
	Granted   int
	Errors    int
}

// ReconcileUsecase settles checkouts whose webhook and poll never arrived.
type ReconcileUsecase interface {
	ReconcileStale(ctx context.Context) (*ReconcileReport, error)
}

// SalesUsecase applies purchase events to artist-side sales counters.
type SalesUsecase interface {
	// RecordSale is idempotent per purchase; it returns false for a redelivered event.
	RecordSale(ctx context.Context, event *service.PurchaseEvent) (bool, error)
}
