package repository

import (
	"context"
	"time"

	"pandore/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for payment persistence.
var (
	ErrTransactionNotFound = errors.New("payment transaction not found")
	ErrPurchaseNotFound    = errors.New("purchase not found")
)

// PaymentTransactionRepository persists checkout attempts.
type PaymentTransactionRepository interface {
	Create(ctx context.Context, txn *entity.PaymentTransaction) error
	FindBySessionID(ctx context.Context, sessionID string) (*entity.PaymentTransaction, error)

	// UpdateStatusIfPending overwrites status and payment status only while the
	// transaction is still pending. It returns false when nothing was updated.
	UpdateStatusIfPending(ctx context.Context, sessionID string, status entity.TransactionStatus, paymentStatus string) (bool, error)

	// ListStalePending returns pending transactions created before the cutoff, oldest first.
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]*entity.PaymentTransaction, error)
}

// PurchaseRepository persists entitlements.
type PurchaseRepository interface {
	// InsertIfAbsent writes the purchase unless one exists for the same user and item.
	// It returns true only for the call that actually inserted.
	InsertIfAbsent(ctx context.Context, purchase *entity.Purchase) (bool, error)
	Exists(ctx context.Context, userID uuid.UUID, itemType entity.ItemType, itemID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Purchase, error)
}

// SaleRepository records artist-side sales once per purchase.
type SaleRepository interface {
	// InsertIfAbsent returns false when the purchase was already recorded.
	InsertIfAbsent(ctx context.Context, sale *entity.SaleRecord) (bool, error)
}
