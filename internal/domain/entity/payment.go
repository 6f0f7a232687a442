package entity

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus is the lifecycle state of a checkout attempt.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusComplete TransactionStatus = "complete"
	TransactionStatusFailed   TransactionStatus = "failed"
)

// Provider-side values that matter to the lifecycle.
const (
	PaymentStatusPaid              = "paid"
	PaymentStatusUnpaid            = "unpaid"
	PaymentStatusNoPaymentRequired = "no_payment_required"

	ProviderSessionStatusExpired = "expired"
)

// PaymentSucceeded reports whether a provider payment status means the money was collected.
func PaymentSucceeded(paymentStatus string) bool {
	return paymentStatus == PaymentStatusPaid || paymentStatus == PaymentStatusNoPaymentRequired
}

// LifecycleFromProvider maps a provider session snapshot onto the transaction lifecycle.
func LifecycleFromProvider(sessionStatus, paymentStatus string) TransactionStatus {
	switch {
	case PaymentSucceeded(paymentStatus):
		return TransactionStatusComplete
	case sessionStatus == ProviderSessionStatusExpired:
		return TransactionStatusFailed
	default:
		return TransactionStatusPending
	}
}

// PaymentTransaction records one checkout attempt, keyed by the provider's session id.
// Amount is the price snapshot taken when the checkout started.
type PaymentTransaction struct {
	ID            uuid.UUID
	SessionID     string
	UserID        uuid.UUID
	ItemType      ItemType
	ItemID        uuid.UUID
	Amount        int64
	Currency      string
	Status        TransactionStatus
	PaymentStatus string
	Metadata      map[string]string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Purchase is an entitlement: the user owns the item.
type Purchase struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ItemType  ItemType
	ItemID    uuid.UUID
	Price     int64
	SessionID string
	CreatedAt time.Time
}

// SaleRecord is the artist-side bookkeeping of a purchase, written once per purchase.
type SaleRecord struct {
	PurchaseID uuid.UUID
	ItemType   ItemType
	ItemID     uuid.UUID
	ArtistID   uuid.UUID
	Amount     int64
	CreatedAt  time.Time
}
