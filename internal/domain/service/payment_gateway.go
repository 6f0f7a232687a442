package service

import (
	"context"

	"github.com/pkg/errors"
)

// Checkout session event types the webhook acts on.
const (
	EventCheckoutCompleted             = "checkout.session.completed"
	EventCheckoutAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventCheckoutAsyncPaymentFailed    = "checkout.session.async_payment_failed"
	EventCheckoutExpired               = "checkout.session.expired"
)

// ErrInvalidWebhookSignature is returned when a webhook payload fails verification.
var ErrInvalidWebhookSignature = errors.New("invalid webhook signature")

// CheckoutRequest describes a hosted checkout for a single item.
type CheckoutRequest struct {
	ProductName string
	Amount      int64 // minor currency units
	Currency    string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// CheckoutSession is the provider's answer to a checkout request.
type CheckoutSession struct {
	SessionID string
	URL       string
}

// CheckoutStatus is a snapshot of a provider checkout session.
type CheckoutStatus struct {
	SessionID     string
	Status        string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
	Metadata      map[string]string
}

// WebhookEvent is a verified provider event about a checkout session.
type WebhookEvent struct {
	ID      string
	Type    string
	Session CheckoutStatus
}

// PaymentGateway is the external payment provider.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutStatus(ctx context.Context, sessionID string) (*CheckoutStatus, error)

	// ParseWebhook verifies the signature and decodes the event.
	// Verification failures are reported as ErrInvalidWebhookSignature.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
