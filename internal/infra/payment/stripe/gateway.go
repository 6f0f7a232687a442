// Package stripe implements the payment gateway on Stripe Checkout.
package stripe

import (
	"context"
	"encoding/json"
	"log/slog"

	"pandore/config"
	"pandore/internal/domain/service"

	"github.com/pkg/errors"
	stripeLib "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type gateway struct {
	api           *client.API
	webhookSecret string
	logger        *slog.Logger
}

// NewGateway creates a Stripe-backed payment gateway.
func NewGateway(cfg *config.Config, logger *slog.Logger) (service.PaymentGateway, error) {
	if cfg.Stripe == nil || cfg.Stripe.APIKey == "" {
		return nil, errors.New("stripe api key is not configured")
	}

	api := &client.API{}
	api.Init(cfg.Stripe.APIKey, nil)

	return &gateway{
		api:           api,
		webhookSecret: cfg.Stripe.WebhookSecret,
		logger:        logger,
	}, nil
}

// newGatewayWithBackend points the client at a custom API base URL.
func newGatewayWithBackend(apiKey, webhookSecret, baseURL string, logger *slog.Logger) *gateway {
	backend := stripeLib.GetBackendWithConfig(stripeLib.APIBackend, &stripeLib.BackendConfig{
		URL: stripeLib.String(baseURL),
	})

	api := &client.API{}
	api.Init(apiKey, &stripeLib.Backends{API: backend, Connect: backend, Uploads: backend})

	return &gateway{api: api, webhookSecret: webhookSecret, logger: logger}
}

func (g *gateway) CreateCheckoutSession(ctx context.Context, req *service.CheckoutRequest) (*service.CheckoutSession, error) {
	params := &stripeLib.CheckoutSessionParams{
		Mode:       stripeLib.String(string(stripeLib.CheckoutSessionModePayment)),
		SuccessURL: stripeLib.String(req.SuccessURL),
		CancelURL:  stripeLib.String(req.CancelURL),
		LineItems: []*stripeLib.CheckoutSessionLineItemParams{
			{
				PriceData: &stripeLib.CheckoutSessionLineItemPriceDataParams{
					Currency: stripeLib.String(req.Currency),
					ProductData: &stripeLib.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripeLib.String(req.ProductName),
					},
					UnitAmount: stripeLib.Int64(req.Amount),
				},
				Quantity: stripeLib.Int64(1),
			},
		},
	}
	params.Context = ctx
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create stripe checkout session")
	}

	return &service.CheckoutSession{SessionID: session.ID, URL: session.URL}, nil
}

func (g *gateway) GetCheckoutStatus(ctx context.Context, sessionID string) (*service.CheckoutStatus, error) {
	params := &stripeLib.CheckoutSessionParams{}
	params.Context = ctx

	session, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get stripe checkout session %s", sessionID)
	}

	return toCheckoutStatus(session), nil
}

func (g *gateway) ParseWebhook(payload []byte, signature string) (*service.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		g.logger.Warn("Stripe webhook verification failed", slog.Any("error", err))

		return nil, errors.Wrap(service.ErrInvalidWebhookSignature, err.Error())
	}

	result := &service.WebhookEvent{ID: event.ID, Type: string(event.Type)}

	if event.Data == nil || len(event.Data.Raw) == 0 {
		return result, nil
	}

	var session stripeLib.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, errors.Wrap(err, "failed to decode checkout session from webhook")
	}
	result.Session = *toCheckoutStatus(&session)

	return result, nil
}

func toCheckoutStatus(session *stripeLib.CheckoutSession) *service.CheckoutStatus {
	return &service.CheckoutStatus{
		SessionID:     session.ID,
		Status:        string(session.Status),
		PaymentStatus: string(session.PaymentStatus),
		AmountTotal:   session.AmountTotal,
		Currency:      string(session.Currency),
		Metadata:      session.Metadata,
	}
}
