package stripe

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"pandore/config"
	"pandore/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func checkoutEventPayload(t *testing.T, eventType, paymentStatus string) []byte {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"id":          "evt_1",
		"object":      "event",
		"type":        eventType,
		"api_version": "2020-08-27",
		"data": map[string]any{
			"object": map[string]any{
				"id":             "cs_test_1",
				"object":         "checkout.session",
				"status":         "complete",
				"payment_status": paymentStatus,
				"amount_total":   999,
				"currency":       "usd",
				"metadata":       map[string]string{"item_type": "track"},
			},
		},
	})
	require.NoError(t, err)

	return payload
}

func TestGateway_ParseWebhook(t *testing.T) {
	g := &gateway{webhookSecret: testWebhookSecret, logger: slog.Default()}
	payload := checkoutEventPayload(t, service.EventCheckoutCompleted, "paid")

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  testWebhookSecret,
	})

	event, err := g.ParseWebhook(signed.Payload, signed.Header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, service.EventCheckoutCompleted, event.Type)
	assert.Equal(t, "cs_test_1", event.Session.SessionID)
	assert.Equal(t, "paid", event.Session.PaymentStatus)
	assert.Equal(t, int64(999), event.Session.AmountTotal)
	assert.Equal(t, "track", event.Session.Metadata["item_type"])
}

func TestGateway_ParseWebhook_BadSignature(t *testing.T) {
	g := &gateway{webhookSecret: testWebhookSecret, logger: slog.Default()}
	payload := checkoutEventPayload(t, service.EventCheckoutCompleted, "paid")

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  "whsec_other",
	})

	event, err := g.ParseWebhook(signed.Payload, signed.Header)
	assert.Nil(t, event)
	assert.True(t, errors.Is(err, service.ErrInvalidWebhookSignature))

	event, err = g.ParseWebhook(payload, "")
	assert.Nil(t, event)
	assert.True(t, errors.Is(err, service.ErrInvalidWebhookSignature))
}

func TestGateway_CreateAndGetCheckoutSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/checkout/sessions":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "payment", r.PostForm.Get("mode"))
			assert.Equal(t, "1299", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
			assert.Equal(t, "Song", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
			assert.Equal(t, "u1", r.PostForm.Get("metadata[user_id]"))
			_, _ = w.Write([]byte(`{"id":"cs_test_9","object":"checkout.session","url":"https://checkout.stripe.test/cs_test_9"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/checkout/sessions/cs_test_9":
			_, _ = w.Write([]byte(`{"id":"cs_test_9","object":"checkout.session","status":"complete","payment_status":"paid","amount_total":1299,"currency":"usd"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"unknown"}}`))
		}
	}))
	defer server.Close()

	g := newGatewayWithBackend("sk_test_123", testWebhookSecret, server.URL, slog.Default())

	session, err := g.CreateCheckoutSession(context.Background(), &service.CheckoutRequest{
		ProductName: "Song",
		Amount:      1299,
		Currency:    "usd",
		SuccessURL:  "https://app.test/library?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   "https://app.test/browse",
		Metadata:    map[string]string{"user_id": "u1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_9", session.SessionID)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_9", session.URL)

	status, err := g.GetCheckoutStatus(context.Background(), "cs_test_9")
	require.NoError(t, err)
	assert.Equal(t, "complete", status.Status)
	assert.Equal(t, "paid", status.PaymentStatus)
	assert.Equal(t, int64(1299), status.AmountTotal)
}

func TestNewGateway_RequiresAPIKey(t *testing.T) {
	_, err := NewGateway(&config.Config{Stripe: &config.StripeConfig{}}, slog.Default())
	assert.Error(t, err)
}
