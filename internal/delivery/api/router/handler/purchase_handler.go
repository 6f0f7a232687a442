package handler

import (
	"io"
	"log/slog"
	"net/http"

	"pandore/internal/delivery/api/middleware"
	"pandore/internal/delivery/api/response"
	"pandore/internal/domain/entity"
	"pandore/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const headerStripeSignature = "Stripe-Signature"

// PurchaseHandlerParams holds dependencies for PurchaseHandler, injected by Fx.
type PurchaseHandlerParams struct {
	fx.In

	CheckoutUC usecase.CheckoutUsecase
	LedgerUC   usecase.LedgerUsecase
	Logger     *slog.Logger
}

// PurchaseHandler serves checkout, status polling, the library and the provider webhook
type PurchaseHandler struct {
	checkoutUC usecase.CheckoutUsecase
	ledgerUC   usecase.LedgerUsecase
	logger     *slog.Logger
}

// NewPurchaseHandler is the constructor for PurchaseHandler
func NewPurchaseHandler(params PurchaseHandlerParams) *PurchaseHandler {
	return &PurchaseHandler{
		checkoutUC: params.CheckoutUC,
		ledgerUC:   params.LedgerUC,
		logger:     params.Logger,
	}
}

// CheckoutRequest represents the request body for starting a checkout
type CheckoutRequest struct {
	ItemType  string    `json:"item_type" validate:"required,oneof=track album"`
	ItemID    uuid.UUID `json:"item_id" validate:"required"`
	OriginURL string    `json:"origin_url" validate:"required,url"`
}

// Checkout starts a hosted checkout for one item
func (h *PurchaseHandler) Checkout(c echo.Context) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid checkout input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	out, err := h.checkoutUC.StartCheckout(c.Request().Context(), user, &usecase.StartCheckoutInput{
		ItemType:  entity.ItemType(req.ItemType),
		ItemID:    req.ItemID,
		OriginURL: req.OriginURL,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{
		"url":        out.URL,
		"session_id": out.SessionID,
	})
}

// Status syncs a checkout with the provider and reports its state
func (h *PurchaseHandler) Status(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	out, err := h.checkoutUC.PollStatus(c.Request().Context(), userID, c.Param("session_id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"status":         out.Status,
		"payment_status": out.PaymentStatus,
		"amount_total":   out.AmountTotal,
		"currency":       out.Currency,
	})
}

// Library lists the caller's purchased tracks and albums
func (h *PurchaseHandler) Library(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	library, err := h.ledgerUC.Library(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"tracks": toTrackResponses(library.Tracks),
		"albums": toAlbumResponses(library.Albums),
	})
}

// StripeWebhook verifies and applies a provider event; the raw body is needed for the signature
func (h *PurchaseHandler) StripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Unable to read webhook body")
	}

	if err := h.checkoutUC.HandleWebhook(c.Request().Context(), payload, c.Request().Header.Get(headerStripeSignature)); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]bool{"received": true})
}
