package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"hotel-booking/internal/payment"
	"hotel-booking/internal/status"
	"hotel-booking/models"
	"hotel-booking/services"
)

type CheckoutHandler struct {
	app             *pocketbase.PocketBase
	checkoutService *services.CheckoutService
	gateway         payment.Gateway
}

func NewCheckoutHandler(app *pocketbase.PocketBase, checkoutService *services.CheckoutService, gateway payment.Gateway) *CheckoutHandler {
	return &CheckoutHandler{
		app:             app,
		checkoutService: checkoutService,
		gateway:         gateway,
	}
}

// InitiateCheckout - Confirm contact details and open a payment session
func (h *CheckoutHandler) InitiateCheckout(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("You need to be logged in to make a payment.", nil)
	}

	var req struct {
		RoomID string `json:"room_id"`
		Name   string `json:"name"`
		Phone  string `json:"phone"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	room, err := h.app.FindRecordById("rooms", req.RoomID)
	if err != nil {
		return apis.NewBadRequestError("Unknown room", err)
	}

	ctx := e.Request.Context()
	owner := models.Identity{ID: e.Auth.Id, Email: e.Auth.Email()}
	form := models.ContactForm{Name: req.Name, Phone: req.Phone}
	snapshot := models.RoomSnapshot{
		Title: room.GetString("title"),
		Price: room.GetString("price"),
	}

	session, err := h.checkoutService.Initiate(ctx, owner, form, snapshot)
	switch {
	case errors.Is(err, status.ErrUnauthenticated):
		return apis.NewUnauthorizedError("You need to be logged in to make a payment.", nil)
	case errors.Is(err, status.ErrInvalidInput):
		return apis.NewBadRequestError("Please enter both name and phone number.", nil)
	case err != nil:
		return apis.NewBadRequestError("Failed to start checkout", err)
	}

	return e.JSON(http.StatusOK, session)
}

// checkoutAccessError maps session lookup failures to API errors.
func checkoutAccessError(err error) error {
	switch {
	case errors.Is(err, status.ErrCheckoutNotFound):
		return apis.NewNotFoundError("Checkout not found", nil)
	case errors.Is(err, status.ErrForbidden):
		return apis.NewForbiddenError("Access denied", nil)
	default:
		return apis.NewBadRequestError("Failed to load checkout", err)
	}
}

// ConfirmPayment - Widget success callback
func (h *CheckoutHandler) ConfirmPayment(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	checkoutID := e.Request.PathValue("checkoutId")
	if _, err := h.checkoutService.Authorize(e.Request.Context(), checkoutID, e.Auth.Id); err != nil {
		return checkoutAccessError(err)
	}

	var outcome models.PaymentOutcome
	if err := e.BindBody(&outcome); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	ticket, err := h.checkoutService.HandleSuccess(e.Request.Context(), checkoutID, outcome)
	switch {
	case errors.Is(err, status.ErrCheckoutNotFound):
		return apis.NewNotFoundError("Checkout not found", nil)
	case errors.Is(err, status.ErrFailedPayment):
		return apis.NewBadRequestError("Payment was not successful", nil)
	case err != nil:
		return apis.NewBadRequestError("Failed to record ticket", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"ticket": ticket,
	})
}

// CancelCheckout - Widget close callback
func (h *CheckoutHandler) CancelCheckout(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	checkoutID := e.Request.PathValue("checkoutId")
	if _, err := h.checkoutService.Authorize(e.Request.Context(), checkoutID, e.Auth.Id); err != nil {
		return checkoutAccessError(err)
	}

	if err := h.checkoutService.HandleClose(e.Request.Context(), checkoutID); err != nil {
		if errors.Is(err, status.ErrCheckoutNotFound) {
			return apis.NewNotFoundError("Checkout not found", nil)
		}
		return apis.NewBadRequestError("Failed to cancel checkout", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}

// CheckoutStatus - Poll a checkout session
func (h *CheckoutHandler) CheckoutStatus(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	checkoutID := e.Request.PathValue("checkoutId")

	session, err := h.checkoutService.Authorize(e.Request.Context(), checkoutID, e.Auth.Id)
	if err != nil {
		return checkoutAccessError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"checkout_id": session.ID,
		"status":      session.Status,
		"reference":   session.Reference,
	})
}

// PaystackWebhook - Signed gateway webhook for charge notifications
func (h *CheckoutHandler) PaystackWebhook(e *core.RequestEvent) error {
	if h.gateway == nil {
		return apis.NewNotFoundError("No gateway configured", nil)
	}

	body, err := io.ReadAll(e.Request.Body)
	if err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	signature := e.Request.Header.Get("x-paystack-signature")
	if !h.gateway.VerifyWebhook(signature, body) {
		return apis.NewForbiddenError("Invalid signature", nil)
	}

	var event struct {
		Event string `json:"event"`
		Data  struct {
			Reference string          `json:"reference"`
			Status    string          `json:"status"`
			Amount    decimal.Decimal `json:"amount"`
			Currency  string          `json:"currency"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return apis.NewBadRequestError("Invalid payload", err)
	}

	if event.Event == "charge.success" {
		err := h.checkoutService.HandleGatewayNotification(e.Request.Context(), &status.Transaction{
			Reference: event.Data.Reference,
			Status:    "success",
			Amount:    event.Data.Amount,
			Currency:  event.Data.Currency,
		})
		if err != nil && !errors.Is(err, status.ErrCheckoutNotFound) {
			return apis.NewBadRequestError("Failed to process charge", err)
		}
	}

	return e.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// SimulatePayment - Development-only payment simulation
func (h *CheckoutHandler) SimulatePayment(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		CheckoutID string `json:"checkout_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	ctx := e.Request.Context()
	session, err := h.checkoutService.Authorize(ctx, req.CheckoutID, e.Auth.Id)
	if err != nil {
		return checkoutAccessError(err)
	}

	ticket, err := h.checkoutService.HandleSuccess(ctx, req.CheckoutID, models.PaymentOutcome{
		Reference:   session.Reference,
		AmountMinor: session.AmountMinor,
		Currency:    session.Currency,
	})
	if err != nil {
		return apis.NewBadRequestError("Failed to simulate payment", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"ticket": ticket})
}
