package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"hotel-booking/internal/payment"
	"hotel-booking/internal/status"
	"hotel-booking/models"
	"hotel-booking/monitoring"
	"hotel-booking/utils"
)

// CheckoutService drives one payment attempt from confirmation to outcome:
// awaiting_payment until the widget reports back, then succeeded, cancelled
// or failed. Sessions live in Redis with a TTL; an abandoned widget simply
// expires.
type CheckoutService struct {
	Redis   *redis.Client
	Tickets *TicketService

	gateway payment.Gateway
	pubnub  *pubnub.PubNub
	monitor *monitoring.Monitor
	breaker *utils.CircuitBreaker

	publicKey string
	currency  string
	timeout   time.Duration

	now    func() time.Time
	newRef func() string
}

func NewCheckoutService(redisClient *redis.Client, tickets *TicketService, gateway payment.Gateway, pn *pubnub.PubNub, monitor *monitoring.Monitor, publicKey, currency string, timeout time.Duration) *CheckoutService {
	return &CheckoutService{
		Redis:     redisClient,
		Tickets:   tickets,
		gateway:   gateway,
		pubnub:    pn,
		monitor:   monitor,
		breaker:   utils.NewCircuitBreaker("payment-verify"),
		publicKey: publicKey,
		currency:  currency,
		timeout:   timeout,
		now:       time.Now,
		newRef:    utils.NewPaymentReference,
	}
}

func checkoutKey(checkoutID string) string {
	return fmt.Sprintf("checkout:%s", checkoutID)
}

func referenceKey(reference string) string {
	return fmt.Sprintf("checkout_ref:%s", reference)
}

// Initiate validates the confirmation and opens a checkout session. The
// transition into awaiting_payment is rejected without an authenticated
// owner and non-blank contact details; nothing is written in that case.
func (s *CheckoutService) Initiate(ctx context.Context, owner models.Identity, form models.ContactForm, room models.RoomSnapshot) (*models.CheckoutSession, error) {
	if strings.TrimSpace(owner.ID) == "" {
		return nil, status.ErrUnauthenticated
	}
	if strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.Phone) == "" {
		return nil, status.ErrInvalidInput
	}

	amountMinor, err := minorUnitsFromPrice(room.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog price %q: %w", room.Price, err)
	}

	now := s.now()
	session := &models.CheckoutSession{
		ID:          fmt.Sprintf("checkout_%s_%d", owner.ID, now.Unix()),
		OwnerID:     owner.ID,
		Email:       owner.Email,
		Name:        form.Name,
		Phone:       form.Phone,
		Room:        room,
		AmountMinor: amountMinor,
		Currency:    s.currency,
		Reference:   s.newRef(),
		Status:      models.CheckoutStatusAwaitingPayment,
		CreatedAt:   now,
	}
	session.Widget = s.widgetConfig(session)

	key := checkoutKey(session.ID)
	if err := s.Redis.HSet(ctx, key, map[string]any{
		"owner_id":     session.OwnerID,
		"email":        session.Email,
		"name":         session.Name,
		"phone":        session.Phone,
		"room_title":   session.Room.Title,
		"room_price":   session.Room.Price,
		"amount_minor": session.AmountMinor,
		"currency":     session.Currency,
		"reference":    session.Reference,
		"status":       session.Status,
		"created_at":   now.Unix(),
	}).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrPersistence, err)
	}
	s.Redis.Expire(ctx, key, s.timeout)

	// Reference lookup for webhook and gateway notifications.
	s.Redis.Set(ctx, referenceKey(session.Reference), session.ID, s.timeout)

	if s.gateway != nil {
		if _, err := s.gateway.InitTransaction(ctx, &payment.CheckoutRequest{
			Reference:   session.Reference,
			Email:       session.Widget.Email,
			FirstName:   session.Widget.FirstName,
			LastName:    session.Widget.LastName,
			Phone:       session.Phone,
			AmountMinor: session.AmountMinor,
			Currency:    session.Currency,
		}); err != nil {
			// The inline widget can still open with the public key.
			log.Printf("Error registering transaction %s with gateway: %v", session.Reference, err)
		}
	}

	if s.monitor != nil {
		s.monitor.TrackCheckoutOpened()
	}

	return session, nil
}

// HandleSuccess is the widget's success callback: verify when a gateway is
// wired, fire the ticket writer, settle the session. The payment itself is
// never retried or reversed here; a write failure after capture is surfaced
// to the user and left to support.
func (s *CheckoutService) HandleSuccess(ctx context.Context, checkoutID string, outcome models.PaymentOutcome) (*models.Ticket, error) {
	session, err := s.Load(ctx, checkoutID)
	if err != nil {
		return nil, err
	}

	if outcome.Reference == "" {
		outcome.Reference = session.Reference
	}

	if s.gateway != nil {
		result, err := s.breaker.Execute(ctx, func() (any, error) {
			return s.gateway.VerifyTransaction(ctx, outcome.Reference)
		})
		if err != nil {
			// The widget already reported success; a verify outage is
			// not grounds to drop a paid order.
			log.Printf("Error verifying transaction %s, proceeding on widget outcome: %v", outcome.Reference, err)
		} else if tx := result.(*payment.TransactionStatus); tx.Status != "success" {
			s.settle(ctx, session, models.CheckoutStatusFailed, fmt.Sprintf("gateway reports %s", tx.Status))
			return nil, status.ErrFailedPayment
		}
	}

	owner := models.Identity{ID: session.OwnerID, Email: session.Email}
	form := models.ContactForm{Name: session.Name, Phone: session.Phone}

	ticket, err := s.Tickets.RecordTicket(ctx, owner, form, session.Room, outcome)
	if err != nil {
		s.settle(ctx, session, models.CheckoutStatusFailed, err.Error())
		s.notify(session.OwnerID, "error", fmt.Sprintf("Payment successful, but there was an error saving your ticket: %v. Please contact support.", err))
		return nil, err
	}

	s.settle(ctx, session, models.CheckoutStatusSucceeded, "")
	s.notify(session.OwnerID, "success", "Payment successful! Your ticket is ready.")

	return ticket, nil
}

// HandleClose is the widget's cancel callback. Informational only.
func (s *CheckoutService) HandleClose(ctx context.Context, checkoutID string) error {
	session, err := s.Load(ctx, checkoutID)
	if err != nil {
		return err
	}

	s.settle(ctx, session, models.CheckoutStatusCancelled, "")
	s.notify(session.OwnerID, "info", "Transaction was closed")
	return nil
}

// HandleGatewayNotification settles a checkout from an asynchronous gateway
// notification instead of the widget callback.
func (s *CheckoutService) HandleGatewayNotification(ctx context.Context, tx *status.Transaction) error {
	if tx.Status != "success" {
		return nil
	}

	checkoutID, err := s.Redis.Get(ctx, referenceKey(tx.Reference)).Result()
	if errors.Is(err, redis.Nil) {
		return status.ErrCheckoutNotFound
	} else if err != nil {
		return err
	}

	_, err = s.HandleSuccess(ctx, checkoutID, models.PaymentOutcome{
		Reference:   tx.Reference,
		AmountMinor: tx.Amount.String(),
		Currency:    tx.Currency,
	})
	return err
}

// Authorize loads a checkout session and confirms it belongs to the caller.
// Checkout ids embed the owner id and a timestamp, so possession of an id is
// not proof of ownership.
func (s *CheckoutService) Authorize(ctx context.Context, checkoutID, ownerID string) (*models.CheckoutSession, error) {
	session, err := s.Load(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	if session.OwnerID != ownerID {
		return nil, status.ErrForbidden
	}
	return session, nil
}

// Load reads a checkout session back from Redis.
func (s *CheckoutService) Load(ctx context.Context, checkoutID string) (*models.CheckoutSession, error) {
	data, err := s.Redis.HGetAll(ctx, checkoutKey(checkoutID)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, status.ErrCheckoutNotFound
	}

	amountMinor, _ := strconv.ParseInt(data["amount_minor"], 10, 64)
	createdAt, _ := strconv.ParseInt(data["created_at"], 10, 64)

	session := &models.CheckoutSession{
		ID:          checkoutID,
		OwnerID:     data["owner_id"],
		Email:       data["email"],
		Name:        data["name"],
		Phone:       data["phone"],
		Room:        models.RoomSnapshot{Title: data["room_title"], Price: data["room_price"]},
		AmountMinor: amountMinor,
		Currency:    data["currency"],
		Reference:   data["reference"],
		Status:      data["status"],
		CreatedAt:   time.Unix(createdAt, 0),
	}
	session.Widget = s.widgetConfig(session)
	return session, nil
}

func (s *CheckoutService) settle(ctx context.Context, session *models.CheckoutSession, outcome, reason string) {
	fields := map[string]any{"status": outcome}
	if reason != "" {
		fields["failure_reason"] = reason
	}
	if err := s.Redis.HSet(ctx, checkoutKey(session.ID), fields).Err(); err != nil {
		log.Printf("Error settling checkout %s as %s: %v", session.ID, outcome, err)
	}

	if s.monitor != nil {
		s.monitor.TrackPaymentOutcome(outcome)
	}
}

func (s *CheckoutService) notify(ownerID, level, message string) {
	if s.pubnub == nil {
		return
	}

	channel := fmt.Sprintf("user-%s", ownerID)
	s.pubnub.Publish().
		Channel(channel).
		Message(map[string]any{
			"type":    "notification",
			"level":   level,
			"message": message,
		}).
		Execute()
}

func (s *CheckoutService) widgetConfig(session *models.CheckoutSession) models.WidgetConfig {
	email := session.Email
	if email == "" {
		email = "user@example.com"
	}

	first, last := splitName(session.Name)
	return models.WidgetConfig{
		PublicKey:   s.publicKey,
		Email:       email,
		AmountMinor: session.AmountMinor,
		Currency:    session.Currency,
		FirstName:   first,
		LastName:    last,
		Phone:       session.Phone,
		Reference:   session.Reference,
	}
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// minorUnitsFromPrice converts a display price like "25,500" to minor units.
func minorUnitsFromPrice(price string) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(price), ",", "")
	major, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, err
	}
	return major.Mul(minorUnitsPerMajor).IntPart(), nil
}
