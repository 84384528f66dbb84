package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	pubnub "github.com/pubnub/go"
	"github.com/shopspring/decimal"

	"hotel-booking/internal/status"
	"hotel-booking/models"
	"hotel-booking/monitoring"
	"hotel-booking/store"
	"hotel-booking/utils"
)

var minorUnitsPerMajor = decimal.NewFromInt(100)

// NormalizeAmount converts a provider-reported minor-unit amount (number or
// numeric string) to major units. Unparseable input yields zero and a true
// anomaly flag so a corrupted amount never reaches the store; the sign is
// preserved, not clamped.
func NormalizeAmount(raw any) (decimal.Decimal, bool) {
	var minor decimal.Decimal

	switch v := raw.(type) {
	case int:
		minor = decimal.NewFromInt(int64(v))
	case int32:
		minor = decimal.NewFromInt(int64(v))
	case int64:
		minor = decimal.NewFromInt(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, true
		}
		minor = decimal.NewFromFloat(v)
	case decimal.Decimal:
		minor = v
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, true
		}
		minor = parsed
	default:
		return decimal.Zero, true
	}

	return minor.Div(minorUnitsPerMajor), false
}

// TicketService owns the write side of the order ledger.
type TicketService struct {
	Store   store.DocumentStore
	Monitor *monitoring.Monitor

	pubnub   *pubnub.PubNub
	currency string

	now   func() time.Time
	newID func() string
}

func NewTicketService(docStore store.DocumentStore, pn *pubnub.PubNub, currency string) *TicketService {
	return &TicketService{
		Store:    docStore,
		pubnub:   pn,
		currency: currency,
		now:      time.Now,
		newID:    utils.NewTicketID,
	}
}

// RecordTicket persists one ticket for a successful payment. The ticket
// append is authoritative; the contact-profile upsert is best-effort and a
// failure there is only logged. Calling this twice for a double-fired
// callback produces two tickets sharing a transaction reference; dedup is a
// known gap, not handled here.
func (s *TicketService) RecordTicket(ctx context.Context, owner models.Identity, form models.ContactForm, room models.RoomSnapshot, outcome models.PaymentOutcome) (*models.Ticket, error) {
	if strings.TrimSpace(owner.ID) == "" {
		return nil, status.ErrUnauthenticated
	}
	if strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.Phone) == "" {
		return nil, status.ErrInvalidInput
	}

	amount, anomalous := NormalizeAmount(outcome.AmountMinor)
	if anomalous {
		log.Printf("Invalid payment amount %v on reference %s, recording zero", outcome.AmountMinor, outcome.Reference)
	}

	currency := outcome.Currency
	if currency == "" {
		currency = s.currency
	}

	ticket := &models.Ticket{
		TicketID:             s.newID(),
		OwnerID:              owner.ID,
		ContactName:          form.Name,
		ContactPhone:         form.Phone,
		ContactEmail:         owner.Email,
		Amount:               amount,
		Currency:             currency,
		TransactionReference: outcome.Reference,
		RoomTitle:            room.Title,
		RoomPrice:            room.Price,
		CreatedAt:            s.now().UTC(),
		Status:               models.TicketStatusActive,
	}

	started := s.now()
	key, err := s.Store.Append(ctx, store.TicketsPath(owner.ID), ticket)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrPersistence, err)
	}
	ticket.StoreKey = key

	if s.Monitor != nil {
		s.Monitor.TrackStoreWrite(time.Since(started))
		s.Monitor.TrackTicketIssued(ticket.Currency)
	}

	profile := models.UserProfile{Name: form.Name, Phone: form.Phone}
	if err := s.Store.Write(ctx, store.UserInfoPath(owner.ID), profile); err != nil {
		// Losing a profile upsert is recoverable, losing a paid ticket
		// is not; the ticket is already in.
		log.Printf("Error upserting profile for %s: %v", owner.ID, err)
	}

	s.publishIssued(ticket)

	return ticket, nil
}

// AllocateTicket flips a ticket to allocated. Staff-only; the client read
// path never mutates status.
func (s *TicketService) AllocateTicket(ctx context.Context, ownerID, storeKey string) (*models.Ticket, error) {
	path := store.TicketsPath(ownerID)
	snapshot, err := s.Store.Collection(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrPersistence, err)
	}

	raw, ok := snapshot[storeKey]
	if !ok {
		return nil, fmt.Errorf("ticket %s/%s not found", ownerID, storeKey)
	}

	ticket, err := decodeTicket(storeKey, raw)
	if err != nil {
		return nil, err
	}

	ticket.Status = models.TicketStatusAllocated
	if err := s.Store.SetChild(ctx, path, storeKey, ticket); err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrPersistence, err)
	}

	return &ticket, nil
}

func (s *TicketService) publishIssued(ticket *models.Ticket) {
	if s.pubnub == nil {
		return
	}

	channel := fmt.Sprintf("user-%s", ticket.OwnerID)
	s.pubnub.Publish().
		Channel(channel).
		Message(map[string]any{
			"type":       "ticket_issued",
			"ticket_id":  ticket.TicketID,
			"room_title": ticket.RoomTitle,
			"amount":     ticket.Amount.String(),
			"currency":   ticket.Currency,
		}).
		Execute()
}
