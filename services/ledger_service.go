package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"

	"hotel-booking/models"
	"hotel-booking/monitoring"
	"hotel-booking/store"
)

// DefaultPageSize matches the order screen's rows-per-page.
const DefaultPageSize = 5

// LedgerService owns the read side of the order ledger: live subscriptions,
// one-shot listings, pagination and display rows.
type LedgerService struct {
	Store   store.DocumentStore
	Monitor *monitoring.Monitor
}

func NewLedgerService(docStore store.DocumentStore) *LedgerService {
	return &LedgerService{Store: docStore}
}

// Subscribe delivers the owner's full ordered ticket list immediately and
// after every store change, until the returned unsubscribe is called. An
// absent collection delivers an empty list, not an error.
func (s *LedgerService) Subscribe(ctx context.Context, ownerID string, onUpdate func([]models.Ticket)) (store.Unsubscribe, error) {
	unsub, err := s.Store.Subscribe(ctx, store.TicketsPath(ownerID), func(snapshot store.Snapshot) {
		onUpdate(ticketsFromSnapshot(snapshot))
	})
	if err != nil {
		return nil, err
	}

	if s.Monitor != nil {
		s.Monitor.TrackSubscription(1)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			unsub()
			if s.Monitor != nil {
				s.Monitor.TrackSubscription(-1)
			}
		})
	}, nil
}

// ListTickets is the one-shot equivalent of a subscription delivery.
func (s *LedgerService) ListTickets(ctx context.Context, ownerID string) ([]models.Ticket, error) {
	snapshot, err := s.Store.Collection(ctx, store.TicketsPath(ownerID))
	if err != nil {
		return nil, err
	}
	return ticketsFromSnapshot(snapshot), nil
}

// ticketsFromSnapshot maps the store's dictionary shape to an ordered list,
// newest first. Ordering is explicit rather than trusting store iteration
// order. Entries that fail to decode are skipped, not fatal.
func ticketsFromSnapshot(snapshot store.Snapshot) []models.Ticket {
	tickets := make([]models.Ticket, 0, len(snapshot))
	for key, raw := range snapshot {
		ticket, err := decodeTicket(key, raw)
		if err != nil {
			log.Printf("Error decoding ticket %s: %v", key, err)
			continue
		}
		tickets = append(tickets, ticket)
	}

	sort.SliceStable(tickets, func(i, j int) bool {
		if !tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
			return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
		}
		return tickets[i].StoreKey > tickets[j].StoreKey
	})

	return tickets
}

func decodeTicket(key string, raw json.RawMessage) (models.Ticket, error) {
	var ticket models.Ticket
	if err := json.Unmarshal(raw, &ticket); err != nil {
		return models.Ticket{}, err
	}

	ticket.StoreKey = key
	if ticket.Status == "" {
		ticket.Status = models.TicketStatusActive
	}
	return ticket, nil
}

// Page returns the pageNumber-th fixed-size slice of tickets, clamped to the
// list bounds. Out-of-range pages yield an empty slice, never an error.
func Page(tickets []models.Ticket, pageNumber, pageSize int) []models.Ticket {
	if pageNumber < 1 || pageSize < 1 {
		return []models.Ticket{}
	}

	start := (pageNumber - 1) * pageSize
	if start >= len(tickets) {
		return []models.Ticket{}
	}

	end := start + pageSize
	if end > len(tickets) {
		end = len(tickets)
	}
	return tickets[start:end]
}

// TotalPages is ceil(count/pageSize); an empty list has zero pages.
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize < 1 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// RowFor maps one ticket to its display row. CopyText is the payload the
// client puts on the clipboard; nothing here touches stored state.
func RowFor(ticket models.Ticket) models.TicketRow {
	badge := "success"
	if ticket.Status == models.TicketStatusAllocated {
		badge = "warning"
	}

	return models.TicketRow{
		RoomSummary: fmt.Sprintf("%s | %s %s | %s", ticket.RoomTitle, ticket.Currency, ticket.RoomPrice, ticket.CreatedAt.Format("1/2/2006")),
		StatusBadge: badge,
		CopyText:    ticket.TicketID,
	}
}
