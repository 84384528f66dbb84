package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-booking/models"
	"hotel-booking/store"
)

func seedTickets(t *testing.T, memStore *store.MemoryStore, ownerID string, count int) []models.Ticket {
	t.Helper()

	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	tickets := make([]models.Ticket, 0, count)
	for i := 0; i < count; i++ {
		ticket := models.Ticket{
			TicketID:             fmt.Sprintf("TICKET-1754049600000-%d", i),
			OwnerID:              ownerID,
			ContactName:          "Ada Obi",
			ContactPhone:         "0800000000",
			Currency:             "NGN",
			TransactionReference: fmt.Sprintf("REF-%d", i),
			RoomTitle:            "Standard Room",
			RoomPrice:            "25,500",
			CreatedAt:            base.Add(time.Duration(i) * time.Minute),
			Status:               models.TicketStatusActive,
		}
		_, err := memStore.Append(context.Background(), store.TicketsPath(ownerID), ticket)
		require.NoError(t, err)
		tickets = append(tickets, ticket)
	}
	return tickets
}

func TestListTickets_NewestFirst(t *testing.T) {
	memStore := store.NewMemoryStore()
	service := NewLedgerService(memStore)
	seedTickets(t, memStore, "u1", 4)

	tickets, err := service.ListTickets(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, tickets, 4)

	for i := 1; i < len(tickets); i++ {
		assert.False(t, tickets[i].CreatedAt.After(tickets[i-1].CreatedAt),
			"tickets out of order at %d", i)
	}
	assert.Equal(t, "TICKET-1754049600000-3", tickets[0].TicketID)
}

func TestListTickets_AbsentCollection(t *testing.T) {
	service := NewLedgerService(store.NewMemoryStore())

	tickets, err := service.ListTickets(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestSubscribe_DeliversInitialSnapshot(t *testing.T) {
	memStore := store.NewMemoryStore()
	service := NewLedgerService(memStore)
	seedTickets(t, memStore, "u1", 2)

	var deliveries [][]models.Ticket
	unsub, err := service.Subscribe(context.Background(), "u1", func(tickets []models.Ticket) {
		deliveries = append(deliveries, tickets)
	})
	require.NoError(t, err)
	defer unsub()

	require.Len(t, deliveries, 1)
	assert.Len(t, deliveries[0], 2)
}

func TestSubscribe_EmptyLedgerDeliversEmptyList(t *testing.T) {
	service := NewLedgerService(store.NewMemoryStore())

	calls := 0
	unsub, err := service.Subscribe(context.Background(), "u1", func(tickets []models.Ticket) {
		calls++
		assert.NotNil(t, tickets)
		assert.Empty(t, tickets)
	})
	require.NoError(t, err)
	defer unsub()

	assert.Equal(t, 1, calls)
}

func TestSubscribe_DeliversOnChange(t *testing.T) {
	memStore := store.NewMemoryStore()
	service := NewLedgerService(memStore)

	var deliveries [][]models.Ticket
	unsub, err := service.Subscribe(context.Background(), "u1", func(tickets []models.Ticket) {
		deliveries = append(deliveries, tickets)
	})
	require.NoError(t, err)
	defer unsub()

	seedTickets(t, memStore, "u1", 1)

	require.Len(t, deliveries, 2)
	assert.Empty(t, deliveries[0])
	assert.Len(t, deliveries[1], 1)
}

func TestSubscribe_UnsubscribeStopsDeliveries(t *testing.T) {
	memStore := store.NewMemoryStore()
	service := NewLedgerService(memStore)

	calls := 0
	unsub, err := service.Subscribe(context.Background(), "u1", func(tickets []models.Ticket) {
		calls++
	})
	require.NoError(t, err)

	unsub()
	unsub() // safe to call twice
	seedTickets(t, memStore, "u1", 1)

	assert.Equal(t, 1, calls)
}

func TestTicketsFromSnapshot_SkipsUndecodable(t *testing.T) {
	snapshot := store.Snapshot{
		"0000000000001-0001-AAAA": json.RawMessage(`{"ticketId":"TICKET-1-1","createdAt":"2025-08-01T12:00:00Z"}`),
		"0000000000002-0002-BBBB": json.RawMessage(`not json`),
	}

	tickets := ticketsFromSnapshot(snapshot)

	require.Len(t, tickets, 1)
	assert.Equal(t, "TICKET-1-1", tickets[0].TicketID)
}

func TestDecodeTicket_DefaultsStatusToActive(t *testing.T) {
	ticket, err := decodeTicket("key-1", json.RawMessage(`{"ticketId":"TICKET-1-1"}`))

	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusActive, ticket.Status)
	assert.Equal(t, "key-1", ticket.StoreKey)
}

func TestPage_TwelveItemsPageSizeFive(t *testing.T) {
	tickets := make([]models.Ticket, 12)
	for i := range tickets {
		tickets[i].TicketID = fmt.Sprintf("TICKET-1-%d", i)
	}

	assert.Equal(t, 3, TotalPages(len(tickets), 5))
	assert.Len(t, Page(tickets, 1, 5), 5)
	assert.Len(t, Page(tickets, 2, 5), 5)
	assert.Len(t, Page(tickets, 3, 5), 2)
	assert.Empty(t, Page(tickets, 4, 5))
}

func TestPage_InvalidArguments(t *testing.T) {
	tickets := make([]models.Ticket, 3)

	assert.Empty(t, Page(tickets, 0, 5))
	assert.Empty(t, Page(tickets, -1, 5))
	assert.Empty(t, Page(tickets, 1, 0))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 5))
	assert.Equal(t, 1, TotalPages(1, 5))
	assert.Equal(t, 1, TotalPages(5, 5))
	assert.Equal(t, 2, TotalPages(6, 5))
	assert.Equal(t, 0, TotalPages(10, 0))
}

func TestRowFor(t *testing.T) {
	ticket := models.Ticket{
		TicketID:  "TICKET-1754049600000-7",
		RoomTitle: "Standard Room",
		RoomPrice: "25,500",
		Currency:  "NGN",
		CreatedAt: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
		Status:    models.TicketStatusActive,
	}

	row := RowFor(ticket)

	assert.Equal(t, "Standard Room | NGN 25,500 | 8/1/2025", row.RoomSummary)
	assert.Equal(t, "success", row.StatusBadge)
	assert.Equal(t, "TICKET-1754049600000-7", row.CopyText)
}

func TestRowFor_AllocatedBadge(t *testing.T) {
	ticket := models.Ticket{
		TicketID: "TICKET-1754049600000-8",
		Status:   models.TicketStatusAllocated,
	}

	assert.Equal(t, "warning", RowFor(ticket).StatusBadge)
}
