package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TicketStatusActive    = "active"
	TicketStatusAllocated = "allocated"
)

// Ticket is one completed room/food order. Immutable after write except for
// Status, which only staff allocation flips.
type Ticket struct {
	TicketID             string          `json:"ticketId"`
	OwnerID              string          `json:"ownerId"`
	ContactName          string          `json:"name"`
	ContactPhone         string          `json:"phone"`
	ContactEmail         string          `json:"email,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	TransactionReference string          `json:"transactionId"`
	RoomTitle            string          `json:"roomTitle"`
	RoomPrice            string          `json:"roomPrice"`
	CreatedAt            time.Time       `json:"createdAt"`
	Status               string          `json:"status"` // active, allocated

	// StoreKey is the store-generated sub-key the ticket lives under.
	StoreKey string `json:"-"`
}

// TicketRow is the display projection of a ticket.
type TicketRow struct {
	RoomSummary string `json:"room_summary"`
	StatusBadge string `json:"status_badge"` // success, warning
	CopyText    string `json:"copy_text"`
}

// UserProfile is the checkout contact info, upserted last-write-wins.
type UserProfile struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Identity is the authenticated user as seen by this service.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ContactForm is the user-entered checkout input.
type ContactForm struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// RoomSnapshot captures the catalog item at purchase time. Catalog edits
// after the sale do not touch issued tickets.
type RoomSnapshot struct {
	Title string `json:"title"`
	Price string `json:"price"` // display-formatted, e.g. "25,500"
}
