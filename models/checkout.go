package models

import (
	"time"
)

const (
	CheckoutStatusAwaitingPayment = "awaiting_payment"
	CheckoutStatusSucceeded       = "succeeded"
	CheckoutStatusCancelled       = "cancelled"
	CheckoutStatusFailed          = "failed"
)

// CheckoutSession tracks one payment attempt from confirmation to outcome.
type CheckoutSession struct {
	ID          string       `json:"checkout_id"`
	OwnerID     string       `json:"owner_id"`
	Email       string       `json:"email,omitempty"`
	Name        string       `json:"name"`
	Phone       string       `json:"phone"`
	Room        RoomSnapshot `json:"room"`
	AmountMinor int64        `json:"amount_minor"`
	Currency    string       `json:"currency"`
	Reference   string       `json:"reference"`
	Status      string       `json:"status"` // awaiting_payment, succeeded, cancelled, failed
	CreatedAt   time.Time    `json:"created_at"`

	Widget WidgetConfig `json:"widget"`
}

// WidgetConfig is everything the hosted payment widget needs to open.
type WidgetConfig struct {
	PublicKey   string `json:"public_key"`
	Email       string `json:"email"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Phone       string `json:"phone"`
	Reference   string `json:"ref"`
}

// PaymentOutcome is the widget's success callback payload. AmountMinor is
// left untyped because the provider reports either a number or a numeric
// string; normalization happens at write time.
type PaymentOutcome struct {
	Reference   string `json:"reference"`
	AmountMinor any    `json:"amount"`
	Currency    string `json:"currency,omitempty"`
}
