package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"hotel-booking/internal/status"
)

// Provider identifies a payment gateway implementation.
type Provider string

const (
	ProviderPaystack  Provider = "paystack"
	ProviderSimulator Provider = "simulator"
)

// CheckoutRequest carries everything a gateway needs to open a checkout.
type CheckoutRequest struct {
	Reference   string `json:"reference"`
	Email       string `json:"email"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Phone       string `json:"phone"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
}

// TransactionStatus is the gateway's server-side view of a transaction.
type TransactionStatus struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"` // minor units as reported
	Currency  string          `json:"currency"`
	PaidAt    string          `json:"paid_at,omitempty"`
}

// Gateway is the common interface all payment providers implement. A gateway
// emits at most one outcome per reference; the widget-side callbacks arrive
// over HTTP while asynchronous gateway notifications arrive on the
// transaction channel.
type Gateway interface {
	// GetProvider returns the provider type.
	GetProvider() Provider

	// InitTransaction registers the checkout with the gateway and returns
	// the hosted checkout URL, when the provider has one.
	InitTransaction(ctx context.Context, req *CheckoutRequest) (string, error)

	// VerifyTransaction checks the authoritative status of a transaction.
	VerifyTransaction(ctx context.Context, reference string) (*TransactionStatus, error)

	// VerifyWebhook reports whether a webhook body matches its signature.
	VerifyWebhook(signature string, body []byte) bool

	// SetTransactionChannel sets the channel for asynchronous transaction
	// notifications.
	SetTransactionChannel(ch chan *status.Transaction)

	// Close gracefully closes any connections.
	Close(ctx context.Context) error
}
