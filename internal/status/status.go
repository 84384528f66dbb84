package status

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrUnauthenticated  = errors.New("auth: not authenticated")
	ErrInvalidInput     = errors.New("checkout: name and phone are required")
	ErrCheckoutNotFound = errors.New("checkout: session not found")
	ErrForbidden        = errors.New("checkout: owned by another user")
	ErrFailedPayment    = errors.New("payment: payment failed")
	ErrPersistence      = errors.New("store: write rejected")
)

// Transaction is the payload pushed by a payment gateway notification.
type Transaction struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Timestamp int64           `json:"timestamp"`
}
