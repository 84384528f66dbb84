package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"hotel-booking/internal/status"
)

// Simulator is the development-mode gateway: every transaction succeeds and
// outcomes can be emitted on demand.
type Simulator struct {
	mu   sync.Mutex
	txCh chan *status.Transaction
	seen map[string]int64 // reference -> minor amount
}

func NewSimulator() *Simulator {
	return &Simulator{
		seen: make(map[string]int64),
	}
}

func (s *Simulator) GetProvider() Provider {
	return ProviderSimulator
}

func (s *Simulator) InitTransaction(ctx context.Context, req *CheckoutRequest) (string, error) {
	s.mu.Lock()
	s.seen[req.Reference] = req.AmountMinor
	s.mu.Unlock()
	return fmt.Sprintf("https://checkout.invalid/simulated/%s", req.Reference), nil
}

func (s *Simulator) VerifyTransaction(ctx context.Context, reference string) (*TransactionStatus, error) {
	s.mu.Lock()
	amount, ok := s.seen[reference]
	s.mu.Unlock()
	if !ok {
		return nil, status.ErrCheckoutNotFound
	}

	return &TransactionStatus{
		Reference: reference,
		Status:    "success",
		Amount:    decimal.NewFromInt(amount),
	}, nil
}

func (s *Simulator) VerifyWebhook(signature string, body []byte) bool {
	return true
}

func (s *Simulator) SetTransactionChannel(ch chan *status.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txCh = ch
}

// EmitSuccess pushes a successful charge notification, as the real gateway
// would after the shopper completes the widget.
func (s *Simulator) EmitSuccess(reference string, amountMinor int64, currency string) {
	s.mu.Lock()
	ch := s.txCh
	s.mu.Unlock()
	if ch == nil {
		return
	}

	ch <- &status.Transaction{
		Reference: reference,
		Status:    "success",
		Amount:    decimal.NewFromInt(amountMinor),
		Currency:  currency,
		Timestamp: time.Now().Unix(),
	}
}

func (s *Simulator) Close(ctx context.Context) error {
	return nil
}
