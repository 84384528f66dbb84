package payment

import (
	"context"

	"hotel-booking/internal/payment/paystack"
	"hotel-booking/internal/status"
)

// PaystackAdapter adapts the Paystack client to the Gateway interface.
type PaystackAdapter struct {
	paystack *paystack.Paystack
}

func NewPaystackAdapter(ctx context.Context, cfg *paystack.Config) (*PaystackAdapter, error) {
	p, err := paystack.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &PaystackAdapter{paystack: p}, nil
}

func (a *PaystackAdapter) GetProvider() Provider {
	return ProviderPaystack
}

func (a *PaystackAdapter) InitTransaction(ctx context.Context, req *CheckoutRequest) (string, error) {
	return a.paystack.InitTransaction(ctx, req.Email, req.Currency, req.Reference, req.AmountMinor)
}

func (a *PaystackAdapter) VerifyTransaction(ctx context.Context, reference string) (*TransactionStatus, error) {
	tx, err := a.paystack.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}

	return &TransactionStatus{
		Reference: tx.Reference,
		Status:    tx.Status,
		Amount:    tx.Amount,
		Currency:  tx.Currency,
	}, nil
}

func (a *PaystackAdapter) VerifyWebhook(signature string, body []byte) bool {
	return a.paystack.VerifyWebhook(signature, body)
}

func (a *PaystackAdapter) SetTransactionChannel(ch chan *status.Transaction) {
	a.paystack.SetTransactionChannel(ch)
}

func (a *PaystackAdapter) Close(ctx context.Context) error {
	return a.paystack.Close(ctx)
}
