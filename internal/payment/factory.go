package payment

import (
	"context"
	"fmt"

	"hotel-booking/internal/payment/paystack"
)

// Factory creates gateway instances by provider type.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) CreateGateway(ctx context.Context, provider Provider, config any) (Gateway, error) {
	switch provider {
	case ProviderPaystack:
		cfg, ok := config.(*paystack.Config)
		if !ok {
			return nil, fmt.Errorf("invalid paystack config type, expected *paystack.Config")
		}
		return NewPaystackAdapter(ctx, cfg)

	case ProviderSimulator:
		return NewSimulator(), nil

	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", provider)
	}
}

func (f *Factory) GetSupportedProviders() []Provider {
	return []Provider{ProviderPaystack, ProviderSimulator}
}
