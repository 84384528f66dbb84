package payment

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-booking/internal/status"
)

func TestSimulator_InitAndVerify(t *testing.T) {
	sim := NewSimulator()
	ctx := context.Background()

	url, err := sim.InitTransaction(ctx, &CheckoutRequest{
		Reference:   "REF-1",
		Email:       "ada@example.com",
		AmountMinor: 2550000,
		Currency:    "NGN",
	})
	require.NoError(t, err)
	assert.Contains(t, url, "REF-1")

	tx, err := sim.VerifyTransaction(ctx, "REF-1")
	require.NoError(t, err)
	assert.Equal(t, "success", tx.Status)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(2550000)))
}

func TestSimulator_VerifyUnknownReference(t *testing.T) {
	sim := NewSimulator()

	_, err := sim.VerifyTransaction(context.Background(), "REF-missing")
	assert.ErrorIs(t, err, status.ErrCheckoutNotFound)
}

func TestSimulator_EmitSuccess(t *testing.T) {
	sim := NewSimulator()

	ch := make(chan *status.Transaction, 1)
	sim.SetTransactionChannel(ch)
	sim.EmitSuccess("REF-1", 2550000, "NGN")

	tx := <-ch
	assert.Equal(t, "REF-1", tx.Reference)
	assert.Equal(t, "success", tx.Status)
	assert.Equal(t, "NGN", tx.Currency)
}

func TestSimulator_EmitWithoutChannel(t *testing.T) {
	sim := NewSimulator()

	// No channel wired; must not panic or block.
	sim.EmitSuccess("REF-1", 2550000, "NGN")
}

func TestFactory_CreateGateway(t *testing.T) {
	factory := NewFactory()
	ctx := context.Background()

	gateway, err := factory.CreateGateway(ctx, ProviderSimulator, nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderSimulator, gateway.GetProvider())

	_, err = factory.CreateGateway(ctx, Provider("unknown"), nil)
	assert.Error(t, err)

	_, err = factory.CreateGateway(ctx, ProviderPaystack, "not a config")
	assert.Error(t, err)
}

func TestFactory_GetSupportedProviders(t *testing.T) {
	providers := NewFactory().GetSupportedProviders()

	assert.Contains(t, providers, ProviderPaystack)
	assert.Contains(t, providers, ProviderSimulator)
}
