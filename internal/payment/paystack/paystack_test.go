package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyWebhook_ValidSignature(t *testing.T) {
	p := &Paystack{secretKey: "sk_test_secret"}
	body := []byte(`{"event":"charge.success","data":{"reference":"REF-1"}}`)

	mac := hmac.New(sha512.New, []byte("sk_test_secret"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, p.VerifyWebhook(signature, body))
}

func TestVerifyWebhook_InvalidSignature(t *testing.T) {
	p := &Paystack{secretKey: "sk_test_secret"}
	body := []byte(`{"event":"charge.success"}`)

	assert.False(t, p.VerifyWebhook("deadbeef", body))
	assert.False(t, p.VerifyWebhook("", body))
}

func TestVerifyWebhook_TamperedBody(t *testing.T) {
	p := &Paystack{secretKey: "sk_test_secret"}
	body := []byte(`{"amount":2550000}`)

	mac := hmac.New(sha512.New, []byte("sk_test_secret"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.False(t, p.VerifyWebhook(signature, []byte(`{"amount":9999999}`)))
}

func TestClient_InitTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": true,
			"message": "Authorization URL created",
			"data": {
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code": "abc123",
				"reference": "REF-1"
			}
		}`))
	}))
	defer server.Close()

	client := newClient(&ClientConfig{BaseURL: server.URL, SecretKey: "sk_test_secret"})

	data, err := client.initTransaction(context.Background(), &initRequest{
		Email:       "ada@example.com",
		AmountMinor: 2550000,
		Currency:    "NGN",
		Reference:   "REF-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.paystack.com/abc123", data.AuthorizationURL)
	assert.Equal(t, "REF-1", data.Reference)
}

func TestClient_VerifyTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/REF-1", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {
				"status": "success",
				"reference": "REF-1",
				"amount": 2550000,
				"currency": "NGN",
				"paid_at": "2025-08-01T12:00:00.000Z"
			}
		}`))
	}))
	defer server.Close()

	client := newClient(&ClientConfig{BaseURL: server.URL, SecretKey: "sk_test_secret"})

	data, err := client.verifyTransaction(context.Background(), "REF-1")
	require.NoError(t, err)

	assert.Equal(t, "success", data.Status)
	assert.Equal(t, "REF-1", data.Reference)
	assert.Equal(t, "NGN", data.Currency)
}

func TestClient_ApiError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status": false, "message": "Invalid key"}`))
	}))
	defer server.Close()

	client := newClient(&ClientConfig{BaseURL: server.URL, SecretKey: "sk_bad"})

	_, err := client.verifyTransaction(context.Background(), "REF-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid key")
}

func TestClient_RejectedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": false, "message": "Transaction not found"}`))
	}))
	defer server.Close()

	client := newClient(&ClientConfig{BaseURL: server.URL, SecretKey: "sk_test_secret"})

	_, err := client.verifyTransaction(context.Background(), "REF-missing")
	assert.Error(t, err)
}
