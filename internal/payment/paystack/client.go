package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

type ClientConfig struct {
	BaseURL   string `json:"baseUrl" mapstructure:"base_url"`
	SecretKey string `json:"secretKey" mapstructure:"secret_key"`
}

type Client struct {
	// baseURL is the base url of the Paystack API.
	baseURL string

	// secretKey authenticates every API call.
	secretKey string

	// hc is the http client.
	hc *http.Client
}

func newClient(c *ClientConfig) *Client {
	return &Client{
		baseURL:   c.BaseURL,
		secretKey: c.SecretKey,
		hc: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type initRequest struct {
	Email       string `json:"email"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
}

type initData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Status    string          `json:"status"`
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	PaidAt    string          `json:"paid_at"`
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) initTransaction(ctx context.Context, req *initRequest) (*initData, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var data initData
	if err := c.call(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) verifyTransaction(ctx context.Context, reference string) (*verifyData, error) {
	var data verifyData
	path := fmt.Sprintf("/transaction/verify/%s", reference)
	if err := c.call(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) call(ctx context.Context, method, path string, body *bytes.Reader, out any) error {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("paystack %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("paystack %s %s: decode response: %w", method, path, err)
	}

	if resp.StatusCode >= 400 || !env.Status {
		return fmt.Errorf("paystack %s %s: %s (http %d)", method, path, env.Message, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("paystack %s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}
