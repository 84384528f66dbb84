package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"log"
	"sync"

	pubnub "github.com/pubnub/go/v7"
	"github.com/shopspring/decimal"

	"hotel-booking/internal/status"
)

type Config struct {
	SecretKey string `json:"secretKey" mapstructure:"secret_key"`
	PublicKey string `json:"publicKey" mapstructure:"public_key"`
	BaseURL   string `json:"baseUrl" mapstructure:"base_url"`

	// Optional PubNub relay for asynchronous charge notifications.
	PNSubKey  string `json:"pn_subkey" mapstructure:"pn_subkey"`
	PNUUID    string `json:"pn_uuid" mapstructure:"pn_uuid"`
	PNChannel string `json:"pn_channel" mapstructure:"pn_channel"`
}

type Paystack struct {
	PublicKey string

	secretKey  string
	pnChannels []string

	pn       *pubnub.PubNub
	listener *pubnub.Listener

	mu   sync.Mutex
	txCh chan *status.Transaction

	client *Client
}

// chargeEvent is the relayed webhook payload for charge notifications.
type chargeEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string          `json:"reference"`
		Status    string          `json:"status"`
		Amount    decimal.Decimal `json:"amount"`
		Currency  string          `json:"currency"`
		PaidAt    string          `json:"paid_at"`
	} `json:"data"`
}

// New returns a new Paystack instance. When a PubNub subscribe key is
// configured, charge notifications relayed over that channel are forwarded
// to the transaction channel.
func New(ctx context.Context, cfg *Config) (*Paystack, error) {
	p := &Paystack{
		PublicKey: cfg.PublicKey,
		secretKey: cfg.SecretKey,
		client: newClient(&ClientConfig{
			BaseURL:   cfg.BaseURL,
			SecretKey: cfg.SecretKey,
		}),
	}

	if cfg.PNSubKey != "" {
		pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.PNUUID))
		pnCfg.SubscribeKey = cfg.PNSubKey

		p.pn = pubnub.NewPubNub(pnCfg)
		p.listener = pubnub.NewListener()
		p.pnChannels = []string{cfg.PNChannel}

		p.pn.AddListener(p.listener)
		go p.listen(ctx)
		p.pn.Subscribe().
			Channels(p.pnChannels).
			Execute()
	}

	return p, nil
}

func (p *Paystack) listen(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-p.listener.Message:
			p.handleMessage(message)
		case <-p.listener.Status:
			// connection state changes are not actionable here
		}
	}
}

func (p *Paystack) handleMessage(message *pubnub.PNMessage) {
	data, ok := message.Message.(map[string]interface{})
	if !ok {
		return
	}

	raw, _ := json.Marshal(data)
	var event chargeEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		log.Printf("Error parsing charge notification: %v", err)
		return
	}

	if event.Event != "charge.success" {
		return
	}

	p.mu.Lock()
	ch := p.txCh
	p.mu.Unlock()
	if ch == nil {
		return
	}

	ch <- &status.Transaction{
		Reference: event.Data.Reference,
		Status:    event.Data.Status,
		Amount:    event.Data.Amount,
		Currency:  event.Data.Currency,
	}
}

// InitTransaction registers the checkout and returns the hosted payment URL.
func (p *Paystack) InitTransaction(ctx context.Context, email, currency, reference string, amountMinor int64) (string, error) {
	data, err := p.client.initTransaction(ctx, &initRequest{
		Email:       email,
		AmountMinor: amountMinor,
		Currency:    currency,
		Reference:   reference,
	})
	if err != nil {
		return "", err
	}
	return data.AuthorizationURL, nil
}

// VerifyTransaction fetches the authoritative state of a transaction.
func (p *Paystack) VerifyTransaction(ctx context.Context, reference string) (*status.Transaction, error) {
	data, err := p.client.verifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}

	return &status.Transaction{
		Reference: data.Reference,
		Status:    data.Status,
		Amount:    data.Amount,
		Currency:  data.Currency,
	}, nil
}

// VerifyWebhook checks the x-paystack-signature header: an HMAC-SHA512 of
// the raw body keyed with the secret key.
func (p *Paystack) VerifyWebhook(signature string, body []byte) bool {
	mac := hmac.New(sha512.New, []byte(p.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

func (p *Paystack) SetTransactionChannel(ch chan *status.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.txCh = ch
}

func (p *Paystack) Close(ctx context.Context) error {
	if p.pn != nil {
		p.pn.UnsubscribeAll()
	}
	return nil
}
