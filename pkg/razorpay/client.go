package razorpay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	rzp "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
	circuit "github.com/rubyist/circuitbreaker"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/pkg/config"
	"github.com/angelmondragon/staybook-backend/pkg/logger"
	"github.com/angelmondragon/staybook-backend/pkg/money"
)

// GatewayName is stored on every payment attempt.
const GatewayName = "Razorpay"

var (
	errKeyIDRequired         = errors.New("razorpay key id is required")
	errKeySecretRequired     = errors.New("razorpay key secret is required")
	errWebhookSecretRequired = errors.New("razorpay webhook secret is required")

	// ErrSignatureMismatch is returned when a payment or webhook signature does not verify.
	ErrSignatureMismatch = errors.New("signature mismatch")
	// ErrGatewayUnavailable is returned while the breaker is open.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Order is the gateway order handle returned to the client.
type Order struct {
	ID       string
	Amount   decimal.Decimal
	Currency string
	Receipt  string
	Status   string
}

// Client wraps the Razorpay SDK behind a threshold circuit breaker.
type Client struct {
	orders        orderCreator
	keyID         string
	keySecret     string
	webhookSecret string
	currency      string
	timeout       time.Duration
	breaker       *circuit.Breaker
}

// NewClient validates credentials and builds the gateway client.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}
	webhookSecret := strings.TrimSpace(cfg.WebhookSecret)
	if webhookSecret == "" {
		return nil, errWebhookSecretRequired
	}

	api := rzp.NewClient(keyID, keySecret)
	c := newClient(api.Order, cfg)
	c.keyID = keyID
	c.keySecret = keySecret
	c.webhookSecret = webhookSecret

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("razorpay client initialized (currency %s)", c.currency))
	}
	return c, nil
}

func newClient(orders orderCreator, cfg config.RazorpayConfig) *Client {
	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "INR"
	}
	threshold := cfg.BreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}
	return &Client{
		orders:        orders,
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		currency:      currency,
		timeout:       cfg.Timeout,
		breaker:       circuit.NewThresholdBreaker(threshold),
	}
}

// KeyID is the public key handed to checkout clients.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// Currency reports the settlement currency used for orders.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// CreateOrder registers an auto-captured order for amount (in rupees).
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*Order, error) {
	if c == nil || c.orders == nil {
		return nil, errors.New("razorpay client not initialized")
	}
	if !amount.IsPositive() {
		return nil, errors.New("order amount must be positive")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := map[string]interface{}{
		"amount":          money.ToMinorUnits(amount),
		"currency":        c.currency,
		"payment_capture": 1,
	}
	if receipt != "" {
		req["receipt"] = receipt
	}

	var resp map[string]interface{}
	err := c.breaker.Call(func() error {
		var callErr error
		resp, callErr = c.orders.Create(req, nil)
		return callErr
	}, c.timeout)
	if err != nil {
		if errors.Is(err, circuit.ErrBreakerOpen) {
			return nil, ErrGatewayUnavailable
		}
		return nil, fmt.Errorf("create razorpay order: %w", err)
	}
	return parseOrder(resp, c.currency)
}

func parseOrder(resp map[string]interface{}, currency string) (*Order, error) {
	id, _ := resp["id"].(string)
	if id == "" {
		return nil, errors.New("razorpay order response missing id")
	}
	order := &Order{ID: id, Currency: currency}
	switch v := resp["amount"].(type) {
	case float64:
		order.Amount = money.FromMinorUnits(int64(v))
	case int64:
		order.Amount = money.FromMinorUnits(v)
	case int:
		order.Amount = money.FromMinorUnits(int64(v))
	}
	if cur, ok := resp["currency"].(string); ok && cur != "" {
		order.Currency = cur
	}
	order.Receipt, _ = resp["receipt"].(string)
	order.Status, _ = resp["status"].(string)
	return order, nil
}

// VerifyPaymentSignature checks the checkout signature, an HMAC-SHA256 of
// "order_id|payment_id" keyed with the API secret.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	if strings.TrimSpace(signature) == "" || orderID == "" || paymentID == "" {
		return ErrSignatureMismatch
	}
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	if !utils.VerifyPaymentSignature(params, signature, c.keySecret) {
		return ErrSignatureMismatch
	}
	return nil
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the raw body.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) error {
	if strings.TrimSpace(signature) == "" || len(body) == 0 {
		return ErrSignatureMismatch
	}
	if !utils.VerifyWebhookSignature(string(body), signature, c.webhookSecret) {
		return ErrSignatureMismatch
	}
	return nil
}
