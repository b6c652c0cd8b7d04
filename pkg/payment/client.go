package payment

import (
	"errors"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"

	"github.com/poornima-canteen/canteen-backend/pkg/config"
	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
)

var (
	errKeyIDRequired     = errors.New("payment key id is required")
	errKeySecretRequired = errors.New("payment key secret is required")
)

// Client wraps the hosted checkout provider with centralized error mapping
// and signature verification.
type Client struct {
	sdk       *razorpay.Client
	keyID     string
	keySecret string
	currency  string
	merchant  string
}

// Order is the provider-side order backing one widget invocation.
type Order struct {
	ID          string
	AmountPaise int64
	Currency    string
}

// CreateOrderInput carries the amount and receipt for a provider order.
type CreateOrderInput struct {
	AmountPaise int64
	Receipt     string
	Notes       map[string]any
}

// NewClient initializes the provider wrapper and validates the credentials.
func NewClient(cfg config.PaymentConfig) (*Client, error) {
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}

	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "INR"
	}

	return &Client{
		sdk:       razorpay.NewClient(keyID, keySecret),
		keyID:     keyID,
		keySecret: keySecret,
		currency:  currency,
		merchant:  cfg.MerchantName,
	}, nil
}

// KeyID exposes the public key the widget embeds.
func (c *Client) KeyID() string { return c.keyID }

// Currency returns the configured settlement currency.
func (c *Client) Currency() string { return c.currency }

// MerchantName returns the display name shown in the widget header.
func (c *Client) MerchantName() string { return c.merchant }

// CreateOrder registers an order with the provider in minor currency units.
func (c *Client) CreateOrder(input CreateOrderInput) (*Order, error) {
	if input.AmountPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order amount must be positive")
	}

	data := map[string]any{
		"amount":   input.AmountPaise,
		"currency": c.currency,
		"receipt":  input.Receipt,
	}
	if len(input.Notes) > 0 {
		data["notes"] = input.Notes
	}

	body, err := c.sdk.Order.Create(data, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment order")
	}

	orderID, _ := body["id"].(string)
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment provider returned no order id")
	}

	return &Order{ID: orderID, AmountPaise: input.AmountPaise, Currency: c.currency}, nil
}

// VerifySignature checks the provider's HMAC over the order/payment tuple.
// The widget hands this triple back on success; a mismatch means the
// callback cannot be trusted as an order confirmation.
func (c *Client) VerifySignature(orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return pkgerrors.New(pkgerrors.CodePaymentFailed, "payment confirmation is incomplete")
	}

	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	if !utils.VerifyPaymentSignature(params, signature, c.keySecret) {
		return pkgerrors.New(pkgerrors.CodePaymentFailed, "payment signature mismatch")
	}
	return nil
}
