package gateway

import (
	"context"
	"fmt"

	"github.com/razorpay/razorpay-go"
	"github.com/rookgm/wellpay/internal/models"
)

// Client wraps the Razorpay SDK client. Credentials are server-held and
// never leave this process; only the public key id is exposed to browsers.
type Client struct {
	rz *razorpay.Client
}

// New creates new gateway Client instance
func New(keyID, keySecret string) *Client {
	return &Client{rz: razorpay.NewClient(keyID, keySecret)}
}

// CreateOrder mints a gateway-side order for amount minor units.
// This is a billable external action and is not locally reversible.
// The SDK performs its own HTTP round trip and does not take a context.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*models.GatewayOrder, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}

	raw, err := c.rz.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway create order: %w", err)
	}

	return orderFromMap(raw), nil
}

// orderFromMap converts the SDK's untyped order descriptor.
// JSON numbers arrive as float64.
func orderFromMap(raw map[string]interface{}) *models.GatewayOrder {
	order := models.GatewayOrder{}

	if v, ok := raw["id"].(string); ok {
		order.ID = v
	}
	if v, ok := raw["entity"].(string); ok {
		order.Entity = v
	}
	if v, ok := raw["amount"].(float64); ok {
		order.Amount = int64(v)
	}
	if v, ok := raw["amount_paid"].(float64); ok {
		order.AmountPaid = int64(v)
	}
	if v, ok := raw["amount_due"].(float64); ok {
		order.AmountDue = int64(v)
	}
	if v, ok := raw["currency"].(string); ok {
		order.Currency = v
	}
	if v, ok := raw["receipt"].(string); ok {
		order.Receipt = v
	}
	if v, ok := raw["status"].(string); ok {
		order.Status = v
	}
	if v, ok := raw["created_at"].(float64); ok {
		order.CreatedAt = int64(v)
	}

	return &order
}
