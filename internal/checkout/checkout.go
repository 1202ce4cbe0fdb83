// Package checkout drives the client-side checkout sequence: guard the cart,
// create a gateway order, open the hosted payment widget and, once the widget
// resolves, report the payment back to the verify endpoint and clear the cart.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rookgm/wellpay/internal/models"
	"go.uber.org/zap"
)

var ErrEmptyCart = errors.New("cart is empty")

const themeColor = "#8a7f70"

// Item is a cart line item. Amount is per unit in minor currency units.
type Item struct {
	Name     string
	Amount   int64
	Quantity int64
}

// Cart holds local cart state.
type Cart struct {
	Items []Item
}

// Total returns the cart total in minor currency units
func (c *Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Amount * item.Quantity
	}
	return total
}

// Empty reports whether the cart has no items
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// Clear drops all items
func (c *Cart) Clear() {
	c.Items = nil
}

// Options configures the hosted payment widget.
type Options struct {
	Key        string `json:"key"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	OrderID    string `json:"order_id"`
	Name       string `json:"name"`
	ThemeColor string `json:"theme_color"`
}

// Result is the outcome of a widget session: either a payment id with its
// checkout signature, or an error.
type Result struct {
	PaymentID string
	Signature string
	Err       error
}

// Completion is a single-shot result carrier. Resolve may be called any
// number of times; only the first call is observed.
type Completion struct {
	once sync.Once
	ch   chan Result
}

// NewCompletion creates new Completion instance
func NewCompletion() *Completion {
	return &Completion{ch: make(chan Result, 1)}
}

// Resolve delivers the result exactly once
func (c *Completion) Resolve(res Result) {
	c.once.Do(func() {
		c.ch <- res
		close(c.ch)
	})
}

// Done returns the channel the result is delivered on
func (c *Completion) Done() <-chan Result {
	return c.ch
}

// Widget opens the hosted payment widget and resolves done when the
// session finishes.
type Widget interface {
	Open(ctx context.Context, opts Options, done *Completion)
}

// Client talks to the payment service endpoints.
type Client struct {
	client    *http.Client
	baseURL   string
	publicKey string
	shopName  string
	logger    *zap.Logger
}

// New creates new checkout Client instance
func New(baseURL, publicKey, shopName string, logger *zap.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:   baseURL,
		publicKey: publicKey,
		shopName:  shopName,
		logger:    logger,
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type createOrderResponse struct {
	Order *models.GatewayOrder `json:"order"`
}

// CreateOrder requests a gateway order from the payment service
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency string) (*models.GatewayOrder, error) {
	body, err := json.Marshal(createOrderRequest{Amount: amount, Currency: currency})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create order: status %d: %s", resp.StatusCode, respBody)
	}

	var orderResp createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return nil, err
	}

	return orderResp.Order, nil
}

type verifyPaymentRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// VerifyPayment reports a completed widget session to the payment service
func (c *Client) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) error {
	body, err := json.Marshal(verifyPaymentRequest{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: signature,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/payments/verify", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("verify payment: status %d: %s", resp.StatusCode, respBody)
	}

	return nil
}

// Checkout runs the whole sequence. On widget success the payment is
// reported to the verify endpoint and the cart is cleared; any failure
// surfaces immediately, no retries.
func (c *Client) Checkout(ctx context.Context, cart *Cart, currency string, widget Widget) error {
	if cart.Empty() {
		return ErrEmptyCart
	}

	order, err := c.CreateOrder(ctx, cart.Total(), currency)
	if err != nil {
		c.logger.Error("checkout create order", zap.Error(err))
		return err
	}

	done := NewCompletion()
	widget.Open(ctx, Options{
		Key:        c.publicKey,
		Amount:     order.Amount,
		Currency:   order.Currency,
		OrderID:    order.ID,
		Name:       c.shopName,
		ThemeColor: themeColor,
	}, done)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-done.Done():
		if res.Err != nil {
			c.logger.Error("checkout widget", zap.Error(res.Err))
			return res.Err
		}

		if err := c.VerifyPayment(ctx, order.ID, res.PaymentID, res.Signature); err != nil {
			c.logger.Error("checkout verify payment", zap.Error(err))
			return err
		}

		cart.Clear()
		return nil
	}
}
