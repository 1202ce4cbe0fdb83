package models

import "time"

// order status
const (
	OrderStatusCreated   = "created"
	OrderStatusCompleted = "completed"
)

// Order is order entity persisted in the orders table.
// It is keyed by the gateway-assigned order id; the payment fields
// are empty until the order is verified.
type Order struct {
	ID               string
	Amount           int64
	Currency         string
	Receipt          string
	Status           string
	PaymentID        string
	RazorpayOrderID  string
	PaymentSignature string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
	VerifiedAt       *time.Time
}

// GatewayOrder is the order descriptor returned by the payment gateway
// at creation time. It is passed through to the checkout client as-is.
type GatewayOrder struct {
	ID         string `json:"id"`
	Entity     string `json:"entity"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
}

// PaymentConfirmation carries the template variables of the
// payment confirmation email. Amount is in major currency units.
type PaymentConfirmation struct {
	Email     string
	OrderID   string
	PaymentID string
	Amount    float64
}
