package models

// gateway webhook events
const (
	EventPaymentCaptured = "payment.captured"
)

// PaymentEntity is the payment object carried inside a webhook event.
// Amount is in minor currency units (paise).
type PaymentEntity struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	OrderID  string `json:"order_id"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
}

// WebhookEvent is a gateway payment-event notification.
type WebhookEvent struct {
	Entity  string `json:"entity"`
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}
