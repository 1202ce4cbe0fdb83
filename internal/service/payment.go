package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rookgm/wellpay/internal/metrics"
	"github.com/rookgm/wellpay/internal/models"
	"github.com/rookgm/wellpay/internal/signature"
	"go.uber.org/zap"
)

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	// CreateOrder inserts new order to database
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// GetOrderByID returns order by gateway-assigned id
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	// CompleteOrder merges verification metadata and marks the order completed
	CompleteOrder(ctx context.Context, orderID, paymentID, paymentSignature string) (*models.Order, error)
	// CountByStatus returns order counts grouped by status
	CountByStatus(ctx context.Context) (map[string]int64, error)
	// IsPaymentProcessed reports whether the payment id is in the dedup set
	IsPaymentProcessed(ctx context.Context, paymentID string) (bool, error)
	// MarkPaymentProcessed records the payment id in the dedup set
	MarkPaymentProcessed(ctx context.Context, paymentID string) error
}

// Gateway is interface for the external payment gateway
type Gateway interface {
	// CreateOrder mints a gateway-side order
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*models.GatewayOrder, error)
}

// Mailer is interface for the transactional email provider
type Mailer interface {
	// SendPaymentConfirmation sends the payment confirmation template
	SendPaymentConfirmation(ctx context.Context, msg models.PaymentConfirmation) error
}

// Secrets holds the server-held shared secrets of the payment flow.
type Secrets struct {
	// KeySecret signs checkout signatures ("<order_id>|<payment_id>")
	KeySecret string
	// WebhookSecret signs webhook request bodies
	WebhookSecret string
}

// PaymentService implements the payment-order lifecycle
type PaymentService struct {
	repo    OrderRepository
	gateway Gateway
	mailer  Mailer
	secrets Secrets
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewPaymentService creates new PaymentService instance
func NewPaymentService(repo OrderRepository, gateway Gateway, mailer Mailer, secrets Secrets, m *metrics.Metrics, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		repo:    repo,
		gateway: gateway,
		mailer:  mailer,
		secrets: secrets,
		metrics: m,
		logger:  logger,
	}
}

// CreateOrder mints a gateway order for amount minor units and persists the
// local order document. The receipt label is time-based: unique at
// millisecond resolution, not cryptographically so.
func (ps *PaymentService) CreateOrder(ctx context.Context, amount int64, currency string) (*models.GatewayOrder, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if currency == "" {
		return nil, models.ErrInvalidCurrency
	}

	receipt := fmt.Sprintf("rcpt_%d", time.Now().UnixMilli())

	gwOrder, err := ps.gateway.CreateOrder(ctx, amount, currency, receipt)
	if err != nil {
		return nil, err
	}

	order := models.Order{
		ID:       gwOrder.ID,
		Amount:   gwOrder.Amount,
		Currency: gwOrder.Currency,
		Receipt:  gwOrder.Receipt,
		Status:   models.OrderStatusCreated,
	}

	// the gateway order already exists at this point; a failed local insert
	// must surface so the caller does not proceed to checkout
	if _, err := ps.repo.CreateOrder(ctx, &order); err != nil {
		return nil, fmt.Errorf("persist order %s: %w", gwOrder.ID, err)
	}

	ps.metrics.OrdersCreatedTotal.Inc()
	ps.logger.Info("order created",
		zap.String("order_id", gwOrder.ID),
		zap.Int64("amount", gwOrder.Amount),
		zap.String("currency", gwOrder.Currency))

	return gwOrder, nil
}

// VerifyPayment checks the client-asserted checkout signature against the
// order and payment ids, then marks the order completed and stamps
// verification metadata. Re-verifying a completed order is an idempotent
// overwrite, not an error.
func (ps *PaymentService) VerifyPayment(ctx context.Context, orderID, paymentID, sig string) (*models.Order, error) {
	if !signature.VerifyCheckout(orderID, paymentID, ps.secrets.KeySecret, sig) {
		ps.logger.Warn("checkout signature mismatch",
			zap.String("order_id", orderID),
			zap.String("payment_id", paymentID))
		return nil, models.ErrInvalidSignature
	}

	order, err := ps.repo.CompleteOrder(ctx, orderID, paymentID, sig)
	if err != nil {
		return nil, err
	}

	ps.metrics.OrdersCompletedTotal.Inc()
	ps.logger.Info("payment verified",
		zap.String("order_id", orderID),
		zap.String("payment_id", paymentID))

	return order, nil
}

// ProcessWebhook authenticates a gateway event notification against the raw
// request body and, for a captured payment, sends the confirmation email.
// Non-captured events are accepted and ignored. A redelivered captured event
// whose payment id is already in the dedup set is accepted without resending
// the email.
func (ps *PaymentService) ProcessWebhook(ctx context.Context, body []byte, sig string) error {
	if !signature.Verify(body, ps.secrets.WebhookSecret, sig) {
		ps.metrics.WebhookRejectedTotal.Inc()
		ps.logger.Warn("webhook signature mismatch")
		return models.ErrInvalidSignature
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode webhook event: %w", err)
	}

	ps.metrics.WebhookEventsTotal.WithLabelValues(event.Event).Inc()

	if event.Event != models.EventPaymentCaptured {
		ps.logger.Debug("ignoring webhook event", zap.String("event", event.Event))
		return nil
	}

	payment := event.Payload.Payment.Entity

	processed, err := ps.repo.IsPaymentProcessed(ctx, payment.ID)
	if err != nil {
		return err
	}
	if processed {
		ps.logger.Info("captured payment redelivered, email already sent",
			zap.String("payment_id", payment.ID))
		return nil
	}

	msg := models.PaymentConfirmation{
		Email:     payment.Email,
		OrderID:   payment.OrderID,
		PaymentID: payment.ID,
		Amount:    float64(payment.Amount) / 100,
	}

	if err := ps.mailer.SendPaymentConfirmation(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}

	ps.metrics.EmailsSentTotal.Inc()

	// best effort: a failed mark means a redelivery would resend the email
	if err := ps.repo.MarkPaymentProcessed(ctx, payment.ID); err != nil {
		ps.logger.Error("mark payment processed",
			zap.String("payment_id", payment.ID), zap.Error(err))
	}

	ps.logger.Info("confirmation email sent",
		zap.String("order_id", payment.OrderID),
		zap.String("payment_id", payment.ID))

	return nil
}

// GetOrder returns the order document by its gateway-assigned id
func (ps *PaymentService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return ps.repo.GetOrderByID(ctx, id)
}

// OrderStatusCounts returns current order counts by status
func (ps *PaymentService) OrderStatusCounts(ctx context.Context) (map[string]int64, error) {
	return ps.repo.CountByStatus(ctx)
}
