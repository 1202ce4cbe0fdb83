package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rookgm/wellpay/internal/models"
	"go.uber.org/zap"
)

// PaymentService is interface for the payment-order lifecycle
type PaymentService interface {
	// CreateOrder mints a gateway order and persists the local order document
	CreateOrder(ctx context.Context, amount int64, currency string) (*models.GatewayOrder, error)
	// VerifyPayment marks the order completed after checking the checkout signature
	VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (*models.Order, error)
	// ProcessWebhook authenticates and processes a gateway event notification
	ProcessWebhook(ctx context.Context, body []byte, signature string) error
	// GetOrder returns the order document by its gateway-assigned id
	GetOrder(ctx context.Context, id string) (*models.Order, error)
}

const signatureHeader = "X-Razorpay-Signature"

// PaymentHandler represents HTTP handler for payment-related requests
type PaymentHandler struct {
	svc    PaymentService
	logger *zap.Logger
}

// NewPaymentHandler creates new PaymentHandler instance
func NewPaymentHandler(svc PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, logger: logger}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type createOrderResponse struct {
	Order *models.GatewayOrder `json:"order"`
}

// CreateOrder creates a gateway order for the requested amount
// 200 — заказ создан, в теле дескриптор заказа шлюза;
// 400 — неверный формат запроса;
// 405 — метод не POST;
// 500 — ошибка шлюза или хранилища, текст ошибки в теле.
func (ph *PaymentHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var orderReq createOrderRequest

		if err := json.NewDecoder(r.Body).Decode(&orderReq); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		order, err := ph.svc.CreateOrder(r.Context(), orderReq.Amount, orderReq.Currency)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidAmount), errors.Is(err, models.ErrInvalidCurrency):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				ph.logger.Error("create order", zap.Error(err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(createOrderResponse{Order: order}); err != nil {
			return
		}
	}
}

// Webhook receives asynchronous payment-event notifications from the gateway.
// The signature is checked over the raw body before any parsing.
// 200 — подпись верна, событие обработано (письмо только для payment.captured);
// 401 — неверная подпись, событие отброшено;
// 500 — ошибка разбора события или отправки письма.
func (ph *PaymentHandler) Webhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Webhook error", http.StatusInternalServerError)
			return
		}
		defer r.Body.Close()

		sig := r.Header.Get(signatureHeader)

		if err := ph.svc.ProcessWebhook(r.Context(), body, sig); err != nil {
			if errors.Is(err, models.ErrInvalidSignature) {
				http.Error(w, "Invalid signature", http.StatusUnauthorized)
				return
			}
			ph.logger.Error("process webhook", zap.Error(err))
			http.Error(w, "Webhook error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Webhook processed"))
	}
}

type verifyPaymentRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

type verifyPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// VerifyPayment marks an order completed after client-asserted checkout
// 200 — заказ помечен завершённым;
// 400 — отсутствует обязательное поле;
// 401 — подпись не соответствует order_id и payment_id;
// 404 — заказ не найден;
// 500 — внутренняя ошибка сервера.
func (ph *PaymentHandler) VerifyPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var verifyReq verifyPaymentRequest

		if err := json.NewDecoder(r.Body).Decode(&verifyReq); err != nil {
			writeVerifyResponse(w, http.StatusBadRequest, verifyPaymentResponse{
				Success: false,
				Error:   "bad request",
			})
			return
		}
		defer r.Body.Close()

		if verifyReq.OrderID == "" || verifyReq.PaymentID == "" || verifyReq.Signature == "" {
			writeVerifyResponse(w, http.StatusBadRequest, verifyPaymentResponse{
				Success: false,
				Error:   "order_id, payment_id and signature are required",
			})
			return
		}

		_, err := ph.svc.VerifyPayment(r.Context(), verifyReq.OrderID, verifyReq.PaymentID, verifyReq.Signature)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidSignature):
				writeVerifyResponse(w, http.StatusUnauthorized, verifyPaymentResponse{
					Success: false,
					Error:   "invalid signature",
				})
			case errors.Is(err, models.ErrDataNotFound):
				writeVerifyResponse(w, http.StatusNotFound, verifyPaymentResponse{
					Success: false,
					Error:   "order not found",
				})
			default:
				ph.logger.Error("verify payment", zap.Error(err))
				writeVerifyResponse(w, http.StatusInternalServerError, verifyPaymentResponse{
					Success: false,
					Error:   err.Error(),
				})
			}
			return
		}

		writeVerifyResponse(w, http.StatusOK, verifyPaymentResponse{
			Success: true,
			Message: "payment verified",
		})
	}
}

type orderResponse struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
	PaymentID  string `json:"payment_id,omitempty"`
	VerifiedAt string `json:"verified_at,omitempty"`
}

// GetOrder returns the current state of an order
// 200 — успешная обработка запроса;
// 404 — заказ не найден;
// 500 — внутренняя ошибка сервера.
func (ph *PaymentHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		order, err := ph.svc.GetOrder(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			default:
				ph.logger.Error("get order", zap.Error(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		orderResp := orderResponse{
			ID:        order.ID,
			Amount:    order.Amount,
			Currency:  order.Currency,
			Status:    order.Status,
			PaymentID: order.PaymentID,
		}
		if order.VerifiedAt != nil {
			orderResp.VerifiedAt = order.VerifiedAt.Format(time.RFC3339)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(orderResp); err != nil {
			return
		}
	}
}

func writeVerifyResponse(w http.ResponseWriter, status int, resp verifyPaymentResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return
	}
}
