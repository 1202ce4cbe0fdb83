package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/rookgm/wellpay/internal/handler/http/mocks"
	"github.com/rookgm/wellpay/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPaymentHandler_CreateOrder(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		body           string
		setup          func(t *testing.T) *mocks.MockPaymentService
		wantStatusCode int
		wantOrder      *models.GatewayOrder
	}{
		{
			// 200 — заказ создан
			name:   "valid_request_return_200",
			method: http.MethodPost,
			body:   `{"amount":1000,"currency":"INR"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().CreateOrder(gomock.Any(), int64(1000), "INR").Return(&models.GatewayOrder{
					ID:       "order_Ab12Cd34Ef56Gh",
					Entity:   "order",
					Amount:   1000,
					Currency: "INR",
					Receipt:  "rcpt_1700000000000",
					Status:   "created",
				}, nil).Times(1)
				return svcMock
			},
			wantStatusCode: http.StatusOK,
			wantOrder: &models.GatewayOrder{
				ID:       "order_Ab12Cd34Ef56Gh",
				Entity:   "order",
				Amount:   1000,
				Currency: "INR",
				Receipt:  "rcpt_1700000000000",
				Status:   "created",
			},
		},
		{
			// 405 — метод не POST
			name:   "get_request_return_405",
			method: http.MethodGet,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusMethodNotAllowed,
		},
		{
			// 400 — неверный формат запроса
			name:   "malformed_body_return_400",
			method: http.MethodPost,
			body:   `{"amount":`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// 400 — неположительная сумма
			name:   "invalid_amount_return_400",
			method: http.MethodPost,
			body:   `{"amount":0,"currency":"INR"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().CreateOrder(gomock.Any(), int64(0), "INR").Return(nil, models.ErrInvalidAmount).Times(1)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// 500 — ошибка шлюза
			name:   "gateway_error_return_500",
			method: http.MethodPost,
			body:   `{"amount":1000,"currency":"INR"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("gateway create order: authentication failed")).Times(1)
				return svcMock
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, "/api/orders", strings.NewReader(tt.body))
			require.NoError(t, err)

			w := httptest.NewRecorder()
			st := tt.setup(t)

			handler := NewPaymentHandler(st, zap.NewNop())
			h := handler.CreateOrder()
			h(w, req)

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)

			if tt.wantOrder != nil {
				var got createOrderResponse
				require.NoError(t, json.NewDecoder(res.Body).Decode(&got))

				if diff := cmp.Diff(tt.wantOrder, got.Order); diff != "" {
					t.Errorf("mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestPaymentHandler_GetOrder(t *testing.T) {
	tests := []struct {
		name           string
		orderID        string
		setup          func(t *testing.T) *mocks.MockPaymentService
		wantStatusCode int
		wantStatus     string
	}{
		{
			// 200 — успешная обработка запроса
			name:    "existing_order_return_200",
			orderID: "order_1",
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().GetOrder(gomock.Any(), "order_1").Return(&models.Order{
					ID:       "order_1",
					Amount:   50000,
					Currency: "INR",
					Status:   models.OrderStatusCreated,
				}, nil).Times(1)
				return svcMock
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     models.OrderStatusCreated,
		},
		{
			// 404 — заказ не найден
			name:    "unknown_order_return_404",
			orderID: "order_missing",
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().GetOrder(gomock.Any(), "order_missing").Return(nil, models.ErrDataNotFound).Times(1)
				return svcMock
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			// 500 — внутренняя ошибка сервера
			name:    "internal_error_return_500",
			orderID: "order_1",
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().GetOrder(gomock.Any(), gomock.Any()).Return(nil, models.ErrInternalError).Times(1)
				return svcMock
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, "/api/orders/"+tt.orderID, nil)
			require.NoError(t, err)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.orderID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)

			w := httptest.NewRecorder()
			st := tt.setup(t)

			handler := NewPaymentHandler(st, zap.NewNop())
			h := handler.GetOrder()
			h(w, req.WithContext(ctx))

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)

			if tt.wantStatus != "" {
				var got orderResponse
				require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
				assert.Equal(t, tt.wantStatus, got.Status)
				assert.Equal(t, int64(50000), got.Amount)
			}
		})
	}
}

func TestPaymentHandler_Webhook(t *testing.T) {
	eventBody := `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","amount":50000,"email":"buyer@example.com"}}}}`

	tests := []struct {
		name           string
		signature      string
		setup          func(t *testing.T) *mocks.MockPaymentService
		wantStatusCode int
		wantBody       string
	}{
		{
			// 200 — событие обработано
			name:      "valid_signature_return_200",
			signature: "deadbeef",
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().ProcessWebhook(gomock.Any(), []byte(eventBody), "deadbeef").Return(nil).Times(1)
				return svcMock
			},
			wantStatusCode: http.StatusOK,
			wantBody:       "Webhook processed",
		},
		{
			// 401 — неверная подпись
			name:      "invalid_signature_return_401",
			signature: "forged",
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().ProcessWebhook(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.ErrInvalidSignature).Times(1)
				return svcMock
			},
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       "Invalid signature",
		},
		{
			// 500 — ошибка обработки
			name:      "processing_error_return_500",
			signature: "deadbeef",
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().ProcessWebhook(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("send confirmation email: timeout")).Times(1)
				return svcMock
			},
			wantStatusCode: http.StatusInternalServerError,
			wantBody:       "Webhook error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, "/api/webhooks/razorpay", strings.NewReader(eventBody))
			require.NoError(t, err)
			req.Header.Set(signatureHeader, tt.signature)

			w := httptest.NewRecorder()
			st := tt.setup(t)

			handler := NewPaymentHandler(st, zap.NewNop())
			h := handler.Webhook()
			h(w, req)

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)

			resBody, err := io.ReadAll(res.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, strings.TrimSpace(string(resBody)))
		})
	}
}

func TestPaymentHandler_VerifyPayment(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(t *testing.T) *mocks.MockPaymentService
		wantStatusCode int
		wantSuccess    bool
	}{
		{
			// 200 — заказ помечен завершённым
			name: "valid_request_return_200",
			body: `{"order_id":"order_1","payment_id":"pay_1","signature":"ab12"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().VerifyPayment(gomock.Any(), "order_1", "pay_1", "ab12").Return(&models.Order{
					ID:        "order_1",
					Status:    models.OrderStatusCompleted,
					PaymentID: "pay_1",
				}, nil).Times(1)
				return svcMock
			},
			wantStatusCode: http.StatusOK,
			wantSuccess:    true,
		},
		{
			// 400 — отсутствует order_id
			name: "missing_order_id_return_400",
			body: `{"payment_id":"pay_1","signature":"ab12"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().VerifyPayment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// 400 — отсутствует payment_id
			name: "missing_payment_id_return_400",
			body: `{"order_id":"order_1","signature":"ab12"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().VerifyPayment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// 400 — отсутствует signature
			name: "missing_signature_return_400",
			body: `{"order_id":"order_1","payment_id":"pay_1"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().VerifyPayment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// 401 — подпись не совпала
			name: "invalid_signature_return_401",
			body: `{"order_id":"order_1","payment_id":"pay_1","signature":"forged"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().VerifyPayment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrInvalidSignature).Times(1)
				return svcMock
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			// 404 — заказ не найден
			name: "unknown_order_return_404",
			body: `{"order_id":"order_missing","payment_id":"pay_1","signature":"ab12"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().VerifyPayment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrDataNotFound).Times(1)
				return svcMock
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			// 500 — внутренняя ошибка сервера
			name: "internal_error_return_500",
			body: `{"order_id":"order_1","payment_id":"pay_1","signature":"ab12"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().VerifyPayment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrInternalError).Times(1)
				return svcMock
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, "/api/payments/verify", strings.NewReader(tt.body))
			require.NoError(t, err)

			w := httptest.NewRecorder()
			st := tt.setup(t)

			handler := NewPaymentHandler(st, zap.NewNop())
			h := handler.VerifyPayment()
			h(w, req)

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)

			var got verifyPaymentResponse
			require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
			assert.Equal(t, tt.wantSuccess, got.Success)
		})
	}
}
