package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rookgm/wellpay/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeWidget resolves the completion immediately with a canned result.
type fakeWidget struct {
	result   Result
	gotOpts  Options
	wasOpen  bool
	resolves int
}

func (fw *fakeWidget) Open(_ context.Context, opts Options, done *Completion) {
	fw.wasOpen = true
	fw.gotOpts = opts
	for i := 0; i < 1+fw.resolves; i++ {
		done.Resolve(fw.result)
	}
}

func newCheckoutServer(t *testing.T, verifyStatus int, verified *verifyPaymentRequest) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(createOrderResponse{Order: &models.GatewayOrder{
			ID:       "order_w1",
			Amount:   req.Amount,
			Currency: req.Currency,
			Status:   "created",
		}})
	})
	mux.HandleFunc("/api/payments/verify", func(w http.ResponseWriter, r *http.Request) {
		if verified != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(verified))
		}
		w.WriteHeader(verifyStatus)
		w.Write([]byte(`{"success":true}`))
	})
	return httptest.NewServer(mux)
}

func TestClient_Checkout(t *testing.T) {
	var verified verifyPaymentRequest
	srv := newCheckoutServer(t, http.StatusOK, &verified)
	defer srv.Close()

	client := New(srv.URL, "rzp_test_pub", "Body Mind Soul", zap.NewNop())

	cart := &Cart{Items: []Item{
		{Name: "herbal tea", Amount: 20000, Quantity: 2},
		{Name: "yoga mat", Amount: 10000, Quantity: 1},
	}}

	widget := &fakeWidget{result: Result{PaymentID: "pay_w1", Signature: "sig_w1"}}

	require.NoError(t, client.Checkout(context.Background(), cart, "INR", widget))

	assert.True(t, widget.wasOpen)
	assert.Equal(t, "rzp_test_pub", widget.gotOpts.Key)
	assert.Equal(t, int64(50000), widget.gotOpts.Amount)
	assert.Equal(t, "INR", widget.gotOpts.Currency)
	assert.Equal(t, "order_w1", widget.gotOpts.OrderID)
	assert.Equal(t, "Body Mind Soul", widget.gotOpts.Name)

	assert.Equal(t, "order_w1", verified.OrderID)
	assert.Equal(t, "pay_w1", verified.PaymentID)
	assert.Equal(t, "sig_w1", verified.Signature)

	assert.True(t, cart.Empty(), "cart must be cleared after successful checkout")
}

func TestClient_Checkout_EmptyCart(t *testing.T) {
	srv := newCheckoutServer(t, http.StatusOK, nil)
	defer srv.Close()

	client := New(srv.URL, "rzp_test_pub", "Body Mind Soul", zap.NewNop())
	widget := &fakeWidget{}

	err := client.Checkout(context.Background(), &Cart{}, "INR", widget)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.False(t, widget.wasOpen, "widget must not open for an empty cart")
}

func TestClient_Checkout_WidgetFailure(t *testing.T) {
	srv := newCheckoutServer(t, http.StatusOK, nil)
	defer srv.Close()

	client := New(srv.URL, "rzp_test_pub", "Body Mind Soul", zap.NewNop())

	cart := &Cart{Items: []Item{{Name: "herbal tea", Amount: 20000, Quantity: 1}}}
	widget := &fakeWidget{result: Result{Err: errors.New("payment cancelled by user")}}

	err := client.Checkout(context.Background(), cart, "INR", widget)
	assert.Error(t, err)
	assert.False(t, cart.Empty(), "cart must be kept on widget failure")
}

func TestClient_Checkout_VerifyRejected(t *testing.T) {
	srv := newCheckoutServer(t, http.StatusUnauthorized, nil)
	defer srv.Close()

	client := New(srv.URL, "rzp_test_pub", "Body Mind Soul", zap.NewNop())

	cart := &Cart{Items: []Item{{Name: "herbal tea", Amount: 20000, Quantity: 1}}}
	widget := &fakeWidget{result: Result{PaymentID: "pay_w1", Signature: "forged"}}

	err := client.Checkout(context.Background(), cart, "INR", widget)
	assert.Error(t, err)
	assert.False(t, cart.Empty())
}

func TestClient_Checkout_CreateOrderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, "rzp_test_pub", "Body Mind Soul", zap.NewNop())

	cart := &Cart{Items: []Item{{Name: "herbal tea", Amount: 20000, Quantity: 1}}}
	widget := &fakeWidget{}

	err := client.Checkout(context.Background(), cart, "INR", widget)
	assert.Error(t, err)
	assert.False(t, widget.wasOpen)
}

func TestCompletion_ResolvesOnce(t *testing.T) {
	done := NewCompletion()

	done.Resolve(Result{PaymentID: "pay_first"})
	done.Resolve(Result{PaymentID: "pay_second"})

	res := <-done.Done()
	assert.Equal(t, "pay_first", res.PaymentID)

	// channel is closed after the first result
	_, ok := <-done.Done()
	assert.False(t, ok)
}

func TestCompletion_DoubleResolveFromWidget(t *testing.T) {
	var verified verifyPaymentRequest
	srv := newCheckoutServer(t, http.StatusOK, &verified)
	defer srv.Close()

	client := New(srv.URL, "rzp_test_pub", "Body Mind Soul", zap.NewNop())

	cart := &Cart{Items: []Item{{Name: "herbal tea", Amount: 20000, Quantity: 1}}}
	widget := &fakeWidget{result: Result{PaymentID: "pay_w1", Signature: "sig_w1"}, resolves: 2}

	require.NoError(t, client.Checkout(context.Background(), cart, "INR", widget))
	assert.Equal(t, "pay_w1", verified.PaymentID)
}
