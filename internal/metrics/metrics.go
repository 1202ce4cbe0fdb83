package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds payment flow and HTTP server metrics.
type Metrics struct {
	OrdersCreatedTotal   prometheus.Counter
	OrdersCompletedTotal prometheus.Counter
	WebhookEventsTotal   *prometheus.CounterVec
	WebhookRejectedTotal prometheus.Counter
	EmailsSentTotal      prometheus.Counter
	OrderStatusCount     *prometheus.GaugeVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers and returns payment metrics
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OrdersCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wellpay",
			Name:      "orders_created_total",
			Help:      "Total number of gateway orders created.",
		}),
		OrdersCompletedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wellpay",
			Name:      "orders_completed_total",
			Help:      "Total number of orders marked completed by payment verification.",
		}),
		WebhookEventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellpay",
			Name:      "webhook_events_total",
			Help:      "Total number of verified webhook events by event type.",
		}, []string{"event"}),
		WebhookRejectedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wellpay",
			Name:      "webhook_rejected_total",
			Help:      "Total number of webhook deliveries rejected for a bad signature.",
		}),
		EmailsSentTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wellpay",
			Name:      "emails_sent_total",
			Help:      "Total number of payment confirmation emails sent.",
		}),
		OrderStatusCount: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "wellpay",
			Name:      "orders_status_count",
			Help:      "Current number of orders by status.",
		}, []string{"status"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellpay",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wellpay",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
	}
}

// Handler exposes the default prometheus registry
func Handler() http.Handler {
	return promhttp.Handler()
}
