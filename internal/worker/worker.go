package worker

import (
	"context"
	"time"

	"github.com/rookgm/wellpay/internal/metrics"
	"go.uber.org/zap"
)

type PaymentService interface {
	OrderStatusCounts(ctx context.Context) (map[string]int64, error)
}

// StatusProcessor is worker refreshing the order-status gauges
type StatusProcessor struct {
	svc      PaymentService
	metrics  *metrics.Metrics
	logger   *zap.Logger
	interval time.Duration
}

// NewStatusProcessor create new status processor
func NewStatusProcessor(svc PaymentService, m *metrics.Metrics, logger *zap.Logger, interval time.Duration) *StatusProcessor {
	return &StatusProcessor{
		svc:      svc,
		metrics:  m,
		logger:   logger,
		interval: interval,
	}
}

// Run refreshes gauges on a ticker until the context is cancelled
func (sp *StatusProcessor) Run(ctx context.Context) {
	ticker := time.NewTicker(sp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sp.logger.Debug("status processor is done")
			return
		case <-ticker.C:
			counts, err := sp.svc.OrderStatusCounts(ctx)
			if err != nil {
				sp.logger.Error("error get order status counts", zap.Error(err))
				continue
			}
			for status, count := range counts {
				sp.metrics.OrderStatusCount.WithLabelValues(status).Set(float64(count))
			}
		}
	}
}
