package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rookgm/wellpay/internal/models"
	"github.com/rookgm/wellpay/internal/repository/postgres"
)

const pgErrUniqueViolationCode = "23505"

const (
	insertOrderQuery = `
						INSERT INTO orders (id, amount, currency, receipt, status)
						values ($1, $2, $3, $4, $5)
						RETURNING id, amount, currency, receipt, status, payment_id, razorpay_order_id, payment_signature, created_at, updated_at, verified_at
`
	selectOrderByIDQuery = `
						SELECT id, amount, currency, receipt, status, payment_id, razorpay_order_id, payment_signature, created_at, updated_at, verified_at FROM orders
						WHERE id = $1
`
	// completion is a single atomic statement: there is no separate read,
	// so concurrent verification calls cannot interleave, and status only
	// ever moves to 'completed'. Re-verification overwrites the payment
	// fields in place.
	completeOrderQuery = `
						UPDATE orders
						SET payment_id = $2, razorpay_order_id = $1, payment_signature = $3,
						    status = 'completed', updated_at = now(), verified_at = now()
						WHERE id = $1
						RETURNING id, amount, currency, receipt, status, payment_id, razorpay_order_id, payment_signature, created_at, updated_at, verified_at
`
	selectStatusCountsQuery = `
						SELECT status, count(*) FROM orders
						GROUP BY status
`
	selectPaymentProcessedQuery = `
						SELECT EXISTS(SELECT 1 FROM processed_payments WHERE payment_id = $1)
`
	insertProcessedPaymentQuery = `
						INSERT INTO processed_payments (payment_id)
						values ($1)
						ON CONFLICT (payment_id) DO NOTHING
`
)

// OrderRepository implements OrderRepository interface
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder inserts new order to database
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	err := or.db.QueryRow(ctx, insertOrderQuery, order.ID, order.Amount, order.Currency, order.Receipt, order.Status).
		Scan(&order.ID, &order.Amount, &order.Currency, &order.Receipt, &order.Status,
			&order.PaymentID, &order.RazorpayOrderID, &order.PaymentSignature,
			&order.CreatedAt, &order.UpdatedAt, &order.VerifiedAt)
	if err != nil {
		if errCode := or.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return order, nil
}

// GetOrderByID returns order by gateway-assigned id
func (or *OrderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order := models.Order{}
	err := or.db.QueryRow(ctx, selectOrderByIDQuery, id).
		Scan(&order.ID, &order.Amount, &order.Currency, &order.Receipt, &order.Status,
			&order.PaymentID, &order.RazorpayOrderID, &order.PaymentSignature,
			&order.CreatedAt, &order.UpdatedAt, &order.VerifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}

// CompleteOrder merges verification metadata onto the order and marks it
// completed. Returns ErrDataNotFound if no order has the given id; nothing
// is written in that case.
func (or *OrderRepository) CompleteOrder(ctx context.Context, orderID, paymentID, paymentSignature string) (*models.Order, error) {
	order := models.Order{}
	err := or.db.QueryRow(ctx, completeOrderQuery, orderID, paymentID, paymentSignature).
		Scan(&order.ID, &order.Amount, &order.Currency, &order.Receipt, &order.Status,
			&order.PaymentID, &order.RazorpayOrderID, &order.PaymentSignature,
			&order.CreatedAt, &order.UpdatedAt, &order.VerifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}

// CountByStatus returns order counts grouped by status
func (or *OrderRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := or.db.Query(ctx, selectStatusCountsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{}

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			continue
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// IsPaymentProcessed reports whether a confirmation email has already been
// sent for the payment id
func (or *OrderRepository) IsPaymentProcessed(ctx context.Context, paymentID string) (bool, error) {
	var processed bool
	if err := or.db.QueryRow(ctx, selectPaymentProcessedQuery, paymentID).Scan(&processed); err != nil {
		return false, err
	}
	return processed, nil
}

// MarkPaymentProcessed records the payment id in the dedup set
func (or *OrderRepository) MarkPaymentProcessed(ctx context.Context, paymentID string) error {
	_, err := or.db.Exec(ctx, insertProcessedPaymentQuery, paymentID)
	return err
}
