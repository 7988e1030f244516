package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Get(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return loadOrder(ctx, r.db, id)
}

func (r *orderRepository) ListByCustomer(customerID string, limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT id
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)

	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $2", customerID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query, customerID)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order ids: %w", err)
	}

	orders := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		order, err := loadOrder(ctx, r.db, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// Save обновляет заказ, платёж и доставку одной транзакцией с optimistic
// locking по версии заказа.
func (r *orderRepository) Save(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = saveAggregateTx(ctx, tx, order); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save order: %w", err)
	}

	return nil
}

// saveAggregateTx записывает состояние заказа, платежа и доставки внутри
// уже открытой транзакции. Позиции неизменяемы и не перезаписываются.
func saveAggregateTx(ctx context.Context, tx *sql.Tx, order domain.Order) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    total_minor = $2,
		    version = version + 1,
		    updated_at = $3
		WHERE id = $4
		  AND version = $5
	`,
		string(order.Status), order.TotalMinor, order.UpdatedAt,
		order.ID, order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := orderExistsTx(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrOrderNotFound
		}
		return domain.ErrOrderVersionConflict
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET status = $1,
		    updated_at = $2
		WHERE order_id = $3
	`, string(order.Payment.Status), order.UpdatedAt, order.ID); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE deliveries
		SET status = $1,
		    delivered_at = $2,
		    updated_at = $3
		WHERE order_id = $4
	`, string(order.Delivery.Status), order.Delivery.DeliveredAt, order.UpdatedAt, order.ID); err != nil {
		return fmt.Errorf("update delivery: %w", err)
	}

	return nil
}

type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadOrder(ctx context.Context, q queryable, id string) (domain.Order, error) {
	var order domain.Order
	var status string

	err := q.QueryRowContext(ctx, `
		SELECT id, customer_id, status, total_minor, version, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&order.ID, &order.CustomerID, &status, &order.TotalMinor,
		&order.Version, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	order.Status = domain.OrderStatus(status)

	if order.Lines, err = loadLines(ctx, q, order.ID); err != nil {
		return domain.Order{}, err
	}
	if order.Payment, err = loadPayment(ctx, q, order.ID); err != nil {
		return domain.Order{}, err
	}
	if order.Delivery, err = loadDelivery(ctx, q, order.ID); err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

func loadLines(ctx context.Context, q queryable, orderID string) ([]domain.OrderLine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, product_id, product_name, price_minor, qty, created_at
		FROM order_lines
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ID, &line.ProductID, &line.ProductName,
			&line.PriceMinor, &line.Qty, &line.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}

	return lines, nil
}

func loadPayment(ctx context.Context, q queryable, orderID string) (domain.Payment, error) {
	var payment domain.Payment
	var status string
	err := q.QueryRowContext(ctx, `
		SELECT id, order_id, method, status, amount_minor, created_at, updated_at
		FROM payments
		WHERE order_id = $1
	`, orderID).Scan(
		&payment.ID, &payment.OrderID, &payment.Method, &status,
		&payment.AmountMinor, &payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("load payment: %w", err)
	}
	payment.Status = domain.PaymentStatus(status)
	return payment, nil
}

func loadDelivery(ctx context.Context, q queryable, orderID string) (domain.Delivery, error) {
	var delivery domain.Delivery
	var status string
	err := q.QueryRowContext(ctx, `
		SELECT id, order_id, address, status, delivered_at, created_at, updated_at
		FROM deliveries
		WHERE order_id = $1
	`, orderID).Scan(
		&delivery.ID, &delivery.OrderID, &delivery.Address, &status,
		&delivery.DeliveredAt, &delivery.CreatedAt, &delivery.UpdatedAt,
	)
	if err != nil {
		return domain.Delivery{}, fmt.Errorf("load delivery: %w", err)
	}
	delivery.Status = domain.DeliveryStatus(status)
	return delivery, nil
}

func orderExistsTx(ctx context.Context, tx *sql.Tx, orderID string) (bool, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM orders WHERE id = $1`, orderID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check order exists: %w", err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
