package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
)

type checkoutRepository struct {
	db *sql.DB
}

// NewCheckoutRepository создаёт PostgreSQL-реализацию CheckoutRepository.
// Весь агрегат и списания остатков пишутся одной транзакцией: откат
// возвращает каталог в исходное состояние без частичных списаний.
func NewCheckoutRepository(store *Store) domain.CheckoutRepository {
	return &checkoutRepository{db: store.DB()}
}

func (r *checkoutRepository) CreateOrder(order domain.Order, reservations []domain.StockReservation) error {
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

	if err = checkProductsExistTx(ctx, tx, reservations); err != nil {
		return err
	}

	for _, res := range reservations {
		if err = reserveStockTx(ctx, tx, res); err != nil {
			return err
		}
	}

	if err = insertAggregateTx(ctx, tx, order); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}

	return nil
}

func (r *checkoutRepository) CancelOrder(order domain.Order) error {
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

	// Возврат остатков по каждой позиции.
	for _, line := range order.Lines {
		if _, err = tx.ExecContext(ctx, `
			UPDATE products
			SET quantity = quantity + $1,
			    version = version + 1,
			    updated_at = NOW()
			WHERE id = $2
		`, line.Qty, line.ProductID); err != nil {
			return fmt.Errorf("restore stock for %s: %w", line.ProductID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit cancel order: %w", err)
	}

	return nil
}

// checkProductsExistTx собирает все отсутствующие товары в одну ошибку,
// чтобы клиент увидел полный список, а не первый попавшийся.
func checkProductsExistTx(ctx context.Context, tx *sql.Tx, reservations []domain.StockReservation) error {
	ids := make([]string, 0, len(reservations))
	for _, res := range reservations {
		ids = append(ids, res.ProductID)
	}

	rows, err := tx.QueryContext(ctx, `SELECT id FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("check products exist: %w", err)
	}
	defer rows.Close()

	found := make(map[string]struct{}, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan product id: %w", err)
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate product ids: %w", err)
	}

	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &domain.ProductsNotFoundError{IDs: missing}
	}

	return nil
}

// reserveStockTx выполняет защищённое списание: условие по версии и остатку
// встроено в сам UPDATE, поэтому гонка с параллельным списанием невозможна.
func reserveStockTx(ctx context.Context, tx *sql.Tx, res domain.StockReservation) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity - $1,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $2
		  AND version = $3
		  AND quantity >= $1
	`, res.Qty, res.ProductID, res.Version)
	if err != nil {
		return fmt.Errorf("reserve stock for %s: %w", res.ProductID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// Списание не прошло: различаем устаревшую версию и нехватку остатка
	// повторным чтением внутри той же транзакции.
	var name string
	var quantity int32
	var version int64
	err = tx.QueryRowContext(ctx, `
		SELECT name, quantity, version FROM products WHERE id = $1
	`, res.ProductID).Scan(&name, &quantity, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.ProductsNotFoundError{IDs: []string{res.ProductID}}
		}
		return fmt.Errorf("diagnose failed reservation for %s: %w", res.ProductID, err)
	}
	if version != res.Version {
		return domain.ErrStockConflict
	}
	return &domain.InsufficientStockError{
		ProductID:   res.ProductID,
		ProductName: name,
		Available:   quantity,
		Requested:   res.Qty,
	}
}

func insertAggregateTx(ctx context.Context, tx *sql.Tx, order domain.Order) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, customer_id, status, total_minor, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		order.ID, order.CustomerID, string(order.Status), order.TotalMinor,
		order.Version, order.CreatedAt, order.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderVersionConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, line := range order.Lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_lines (
				id, order_id, product_id, product_name, price_minor, qty, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
			line.ID, order.ID, line.ProductID, line.ProductName,
			line.PriceMinor, line.Qty, line.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO payments (
			id, order_id, method, status, amount_minor, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		order.Payment.ID, order.ID, order.Payment.Method, string(order.Payment.Status),
		order.Payment.AmountMinor, order.Payment.CreatedAt, order.Payment.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO deliveries (
			id, order_id, address, status, delivered_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		order.Delivery.ID, order.ID, order.Delivery.Address, string(order.Delivery.Status),
		order.Delivery.DeliveredAt, order.Delivery.CreatedAt, order.Delivery.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}

	return nil
}

var _ domain.CheckoutRepository = (*checkoutRepository)(nil)
