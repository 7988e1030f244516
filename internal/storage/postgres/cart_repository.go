package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт PostgreSQL-реализацию CartRepository.
// Карта позиций хранится одной JSONB-колонкой: читается и пишется целиком.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

func (r *cartRepository) GetByCustomer(customerID string) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var cart domain.Cart
	var rawLines []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, lines, created_at, updated_at
		FROM carts
		WHERE customer_id = $1
	`, customerID).Scan(&cart.ID, &cart.CustomerID, &rawLines, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cart{}, domain.ErrCartNotFound
		}
		return domain.Cart{}, fmt.Errorf("select cart: %w", err)
	}

	cart.Lines = decodeCartLines(rawLines)
	return cart, nil
}

func (r *cartRepository) Save(cart domain.Cart) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rawLines, err := encodeCartLines(cart.Lines)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (id, customer_id, lines, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (customer_id) DO UPDATE
		SET lines = EXCLUDED.lines,
		    updated_at = EXCLUDED.updated_at
	`, cart.ID, cart.CustomerID, rawLines, cart.CreatedAt, cart.UpdatedAt); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	return nil
}

func encodeCartLines(lines map[string]int32) ([]byte, error) {
	if len(lines) == 0 {
		return []byte("{}"), nil
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("encode cart lines: %w", err)
	}
	return raw, nil
}

// decodeCartLines восстанавливает карту позиций из JSONB.
// Повреждённое или пустое содержимое трактуется как пустая корзина: следующая
// запись перезапишет колонку корректным значением, так что хранилище лечит
// себя само, а не роняет запрос.
func decodeCartLines(raw []byte) map[string]int32 {
	if len(raw) == 0 {
		return make(map[string]int32)
	}

	var lines map[string]int32
	if err := json.Unmarshal(raw, &lines); err != nil || lines == nil {
		return make(map[string]int32)
	}
	return lines
}

var _ domain.CartRepository = (*cartRepository)(nil)
