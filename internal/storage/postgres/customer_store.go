package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
)

type customerStore struct {
	db *sql.DB
}

// NewCustomerStore создаёт PostgreSQL-реализацию справочника клиентов.
func NewCustomerStore(store *Store) domain.CustomerStore {
	return &customerStore{db: store.DB()}
}

func (s *customerStore) Exists(customerID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM customers WHERE id = $1`, customerID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check customer exists: %w", err)
}

var _ domain.CustomerStore = (*customerStore)(nil)
