package memory

import "github.com/vladislavdragonenkov/grocery/internal/domain"

// cartRepository — in-memory реализация CartRepository поверх Store.
type cartRepository struct {
	store *Store
}

// NewCartRepository возвращает in-memory репозиторий корзин.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{store: store}
}

// GetByCustomer возвращает корзину клиента или ErrCartNotFound.
func (r *cartRepository) GetByCustomer(customerID string) (domain.Cart, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	cart, ok := r.store.carts[customerID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return cloneCart(cart), nil
}

// Save создаёт или перезаписывает корзину целиком.
func (r *cartRepository) Save(cart domain.Cart) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.carts[cart.CustomerID] = cloneCart(cart)
	return nil
}

var _ domain.CartRepository = (*cartRepository)(nil)
