package memory

import (
	"sort"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
)

// orderRepository — in-memory реализация OrderRepository и CheckoutRepository.
// Обе стороны живут в одном типе, потому что делят общий мьютекс хранилища.
type orderRepository struct {
	store *Store
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{store: store}
}

// NewCheckoutRepository возвращает транзакционную сторону хранилища заказов:
// она разделяет мьютекс Store с репозиторием каталога, поэтому списание
// остатков и запись агрегата атомарны.
func NewCheckoutRepository(store *Store) domain.CheckoutRepository {
	return &orderRepository{store: store}
}

// Get возвращает заказ или ErrOrderNotFound.
func (r *orderRepository) Get(id string) (domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	order, ok := r.store.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// ListByCustomer возвращает заказы клиента, ограничивая выборку limit (если >0).
func (r *orderRepository) ListByCustomer(customerID string, limit int) ([]domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.store.orders))
	for _, order := range r.store.orders {
		if order.CustomerID != customerID {
			continue
		}
		result = append(result, cloneOrder(order))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Save перезаписывает агрегат, проверяя версию (optimistic locking).
func (r *orderRepository) Save(order domain.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrOrderVersionConflict
	}
	order.Version++
	r.store.orders[order.ID] = cloneOrder(order)
	return nil
}

// CreateOrder применяет списания остатков и сохраняет агрегат атомарно:
// все проверки выполняются до первой мутации, поэтому частичного списания
// не бывает.
func (r *orderRepository) CreateOrder(order domain.Order, reservations []domain.StockReservation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.orders[order.ID]; exists {
		return domain.ErrOrderVersionConflict
	}

	var missing []string
	for _, res := range reservations {
		if _, ok := r.store.products[res.ProductID]; !ok {
			missing = append(missing, res.ProductID)
		}
	}
	if len(missing) > 0 {
		return &domain.ProductsNotFoundError{IDs: missing}
	}

	for _, res := range reservations {
		product := r.store.products[res.ProductID]
		if product.Version != res.Version {
			return domain.ErrStockConflict
		}
		if product.Quantity < res.Qty {
			return &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Quantity,
				Requested:   res.Qty,
			}
		}
	}

	for _, res := range reservations {
		product := r.store.products[res.ProductID]
		product.Quantity -= res.Qty
		product.Version++
		r.store.products[res.ProductID] = product
	}
	r.store.orders[order.ID] = cloneOrder(order)
	return nil
}

// CancelOrder возвращает остатки по позициям и перезаписывает агрегат
// с уже выставленными статусами CANCELADO.
func (r *orderRepository) CancelOrder(order domain.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrOrderVersionConflict
	}

	for _, line := range order.Lines {
		product, ok := r.store.products[line.ProductID]
		if !ok {
			// Каталог не поддерживает удаление, но страхуемся от дыры в данных.
			return domain.ErrProductNotFound
		}
		product.Quantity += line.Qty
		product.Version++
		r.store.products[line.ProductID] = product
	}

	order.Version++
	r.store.orders[order.ID] = cloneOrder(order)
	return nil
}

var (
	_ domain.OrderRepository    = (*orderRepository)(nil)
	_ domain.CheckoutRepository = (*orderRepository)(nil)
)
