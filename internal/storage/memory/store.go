// Package memory — in-memory хранилище для локальной разработки и тестов.
// Все коллекции защищены одним мьютексом, поэтому мутации, затрагивающие
// несколько сущностей (оформление и отмена заказа), атомарны так же, как
// транзакции в PostgreSQL-реализации.
package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
)

// Store держит все коллекции под общим мьютексом.
type Store struct {
	mu        sync.RWMutex
	products  map[string]domain.Product
	carts     map[string]domain.Cart // ключ — customer_id (корзина 1:1 с клиентом)
	orders    map[string]domain.Order
	customers map[string]struct{}
	timeline  map[string][]domain.TimelineEvent
}

// NewStore создаёт пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		products:  make(map[string]domain.Product),
		carts:     make(map[string]domain.Cart),
		orders:    make(map[string]domain.Order),
		customers: make(map[string]struct{}),
		timeline:  make(map[string][]domain.TimelineEvent),
	}
}

// cloneCart возвращает копию корзины с собственной картой позиций,
// чтобы избежать непредсказуемых мутаций извне.
func cloneCart(cart domain.Cart) domain.Cart {
	lines := make(map[string]int32, len(cart.Lines))
	for productID, qty := range cart.Lines {
		lines[productID] = qty
	}
	cart.Lines = lines
	return cart
}

// cloneOrder возвращает копию заказа с собственным срезом позиций.
func cloneOrder(order domain.Order) domain.Order {
	lines := make([]domain.OrderLine, len(order.Lines))
	copy(lines, order.Lines)
	order.Lines = lines
	if order.Delivery.DeliveredAt != nil {
		deliveredAt := *order.Delivery.DeliveredAt
		order.Delivery.DeliveredAt = &deliveredAt
	}
	return order
}
