package domain

import "time"

// Cart — корзина клиента: отображение product_id -> количество плюс
// производные итоги. Итоги всегда пересчитываются по всей карте и никогда
// не задаются извне.
type Cart struct {
	ID         string
	CustomerID string
	// Lines — количество по каждому товару; ключи уникальны, порядок не важен.
	Lines map[string]int32
	// TotalItems — суммарное количество единиц по всем позициям.
	TotalItems int32
	// TotalMinor — суммарная стоимость в сентаво по текущим ценам каталога.
	// В отличие от OrderLine цена здесь не фиксируется, поэтому итог корзины
	// может дрейфовать до оформления заказа.
	TotalMinor int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewCart возвращает пустую корзину клиента.
func NewCart(id, customerID string, now time.Time) Cart {
	return Cart{
		ID:         id,
		CustomerID: customerID,
		Lines:      make(map[string]int32),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Recompute пересчитывает итоги с нуля по всей карте позиций.
// priceOf возвращает текущую цену товара в сентаво.
func (c *Cart) Recompute(priceOf func(productID string) int64) {
	var count int32
	var total int64
	for productID, qty := range c.Lines {
		count += qty
		total += int64(qty) * priceOf(productID)
	}
	c.TotalItems = count
	c.TotalMinor = total
}
