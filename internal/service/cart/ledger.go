// Package cart реализует корзину клиента: карту количеств по товарам и
// производные итоги, пересчитываемые при каждой мутации.
package cart

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
)

// Ledger ведёт корзины клиентов поверх репозитория корзин и каталога.
type Ledger struct {
	carts    domain.CartRepository
	products domain.ProductRepository
	logger   *log.Entry
}

// NewLedger конструирует сервис корзины с зависимостями.
func NewLedger(carts domain.CartRepository, products domain.ProductRepository, logger *log.Entry) *Ledger {
	if logger == nil {
		logger = log.New().WithField("component", "cart-ledger")
	}
	return &Ledger{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// Get возвращает корзину клиента, лениво создавая пустую при первом обращении.
// Новая пустая корзина сразу персистится.
func (l *Ledger) Get(customerID string) (domain.Cart, error) {
	if customerID == "" {
		return domain.Cart{}, domain.ErrCustomerRequired
	}

	cart, err := l.carts.GetByCustomer(customerID)
	if err == nil {
		return cart, nil
	}
	if err != domain.ErrCartNotFound {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}

	cart = domain.NewCart(uuid.NewString(), customerID, time.Now().UTC())
	if err := l.carts.Save(cart); err != nil {
		return domain.Cart{}, fmt.Errorf("persist empty cart: %w", err)
	}
	l.logger.WithField("customer_id", customerID).Debug("created empty cart")
	return cart, nil
}

// AddItem увеличивает количество товара в корзине на qty (qty >= 1).
// Остаток проверяется мягко: сумма существующей позиции и добавки не должна
// превышать текущий остаток каталога; финальная проверка произойдёт при
// оформлении заказа.
func (l *Ledger) AddItem(customerID, productID string, qty int32) (domain.Cart, error) {
	return l.putItem(customerID, productID, qty, false)
}

// SetItem выставляет количество товара в корзине ровно в qty (qty >= 1),
// перезаписывая существующую позицию.
func (l *Ledger) SetItem(customerID, productID string, qty int32) (domain.Cart, error) {
	return l.putItem(customerID, productID, qty, true)
}

func (l *Ledger) putItem(customerID, productID string, qty int32, overwrite bool) (domain.Cart, error) {
	if qty < 1 {
		return domain.Cart{}, domain.ErrLineQtyInvalid
	}

	product, err := l.products.Get(productID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart, err := l.Get(customerID)
	if err != nil {
		return domain.Cart{}, err
	}

	newQty := qty
	if !overwrite {
		newQty += cart.Lines[productID]
	}
	if product.Quantity < newQty {
		return domain.Cart{}, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.Quantity,
			Requested:   newQty,
		}
	}

	cart.Lines[productID] = newQty
	if err := l.recomputeAndSave(&cart); err != nil {
		return domain.Cart{}, err
	}

	l.logger.WithFields(log.Fields{
		"customer_id": customerID,
		"product_id":  productID,
		"qty":         newQty,
	}).Debug("cart line updated")
	return cart, nil
}

// RemoveItem удаляет позицию из корзины. Отсутствие позиции — нарушение
// бизнес-правила, а не NotFound.
func (l *Ledger) RemoveItem(customerID, productID string) (domain.Cart, error) {
	cart, err := l.Get(customerID)
	if err != nil {
		return domain.Cart{}, err
	}

	if _, ok := cart.Lines[productID]; !ok {
		return domain.Cart{}, domain.ErrCartLineAbsent
	}
	delete(cart.Lines, productID)

	if err := l.recomputeAndSave(&cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// Clear опустошает корзину и обнуляет итоги. Сама корзина не удаляется.
func (l *Ledger) Clear(customerID string) (domain.Cart, error) {
	cart, err := l.Get(customerID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart.Lines = make(map[string]int32)
	if err := l.recomputeAndSave(&cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// recomputeAndSave пересчитывает итоги с нуля по текущим ценам каталога
// и сохраняет корзину. Товар, пропавший из каталога, учитывается по нулевой
// цене: корзина самовосстанавливается, а не падает.
func (l *Ledger) recomputeAndSave(cart *domain.Cart) error {
	ids := make([]string, 0, len(cart.Lines))
	for productID := range cart.Lines {
		ids = append(ids, productID)
	}

	found, err := l.products.GetMany(ids)
	if err != nil {
		return fmt.Errorf("load cart prices: %w", err)
	}

	cart.Recompute(func(productID string) int64 {
		return found[productID].PriceMinor
	})
	cart.UpdatedAt = time.Now().UTC()

	if err := l.carts.Save(*cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
