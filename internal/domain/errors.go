package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrLinesRequired = errors.New("order must contain at least one line")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrLineQtyInvalid = errors.New("line qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrLinePriceInvalid = errors.New("line price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrTotalMismatch = errors.New("order total does not match lines sum")
	// Ошибка несоответствия суммы платежа и суммы заказа.
	ErrPaymentAmountMismatch = errors.New("payment amount does not match order total")
	// Ошибка отсутствующего способа оплаты.
	ErrPaymentMethodRequired = errors.New("payment method is required")
	// Ошибка отсутствующего адреса доставки.
	ErrDeliveryAddressRequired = errors.New("delivery address is required")
	// Ошибка отсутствующего названия товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка отсутствующего идентификатора товара.
	ErrProductIDRequired = errors.New("product_id is required")

	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrCustomerNotFound возвращается, если клиент не зарегистрирован.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrCartNotFound возвращается репозиторием, если корзина ещё не создана.
	// Сервис корзины перехватывает её и лениво создаёт пустую корзину.
	ErrCartNotFound = errors.New("cart not found")

	// ErrProductNameTaken — нарушение уникальности натурального ключа товара.
	ErrProductNameTaken = errors.New("product name already registered")

	// ErrCartLineAbsent — попытка удалить из корзины товар, которого в ней нет.
	ErrCartLineAbsent = errors.New("product is not in the cart")
	// ErrOrderNotPending — отменить можно только заказ в статусе PENDENTE.
	ErrOrderNotPending = errors.New("only pending orders may be cancelled")
	// ErrCancelBypassed — перевод в CANCELADO минуя Cancel запрещён,
	// иначе возврат остатков не будет выполнен.
	ErrCancelBypassed = errors.New("cancellation must go through the cancel operation")
	// ErrStockNegative — корректировка остатка увела бы количество ниже нуля.
	ErrStockNegative = errors.New("stock adjustment would make quantity negative")

	// ErrStockConflict сигнализирует о конфликте версий при списании остатка.
	ErrStockConflict = errors.New("product stock version conflict")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении заказа.
	ErrOrderVersionConflict = errors.New("order version conflict")
)

// InsufficientStockError возвращается, когда запрошенное количество превышает остаток.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int32
	Requested   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// ProductsNotFoundError агрегирует все отсутствующие идентификаторы товаров:
// проверка существования выполняется целиком до любых мутаций.
type ProductsNotFoundError struct {
	IDs []string
}

func (e *ProductsNotFoundError) Error() string {
	return fmt.Sprintf("products not found: %s", strings.Join(e.IDs, ", "))
}

func (e *ProductsNotFoundError) Unwrap() error { return ErrProductNotFound }

// TransitionError описывает недопустимый переход статуса заказа.
type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal order status transition %s -> %s", e.From, e.To)
}

// IsNotFound проверяет, относится ли ошибка к классу "сущность отсутствует".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}

// IsDuplicate проверяет нарушение уникальности натурального ключа.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrProductNameTaken)
}

// IsInsufficientStock проверяет, является ли ошибка нехваткой остатка.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

// IsBusinessRule проверяет нарушение бизнес-правила (недопустимая операция или переход).
func IsBusinessRule(err error) bool {
	var transition *TransitionError
	return errors.Is(err, ErrCartLineAbsent) ||
		errors.Is(err, ErrOrderNotPending) ||
		errors.Is(err, ErrCancelBypassed) ||
		errors.Is(err, ErrStockNegative) ||
		errors.As(err, &transition)
}

// IsConflict проверяет, является ли ошибка конфликтом версий.
func IsConflict(err error) bool {
	return errors.Is(err, ErrStockConflict) || errors.Is(err, ErrOrderVersionConflict)
}
