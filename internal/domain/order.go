package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
// Значения совпадают с теми, что использует вышестоящая система.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, остаток зарезервирован, оплата не подтверждена.
	OrderStatusPending OrderStatus = "PENDENTE"
	// OrderStatusPaid — оплата подтверждена.
	OrderStatusPaid OrderStatus = "PAGO"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "ENVIADO"
	// OrderStatusDelivered — заказ доставлен клиенту (терминальный).
	OrderStatusDelivered OrderStatus = "ENTREGUE"
	// OrderStatusCanceled — заказ отменён, остатки возвращены (терминальный).
	OrderStatusCanceled OrderStatus = "CANCELADO"
)

// orderTransitions — таблица допустимых переходов статуса.
// CANCELADO достижим только через операцию отмены: она несёт побочные
// эффекты (возврат остатков), которые нельзя выполнить простой записью статуса.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCanceled},
	OrderStatusPaid:    {OrderStatusShipped},
	OrderStatusShipped: {OrderStatusDelivered},
}

// CanTransition сообщает, допустим ли переход from -> to.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal сообщает, является ли статус конечным.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// OrderLine — неизменяемый снимок позиции заказа. Цена фиксируется на момент
// оформления и не зависит от дальнейших изменений каталога.
type OrderLine struct {
	ID          string
	ProductID   string
	ProductName string
	// PriceMinor — цена за единицу на момент оформления, в сентаво.
	PriceMinor int64
	Qty        int32
	CreatedAt  time.Time
}

// Order агрегирует заказ, его позиции, платёж и доставку.
// Payment и Delivery создаются вместе с заказом и никогда не живут отдельно.
type Order struct {
	ID         string
	CustomerID string
	Status     OrderStatus
	Lines      []OrderLine
	// TotalMinor — сумма заказа в сентаво; всегда вычисляется по позициям.
	TotalMinor int64
	Payment    Payment
	Delivery   Delivery
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LinesTotalMinor возвращает сумму по позициям: qty * price.
func (o *Order) LinesTotalMinor() int64 {
	var total int64
	for _, line := range o.Lines {
		total += int64(line.Qty) * line.PriceMinor
	}
	return total
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrLinesRequired)
	}

	for _, line := range o.Lines {
		if line.Qty <= 0 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if line.PriceMinor < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
	}
	// Сумма заказа обязана совпадать с суммой позиций.
	if o.LinesTotalMinor() != o.TotalMinor {
		errs = append(errs, ErrTotalMismatch)
	}
	// Платёж всегда выписывается ровно на сумму заказа.
	if o.Payment.AmountMinor != o.TotalMinor {
		errs = append(errs, ErrPaymentAmountMismatch)
	}
	if o.Payment.Method == "" {
		errs = append(errs, ErrPaymentMethodRequired)
	}
	if o.Delivery.Address == "" {
		errs = append(errs, ErrDeliveryAddressRequired)
	}

	return errs
}
