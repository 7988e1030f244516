package domain

import "time"

// PaymentStatus описывает состояние платежа заказа.
type PaymentStatus string

const (
	// PaymentStatusPending — платёж выписан, но не подтверждён.
	PaymentStatusPending PaymentStatus = "PENDENTE"
	// PaymentStatusPaid — оплата подтверждена.
	PaymentStatusPaid PaymentStatus = "PAGO"
	// PaymentStatusCanceled — платёж аннулирован вместе с заказом.
	PaymentStatusCanceled PaymentStatus = "CANCELADO"
)

// Payment описывает платёж, привязанный ровно к одному заказу.
// Статус платежа — обычное поле, а не state machine внешнего провайдера.
type Payment struct {
	ID      string
	OrderID string
	Method  string
	Status  PaymentStatus
	// AmountMinor — сумма платежа в сентаво; равна сумме заказа на момент создания.
	AmountMinor int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
