package domain

import "time"

// DeliveryStatus описывает состояние доставки заказа.
type DeliveryStatus string

const (
	// DeliveryStatusPending — доставка запланирована.
	DeliveryStatusPending DeliveryStatus = "PENDENTE"
	// DeliveryStatusDelivered — заказ вручён клиенту.
	DeliveryStatusDelivered DeliveryStatus = "ENTREGUE"
	// DeliveryStatusCanceled — доставка отменена вместе с заказом.
	DeliveryStatusCanceled DeliveryStatus = "CANCELADO"
)

// Delivery описывает доставку, привязанную ровно к одному заказу.
type Delivery struct {
	ID      string
	OrderID string
	Address string
	Status  DeliveryStatus
	// DeliveredAt заполняется только при фактическом вручении.
	DeliveredAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
