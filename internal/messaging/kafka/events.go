package kafka

import "time"

// EventType определяет тип события заказа.
type EventType string

const (
	// EventTypeOrderCreated — заказ оформлен, остатки списаны.
	EventTypeOrderCreated EventType = "order.created"
	// EventTypeOrderStatusChanged — статус заказа переведён вперёд по циклу.
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	// EventTypeOrderCanceled — заказ отменён, остатки возвращены.
	EventTypeOrderCanceled EventType = "order.canceled"
)

// TopicOrderEvents — топик событий жизненного цикла заказов.
const TopicOrderEvents = "grocery.order.events"

// OrderEvent представляет событие заказа.
type OrderEvent struct {
	EventType  EventType              `json:"event_type"`
	OrderID    string                 `json:"order_id"`
	CustomerID string                 `json:"customer_id"`
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderEvent создает новое событие заказа.
func NewOrderEvent(eventType EventType, orderID, customerID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		Status:     status,
		Timestamp:  time.Now(),
		Metadata:   metadata,
	}
}
