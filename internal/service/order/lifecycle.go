package order

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/grocery/internal/auth"
	"github.com/vladislavdragonenkov/grocery/internal/domain"
	"github.com/vladislavdragonenkov/grocery/internal/messaging/kafka"
)

// Get возвращает заказ с позициями, платежом и доставкой.
func (s *Service) Get(orderID string) (domain.Order, error) {
	return s.orders.Get(orderID)
}

// ListByCustomer возвращает заказы клиента, свежие первыми.
func (s *Service) ListByCustomer(customerID string, limit int) ([]domain.Order, error) {
	if customerID == "" {
		return nil, domain.ErrCustomerRequired
	}
	return s.orders.ListByCustomer(customerID, limit)
}

// Timeline возвращает события жизненного цикла заказа.
func (s *Service) Timeline(orderID string) ([]domain.TimelineEvent, error) {
	if _, err := s.orders.Get(orderID); err != nil {
		return nil, err
	}
	return s.timeline.List(orderID)
}

// UpdateStatus переводит заказ вперёд по жизненному циклу. Переход сверяется
// с таблицей допустимых переходов; CANCELADO этим путём недостижим, потому что
// отмена несёт возврат остатков и идёт через Cancel.
func (s *Service) UpdateStatus(principal auth.Principal, orderID string, newStatus domain.OrderStatus) (domain.Order, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if newStatus == domain.OrderStatusCanceled {
		return domain.Order{}, domain.ErrCancelBypassed
	}
	if !domain.CanTransition(order.Status, newStatus) {
		return domain.Order{}, &domain.TransitionError{From: order.Status, To: newStatus}
	}

	now := time.Now().UTC()
	previous := order.Status
	order.Status = newStatus
	order.UpdatedAt = now

	// Подстатусы платежа и доставки следуют за заказом.
	switch newStatus {
	case domain.OrderStatusPaid:
		order.Payment.Status = domain.PaymentStatusPaid
		order.Payment.UpdatedAt = now
	case domain.OrderStatusDelivered:
		order.Delivery.Status = domain.DeliveryStatusDelivered
		order.Delivery.DeliveredAt = &now
		order.Delivery.UpdatedAt = now
	}

	if err := s.orders.Save(order); err != nil {
		return domain.Order{}, fmt.Errorf("save order status: %w", err)
	}
	order.Version++

	s.appendTimeline(domain.TimelineEvent{
		OrderID:  order.ID,
		Type:     timelineEventOrderStatusChanged,
		Actor:    principal.ID,
		Reason:   fmt.Sprintf("%s -> %s", previous, newStatus),
		Occurred: now,
	})
	s.publishOrderEvent(kafka.EventTypeOrderStatusChanged, order, map[string]interface{}{
		"previous_status": string(previous),
	})

	s.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"from":     previous,
		"to":       newStatus,
	}).Info("order status updated")
	return order, nil
}

// Cancel отменяет заказ в статусе PENDENTE: возвращает остаток по каждой
// позиции и переводит заказ, платёж и доставку в CANCELADO — всё одной
// транзакцией, зеркально к списанию при оформлении.
func (s *Service) Cancel(principal auth.Principal, orderID string) (domain.Order, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.Status != domain.OrderStatusPending {
		return domain.Order{}, domain.ErrOrderNotPending
	}

	now := time.Now().UTC()
	order.Status = domain.OrderStatusCanceled
	order.Payment.Status = domain.PaymentStatusCanceled
	order.Payment.UpdatedAt = now
	order.Delivery.Status = domain.DeliveryStatusCanceled
	order.Delivery.UpdatedAt = now
	order.UpdatedAt = now

	if err := s.checkout.CancelOrder(order); err != nil {
		return domain.Order{}, err
	}
	order.Version++
	if s.metrics != nil {
		s.metrics.RecordOrderCanceled()
	}

	s.appendTimeline(domain.TimelineEvent{
		OrderID:  order.ID,
		Type:     timelineEventOrderCanceled,
		Actor:    principal.ID,
		Reason:   "stock restituted",
		Occurred: now,
	})
	s.publishOrderEvent(kafka.EventTypeOrderCanceled, order, map[string]interface{}{
		"lines_count": len(order.Lines),
	})

	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
	}).Info("order canceled, stock restituted")
	return order, nil
}
