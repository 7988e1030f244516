// Package order реализует оформление заказов (списание остатков, создание
// агрегата заказ+платёж+доставка) и их жизненный цикл, включая отмену
// с возвратом остатков.
package order

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
	"github.com/vladislavdragonenkov/grocery/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/grocery/internal/metrics"
)

// CartLedger — срез корзины, нужный оформлению заказа из корзины.
type CartLedger interface {
	Get(customerID string) (domain.Cart, error)
	Clear(customerID string) (domain.Cart, error)
}

// Service объединяет сборку заказа и управление его статусами: обе стороны
// делят одни репозитории и одну пару метрик.
type Service struct {
	orders    domain.OrderRepository
	checkout  domain.CheckoutRepository
	products  domain.ProductRepository
	customers domain.CustomerStore
	carts     CartLedger
	timeline  domain.TimelineRepository
	logger    *log.Entry
	metrics   *metrics.CheckoutMetrics
	producer  *kafka.Producer // опциональный Kafka producer для публикации событий
}

// NewService создаёт рабочий экземпляр сервиса заказов.
func NewService(
	orders domain.OrderRepository,
	checkout domain.CheckoutRepository,
	products domain.ProductRepository,
	customers domain.CustomerStore,
	carts CartLedger,
	timeline domain.TimelineRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &Service{
		orders:    orders,
		checkout:  checkout,
		products:  products,
		customers: customers,
		carts:     carts,
		timeline:  timeline,
		logger:    logger,
		metrics:   metrics.NewCheckoutMetrics(),
	}
}

// NewServiceWithKafka создаёт сервис, публикующий события заказов в Kafka.
func NewServiceWithKafka(
	orders domain.OrderRepository,
	checkout domain.CheckoutRepository,
	products domain.ProductRepository,
	customers domain.CustomerStore,
	carts CartLedger,
	timeline domain.TimelineRepository,
	producer *kafka.Producer,
	logger *log.Entry,
) *Service {
	svc := NewService(orders, checkout, products, customers, carts, timeline, logger)
	svc.producer = producer
	return svc
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(
	orders domain.OrderRepository,
	checkout domain.CheckoutRepository,
	products domain.ProductRepository,
	customers domain.CustomerStore,
	carts CartLedger,
	timeline domain.TimelineRepository,
	logger *log.Entry,
) *Service {
	svc := NewService(orders, checkout, products, customers, carts, timeline, logger)
	svc.metrics = nil
	return svc
}

// publishOrderEvent отправляет событие заказа, если producer настроен.
// Публикация best-effort: ошибка логируется и не влияет на результат операции.
func (s *Service) publishOrderEvent(eventType kafka.EventType, order domain.Order, metadata map[string]interface{}) {
	if s.producer == nil {
		return
	}
	event := kafka.NewOrderEvent(eventType, order.ID, order.CustomerID, string(order.Status), metadata)
	if err := s.producer.PublishOrderEvent(event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id":   order.ID,
			"event_type": eventType,
		}).Warn("failed to publish order event")
	}
}

// appendTimeline записывает событие жизненного цикла; сбой записи не
// откатывает уже зафиксированную операцию.
func (s *Service) appendTimeline(event domain.TimelineEvent) {
	if err := s.timeline.Append(event); err != nil {
		s.logger.WithError(err).WithField("order_id", event.OrderID).Warn("failed to append timeline event")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordTimelineEvent()
	}
}
