package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/grocery/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/grocery/internal/service/cart"
	"github.com/vladislavdragonenkov/grocery/internal/service/order"
)

// createServices собирает сервисный слой поверх репозиториев: с Kafka, если
// producer настроен, и без него в остальных случаях.
func createServices(deps *runtimeDependencies, producer *kafka.Producer, logger *log.Entry) (*cart.Ledger, *order.Service) {
	ledger := cart.NewLedger(deps.carts, deps.products, logger.WithField("component", "cart-ledger"))

	orderLogger := logger.WithField("component", "order-service")
	if producer != nil {
		return ledger, order.NewServiceWithKafka(
			deps.orders,
			deps.checkout,
			deps.products,
			deps.customers,
			ledger,
			deps.timeline,
			producer,
			orderLogger,
		)
	}

	return ledger, order.NewService(
		deps.orders,
		deps.checkout,
		deps.products,
		deps.customers,
		ledger,
		deps.timeline,
		orderLogger,
	)
}
