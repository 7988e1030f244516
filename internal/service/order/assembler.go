package order

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/grocery/internal/auth"
	"github.com/vladislavdragonenkov/grocery/internal/domain"
	"github.com/vladislavdragonenkov/grocery/internal/messaging/kafka"
)

const (
	// maxStockRetries ограничивает число повторов оформления после
	// конфликта версий остатка.
	maxStockRetries = 3

	timelineEventOrderCreated       = "OrderCreated"
	timelineEventOrderStatusChanged = "OrderStatusChanged"
	timelineEventOrderCanceled      = "OrderCanceled"
)

// LineRequest — запрошенная позиция заказа: товар и количество.
type LineRequest struct {
	ProductID string
	Qty       int32
}

// PlaceOrder оформляет заказ: проверяет клиента и товары, фиксирует цены,
// списывает остатки и сохраняет агрегат заказ+платёж+доставка одной
// транзакцией. Проверочный проход не имеет побочных эффектов — остатки
// не трогаются, пока не пройдены все позиции.
func (s *Service) PlaceOrder(
	principal auth.Principal,
	customerID string,
	lines []LineRequest,
	paymentMethod string,
	deliveryAddress string,
) (domain.Order, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordPlaceDuration(time.Since(start))
		}
	}()

	order, err := s.placeOrder(principal, customerID, lines, paymentMethod, deliveryAddress)
	if s.metrics != nil {
		if err != nil {
			s.metrics.RecordPlaceFailed()
			if domain.IsInsufficientStock(err) {
				s.metrics.RecordInsufficientStock()
			}
		} else {
			s.metrics.RecordOrderPlaced()
		}
	}
	return order, err
}

func (s *Service) placeOrder(
	principal auth.Principal,
	customerID string,
	lines []LineRequest,
	paymentMethod string,
	deliveryAddress string,
) (domain.Order, error) {
	if customerID == "" {
		return domain.Order{}, domain.ErrCustomerRequired
	}
	if paymentMethod == "" {
		return domain.Order{}, domain.ErrPaymentMethodRequired
	}
	if deliveryAddress == "" {
		return domain.Order{}, domain.ErrDeliveryAddressRequired
	}

	requests, err := consolidateLines(lines)
	if err != nil {
		return domain.Order{}, err
	}

	exists, err := s.customers.Exists(customerID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("check customer: %w", err)
	}
	if !exists {
		return domain.Order{}, domain.ErrCustomerNotFound
	}

	// Конфликт версий остатка означает, что конкурент успел изменить товар
	// между проверкой и списанием; перечитываем каталог и повторяем.
	var order domain.Order
	for attempt := 0; ; attempt++ {
		order, err = s.tryPlaceOrder(customerID, requests, paymentMethod, deliveryAddress)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrStockConflict) || attempt+1 >= maxStockRetries {
			return domain.Order{}, err
		}
		if s.metrics != nil {
			s.metrics.RecordStockRetry()
		}
		s.logger.WithFields(log.Fields{
			"customer_id": customerID,
			"attempt":     attempt + 1,
		}).Debug("stock conflict, retrying placement")
	}

	s.appendTimeline(domain.TimelineEvent{
		OrderID:  order.ID,
		Type:     timelineEventOrderCreated,
		Actor:    principal.ID,
		Occurred: order.CreatedAt,
	})
	s.publishOrderEvent(kafka.EventTypeOrderCreated, order, map[string]interface{}{
		"total_minor": order.TotalMinor,
		"lines_count": len(order.Lines),
	})

	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": customerID,
		"total_minor": order.TotalMinor,
	}).Info("order placed")
	return order, nil
}

// tryPlaceOrder выполняет один проход: чтение каталога, проверка остатков,
// сборка агрегата и атомарная фиксация.
func (s *Service) tryPlaceOrder(
	customerID string,
	requests []LineRequest,
	paymentMethod string,
	deliveryAddress string,
) (domain.Order, error) {
	ids := make([]string, 0, len(requests))
	for _, req := range requests {
		ids = append(ids, req.ProductID)
	}

	found, err := s.products.GetMany(ids)
	if err != nil {
		return domain.Order{}, fmt.Errorf("load products: %w", err)
	}

	// Проверка существования — целиком и до любых мутаций, со всеми
	// отсутствующими идентификаторами в одном сообщении.
	var missing []string
	for _, req := range requests {
		if _, ok := found[req.ProductID]; !ok {
			missing = append(missing, req.ProductID)
		}
	}
	if len(missing) > 0 {
		return domain.Order{}, &domain.ProductsNotFoundError{IDs: missing}
	}

	// Проверка остатков: первый же дефицит прерывает оформление.
	for _, req := range requests {
		product := found[req.ProductID]
		if product.Quantity < req.Qty {
			return domain.Order{}, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Quantity,
				Requested:   req.Qty,
			}
		}
	}

	now := time.Now().UTC()
	orderID := uuid.NewString()

	orderLines := make([]domain.OrderLine, 0, len(requests))
	reservations := make([]domain.StockReservation, 0, len(requests))
	var totalMinor int64
	for _, req := range requests {
		product := found[req.ProductID]
		// Снимок позиции: цена и название фиксируются на момент оформления.
		orderLines = append(orderLines, domain.OrderLine{
			ID:          uuid.NewString(),
			ProductID:   product.ID,
			ProductName: product.Name,
			PriceMinor:  product.PriceMinor,
			Qty:         req.Qty,
			CreatedAt:   now,
		})
		reservations = append(reservations, domain.StockReservation{
			ProductID: product.ID,
			Qty:       req.Qty,
			Version:   product.Version,
		})
		totalMinor += int64(req.Qty) * product.PriceMinor
	}

	order := domain.Order{
		ID:         orderID,
		CustomerID: customerID,
		Status:     domain.OrderStatusPending,
		Lines:      orderLines,
		TotalMinor: totalMinor,
		Payment: domain.Payment{
			ID:          uuid.NewString(),
			OrderID:     orderID,
			Method:      paymentMethod,
			Status:      domain.PaymentStatusPending,
			AmountMinor: totalMinor,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Delivery: domain.Delivery{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			Address:   deliveryAddress,
			Status:    domain.DeliveryStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, fmt.Errorf("order invariants violated: %v", errs)
	}

	if err := s.checkout.CreateOrder(order, reservations); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// PlaceOrderFromCart оформляет заказ из корзины клиента и очищает её
// только после успешной фиксации заказа.
func (s *Service) PlaceOrderFromCart(
	principal auth.Principal,
	customerID string,
	paymentMethod string,
	deliveryAddress string,
) (domain.Order, error) {
	cart, err := s.carts.Get(customerID)
	if err != nil {
		return domain.Order{}, err
	}
	if len(cart.Lines) == 0 {
		return domain.Order{}, domain.ErrLinesRequired
	}

	// Детерминированный порядок позиций: карта корзины порядка не имеет.
	lines := make([]LineRequest, 0, len(cart.Lines))
	for productID, qty := range cart.Lines {
		lines = append(lines, LineRequest{ProductID: productID, Qty: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	order, err := s.PlaceOrder(principal, customerID, lines, paymentMethod, deliveryAddress)
	if err != nil {
		return domain.Order{}, err
	}

	if _, err := s.carts.Clear(customerID); err != nil {
		// Заказ уже зафиксирован; незачищенная корзина — повод для warn, не отказа.
		s.logger.WithError(err).WithField("customer_id", customerID).Warn("failed to clear cart after checkout")
	}
	return order, nil
}

// consolidateLines сводит повторы одного товара в одну позицию и проверяет
// количества. Порядок первых вхождений сохраняется.
func consolidateLines(lines []LineRequest) ([]LineRequest, error) {
	if len(lines) == 0 {
		return nil, domain.ErrLinesRequired
	}

	index := make(map[string]int, len(lines))
	result := make([]LineRequest, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == "" {
			return nil, domain.ErrProductIDRequired
		}
		if line.Qty < 1 {
			return nil, domain.ErrLineQtyInvalid
		}
		if at, ok := index[line.ProductID]; ok {
			result[at].Qty += line.Qty
			continue
		}
		index[line.ProductID] = len(result)
		result = append(result, line)
	}
	return result, nil
}
