package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
)

func seedProductForIntegrationTest(t *testing.T, store *Store, id, name string, qty int32, priceMinor int64) domain.Product {
	t.Helper()

	repo := NewProductRepository(store)
	now := time.Now().UTC().Round(time.Microsecond)
	product := domain.Product{
		ID:         id,
		Name:       name,
		PriceMinor: priceMinor,
		Quantity:   qty,
		ExpiresAt:  now.AddDate(0, 3, 0),
		CategoryID: "category-1",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("seed product %s: %v", id, err)
	}
	return product
}

func sampleAggregate(orderID, customerID string, lines []domain.OrderLine, now time.Time) domain.Order {
	order := domain.Order{
		ID:         orderID,
		CustomerID: customerID,
		Status:     domain.OrderStatusPending,
		Lines:      lines,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	order.TotalMinor = order.LinesTotalMinor()
	order.Payment = domain.Payment{
		ID:          orderID + "-payment",
		OrderID:     orderID,
		Method:      "PIX",
		Status:      domain.PaymentStatusPending,
		AmountMinor: order.TotalMinor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	order.Delivery = domain.Delivery{
		ID:        orderID + "-delivery",
		OrderID:   orderID,
		Address:   "Rua das Flores 10",
		Status:    domain.DeliveryStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return order
}

func TestCheckoutRepository_PostgresCreateOrderReservesStock(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	checkout := NewCheckoutRepository(store)
	products := NewProductRepository(store)
	orders := NewOrderRepository(store)

	seeded := seedProductForIntegrationTest(t, store, "product-1", "Arroz 5kg", 10, 500)

	now := time.Now().UTC().Round(time.Microsecond)
	order := sampleAggregate("order-1", "customer-1", []domain.OrderLine{{
		ID: "line-1", ProductID: seeded.ID, ProductName: seeded.Name,
		PriceMinor: seeded.PriceMinor, Qty: 4, CreatedAt: now,
	}}, now)

	err := checkout.CreateOrder(order, []domain.StockReservation{
		{ProductID: seeded.ID, Qty: 4, Version: seeded.Version},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	product, err := products.Get(seeded.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Quantity != 6 {
		t.Fatalf("expected stock 6 after reservation, got %d", product.Quantity)
	}
	if product.Version != seeded.Version+1 {
		t.Fatalf("expected version bump, got %d", product.Version)
	}

	got, err := orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.TotalMinor != 2000 {
		t.Fatalf("expected total 2000, got %d", got.TotalMinor)
	}
	if got.Payment.AmountMinor != 2000 || got.Payment.Status != domain.PaymentStatusPending {
		t.Fatalf("unexpected payment: %+v", got.Payment)
	}
	if got.Delivery.Status != domain.DeliveryStatusPending || got.Delivery.DeliveredAt != nil {
		t.Fatalf("unexpected delivery: %+v", got.Delivery)
	}
}

func TestCheckoutRepository_PostgresNoPartialReservation(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	checkout := NewCheckoutRepository(store)
	products := NewProductRepository(store)

	first := seedProductForIntegrationTest(t, store, "product-1", "Arroz 5kg", 10, 500)
	second := seedProductForIntegrationTest(t, store, "product-2", "Feijao 1kg", 2, 800)

	now := time.Now().UTC().Round(time.Microsecond)
	order := sampleAggregate("order-1", "customer-1", []domain.OrderLine{
		{ID: "line-1", ProductID: first.ID, ProductName: first.Name, PriceMinor: first.PriceMinor, Qty: 4, CreatedAt: now},
		{ID: "line-2", ProductID: second.ID, ProductName: second.Name, PriceMinor: second.PriceMinor, Qty: 5, CreatedAt: now},
	}, now)

	err := checkout.CreateOrder(order, []domain.StockReservation{
		{ProductID: first.ID, Qty: 4, Version: first.Version},
		{ProductID: second.ID, Qty: 5, Version: second.Version},
	})

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductID != second.ID || stockErr.Available != 2 || stockErr.Requested != 5 {
		t.Fatalf("unexpected error payload: %+v", stockErr)
	}

	// Откат транзакции не оставляет частичного списания по первому товару.
	got, err := products.Get(first.ID)
	if err != nil {
		t.Fatalf("get first product: %v", err)
	}
	if got.Quantity != 10 {
		t.Fatalf("expected stock 10 after rollback, got %d", got.Quantity)
	}
}

func TestCheckoutRepository_PostgresMissingProducts(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	checkout := NewCheckoutRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	order := sampleAggregate("order-1", "customer-1", []domain.OrderLine{
		{ID: "line-1", ProductID: "ghost-1", ProductName: "?", PriceMinor: 1, Qty: 1, CreatedAt: now},
	}, now)

	err := checkout.CreateOrder(order, []domain.StockReservation{
		{ProductID: "ghost-1", Qty: 1},
		{ProductID: "ghost-2", Qty: 1},
	})

	var notFound *domain.ProductsNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ProductsNotFoundError, got %v", err)
	}
	if len(notFound.IDs) != 2 {
		t.Fatalf("expected both missing ids, got %v", notFound.IDs)
	}
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected error to unwrap to ErrProductNotFound")
	}
}

func TestCheckoutRepository_PostgresStaleVersion(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	checkout := NewCheckoutRepository(store)

	seeded := seedProductForIntegrationTest(t, store, "product-1", "Arroz 5kg", 10, 500)

	now := time.Now().UTC().Round(time.Microsecond)
	order := sampleAggregate("order-1", "customer-1", []domain.OrderLine{
		{ID: "line-1", ProductID: seeded.ID, ProductName: seeded.Name, PriceMinor: seeded.PriceMinor, Qty: 1, CreatedAt: now},
	}, now)

	err := checkout.CreateOrder(order, []domain.StockReservation{
		{ProductID: seeded.ID, Qty: 1, Version: seeded.Version + 7},
	})
	if !errors.Is(err, domain.ErrStockConflict) {
		t.Fatalf("expected ErrStockConflict, got %v", err)
	}
}

func TestCheckoutRepository_PostgresCancelRestoresStock(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	checkout := NewCheckoutRepository(store)
	products := NewProductRepository(store)
	orders := NewOrderRepository(store)

	seeded := seedProductForIntegrationTest(t, store, "product-1", "Arroz 5kg", 10, 500)

	now := time.Now().UTC().Round(time.Microsecond)
	order := sampleAggregate("order-1", "customer-1", []domain.OrderLine{{
		ID: "line-1", ProductID: seeded.ID, ProductName: seeded.Name,
		PriceMinor: seeded.PriceMinor, Qty: 4, CreatedAt: now,
	}}, now)

	if err := checkout.CreateOrder(order, []domain.StockReservation{
		{ProductID: seeded.ID, Qty: 4, Version: seeded.Version},
	}); err != nil {
		t.Fatalf("create order: %v", err)
	}

	placed, err := orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get placed order: %v", err)
	}

	placed.Status = domain.OrderStatusCanceled
	placed.Payment.Status = domain.PaymentStatusCanceled
	placed.Delivery.Status = domain.DeliveryStatusCanceled
	placed.UpdatedAt = now.Add(time.Minute)
	if err := checkout.CancelOrder(placed); err != nil {
		t.Fatalf("cancel order: %v", err)
	}

	product, err := products.Get(seeded.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Quantity != 10 {
		t.Fatalf("expected stock restored to 10, got %d", product.Quantity)
	}

	canceled, err := orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get canceled order: %v", err)
	}
	if canceled.Status != domain.OrderStatusCanceled ||
		canceled.Payment.Status != domain.PaymentStatusCanceled ||
		canceled.Delivery.Status != domain.DeliveryStatusCanceled {
		t.Fatalf("expected all statuses CANCELADO: %+v", canceled)
	}
	if canceled.Version != placed.Version+1 {
		t.Fatalf("expected order version bump, got %d", canceled.Version)
	}
}
