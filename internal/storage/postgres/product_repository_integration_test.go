package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
)

func TestProductRepository_PostgresCreateGetList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	seedProductForIntegrationTest(t, store, "product-2", "Feijao 1kg", 5, 800)
	seedProductForIntegrationTest(t, store, "product-1", "Arroz 5kg", 10, 500)

	got, err := repo.Get("product-1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Name != "Arroz 5kg" || got.PriceMinor != 500 || got.Quantity != 10 {
		t.Fatalf("unexpected product payload: %+v", got)
	}

	listed, err := repo.List()
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(listed) != 2 || listed[0].Name != "Arroz 5kg" || listed[1].Name != "Feijao 1kg" {
		t.Fatalf("expected stable name order, got %+v", listed)
	}

	many, err := repo.GetMany([]string{"product-1", "ghost"})
	if err != nil {
		t.Fatalf("get many: %v", err)
	}
	if len(many) != 1 {
		t.Fatalf("expected 1 found product, got %d", len(many))
	}
	if _, ok := many["product-1"]; !ok {
		t.Fatalf("expected product-1 in result: %v", many)
	}

	if _, err := repo.Get("ghost"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepository_PostgresNameUniqueness(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	seedProductForIntegrationTest(t, store, "product-1", "Arroz 5kg", 10, 500)

	now := time.Now().UTC().Round(time.Microsecond)
	err := repo.Create(domain.Product{
		ID:         "product-2",
		Name:       "arroz 5KG",
		PriceMinor: 600,
		Quantity:   1,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if !errors.Is(err, domain.ErrProductNameTaken) {
		t.Fatalf("expected ErrProductNameTaken for case-insensitive duplicate, got %v", err)
	}
}

func TestProductRepository_PostgresAdjustStock(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	seeded := seedProductForIntegrationTest(t, store, "product-1", "Arroz 5kg", 10, 500)

	adjusted, err := repo.AdjustStock(seeded.ID, -3)
	if err != nil {
		t.Fatalf("adjust stock: %v", err)
	}
	if adjusted.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", adjusted.Quantity)
	}
	if adjusted.Version != seeded.Version+1 {
		t.Fatalf("expected version bump, got %d", adjusted.Version)
	}

	if _, err := repo.AdjustStock(seeded.ID, -8); !errors.Is(err, domain.ErrStockNegative) {
		t.Fatalf("expected ErrStockNegative, got %v", err)
	}
	if _, err := repo.AdjustStock("ghost", 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCartRepository_PostgresSaveAndGet(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCartRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	cart := domain.NewCart("cart-1", "customer-1", now)
	cart.Lines["product-1"] = 3

	if err := repo.Save(cart); err != nil {
		t.Fatalf("save cart: %v", err)
	}

	got, err := repo.GetByCustomer("customer-1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if got.ID != "cart-1" || got.Lines["product-1"] != 3 {
		t.Fatalf("unexpected cart payload: %+v", got)
	}

	// Повторный Save перезаписывает карту целиком.
	cart.Lines = map[string]int32{"product-2": 1}
	cart.UpdatedAt = now.Add(time.Minute)
	if err := repo.Save(cart); err != nil {
		t.Fatalf("resave cart: %v", err)
	}

	got, err = repo.GetByCustomer("customer-1")
	if err != nil {
		t.Fatalf("get cart after resave: %v", err)
	}
	if len(got.Lines) != 1 || got.Lines["product-2"] != 1 {
		t.Fatalf("expected overwritten lines, got %v", got.Lines)
	}

	if _, err := repo.GetByCustomer("ghost"); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestCartRepository_PostgresMalformedLinesSelfHeal(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCartRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	cart := domain.NewCart("cart-1", "customer-1", now)
	if err := repo.Save(cart); err != nil {
		t.Fatalf("save cart: %v", err)
	}

	// Портим колонку допустимым для JSONB, но чужим по форме значением.
	if _, err := store.DB().Exec(`UPDATE carts SET lines = '["broken"]'::jsonb WHERE id = $1`, cart.ID); err != nil {
		t.Fatalf("corrupt cart lines: %v", err)
	}

	got, err := repo.GetByCustomer("customer-1")
	if err != nil {
		t.Fatalf("get corrupted cart: %v", err)
	}
	if len(got.Lines) != 0 {
		t.Fatalf("expected empty lines for corrupted cart, got %v", got.Lines)
	}
}

func TestTimelineRepository_PostgresAppendAndList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewTimelineRepository(store)

	base := time.Now().UTC().Round(time.Microsecond)
	events := []domain.TimelineEvent{
		{OrderID: "order-1", Type: "OrderCreated", Actor: "customer-1", Occurred: base},
		{OrderID: "order-1", Type: "OrderCanceled", Actor: "customer-1", Reason: "customer request", Occurred: base.Add(time.Minute)},
		{OrderID: "order-2", Type: "OrderCreated", Actor: "customer-2", Occurred: base},
	}
	for _, event := range events {
		if err := repo.Append(event); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}

	listed, err := repo.List("order-1")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 events, got %d", len(listed))
	}
	if listed[0].Type != "OrderCreated" || listed[1].Type != "OrderCanceled" {
		t.Fatalf("expected chronological order, got %+v", listed)
	}
	if listed[1].Reason != "customer request" {
		t.Fatalf("unexpected reason: %q", listed[1].Reason)
	}
}
