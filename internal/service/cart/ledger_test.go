package cart_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
	"github.com/vladislavdragonenkov/grocery/internal/service/cart"
	"github.com/vladislavdragonenkov/grocery/internal/storage/memory"
)

func newLedger(t *testing.T) (*cart.Ledger, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	ledger := cart.NewLedger(memory.NewCartRepository(store), memory.NewProductRepository(store), nil)
	return ledger, store
}

func addProduct(t *testing.T, store *memory.Store, id, name string, qty int32, priceMinor int64) {
	t.Helper()

	now := time.Now().UTC()
	err := memory.NewProductRepository(store).Create(domain.Product{
		ID:         id,
		Name:       name,
		PriceMinor: priceMinor,
		Quantity:   qty,
		ExpiresAt:  now.AddDate(0, 3, 0),
		CategoryID: "category-1",
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	require.NoError(t, err)
}

func TestLedgerGet_CreatesEmptyCartLazily(t *testing.T) {
	ledger, store := newLedger(t)

	got, err := ledger.Get("customer-1")
	require.NoError(t, err)
	assert.Equal(t, "customer-1", got.CustomerID)
	assert.Empty(t, got.Lines)
	assert.Zero(t, got.TotalItems)
	assert.Zero(t, got.TotalMinor)

	// Пустая корзина должна быть сразу персистирована.
	stored, err := memory.NewCartRepository(store).GetByCustomer("customer-1")
	require.NoError(t, err)
	assert.Equal(t, got.ID, stored.ID)

	// Повторное обращение возвращает ту же корзину, а не новую.
	again, err := ledger.Get("customer-1")
	require.NoError(t, err)
	assert.Equal(t, got.ID, again.ID)
}

func TestLedgerAddItem_IncrementsAndRecomputes(t *testing.T) {
	ledger, store := newLedger(t)
	addProduct(t, store, "product-1", "Arroz 5kg", 10, 500)

	_, err := ledger.AddItem("customer-1", "product-1", 3)
	require.NoError(t, err)

	got, err := ledger.AddItem("customer-1", "product-1", 2)
	require.NoError(t, err)

	assert.Equal(t, int32(5), got.Lines["product-1"])
	assert.Equal(t, int32(5), got.TotalItems)
	assert.Equal(t, int64(5*500), got.TotalMinor)
}

func TestLedgerSetItem_Overwrites(t *testing.T) {
	ledger, store := newLedger(t)
	addProduct(t, store, "product-1", "Arroz 5kg", 10, 500)

	_, err := ledger.AddItem("customer-1", "product-1", 5)
	require.NoError(t, err)

	got, err := ledger.SetItem("customer-1", "product-1", 2)
	require.NoError(t, err)

	assert.Equal(t, int32(2), got.Lines["product-1"])
	assert.Equal(t, int32(2), got.TotalItems)
	assert.Equal(t, int64(2*500), got.TotalMinor)
}

func TestLedgerAddItem_Errors(t *testing.T) {
	ledger, store := newLedger(t)
	addProduct(t, store, "product-1", "Arroz 5kg", 4, 500)

	t.Run("unknown product", func(t *testing.T) {
		_, err := ledger.AddItem("customer-1", "ghost", 1)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("qty below one", func(t *testing.T) {
		_, err := ledger.AddItem("customer-1", "product-1", 0)
		assert.ErrorIs(t, err, domain.ErrLineQtyInvalid)
	})

	t.Run("insufficient stock counts existing line", func(t *testing.T) {
		_, err := ledger.AddItem("customer-1", "product-1", 3)
		require.NoError(t, err)

		_, err = ledger.AddItem("customer-1", "product-1", 2)
		var insufficient *domain.InsufficientStockError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, int32(4), insufficient.Available)
		assert.Equal(t, int32(5), insufficient.Requested)
	})

	t.Run("set item checks stock against overwrite", func(t *testing.T) {
		_, err := ledger.SetItem("customer-1", "product-1", 4)
		require.NoError(t, err)

		_, err = ledger.SetItem("customer-1", "product-1", 5)
		assert.True(t, domain.IsInsufficientStock(err))
	})
}

func TestLedgerRemoveItem(t *testing.T) {
	ledger, store := newLedger(t)
	addProduct(t, store, "product-1", "Arroz 5kg", 10, 500)
	addProduct(t, store, "product-2", "Feijão 1kg", 10, 800)

	_, err := ledger.AddItem("customer-1", "product-1", 2)
	require.NoError(t, err)
	_, err = ledger.AddItem("customer-1", "product-2", 1)
	require.NoError(t, err)

	got, err := ledger.RemoveItem("customer-1", "product-1")
	require.NoError(t, err)
	assert.NotContains(t, got.Lines, "product-1")
	assert.Equal(t, int32(1), got.TotalItems)
	assert.Equal(t, int64(800), got.TotalMinor)

	// Удаление последней позиции обнуляет итоги.
	got, err = ledger.RemoveItem("customer-1", "product-2")
	require.NoError(t, err)
	assert.Empty(t, got.Lines)
	assert.Zero(t, got.TotalItems)
	assert.Zero(t, got.TotalMinor)

	_, err = ledger.RemoveItem("customer-1", "product-2")
	assert.ErrorIs(t, err, domain.ErrCartLineAbsent)
	assert.True(t, domain.IsBusinessRule(err))
}

func TestLedgerClear(t *testing.T) {
	ledger, store := newLedger(t)
	addProduct(t, store, "product-1", "Arroz 5kg", 10, 500)

	_, err := ledger.AddItem("customer-1", "product-1", 3)
	require.NoError(t, err)

	got, err := ledger.Clear("customer-1")
	require.NoError(t, err)
	assert.Empty(t, got.Lines)
	assert.Zero(t, got.TotalItems)
	assert.Zero(t, got.TotalMinor)
}

func TestLedgerTotals_FollowCurrentCatalogPrice(t *testing.T) {
	ledger, store := newLedger(t)
	addProduct(t, store, "product-1", "Arroz 5kg", 10, 500)
	addProduct(t, store, "product-2", "Feijão 1kg", 10, 800)

	_, err := ledger.AddItem("customer-1", "product-1", 2)
	require.NoError(t, err)

	// Итог считается по текущей цене каталога в момент пересчёта,
	// поэтому добавление второй позиции фиксирует актуальные цены обеих.
	got, err := ledger.AddItem("customer-1", "product-2", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2*500+800), got.TotalMinor)
}
