package memory

import (
	"sort"
	"strings"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
)

// productRepository — in-memory реализация ProductRepository поверх Store.
type productRepository struct {
	store *Store
}

// NewProductRepository возвращает in-memory репозиторий каталога.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{store: store}
}

// Create сохраняет новый товар, проверяя уникальность названия.
func (r *productRepository) Create(product domain.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.products {
		if existing.ID != product.ID && strings.EqualFold(existing.Name, product.Name) {
			return domain.ErrProductNameTaken
		}
	}
	r.store.products[product.ID] = product
	return nil
}

// Get возвращает товар или ErrProductNotFound.
func (r *productRepository) Get(id string) (domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	product, ok := r.store.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// GetMany возвращает найденные товары; отсутствующие идентификаторы пропускаются.
func (r *productRepository) GetMany(ids []string) (map[string]domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if product, ok := r.store.products[id]; ok {
			result[id] = product
		}
	}
	return result, nil
}

// List возвращает каталог, отсортированный по названию.
func (r *productRepository) List() ([]domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.store.products))
	for _, product := range r.store.products {
		result = append(result, product)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// AdjustStock изменяет остаток, не позволяя ему уйти ниже нуля.
func (r *productRepository) AdjustStock(id string, delta int32) (domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product, ok := r.store.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if product.Quantity+delta < 0 {
		return domain.Product{}, domain.ErrStockNegative
	}
	product.Quantity += delta
	product.Version++
	r.store.products[id] = product
	return product, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
