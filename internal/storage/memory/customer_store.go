package memory

import "github.com/vladislavdragonenkov/grocery/internal/domain"

// CustomerStore — in-memory справочник клиентов. Ядро проверяет только
// существование; Register нужен сидированию dev-окружения и тестам.
type CustomerStore struct {
	store *Store
}

// NewCustomerStore возвращает in-memory реализацию domain.CustomerStore.
func NewCustomerStore(store *Store) *CustomerStore {
	return &CustomerStore{store: store}
}

// Register добавляет клиента в справочник.
func (s *CustomerStore) Register(customerID string) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.customers[customerID] = struct{}{}
}

// Exists проверяет, зарегистрирован ли клиент.
func (s *CustomerStore) Exists(customerID string) (bool, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	_, ok := s.store.customers[customerID]
	return ok, nil
}

var _ domain.CustomerStore = (*CustomerStore)(nil)
