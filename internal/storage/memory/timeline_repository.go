package memory

import (
	"sort"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
)

// timelineRepository хранит события жизненного цикла заказов в памяти.
type timelineRepository struct {
	store *Store
}

// NewTimelineRepository создаёт in-memory реализацию TimelineRepository.
func NewTimelineRepository(store *Store) domain.TimelineRepository {
	return &timelineRepository{store: store}
}

// Append добавляет событие в хранилище.
func (r *timelineRepository) Append(event domain.TimelineEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	events := append(r.store.timeline[event.OrderID], event)
	sort.Slice(events, func(i, j int) bool {
		return events[i].Occurred.Before(events[j].Occurred)
	})
	r.store.timeline[event.OrderID] = events
	return nil
}

// List возвращает события заказа в хронологическом порядке.
func (r *timelineRepository) List(orderID string) ([]domain.TimelineEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	events := r.store.timeline[orderID]
	result := make([]domain.TimelineEvent, len(events))
	copy(result, events)
	return result, nil
}

var _ domain.TimelineRepository = (*timelineRepository)(nil)
