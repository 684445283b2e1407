package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

// timelineRepositoryInMemory держит хронологию регистрации по заказам
// в памяти; используется в локальной разработке и тестах.
type timelineRepositoryInMemory struct {
	mu      sync.RWMutex
	byOrder map[string][]domain.TimelineEvent
}

var _ domain.TimelineRepository = (*timelineRepositoryInMemory)(nil)

// NewTimelineRepository создаёт in-memory реализацию TimelineRepository.
func NewTimelineRepository() domain.TimelineRepository {
	return &timelineRepositoryInMemory{byOrder: make(map[string][]domain.TimelineEvent)}
}

// Append добавляет запись в хронологию заказа. Записи держатся
// отсортированными по Occurred, как их возвращает postgres-реализация.
func (r *timelineRepositoryInMemory) Append(event domain.TimelineEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	timeline := append(r.byOrder[event.OrderID], event)
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Occurred.Before(timeline[j].Occurred)
	})
	r.byOrder[event.OrderID] = timeline
	return nil
}

// List возвращает копию хронологии заказа в порядке наступления событий.
func (r *timelineRepositoryInMemory) List(orderID string) ([]domain.TimelineEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]domain.TimelineEvent(nil), r.byOrder[orderID]...), nil
}
