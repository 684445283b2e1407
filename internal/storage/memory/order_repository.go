package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

// orderRepositoryInMemory — in-memory реализация OrderRepository с той же
// optimistic-locking семантикой, что у postgres-реализации: новый заказ
// приходит с Version=0, каждое сохранение поднимает версию на единицу.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{items: make(map[string]domain.Order)}
}

// Get возвращает заказ или ErrAggregateNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if order, ok := r.items[id]; ok {
		return order, nil
	}
	return domain.Order{}, domain.ErrAggregateNotFound
}

// Save сохраняет заказ с проверкой версии.
func (r *orderRepositoryInMemory) Save(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	expected := int64(0)
	if current, ok := r.items[order.ID]; ok {
		expected = current.Version
	}
	if order.Version != expected {
		return domain.ErrVersionConflict
	}

	order.Version++
	r.items[order.ID] = order
	return nil
}
