package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

// paymentRepositoryInMemory хранит платёжные агрегаты.
type paymentRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Payment
}

// NewPaymentRepository возвращает in-memory реализацию PaymentRepository.
func NewPaymentRepository() domain.PaymentRepository {
	return &paymentRepositoryInMemory{
		items: make(map[string]domain.Payment),
	}
}

// Get возвращает платёж или ErrAggregateNotFound.
func (r *paymentRepositoryInMemory) Get(id string) (domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.items[id]
	if !ok {
		return domain.Payment{}, domain.ErrAggregateNotFound
	}
	return payment, nil
}

// Save сохраняет платёж с проверкой версии.
func (r *paymentRepositoryInMemory) Save(payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[payment.ID]
	if !ok {
		if payment.Version != 0 {
			return domain.ErrVersionConflict
		}
		payment.Version = 1
		r.items[payment.ID] = payment
		return nil
	}
	if current.Version != payment.Version {
		return domain.ErrVersionConflict
	}
	payment.Version++
	r.items[payment.ID] = payment
	return nil
}

var _ domain.PaymentRepository = (*paymentRepositoryInMemory)(nil)
