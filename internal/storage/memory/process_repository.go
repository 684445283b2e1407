package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

// processRepositoryInMemory хранит состояния регистрационных саг.
type processRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.RegistrationProcess
}

// NewProcessRepository возвращает in-memory реализацию ProcessRepository.
func NewProcessRepository() domain.ProcessRepository {
	return &processRepositoryInMemory{
		items: make(map[string]domain.RegistrationProcess),
	}
}

// Get возвращает сагу или ErrAggregateNotFound.
func (r *processRepositoryInMemory) Get(id string) (domain.RegistrationProcess, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	process, ok := r.items[id]
	if !ok {
		return domain.RegistrationProcess{}, domain.ErrAggregateNotFound
	}
	return process, nil
}

// Save сохраняет сагу с проверкой версии (optimistic locking).
func (r *processRepositoryInMemory) Save(process domain.RegistrationProcess) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[process.ID]
	if !ok {
		if process.Version != 0 {
			return domain.ErrVersionConflict
		}
		process.Version = 1
		r.items[process.ID] = process
		return nil
	}
	if current.Version != process.Version {
		return domain.ErrVersionConflict
	}
	process.Version++
	r.items[process.ID] = process
	return nil
}

var _ domain.ProcessRepository = (*processRepositoryInMemory)(nil)
