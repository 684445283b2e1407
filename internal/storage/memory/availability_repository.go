package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

// availabilityRepositoryInMemory хранит леджеры доступности по конференциям.
type availabilityRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.SeatsAvailability
}

// NewAvailabilityRepository возвращает in-memory реализацию AvailabilityRepository.
func NewAvailabilityRepository() domain.AvailabilityRepository {
	return &availabilityRepositoryInMemory{
		items: make(map[string]domain.SeatsAvailability),
	}
}

// Get возвращает копию леджера или ErrAggregateNotFound.
func (r *availabilityRepositoryInMemory) Get(conferenceID string) (domain.SeatsAvailability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	availability, ok := r.items[conferenceID]
	if !ok {
		return domain.SeatsAvailability{}, domain.ErrAggregateNotFound
	}
	return availability.Clone(), nil
}

// Save сохраняет глубокую копию леджера с проверкой версии.
func (r *availabilityRepositoryInMemory) Save(availability domain.SeatsAvailability) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[availability.ID]
	if !ok {
		if availability.Version != 0 {
			return domain.ErrVersionConflict
		}
		availability.Version = 1
		r.items[availability.ID] = availability.Clone()
		return nil
	}
	if current.Version != availability.Version {
		return domain.ErrVersionConflict
	}
	availability.Version++
	r.items[availability.ID] = availability.Clone()
	return nil
}

var _ domain.AvailabilityRepository = (*availabilityRepositoryInMemory)(nil)
