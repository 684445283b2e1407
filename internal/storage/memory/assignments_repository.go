package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

// assignmentsRepositoryInMemory хранит карты рассадки.
type assignmentsRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.SeatAssignments
}

// NewAssignmentsRepository возвращает in-memory реализацию AssignmentsRepository.
func NewAssignmentsRepository() domain.AssignmentsRepository {
	return &assignmentsRepositoryInMemory{
		items: make(map[string]domain.SeatAssignments),
	}
}

// Get возвращает копию карты рассадки или ErrAggregateNotFound.
func (r *assignmentsRepositoryInMemory) Get(id string) (domain.SeatAssignments, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assignments, ok := r.items[id]
	if !ok {
		return domain.SeatAssignments{}, domain.ErrAggregateNotFound
	}
	return assignments.Clone(), nil
}

// Save сохраняет глубокую копию карты рассадки с проверкой версии.
func (r *assignmentsRepositoryInMemory) Save(assignments domain.SeatAssignments) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[assignments.ID]
	if !ok {
		if assignments.Version != 0 {
			return domain.ErrVersionConflict
		}
		assignments.Version = 1
		r.items[assignments.ID] = assignments.Clone()
		return nil
	}
	if current.Version != assignments.Version {
		return domain.ErrVersionConflict
	}
	assignments.Version++
	r.items[assignments.ID] = assignments.Clone()
	return nil
}

var _ domain.AssignmentsRepository = (*assignmentsRepositoryInMemory)(nil)
