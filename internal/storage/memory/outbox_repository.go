package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

type outboxStatus string

const (
	outboxPending outboxStatus = "pending"
	outboxSent    outboxStatus = "sent"
	outboxFailed  outboxStatus = "failed"
)

// outboxRecord — сообщение outbox со служебными полями in-memory реализации.
type outboxRecord struct {
	msg       domain.OutboxMessage
	status    outboxStatus
	attempts  int
	createdAt time.Time
	updatedAt time.Time
}

// outboxRepositoryInMemory — in-memory outbox для локальной разработки и
// тестов. Повторяет контракт postgres-реализации, включая порядок выборки
// pending-сообщений по времени постановки.
type outboxRepositoryInMemory struct {
	mu      sync.RWMutex
	records map[string]*outboxRecord
}

var _ domain.OutboxRepository = (*outboxRepositoryInMemory)(nil)

// NewOutboxRepository создаёт in-memory реализацию outbox.
func NewOutboxRepository() *outboxRepositoryInMemory {
	return &outboxRepositoryInMemory{records: make(map[string]*outboxRecord)}
}

// Enqueue сохраняет событие со статусом pending и возвращает его с
// присвоенным идентификатором.
func (r *outboxRepositoryInMemory) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	r.records[msg.ID] = &outboxRecord{
		msg:       msg,
		status:    outboxPending,
		createdAt: now,
		updatedAt: now,
	}
	return msg, nil
}

// PullPending возвращает до limit pending-сообщений, старые первыми.
func (r *outboxRepositoryInMemory) PullPending(limit int) ([]domain.OutboxMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	backlog := r.pendingRecords()
	if len(backlog) > limit {
		backlog = backlog[:limit]
	}

	result := make([]domain.OutboxMessage, 0, len(backlog))
	for _, rec := range backlog {
		result = append(result, rec.msg)
	}
	return result, nil
}

// Stats возвращает размер backlog и время самого старого pending-сообщения.
func (r *outboxRepositoryInMemory) Stats() (domain.OutboxStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats domain.OutboxStats
	if backlog := r.pendingRecords(); len(backlog) > 0 {
		stats.PendingCount = len(backlog)
		stats.OldestPendingAt = backlog[0].createdAt
	}
	return stats, nil
}

// MarkSent обновляет статус события после успешной публикации.
func (r *outboxRepositoryInMemory) MarkSent(id string) error {
	return r.finish(id, outboxSent)
}

// MarkFailed фиксирует ошибку публикации после исчерпания попыток.
func (r *outboxRepositoryInMemory) MarkFailed(id string) error {
	return r.finish(id, outboxFailed)
}

func (r *outboxRepositoryInMemory) finish(id string, status outboxStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return domain.ErrOutboxPublish
	}
	record.status = status
	record.attempts++
	record.updatedAt = time.Now().UTC()
	return nil
}

// AllPending возвращает копию всех pending-сообщений (используется в тестах).
func (r *outboxRepositoryInMemory) AllPending() []domain.OutboxMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.OutboxMessage, 0, len(r.records))
	for _, rec := range r.pendingRecords() {
		result = append(result, rec.msg)
	}
	return result
}

// pendingRecords отбирает pending-записи в порядке (createdAt, id).
// Вызывается под удержанным r.mu.
func (r *outboxRepositoryInMemory) pendingRecords() []*outboxRecord {
	backlog := make([]*outboxRecord, 0, len(r.records))
	for _, rec := range r.records {
		if rec.status == outboxPending {
			backlog = append(backlog, rec)
		}
	}
	sort.Slice(backlog, func(i, j int) bool {
		if backlog[i].createdAt.Equal(backlog[j].createdAt) {
			return backlog[i].msg.ID < backlog[j].msg.ID
		}
		return backlog[i].createdAt.Before(backlog[j].createdAt)
	})
	return backlog
}
