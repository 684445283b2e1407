package messaging

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

// CommandHandlerFunc обрабатывает одну команду.
type CommandHandlerFunc func(cmd domain.Command) error

// EventHandlerFunc обрабатывает одно событие.
type EventHandlerFunc func(event domain.Event) error

// Bus — in-process шина команд и событий. Команды маршрутизируются по
// CommandType на единственный обработчик агрегата-владельца, события
// раздаются всем подписчикам типа. Диспетчеризация явная, по таблице,
// без reflection.
//
// Шина заменяет внешний durable-субстрат доставки в локальной разработке
// и тестах; семантика остаётся at-least-once, поэтому обработчики обязаны
// быть идемпотентными.
type Bus struct {
	mu          sync.RWMutex
	commands    map[string]CommandHandlerFunc
	subscribers map[string][]EventHandlerFunc
	logger      *log.Entry
}

// NewBus создаёт пустую шину.
func NewBus(logger *log.Entry) *Bus {
	if logger == nil {
		logger = log.WithField("component", "bus")
	}
	return &Bus{
		commands:    make(map[string]CommandHandlerFunc),
		subscribers: make(map[string][]EventHandlerFunc),
		logger:      logger,
	}
}

// RegisterCommand привязывает обработчик к типу команды. Повторная
// регистрация типа перезаписывает обработчик.
func (b *Bus) RegisterCommand(commandType string, handler CommandHandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands[commandType] = handler
}

// Subscribe добавляет подписчика на тип события.
func (b *Bus) Subscribe(eventType string, handler EventHandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Send доставляет команду обработчику её типа.
func (b *Bus) Send(cmd domain.Command) error {
	b.mu.RLock()
	handler, ok := b.commands[cmd.CommandType()]
	b.mu.RUnlock()

	if !ok {
		return fmt.Errorf("no handler registered for command %s", cmd.CommandType())
	}
	return handler(cmd)
}

// Publish раздаёт событие подписчикам. Ошибки подписчиков не прерывают
// рассылку: недопустимое состояние саги — ожидаемый исход при повторной
// доставке, остальное логируется для эскалации.
func (b *Bus) Publish(event domain.Event) {
	b.mu.RLock()
	handlers := b.subscribers[event.EventType()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			entry := b.logger.WithError(err).WithFields(log.Fields{
				"event":        event.EventType(),
				"aggregate_id": event.AggregateID(),
			})
			if domain.IsIllegalProcessState(err) {
				entry.Debug("event ignored by process in terminal or mismatched state")
				continue
			}
			entry.Warn("event handler failed")
		}
	}
}

var _ domain.CommandBus = (*Bus)(nil)
var _ domain.EventPublisher = (*Bus)(nil)
