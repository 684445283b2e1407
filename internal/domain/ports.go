package domain

import "time"

// CommandBus доставляет команды обработчику агрегата-владельца.
// Доставка асинхронная и at-least-once: обработчики обязаны переживать
// повторную доставку одной и той же команды.
type CommandBus interface {
	Send(cmd Command) error
}

// EventPublisher публикует доменные события подписчикам.
type EventPublisher interface {
	Publish(event Event)
}

// CommandScheduler планирует отложенную доставку команды на заданный момент.
// Schedule возвращает токен, по которому доставку можно отменить; Cancel
// для неизвестного или уже сработавшего токена — безопасный no-op.
type CommandScheduler interface {
	Schedule(cmd Command, at time.Time) (string, error)
	Cancel(token string)
}

// PricingService считает полную стоимость заказа. Потребляется как
// непрозрачный внешний сервис.
type PricingService interface {
	CalculateTotalOrderPrice(conferenceID string, seats []SeatQuantity) (int64, error)
}

// IDGenerator выдаёт непрозрачные уникальные идентификаторы.
type IDGenerator interface {
	NewID() string
}

// PaymentProcessor списывает средства у стороннего провайдера.
// Возвращённая ошибка трактуется как отклонение платежа.
type PaymentProcessor interface {
	Charge(paymentID, orderID string, amountMinor int64) error
}

// CommandEnv передаёт агрегату внешние зависимости, нужные при обработке
// команд: часы, генератор идентификаторов, прайсинг и TTL резервирования.
type CommandEnv struct {
	Now            time.Time
	IDs            IDGenerator
	Pricing        PricingService
	ReservationTTL time.Duration
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
