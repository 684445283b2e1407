package kafka

import "time"

// EventType определяет тип события во внешнем потоке
type EventType string

const (
	// Registration события (процесс регистрации)
	EventTypeRegistrationStarted   EventType = "registration.started"
	EventTypeRegistrationConfirmed EventType = "registration.confirmed"
	EventTypeRegistrationRejected  EventType = "registration.rejected"
	EventTypeRegistrationExpired   EventType = "registration.expired"
	EventTypeRegistrationCompleted EventType = "registration.completed"

	// Order события
	EventTypeOrderPlaced    EventType = "order.placed"
	EventTypeOrderUpdated   EventType = "order.updated"
	EventTypeOrderConfirmed EventType = "order.confirmed"
	EventTypeOrderRejected  EventType = "order.rejected"
)

// Topics для Kafka
const (
	TopicRegistrationEvents = "crs.registration.events"
	TopicOrderEvents        = "crs.order.events"
	TopicDeadLetterQueue    = "crs.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// RegistrationEvent представляет событие процесса регистрации
type RegistrationEvent struct {
	EventType    EventType              `json:"event_type"`
	OrderID      string                 `json:"order_id"`
	ConferenceID string                 `json:"conference_id"`
	Timestamp    time.Time              `json:"timestamp"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// OrderEvent представляет событие заказа регистрации
type OrderEvent struct {
	EventType    EventType              `json:"event_type"`
	OrderID      string                 `json:"order_id"`
	ConferenceID string                 `json:"conference_id"`
	Status       string                 `json:"status"`
	Timestamp    time.Time              `json:"timestamp"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// NewRegistrationEvent создает новое событие процесса регистрации
func NewRegistrationEvent(eventType EventType, orderID, conferenceID string, metadata map[string]interface{}) *RegistrationEvent {
	return &RegistrationEvent{
		EventType:    eventType,
		OrderID:      orderID,
		ConferenceID: conferenceID,
		Timestamp:    time.Now(),
		Metadata:     metadata,
	}
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID, conferenceID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType:    eventType,
		OrderID:      orderID,
		ConferenceID: conferenceID,
		Status:       status,
		Timestamp:    time.Now(),
		Metadata:     metadata,
	}
}
