package handlers

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crs/internal/domain"
	"github.com/vladislavdragonenkov/crs/internal/metrics"
)

// AggregateTypeOrder и соседние константы определяют значение aggregate_type
// в transactional outbox.
const (
	AggregateTypeOrder        = "order"
	AggregateTypeAvailability = "availability"
	AggregateTypePayment      = "payment"
	AggregateTypeAssignments  = "assignments"
)

// Publisher распространяет события агрегата после успешного сохранения:
// сначала durable-запись в outbox (и timeline для событий заказа), затем
// раздача подписчикам на in-process шине.
type Publisher struct {
	bus      domain.EventPublisher
	outbox   domain.OutboxRepository
	timeline domain.TimelineRepository
	logger   *log.Entry
	metrics  *metrics.ProcessMetrics
}

// NewPublisher создаёт рабочий экземпляр публикатора.
func NewPublisher(
	bus domain.EventPublisher,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	logger *log.Entry,
) *Publisher {
	if logger == nil {
		logger = log.New().WithField("component", "publisher")
	}
	return &Publisher{
		bus:      bus,
		outbox:   outbox,
		timeline: timeline,
		logger:   logger,
		metrics:  metrics.NewProcessMetrics(),
	}
}

// NewPublisherWithoutMetrics создаёт публикатор без метрик (для тестов).
func NewPublisherWithoutMetrics(
	bus domain.EventPublisher,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	logger *log.Entry,
) *Publisher {
	if logger == nil {
		logger = log.New().WithField("component", "publisher")
	}
	return &Publisher{
		bus:      bus,
		outbox:   outbox,
		timeline: timeline,
		logger:   logger,
	}
}

// Publish записывает события в outbox и timeline, затем раздаёт их на шине.
// Ошибки outbox и timeline логируются и не прерывают раздачу: состояние
// агрегата уже сохранено, подписчики обязаны переживать повторную доставку.
func (p *Publisher) Publish(aggregateType string, events []domain.Event, occurred time.Time) {
	for _, event := range events {
		p.enqueueOutbox(aggregateType, event)
		if aggregateType == AggregateTypeOrder {
			p.appendTimeline(event, occurred)
		}
	}
	for _, event := range events {
		p.bus.Publish(event)
	}
}

func (p *Publisher) enqueueOutbox(aggregateType string, event domain.Event) {
	if p.outbox == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"aggregate_id": event.AggregateID(),
			"event":        event.EventType(),
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: aggregateType,
		AggregateID:   event.AggregateID(),
		EventType:     event.EventType(),
		Payload:       data,
	}
	if _, err := p.outbox.Enqueue(msg); err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"aggregate_id": event.AggregateID(),
			"event":        event.EventType(),
		}).Error("enqueue event failed")
		return
	}
	if p.metrics != nil {
		p.metrics.RecordOutboxEvent()
	}
}

func (p *Publisher) appendTimeline(event domain.Event, occurred time.Time) {
	if p.timeline == nil {
		return
	}

	entry := domain.TimelineEvent{
		OrderID:  event.AggregateID(),
		Type:     event.EventType(),
		Occurred: occurred,
	}
	if err := p.timeline.Append(entry); err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"order_id": event.AggregateID(),
			"event":    event.EventType(),
		}).Warn("append timeline event failed")
		return
	}
	if p.metrics != nil {
		p.metrics.RecordTimelineEvent()
	}
}
