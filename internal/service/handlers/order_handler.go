package handlers

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crs/internal/domain"
	"github.com/vladislavdragonenkov/crs/internal/messaging"
)

// maxSaveRetries ограничивает повторы при version conflict.
const maxSaveRetries = 3

// OrderHandler — исполнитель команд агрегата заказа: load → HandleCommand →
// Apply → Save → publish. При version conflict команда перечитывает свежий
// агрегат и выполняется заново: обработчики команд идемпотентны.
type OrderHandler struct {
	orders    domain.OrderRepository
	publisher *Publisher
	pricing   domain.PricingService
	ids       domain.IDGenerator
	ttl       time.Duration
	clock     func() time.Time
	logger    *log.Entry
}

// NewOrderHandler создаёт обработчик команд заказа.
func NewOrderHandler(
	orders domain.OrderRepository,
	publisher *Publisher,
	pricing domain.PricingService,
	ids domain.IDGenerator,
	reservationTTL time.Duration,
	logger *log.Entry,
) *OrderHandler {
	if logger == nil {
		logger = log.New().WithField("component", "order-handler")
	}
	return &OrderHandler{
		orders:    orders,
		publisher: publisher,
		pricing:   pricing,
		ids:       ids,
		ttl:       reservationTTL,
		clock:     time.Now,
		logger:    logger,
	}
}

// Register привязывает все команды заказа к шине.
func (h *OrderHandler) Register(bus *messaging.Bus) {
	for _, commandType := range []string{
		domain.CommandTypeRegisterToConference,
		domain.CommandTypeMarkSeatsAsReserved,
		domain.CommandTypeRejectOrder,
		domain.CommandTypeConfirmOrder,
		domain.CommandTypeAssignRegistrantDetails,
	} {
		bus.RegisterCommand(commandType, h.Handle)
	}
}

// Handle выполняет одну команду заказа.
func (h *OrderHandler) Handle(cmd domain.Command) error {
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		order, err := h.orders.Get(cmd.AggregateID())
		if err != nil {
			if !errors.Is(err, domain.ErrAggregateNotFound) {
				return err
			}
			if cmd.CommandType() != domain.CommandTypeRegisterToConference {
				return fmt.Errorf("%w: order %s", domain.ErrAggregateNotFound, cmd.AggregateID())
			}
			order = domain.Order{}
		}

		now := h.clock().UTC()
		env := domain.CommandEnv{
			Now:            now,
			IDs:            h.ids,
			Pricing:        h.pricing,
			ReservationTTL: h.ttl,
		}

		events, err := order.HandleCommand(cmd, env)
		if err != nil {
			return err
		}
		for _, event := range events {
			order = order.Apply(event, now)
		}

		if err := h.orders.Save(order); err != nil {
			if domain.IsVersionConflict(err) && attempt < maxSaveRetries-1 {
				h.logger.WithFields(log.Fields{
					"order_id": order.ID,
					"attempt":  attempt + 1,
				}).Warn("version conflict detected, retrying")
				continue
			}
			return err
		}

		h.publisher.Publish(AggregateTypeOrder, events, now)
		return nil
	}
	return domain.ErrVersionConflict
}
