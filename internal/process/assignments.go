package process

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crs/internal/domain"
	"github.com/vladislavdragonenkov/crs/internal/messaging"
)

// AssignmentsReactor создаёт карту рассадки после подтверждения заказа.
// Карта живёт независимо от саги: реактор только транслирует OrderConfirmed
// в идемпотентную команду создания.
type AssignmentsReactor struct {
	orders domain.OrderRepository
	bus    domain.CommandBus
	logger *log.Entry
}

// NewAssignmentsReactor создаёт реактор рассадки.
func NewAssignmentsReactor(orders domain.OrderRepository, bus domain.CommandBus, logger *log.Entry) *AssignmentsReactor {
	if logger == nil {
		logger = log.New().WithField("component", "assignments-reactor")
	}
	return &AssignmentsReactor{
		orders: orders,
		bus:    bus,
		logger: logger,
	}
}

// Register подписывает реактор на подтверждение заказа.
func (r *AssignmentsReactor) Register(bus *messaging.Bus) {
	bus.Subscribe(domain.EventTypeOrderConfirmed, func(event domain.Event) error {
		e, ok := event.(domain.OrderConfirmed)
		if !ok {
			return fmt.Errorf("unexpected event payload for %s", event.EventType())
		}
		return r.HandleOrderConfirmed(e)
	})
}

// HandleOrderConfirmed создаёт карту рассадки под финализированный состав
// мест заказа. Повторная доставка события — no-op.
func (r *AssignmentsReactor) HandleOrderConfirmed(e domain.OrderConfirmed) error {
	order, err := r.orders.Get(e.OrderID)
	if err != nil {
		return err
	}

	cmd := domain.CreateSeatAssignments{
		AssignmentsID: domain.DeriveAssignmentsID(order.ID),
		OrderID:       order.ID,
		Seats:         order.Seats,
	}
	if err := r.bus.Send(cmd); err != nil {
		if domain.IsVersionConflict(err) {
			r.logger.WithField("order_id", order.ID).Debug("seat assignments already created")
			return nil
		}
		return err
	}

	r.logger.WithFields(log.Fields{
		"order_id":       order.ID,
		"assignments_id": cmd.AssignmentsID,
	}).Info("seat assignments created")
	return nil
}
