package process

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crs/internal/domain"
	"github.com/vladislavdragonenkov/crs/internal/messaging"
)

// PaymentManager — процесс-менеджер платежа: принимает InitiatePayment,
// инициализирует платёжный агрегат, обращается к процессору и фиксирует
// результат командой CompletePayment либо RejectPayment.
type PaymentManager struct {
	bus       domain.CommandBus
	processor domain.PaymentProcessor
	logger    *log.Entry
}

// NewPaymentManager создаёт процесс-менеджер платежа.
func NewPaymentManager(bus domain.CommandBus, processor domain.PaymentProcessor, logger *log.Entry) *PaymentManager {
	if logger == nil {
		logger = log.New().WithField("component", "payment-process")
	}
	return &PaymentManager{
		bus:       bus,
		processor: processor,
		logger:    logger,
	}
}

// Register привязывает команду InitiatePayment к шине.
func (m *PaymentManager) Register(bus *messaging.Bus) {
	bus.RegisterCommand(domain.CommandTypeInitiatePayment, func(cmd domain.Command) error {
		c, ok := cmd.(domain.InitiatePayment)
		if !ok {
			return fmt.Errorf("unexpected command payload for %s", cmd.CommandType())
		}
		return m.HandleInitiatePayment(c)
	})
}

// HandleInitiatePayment проводит платёж. Повторная доставка InitiatePayment
// для уже инициализированного платежа — no-op: результат фиксируется ровно
// один раз.
func (m *PaymentManager) HandleInitiatePayment(c domain.InitiatePayment) error {
	err := m.bus.Send(domain.InitializePayment{
		PaymentID:    c.PaymentID,
		OrderID:      c.OrderID,
		ConferenceID: c.ConferenceID,
		AmountMinor:  c.AmountMinor,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSecondInitializationAttempt) {
			m.logger.WithField("payment_id", c.PaymentID).Debug("duplicate InitiatePayment ignored")
			return nil
		}
		return err
	}

	if chargeErr := m.processor.Charge(c.PaymentID, c.OrderID, c.AmountMinor); chargeErr != nil {
		m.logger.WithError(chargeErr).WithFields(log.Fields{
			"payment_id": c.PaymentID,
			"order_id":   c.OrderID,
		}).Warn("payment charge rejected by processor")
		return m.bus.Send(domain.RejectPayment{PaymentID: c.PaymentID})
	}

	m.logger.WithFields(log.Fields{
		"payment_id":   c.PaymentID,
		"order_id":     c.OrderID,
		"amount_minor": c.AmountMinor,
	}).Info("payment charged")
	return m.bus.Send(domain.CompletePayment{PaymentID: c.PaymentID})
}
