package handlers

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crs/internal/domain"
	"github.com/vladislavdragonenkov/crs/internal/messaging"
)

// PaymentHandler — исполнитель команд платёжного агрегата. Новый агрегат
// допустим только для InitializePayment; результат без инициализации — ошибка.
type PaymentHandler struct {
	payments  domain.PaymentRepository
	publisher *Publisher
	clock     func() time.Time
	logger    *log.Entry
}

// NewPaymentHandler создаёт обработчик команд платежа.
func NewPaymentHandler(
	payments domain.PaymentRepository,
	publisher *Publisher,
	logger *log.Entry,
) *PaymentHandler {
	if logger == nil {
		logger = log.New().WithField("component", "payment-handler")
	}
	return &PaymentHandler{
		payments:  payments,
		publisher: publisher,
		clock:     time.Now,
		logger:    logger,
	}
}

// Register привязывает команды платежа к шине.
func (h *PaymentHandler) Register(bus *messaging.Bus) {
	for _, commandType := range []string{
		domain.CommandTypeInitializePayment,
		domain.CommandTypeCompletePayment,
		domain.CommandTypeCancelPayment,
		domain.CommandTypeRejectPayment,
	} {
		bus.RegisterCommand(commandType, h.Handle)
	}
}

// Handle выполняет одну команду платежа.
func (h *PaymentHandler) Handle(cmd domain.Command) error {
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		payment, err := h.payments.Get(cmd.AggregateID())
		if err != nil {
			if !errors.Is(err, domain.ErrAggregateNotFound) {
				return err
			}
			if cmd.CommandType() != domain.CommandTypeInitializePayment {
				return fmt.Errorf("%w: payment %s", domain.ErrPaymentNotInitialized, cmd.AggregateID())
			}
			payment = domain.Payment{}
		}

		now := h.clock().UTC()
		events, err := payment.HandleCommand(cmd, domain.CommandEnv{Now: now})
		if err != nil {
			return err
		}
		for _, event := range events {
			payment = payment.Apply(event, now)
		}

		if err := h.payments.Save(payment); err != nil {
			if domain.IsVersionConflict(err) && attempt < maxSaveRetries-1 {
				h.logger.WithFields(log.Fields{
					"payment_id": payment.ID,
					"attempt":    attempt + 1,
				}).Warn("version conflict detected, retrying")
				continue
			}
			return err
		}

		h.publisher.Publish(AggregateTypePayment, events, now)
		return nil
	}
	return domain.ErrVersionConflict
}
