package process

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crs/internal/domain"
	"github.com/vladislavdragonenkov/crs/internal/messaging"
	"github.com/vladislavdragonenkov/crs/internal/metrics"
)

// RegistrationManager — процесс-менеджер регистрации: слушает события заказа,
// леджера и платежей и координирует резервирование мест командами.
//
// Дисциплина обновления: состояние саги сохраняется ДО отправки команд.
// Шина доставляет синхронно, и обработчик команды может опубликовать
// встречное событие, которое вернётся в сагу до выхода из текущего вызова.
// После первой отправки команды локальная копия состояния не используется.
type RegistrationManager struct {
	processes domain.ProcessRepository
	bus       domain.CommandBus
	scheduler domain.CommandScheduler
	clock     func() time.Time
	logger    *log.Entry
	metrics   *metrics.ProcessMetrics
}

// NewRegistrationManager создаёт рабочий экземпляр процесс-менеджера.
func NewRegistrationManager(
	processes domain.ProcessRepository,
	bus domain.CommandBus,
	scheduler domain.CommandScheduler,
	logger *log.Entry,
) *RegistrationManager {
	if logger == nil {
		logger = log.New().WithField("component", "registration-process")
	}
	return &RegistrationManager{
		processes: processes,
		bus:       bus,
		scheduler: scheduler,
		clock:     time.Now,
		logger:    logger,
		metrics:   metrics.NewProcessMetrics(),
	}
}

// NewRegistrationManagerWithoutMetrics создаёт процесс-менеджер без метрик (для тестов).
func NewRegistrationManagerWithoutMetrics(
	processes domain.ProcessRepository,
	bus domain.CommandBus,
	scheduler domain.CommandScheduler,
	logger *log.Entry,
) *RegistrationManager {
	if logger == nil {
		logger = log.New().WithField("component", "registration-process")
	}
	return &RegistrationManager{
		processes: processes,
		bus:       bus,
		scheduler: scheduler,
		clock:     time.Now,
		logger:    logger,
	}
}

// Register подписывает процесс-менеджер на события и привязывает отложенную
// команду истечения.
func (m *RegistrationManager) Register(bus *messaging.Bus) {
	bus.Subscribe(domain.EventTypeOrderPlaced, func(event domain.Event) error {
		e, ok := event.(domain.OrderPlaced)
		if !ok {
			return fmt.Errorf("unexpected event payload for %s", event.EventType())
		}
		return m.HandleOrderPlaced(e)
	})
	bus.Subscribe(domain.EventTypeOrderUpdated, func(event domain.Event) error {
		e, ok := event.(domain.OrderUpdated)
		if !ok {
			return fmt.Errorf("unexpected event payload for %s", event.EventType())
		}
		return m.HandleOrderUpdated(e)
	})
	bus.Subscribe(domain.EventTypeSeatsReserved, func(event domain.Event) error {
		e, ok := event.(domain.SeatsReserved)
		if !ok {
			return fmt.Errorf("unexpected event payload for %s", event.EventType())
		}
		return m.HandleSeatsReserved(e)
	})
	bus.Subscribe(domain.EventTypePaymentCompleted, func(event domain.Event) error {
		e, ok := event.(domain.PaymentCompleted)
		if !ok {
			return fmt.Errorf("unexpected event payload for %s", event.EventType())
		}
		return m.HandlePaymentCompleted(e)
	})
	bus.Subscribe(domain.EventTypePaymentCanceled, func(event domain.Event) error {
		e, ok := event.(domain.PaymentCanceled)
		if !ok {
			return fmt.Errorf("unexpected event payload for %s", event.EventType())
		}
		return m.HandlePaymentFailed(e.OrderID, "payment canceled")
	})
	bus.Subscribe(domain.EventTypePaymentRejected, func(event domain.Event) error {
		e, ok := event.(domain.PaymentRejected)
		if !ok {
			return fmt.Errorf("unexpected event payload for %s", event.EventType())
		}
		return m.HandlePaymentFailed(e.OrderID, "payment rejected")
	})
	bus.RegisterCommand(domain.CommandTypeExpireRegistrationProc, func(cmd domain.Command) error {
		c, ok := cmd.(domain.ExpireRegistrationProcess)
		if !ok {
			return fmt.Errorf("unexpected command payload for %s", cmd.CommandType())
		}
		return m.HandleExpiration(c)
	})
}

// HandleOrderPlaced запускает сагу для нового заказа и просит леджер
// удержать места. OrderPlaced для уже существующего процесса — недопустимый
// переход: решение игнорировать или эскалировать принимает вызывающая сторона.
func (m *RegistrationManager) HandleOrderPlaced(e domain.OrderPlaced) error {
	id := domain.DeriveProcessID(e.OrderID)

	if _, err := m.processes.Get(id); err == nil {
		return fmt.Errorf("%w: process %s already started", domain.ErrIllegalProcessState, id)
	} else if !errors.Is(err, domain.ErrAggregateNotFound) {
		return err
	}

	now := m.clock().UTC()

	// Дедлайн резервирования уже прошёл: места не удерживаются вовсе,
	// заказ сразу отклоняется, таймер не взводится.
	if !e.ReservationAutoExpiration.IsZero() && !e.ReservationAutoExpiration.After(now) {
		proc := domain.NewRegistrationProcess(e.OrderID, now)
		proc.ConferenceID = e.ConferenceID
		proc.SeatsRequested = e.Seats
		proc.ReservationAutoExpiration = e.ReservationAutoExpiration
		proc.Rejected = true
		if err := m.processes.Save(proc); err != nil {
			return err
		}
		if m.metrics != nil {
			m.metrics.RecordProcessExpired()
		}
		m.logger.WithFields(log.Fields{
			"order_id": e.OrderID,
			"deadline": e.ReservationAutoExpiration,
		}).Warn("reservation deadline passed before processing, order rejected")
		return m.send(domain.RejectOrder{OrderID: e.OrderID})
	}

	proc := domain.NewRegistrationProcess(e.OrderID, now)
	proc.ConferenceID = e.ConferenceID
	proc.SeatsRequested = e.Seats
	proc.ReservationAutoExpiration = e.ReservationAutoExpiration
	proc.State = domain.ProcessStateAwaitingReservationConfirmation

	token, err := m.scheduler.Schedule(domain.ExpireRegistrationProcess{ProcessID: id}, e.ReservationAutoExpiration)
	if err != nil {
		return fmt.Errorf("schedule expiration: %w", err)
	}
	proc.ExpirationToken = token

	if err := m.processes.Save(proc); err != nil {
		m.scheduler.Cancel(token)
		return err
	}

	if m.metrics != nil {
		m.metrics.RecordProcessStarted()
	}
	m.logger.WithFields(log.Fields{
		"order_id":      e.OrderID,
		"conference_id": e.ConferenceID,
	}).Info("registration process started")

	return m.send(domain.MakeSeatReservation{
		ReservationID: e.OrderID,
		ConferenceID:  e.ConferenceID,
		Seats:         e.Seats,
	})
}

// HandleOrderUpdated перезапрашивает резервирование с новым составом мест.
// Обновление до старта процесса — такой же недопустимый переход, как
// OrderPlaced после него.
func (m *RegistrationManager) HandleOrderUpdated(e domain.OrderUpdated) error {
	proc, err := m.processes.Get(domain.DeriveProcessID(e.OrderID))
	if err != nil {
		if errors.Is(err, domain.ErrAggregateNotFound) {
			return fmt.Errorf("%w: no process started for order %s", domain.ErrIllegalProcessState, e.OrderID)
		}
		return err
	}
	if proc.Completed() {
		return fmt.Errorf("%w: process %s is finished", domain.ErrIllegalProcessState, proc.ID)
	}

	proc.SeatsRequested = e.Seats
	proc.State = domain.ProcessStateAwaitingReservationConfirmation
	proc.UpdatedAt = m.clock().UTC()

	if err := m.processes.Save(proc); err != nil {
		return err
	}

	return m.send(domain.MakeSeatReservation{
		ReservationID: e.OrderID,
		ConferenceID:  proc.ConferenceID,
		Seats:         e.Seats,
	})
}

// HandleSeatsReserved сверяет фактически удержанные места с запрошенными.
// Полное удержание подтверждает резервирование, частичное отклоняет заказ
// и компенсирует удержание.
func (m *RegistrationManager) HandleSeatsReserved(e domain.SeatsReserved) error {
	proc, err := m.processes.Get(domain.DeriveProcessID(e.ReservationID))
	if err != nil {
		if errors.Is(err, domain.ErrAggregateNotFound) {
			m.logger.WithField("reservation_id", e.ReservationID).Debug("SeatsReserved for unknown process ignored")
			return nil
		}
		return err
	}
	if proc.Completed() {
		return fmt.Errorf("%w: process %s is finished", domain.ErrIllegalProcessState, proc.ID)
	}
	if proc.State != domain.ProcessStateAwaitingReservationConfirmation {
		m.logger.WithFields(log.Fields{
			"process_id": proc.ID,
			"state":      proc.State,
		}).Debug("duplicate SeatsReserved ignored")
		return nil
	}

	now := m.clock().UTC()
	if reservationComplete(proc.SeatsRequested, e.ReservedSeats) {
		proc.State = domain.ProcessStateReservationConfirmed
		proc.UpdatedAt = now
		if err := m.processes.Save(proc); err != nil {
			return err
		}
		if m.metrics != nil {
			m.metrics.RecordReservationConfirmed()
		}
		return m.send(domain.MarkSeatsAsReserved{
			OrderID: proc.OrderID,
			Seats:   e.ReservedSeats,
		})
	}

	// Частичное удержание: заказ фиксирует фактический результат и
	// отклоняется, удержание возвращается леджеру.
	proc.Rejected = true
	proc.UpdatedAt = now
	m.cancelExpiration(&proc)
	if err := m.processes.Save(proc); err != nil {
		return err
	}
	if m.metrics != nil {
		m.metrics.RecordProcessRejected()
		m.metrics.RecordProcessInFlightFinished()
		m.metrics.RecordProcessDuration(now.Sub(proc.CreatedAt))
	}
	m.logger.WithFields(log.Fields{
		"order_id":      proc.OrderID,
		"conference_id": proc.ConferenceID,
	}).Info("partial reservation, registration rejected")

	if err := m.send(domain.MarkSeatsAsReserved{OrderID: proc.OrderID, Seats: e.ReservedSeats}); err != nil {
		return err
	}
	if err := m.send(domain.RejectOrder{OrderID: proc.OrderID}); err != nil {
		return err
	}
	return m.send(domain.CancelSeatReservation{
		ReservationID: proc.OrderID,
		ConferenceID:  proc.ConferenceID,
	})
}

// HandlePaymentCompleted завершает сагу: подтверждает заказ и окончательно
// списывает удержанные места.
func (m *RegistrationManager) HandlePaymentCompleted(e domain.PaymentCompleted) error {
	proc, err := m.processes.Get(domain.DeriveProcessID(e.OrderID))
	if err != nil {
		if errors.Is(err, domain.ErrAggregateNotFound) {
			m.logger.WithField("order_id", e.OrderID).Debug("PaymentCompleted for unknown process ignored")
			return nil
		}
		return err
	}
	if proc.State == domain.ProcessStatePaymentReceived {
		m.logger.WithField("process_id", proc.ID).Debug("duplicate PaymentCompleted ignored")
		return nil
	}
	if proc.Rejected || proc.State != domain.ProcessStateReservationConfirmed {
		return fmt.Errorf("%w: process %s in state %s cannot accept payment", domain.ErrIllegalProcessState, proc.ID, proc.State)
	}

	now := m.clock().UTC()
	proc.State = domain.ProcessStatePaymentReceived
	proc.UpdatedAt = now
	m.cancelExpiration(&proc)
	if err := m.processes.Save(proc); err != nil {
		return err
	}
	if m.metrics != nil {
		m.metrics.RecordProcessCompleted()
		m.metrics.RecordProcessInFlightFinished()
		m.metrics.RecordProcessDuration(now.Sub(proc.CreatedAt))
	}
	m.logger.WithField("order_id", proc.OrderID).Info("registration process completed")

	if err := m.send(domain.ConfirmOrder{OrderID: proc.OrderID}); err != nil {
		return err
	}
	return m.send(domain.CommitSeatReservation{
		ReservationID: proc.OrderID,
		ConferenceID:  proc.ConferenceID,
	})
}

// HandlePaymentFailed отклоняет заказ и возвращает удержанные места.
func (m *RegistrationManager) HandlePaymentFailed(orderID, reason string) error {
	proc, err := m.processes.Get(domain.DeriveProcessID(orderID))
	if err != nil {
		if errors.Is(err, domain.ErrAggregateNotFound) {
			m.logger.WithField("order_id", orderID).Debug("payment failure for unknown process ignored")
			return nil
		}
		return err
	}
	if proc.Rejected {
		m.logger.WithField("process_id", proc.ID).Debug("duplicate payment failure ignored")
		return nil
	}
	if proc.State == domain.ProcessStatePaymentReceived {
		return fmt.Errorf("%w: process %s already completed", domain.ErrIllegalProcessState, proc.ID)
	}

	now := m.clock().UTC()
	proc.Rejected = true
	proc.UpdatedAt = now
	m.cancelExpiration(&proc)
	if err := m.processes.Save(proc); err != nil {
		return err
	}
	if m.metrics != nil {
		m.metrics.RecordProcessRejected()
		m.metrics.RecordProcessInFlightFinished()
		m.metrics.RecordProcessDuration(now.Sub(proc.CreatedAt))
	}
	m.logger.WithFields(log.Fields{
		"order_id": proc.OrderID,
		"reason":   reason,
	}).Info("registration rejected after payment failure")

	if err := m.send(domain.RejectOrder{OrderID: proc.OrderID}); err != nil {
		return err
	}
	return m.send(domain.CancelSeatReservation{
		ReservationID: proc.OrderID,
		ConferenceID:  proc.ConferenceID,
	})
}

// HandleExpiration срабатывает по дедлайну резервирования. Истечение
// отклоняет заказ, только пока сага всё ещё ждёт подтверждения леджера;
// таймер, доживший до любого другого состояния, — безопасный no-op.
func (m *RegistrationManager) HandleExpiration(c domain.ExpireRegistrationProcess) error {
	proc, err := m.processes.Get(c.ProcessID)
	if err != nil {
		if errors.Is(err, domain.ErrAggregateNotFound) {
			m.logger.WithField("process_id", c.ProcessID).Debug("expiration for unknown process ignored")
			return nil
		}
		return err
	}
	if proc.Completed() || proc.State != domain.ProcessStateAwaitingReservationConfirmation {
		m.logger.WithFields(log.Fields{
			"process_id": proc.ID,
			"state":      proc.State,
		}).Debug("expiration outside reservation window ignored")
		return nil
	}

	now := m.clock().UTC()
	proc.Rejected = true
	proc.ExpirationToken = ""
	proc.UpdatedAt = now
	if err := m.processes.Save(proc); err != nil {
		return err
	}
	if m.metrics != nil {
		m.metrics.RecordProcessExpired()
		m.metrics.RecordProcessInFlightFinished()
		m.metrics.RecordProcessDuration(now.Sub(proc.CreatedAt))
	}
	m.logger.WithField("order_id", proc.OrderID).Info("registration process expired")

	if err := m.send(domain.RejectOrder{OrderID: proc.OrderID}); err != nil {
		return err
	}
	return m.send(domain.CancelSeatReservation{
		ReservationID: proc.OrderID,
		ConferenceID:  proc.ConferenceID,
	})
}

func (m *RegistrationManager) cancelExpiration(proc *domain.RegistrationProcess) {
	if proc.ExpirationToken == "" {
		return
	}
	m.scheduler.Cancel(proc.ExpirationToken)
	proc.ExpirationToken = ""
}

// send доставляет команду и переводит ошибки доставки в лог: состояние саги
// уже сохранено, недоставленная команда будет повторена внешним механизмом.
func (m *RegistrationManager) send(cmd domain.Command) error {
	if err := m.bus.Send(cmd); err != nil {
		if domain.IsIllegalProcessState(err) {
			return err
		}
		m.logger.WithError(err).WithField("command", cmd.CommandType()).Warn("command dispatch failed")
	}
	return nil
}

// reservationComplete сообщает, покрывает ли удержание каждый запрошенный тип.
func reservationComplete(requested, reserved []domain.SeatQuantity) bool {
	for _, want := range requested {
		got, _ := domain.FindSeatQuantity(reserved, want.SeatTypeID)
		if got < want.Quantity {
			return false
		}
	}
	return true
}
