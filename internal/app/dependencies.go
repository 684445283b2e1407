package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crs/internal/domain"
	"github.com/vladislavdragonenkov/crs/internal/messaging"
	"github.com/vladislavdragonenkov/crs/internal/process"
	"github.com/vladislavdragonenkov/crs/internal/service/handlers"
	"github.com/vladislavdragonenkov/crs/internal/service/ids"
	"github.com/vladislavdragonenkov/crs/internal/service/pricing"
	"github.com/vladislavdragonenkov/crs/internal/service/processor"
	"github.com/vladislavdragonenkov/crs/internal/service/scheduler"
	"github.com/vladislavdragonenkov/crs/internal/storage/postgres"
)

// Dependencies собирает все коллабораторы сервиса регистрации: шину, хранилище,
// обработчики команд и процесс-менеджеры, уже подписанные на события.
type Dependencies struct {
	Bus       *messaging.Bus
	Scheduler *scheduler.TimerScheduler
	Publisher *handlers.Publisher

	Orders       domain.OrderRepository
	Availability domain.AvailabilityRepository
	Processes    domain.ProcessRepository
	Payments     domain.PaymentRepository
	Assignments  domain.AssignmentsRepository
	Outbox       domain.OutboxRepository
	Timeline     domain.TimelineRepository

	Registration       *process.RegistrationManager
	PaymentManager     *process.PaymentManager
	AssignmentsReactor *process.AssignmentsReactor

	// Мок-интеграции доступны снаружи, чтобы тесты могли управлять
	// их поведением.
	Pricing   *pricing.MockService
	Processor *processor.MockService

	// Store не nil только для postgres-хранилища.
	Store *postgres.Store

	logger *log.Entry
}

// NewDependencies строит граф зависимостей и регистрирует обработчики на шине.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	storage, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger.WithField("component", "bus"))
	timerScheduler := scheduler.New(bus, logger.WithField("component", "scheduler"))

	// NOTE: Using mock services for development/demo purposes
	// In production, replace with real pricing and payment provider clients
	pricingSvc := pricing.NewMockService()
	processorSvc := processor.NewMockService()

	publisher := handlers.NewPublisher(bus, storage.Outbox, storage.Timeline,
		logger.WithField("component", "publisher"))

	orderHandler := handlers.NewOrderHandler(storage.Orders, publisher, pricingSvc,
		ids.UUIDGenerator{}, cfg.ReservationTTL, logger.WithField("component", "order-handler"))
	availabilityHandler := handlers.NewAvailabilityHandler(storage.Availability, publisher,
		logger.WithField("component", "availability-handler"))
	paymentHandler := handlers.NewPaymentHandler(storage.Payments, publisher,
		logger.WithField("component", "payment-handler"))
	assignmentsHandler := handlers.NewAssignmentsHandler(storage.Assignments, publisher,
		logger.WithField("component", "assignments-handler"))

	registrationManager := process.NewRegistrationManager(storage.Processes, bus, timerScheduler,
		logger.WithField("component", "registration-process"))
	paymentManager := process.NewPaymentManager(bus, processorSvc,
		logger.WithField("component", "payment-process"))
	assignmentsReactor := process.NewAssignmentsReactor(storage.Orders, bus,
		logger.WithField("component", "assignments-reactor"))

	orderHandler.Register(bus)
	availabilityHandler.Register(bus)
	paymentHandler.Register(bus)
	assignmentsHandler.Register(bus)
	registrationManager.Register(bus)
	paymentManager.Register(bus)
	assignmentsReactor.Register(bus)

	return &Dependencies{
		Bus:                bus,
		Scheduler:          timerScheduler,
		Publisher:          publisher,
		Orders:             storage.Orders,
		Availability:       storage.Availability,
		Processes:          storage.Processes,
		Payments:           storage.Payments,
		Assignments:        storage.Assignments,
		Outbox:             storage.Outbox,
		Timeline:           storage.Timeline,
		Registration:       registrationManager,
		PaymentManager:     paymentManager,
		AssignmentsReactor: assignmentsReactor,
		Pricing:            pricingSvc,
		Processor:          processorSvc,
		Store:              storage.Store,
		logger:             logger,
	}, nil
}

// Close останавливает таймеры и закрывает хранилище.
func (d *Dependencies) Close() {
	if d == nil {
		return
	}
	if d.Scheduler != nil {
		d.Scheduler.Stop()
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
