package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crs/internal/domain"
	"github.com/vladislavdragonenkov/crs/internal/storage/memory"
	"github.com/vladislavdragonenkov/crs/internal/storage/postgres"
)

// storageBundle собирает все репозитории, инициализированные одним драйвером.
type storageBundle struct {
	Orders       domain.OrderRepository
	Availability domain.AvailabilityRepository
	Processes    domain.ProcessRepository
	Payments     domain.PaymentRepository
	Assignments  domain.AssignmentsRepository
	Outbox       domain.OutboxRepository
	Timeline     domain.TimelineRepository

	// Store не nil только для postgres-драйвера.
	Store *postgres.Store
}

// initStorage создаёт репозитории согласно выбранному драйверу хранилища.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (*storageBundle, error) {
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		return initPostgresStorage(ctx, cfg, logger)
	case StorageDriverMemory, "":
		logger.Info("using in-memory storage")
		return &storageBundle{
			Orders:       memory.NewOrderRepository(),
			Availability: memory.NewAvailabilityRepository(),
			Processes:    memory.NewProcessRepository(),
			Payments:     memory.NewPaymentRepository(),
			Assignments:  memory.NewAssignmentsRepository(),
			Outbox:       memory.NewOutboxRepository(),
			Timeline:     memory.NewTimelineRepository(),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func initPostgresStorage(ctx context.Context, cfg Config, logger *log.Entry) (*storageBundle, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres storage requires POSTGRES_DSN")
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres storage: %w", err)
	}

	if cfg.PostgresAutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply postgres migrations: %w", err)
		}
		logger.Info("postgres migrations applied")
	}

	logger.Info("using postgres storage")
	return &storageBundle{
		Orders:       postgres.NewOrderRepository(store),
		Availability: postgres.NewAvailabilityRepository(store),
		Processes:    postgres.NewProcessRepository(store),
		Payments:     postgres.NewPaymentRepository(store),
		Assignments:  postgres.NewAssignmentsRepository(store),
		Outbox:       postgres.NewOutboxRepository(store),
		Timeline:     postgres.NewTimelineRepository(store),
		Store:        store,
	}, nil
}
