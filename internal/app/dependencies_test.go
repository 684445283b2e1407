package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

func newMemoryDependencies(t *testing.T) *Dependencies {
	t.Helper()

	deps, err := NewDependencies(context.Background(), DefaultConfig(), log.WithField("test", "dependencies"))
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	t.Cleanup(deps.Close)
	return deps
}

func TestNewDependencies_AllFieldsInitialized(t *testing.T) {
	deps := newMemoryDependencies(t)

	if deps.Bus == nil {
		t.Error("Bus should not be nil")
	}
	if deps.Scheduler == nil {
		t.Error("Scheduler should not be nil")
	}
	if deps.Publisher == nil {
		t.Error("Publisher should not be nil")
	}
	if deps.Orders == nil || deps.Availability == nil || deps.Processes == nil {
		t.Error("aggregate repositories should not be nil")
	}
	if deps.Payments == nil || deps.Assignments == nil {
		t.Error("payment and assignments repositories should not be nil")
	}
	if deps.Outbox == nil || deps.Timeline == nil {
		t.Error("outbox and timeline repositories should not be nil")
	}
	if deps.Registration == nil || deps.PaymentManager == nil || deps.AssignmentsReactor == nil {
		t.Error("process managers should not be nil")
	}
	if deps.Store != nil {
		t.Error("Store should be nil for memory storage")
	}
}

func TestNewDependencies_WithNilLogger(t *testing.T) {
	deps, err := NewDependencies(context.Background(), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	defer deps.Close()

	if deps.Bus == nil {
		t.Error("Bus should be initialized even when logger is nil")
	}
}

func TestNewDependencies_IndependentInstances(t *testing.T) {
	deps1 := newMemoryDependencies(t)
	deps2 := newMemoryDependencies(t)

	if deps1 == deps2 {
		t.Fatal("NewDependencies should create independent instances")
	}
	if deps1.Orders == deps2.Orders {
		t.Error("repository instances should be independent")
	}
}

func TestNewDependencies_StorageError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = StorageDriverPostgres
	cfg.PostgresDSN = ""

	if _, err := NewDependencies(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error when storage initialization fails")
	}
}

func TestDependencies_Close(t *testing.T) {
	deps, err := NewDependencies(context.Background(), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}

	// Close и повторный Close не должны паниковать.
	deps.Close()
	deps.Close()

	var nilDeps *Dependencies
	nilDeps.Close()
}

// Смоук-тест полной проводки: команды, отправленные через собранную шину,
// проходят регистрацию от размещения заказа до подтверждения и рассадки.
func TestDependencies_RegistrationFlowIsWired(t *testing.T) {
	deps := newMemoryDependencies(t)

	if err := deps.Bus.Send(domain.AddSeats{ConferenceID: "conf-1", SeatTypeID: "general", Quantity: 10}); err != nil {
		t.Fatalf("add seats failed: %v", err)
	}
	if err := deps.Bus.Send(domain.RegisterToConference{
		OrderID:      "order-1",
		ConferenceID: "conf-1",
		Seats:        []domain.SeatQuantity{{SeatTypeID: "general", Quantity: 2}},
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	order, err := deps.Orders.Get("order-1")
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if order.TotalMinor <= 0 {
		t.Fatalf("expected positive order total, got %d", order.TotalMinor)
	}

	if err := deps.Bus.Send(domain.InitiatePayment{
		PaymentID:    "payment-1",
		OrderID:      "order-1",
		ConferenceID: "conf-1",
		AmountMinor:  order.TotalMinor,
	}); err != nil {
		t.Fatalf("initiate payment failed: %v", err)
	}

	order, err = deps.Orders.Get("order-1")
	if err != nil {
		t.Fatalf("get order after payment failed: %v", err)
	}
	if !order.Confirmed {
		t.Fatal("expected order to be confirmed after payment")
	}

	if _, err := deps.Assignments.Get(domain.DeriveAssignmentsID("order-1")); err != nil {
		t.Fatalf("expected seat assignments to be created: %v", err)
	}

	stats, err := deps.Outbox.Stats()
	if err != nil {
		t.Fatalf("outbox stats failed: %v", err)
	}
	if stats.PendingCount == 0 {
		t.Fatal("expected events in transactional outbox")
	}

	timeline, err := deps.Timeline.List("order-1")
	if err != nil {
		t.Fatalf("timeline list failed: %v", err)
	}
	if len(timeline) == 0 {
		t.Fatal("expected timeline events for the order")
	}
}
