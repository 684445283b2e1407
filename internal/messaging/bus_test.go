package messaging_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vladislavdragonenkov/crs/internal/domain"
	"github.com/vladislavdragonenkov/crs/internal/messaging"
)

type stubCommand struct {
	id  string
	typ string
}

func (c stubCommand) AggregateID() string { return c.id }
func (c stubCommand) CommandType() string { return c.typ }

type stubEvent struct {
	id  string
	typ string
}

func (e stubEvent) AggregateID() string { return e.id }
func (e stubEvent) EventType() string   { return e.typ }

func TestBus_SendRoutesByCommandType(t *testing.T) {
	bus := messaging.NewBus(nil)

	var handled []string
	bus.RegisterCommand("TypeA", func(cmd domain.Command) error {
		handled = append(handled, "a:"+cmd.AggregateID())
		return nil
	})
	bus.RegisterCommand("TypeB", func(cmd domain.Command) error {
		handled = append(handled, "b:"+cmd.AggregateID())
		return nil
	})

	if err := bus.Send(stubCommand{id: "agg-1", typ: "TypeB"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if err := bus.Send(stubCommand{id: "agg-2", typ: "TypeA"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if len(handled) != 2 || handled[0] != "b:agg-1" || handled[1] != "a:agg-2" {
		t.Fatalf("unexpected routing: %v", handled)
	}
}

func TestBus_SendUnknownCommandFails(t *testing.T) {
	bus := messaging.NewBus(nil)

	if err := bus.Send(stubCommand{id: "agg-1", typ: "Unknown"}); err == nil {
		t.Fatal("expected error for unregistered command type")
	}
}

func TestBus_SendPropagatesHandlerError(t *testing.T) {
	bus := messaging.NewBus(nil)
	want := errors.New("handler failed")
	bus.RegisterCommand("TypeA", func(domain.Command) error { return want })

	if err := bus.Send(stubCommand{typ: "TypeA"}); !errors.Is(err, want) {
		t.Fatalf("expected handler error, got %v", err)
	}
}

func TestBus_RegisterCommandOverwritesHandler(t *testing.T) {
	bus := messaging.NewBus(nil)

	bus.RegisterCommand("TypeA", func(domain.Command) error {
		t.Fatal("old handler must not be called")
		return nil
	})

	called := false
	bus.RegisterCommand("TypeA", func(domain.Command) error {
		called = true
		return nil
	})

	if err := bus.Send(stubCommand{typ: "TypeA"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if !called {
		t.Fatal("new handler must replace the old one")
	}
}

func TestBus_PublishFansOutToAllSubscribers(t *testing.T) {
	bus := messaging.NewBus(nil)

	var delivered int
	for i := 0; i < 3; i++ {
		bus.Subscribe("SomethingHappened", func(event domain.Event) error {
			delivered++
			return nil
		})
	}
	bus.Subscribe("SomethingElse", func(event domain.Event) error {
		t.Fatal("subscriber of another event type must not be called")
		return nil
	})

	bus.Publish(stubEvent{id: "agg-1", typ: "SomethingHappened"})

	if delivered != 3 {
		t.Fatalf("expected 3 deliveries, got %d", delivered)
	}
}

func TestBus_PublishContinuesAfterSubscriberError(t *testing.T) {
	bus := messaging.NewBus(nil)

	var delivered []string
	bus.Subscribe("SomethingHappened", func(domain.Event) error {
		delivered = append(delivered, "first")
		return fmt.Errorf("%w: process finished", domain.ErrIllegalProcessState)
	})
	bus.Subscribe("SomethingHappened", func(domain.Event) error {
		delivered = append(delivered, "second")
		return errors.New("unexpected failure")
	})
	bus.Subscribe("SomethingHappened", func(domain.Event) error {
		delivered = append(delivered, "third")
		return nil
	})

	bus.Publish(stubEvent{typ: "SomethingHappened"})

	if len(delivered) != 3 {
		t.Fatalf("errors must not stop the fan-out, delivered %v", delivered)
	}
}

func TestBus_PublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := messaging.NewBus(nil)
	bus.Publish(stubEvent{typ: "Unobserved"})
}
