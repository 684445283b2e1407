package domain

import (
	"errors"
	"testing"
	"time"
)

// stubPricing возвращает фиксированную цену за место.
type stubPricing struct {
	perSeatMinor int64
	err          error
	calls        int
}

func (s *stubPricing) CalculateTotalOrderPrice(conferenceID string, seats []SeatQuantity) (int64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	var total int64
	for _, seat := range seats {
		total += int64(seat.Quantity) * s.perSeatMinor
	}
	return total, nil
}

type stubIDs struct{ next string }

func (s *stubIDs) NewID() string { return s.next }

func testEnv(pricing *stubPricing) CommandEnv {
	return CommandEnv{
		Now:            time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		IDs:            &stubIDs{next: "access-1"},
		Pricing:        pricing,
		ReservationTTL: 15 * time.Minute,
	}
}

func placedOrder(t *testing.T, env CommandEnv) Order {
	t.Helper()

	var order Order
	events, err := order.HandleCommand(RegisterToConference{
		OrderID:      "order-1",
		ConferenceID: "conf-1",
		Seats:        []SeatQuantity{{SeatTypeID: "general", Quantity: 3}},
	}, env)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	for _, event := range events {
		order = order.Apply(event, env.Now)
	}
	return order
}

func TestOrder_RegisterToConference_New(t *testing.T) {
	pricing := &stubPricing{perSeatMinor: 1000}
	env := testEnv(pricing)

	var order Order
	events, err := order.HandleCommand(RegisterToConference{
		OrderID:      "order-1",
		ConferenceID: "conf-1",
		Seats:        []SeatQuantity{{SeatTypeID: "general", Quantity: 3}},
	}, env)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Два события на одну команду: размещение и пересчёт стоимости.
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	placed, ok := events[0].(OrderPlaced)
	if !ok {
		t.Fatalf("expected OrderPlaced first, got %T", events[0])
	}
	if placed.AccessCode == "" {
		t.Error("expected generated access code")
	}
	wantExpiration := env.Now.Add(env.ReservationTTL)
	if !placed.ReservationAutoExpiration.Equal(wantExpiration) {
		t.Errorf("expected expiration %v, got %v", wantExpiration, placed.ReservationAutoExpiration)
	}

	totals, ok := events[1].(OrderTotalsCalculated)
	if !ok {
		t.Fatalf("expected OrderTotalsCalculated second, got %T", events[1])
	}
	if totals.TotalMinor != 3000 {
		t.Errorf("expected total 3000, got %d", totals.TotalMinor)
	}

	for _, event := range events {
		order = order.Apply(event, env.Now)
	}
	if order.IsNew() {
		t.Error("expected order to exist after OrderPlaced")
	}
	if order.TotalMinor != 3000 {
		t.Errorf("expected applied total 3000, got %d", order.TotalMinor)
	}
}

func TestOrder_RegisterToConference_Existing(t *testing.T) {
	pricing := &stubPricing{perSeatMinor: 1000}
	env := testEnv(pricing)
	order := placedOrder(t, env)

	events, err := order.HandleCommand(RegisterToConference{
		OrderID:      "order-1",
		ConferenceID: "conf-1",
		Seats:        []SeatQuantity{{SeatTypeID: "general", Quantity: 5}},
	}, env)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if _, ok := events[0].(OrderUpdated); !ok {
		t.Fatalf("expected OrderUpdated first, got %T", events[0])
	}
	if totals := events[1].(OrderTotalsCalculated); totals.TotalMinor != 5000 {
		t.Errorf("expected total 5000, got %d", totals.TotalMinor)
	}
}

func TestOrder_RegisterToConference_Validation(t *testing.T) {
	pricing := &stubPricing{perSeatMinor: 1000}
	env := testEnv(pricing)

	tests := []struct {
		name    string
		cmd     RegisterToConference
		wantErr error
	}{
		{
			name:    "missing order id",
			cmd:     RegisterToConference{ConferenceID: "conf-1", Seats: []SeatQuantity{{SeatTypeID: "g", Quantity: 1}}},
			wantErr: ErrOrderIDRequired,
		},
		{
			name:    "missing conference id",
			cmd:     RegisterToConference{OrderID: "order-1", Seats: []SeatQuantity{{SeatTypeID: "g", Quantity: 1}}},
			wantErr: ErrConferenceIDRequired,
		},
		{
			name:    "empty seats",
			cmd:     RegisterToConference{OrderID: "order-1", ConferenceID: "conf-1"},
			wantErr: ErrSeatsRequired,
		},
		{
			name: "non-positive quantity",
			cmd: RegisterToConference{OrderID: "order-1", ConferenceID: "conf-1",
				Seats: []SeatQuantity{{SeatTypeID: "g", Quantity: -1}}},
			wantErr: ErrSeatQuantityInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var order Order
			_, err := order.HandleCommand(tt.cmd, env)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			// Валидация отклоняет команду до каких-либо событий и до прайсинга.
			if pricing.calls != 0 {
				t.Errorf("pricing must not be called on validation error, calls=%d", pricing.calls)
			}
			pricing.calls = 0
		})
	}
}

func TestOrder_MarkSeatsAsReserved(t *testing.T) {
	pricing := &stubPricing{perSeatMinor: 1000}
	env := testEnv(pricing)

	t.Run("full reservation completes", func(t *testing.T) {
		order := placedOrder(t, env)

		events, err := order.HandleCommand(MarkSeatsAsReserved{
			OrderID: "order-1",
			Seats:   []SeatQuantity{{SeatTypeID: "general", Quantity: 3}},
		}, env)
		if err != nil {
			t.Fatalf("mark reserved: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		if _, ok := events[0].(OrderReservationCompleted); !ok {
			t.Fatalf("expected OrderReservationCompleted, got %T", events[0])
		}
	})

	t.Run("short line yields partial plus recalculated totals", func(t *testing.T) {
		order := placedOrder(t, env)

		events, err := order.HandleCommand(MarkSeatsAsReserved{
			OrderID: "order-1",
			Seats:   []SeatQuantity{{SeatTypeID: "general", Quantity: 2}},
		}, env)
		if err != nil {
			t.Fatalf("mark reserved: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		partial, ok := events[0].(OrderPartiallyReserved)
		if !ok {
			t.Fatalf("expected OrderPartiallyReserved, got %T", events[0])
		}
		if qty, _ := FindSeatQuantity(partial.Seats, "general"); qty != 2 {
			t.Errorf("expected 2 reserved in partial event, got %d", qty)
		}
		if totals := events[1].(OrderTotalsCalculated); totals.TotalMinor != 2000 {
			t.Errorf("expected recalculated total 2000, got %d", totals.TotalMinor)
		}

		// Заказ сжимается до фактически удержанных мест.
		for _, event := range events {
			order = order.Apply(event, env.Now)
		}
		if qty, _ := FindSeatQuantity(order.Seats, "general"); qty != 2 {
			t.Errorf("expected order seats shrunk to 2, got %d", qty)
		}
	})
}

// После OrderConfirmed любая мутирующая команда падает с ошибкой состояния.
func TestOrder_ConfirmationLock(t *testing.T) {
	pricing := &stubPricing{perSeatMinor: 1000}
	env := testEnv(pricing)

	order := placedOrder(t, env)
	events, err := order.HandleCommand(ConfirmOrder{OrderID: "order-1"}, env)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	for _, event := range events {
		order = order.Apply(event, env.Now)
	}
	if !order.Confirmed {
		t.Fatal("expected order confirmed")
	}

	mutations := []Command{
		RegisterToConference{OrderID: "order-1", ConferenceID: "conf-1",
			Seats: []SeatQuantity{{SeatTypeID: "general", Quantity: 1}}},
		MarkSeatsAsReserved{OrderID: "order-1",
			Seats: []SeatQuantity{{SeatTypeID: "general", Quantity: 1}}},
		RejectOrder{OrderID: "order-1"},
		ConfirmOrder{OrderID: "order-1"},
	}

	for _, cmd := range mutations {
		t.Run(cmd.CommandType(), func(t *testing.T) {
			_, err := order.HandleCommand(cmd, env)
			if !errors.Is(err, ErrOrderConfirmed) {
				t.Errorf("expected ErrOrderConfirmed, got %v", err)
			}
		})
	}
}

func TestOrder_RejectAndAssignRegistrant(t *testing.T) {
	pricing := &stubPricing{perSeatMinor: 1000}
	env := testEnv(pricing)
	order := placedOrder(t, env)

	events, err := order.HandleCommand(RejectOrder{OrderID: "order-1"}, env)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, ok := events[0].(OrderExpired); !ok {
		t.Fatalf("expected OrderExpired, got %T", events[0])
	}

	events, err = order.HandleCommand(AssignRegistrantDetails{
		OrderID:   "order-1",
		FirstName: "Ivan",
		LastName:  "Petrov",
		Email:     "ivan@example.com",
	}, env)
	if err != nil {
		t.Fatalf("assign registrant: %v", err)
	}
	assigned, ok := events[0].(OrderRegistrantAssigned)
	if !ok {
		t.Fatalf("expected OrderRegistrantAssigned, got %T", events[0])
	}
	if assigned.Registrant.Email != "ivan@example.com" {
		t.Errorf("unexpected registrant email: %s", assigned.Registrant.Email)
	}

	_, err = order.HandleCommand(AssignRegistrantDetails{OrderID: "order-1"}, env)
	if !errors.Is(err, ErrRegistrantRequired) {
		t.Errorf("expected ErrRegistrantRequired, got %v", err)
	}
}
