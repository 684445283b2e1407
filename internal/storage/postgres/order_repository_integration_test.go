package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

func TestOrderRepository_PostgresSaveAndGet(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	order := sampleOrder("order-1", now)

	if err := repo.Save(order); err != nil {
		t.Fatalf("save new order: %v", err)
	}

	got, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.ID != order.ID || got.ConferenceID != order.ConferenceID {
		t.Fatalf("unexpected order payload: %+v", got)
	}
	if got.Version != 1 {
		t.Fatalf("new order must be stored with version 1, got %d", got.Version)
	}
	if len(got.Seats) != 1 || got.Seats[0].Quantity != 3 {
		t.Fatalf("unexpected seats after round trip: %+v", got.Seats)
	}
	if got.Registrant.Email != order.Registrant.Email {
		t.Fatalf("unexpected registrant after round trip: %+v", got.Registrant)
	}
	if !got.ReservationAutoExpiration.Equal(order.ReservationAutoExpiration) {
		t.Fatalf("unexpected expiration: got=%s want=%s",
			got.ReservationAutoExpiration, order.ReservationAutoExpiration)
	}

	got.Confirmed = true
	got.UpdatedAt = now.Add(time.Minute)
	if err := repo.Save(got); err != nil {
		t.Fatalf("save updated order: %v", err)
	}

	updated, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get updated order: %v", err)
	}
	if !updated.Confirmed {
		t.Fatal("order must be confirmed after save")
	}
	if updated.Version != got.Version+1 {
		t.Fatalf("unexpected version after save: got=%d want=%d", updated.Version, got.Version+1)
	}
}

func TestOrderRepository_PostgresErrors(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	base := sampleOrder("order-errors", now)

	if _, err := repo.Get("missing-order"); !errors.Is(err, domain.ErrAggregateNotFound) {
		t.Fatalf("expected ErrAggregateNotFound, got %v", err)
	}

	if err := repo.Save(base); err != nil {
		t.Fatalf("save base order: %v", err)
	}

	// Повторная вставка того же агрегата с Version=0.
	if err := repo.Save(base); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict on duplicate insert, got %v", err)
	}

	stale := base
	stale.Confirmed = true
	stale.UpdatedAt = now.Add(time.Minute)
	stale.Version = 42
	if err := repo.Save(stale); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict on stale save, got %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("expected unique violation for code 23505")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "22001"}) {
		t.Fatal("unexpected unique violation for non-unique code")
	}
	if isUniqueViolation(errors.New("plain error")) {
		t.Fatal("plain error must not be unique violation")
	}
}

func sampleOrder(id string, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:           id,
		ConferenceID: "conf-1",
		Seats: []domain.SeatQuantity{
			{SeatTypeID: "general", Quantity: 3},
		},
		Registrant: domain.PersonalInfo{
			FirstName: "Ivan",
			LastName:  "Petrov",
			Email:     "ivan@example.com",
		},
		TotalMinor:                30000,
		AccessCode:                id + "-access",
		ReservationAutoExpiration: createdAt.Add(15 * time.Minute),
		Version:                   0,
		CreatedAt:                 createdAt,
		UpdatedAt:                 createdAt,
	}
}
