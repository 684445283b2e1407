package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/crs/internal/domain"
	"github.com/vladislavdragonenkov/crs/internal/storage/memory"
)

func newAvailability() domain.SeatsAvailability {
	now := time.Now().UTC()
	return domain.SeatsAvailability{
		ID: "conf-1",
		Seats: []domain.SeatQuantity{
			{SeatTypeID: "general", Quantity: 100},
		},
		PendingReservations: map[string][]domain.SeatQuantity{},
		Version:             0,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func TestAvailabilityRepository_SaveGet(t *testing.T) {
	repo := memory.NewAvailabilityRepository()
	availability := newAvailability()

	if err := repo.Save(availability); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	stored, err := repo.Get(availability.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Version != 1 {
		t.Fatalf("expected version 1, got %d", stored.Version)
	}
	if len(stored.Seats) != 1 || stored.Seats[0].Quantity != 100 {
		t.Fatalf("unexpected seats: %+v", stored.Seats)
	}
}

func TestAvailabilityRepository_GetReturnsCopy(t *testing.T) {
	repo := memory.NewAvailabilityRepository()
	availability := newAvailability()
	if err := repo.Save(availability); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	first, err := repo.Get(availability.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	first.Seats[0].Quantity = 0
	first.PendingReservations["res-1"] = []domain.SeatQuantity{{SeatTypeID: "general", Quantity: 5}}

	second, err := repo.Get(availability.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if second.Seats[0].Quantity != 100 {
		t.Fatalf("stored seats mutated through returned copy: %+v", second.Seats)
	}
	if len(second.PendingReservations) != 0 {
		t.Fatalf("stored pending reservations mutated through returned copy")
	}
}

func TestAvailabilityRepository_VersionConflict(t *testing.T) {
	repo := memory.NewAvailabilityRepository()
	availability := newAvailability()
	if err := repo.Save(availability); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	availability.Version = 7
	if err := repo.Save(availability); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}
