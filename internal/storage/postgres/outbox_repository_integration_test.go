package postgres

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

func TestOutboxRepository_PostgresEnqueuePullMark(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOutboxRepository(store)

	first, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "order-1",
		EventType:     "OrderPlaced",
		Payload:       []byte(`{"order_id":"order-1"}`),
	})
	if err != nil {
		t.Fatalf("enqueue first: %v", err)
	}
	if first.ID == "" {
		t.Fatal("enqueue must assign an id")
	}

	second, err := repo.Enqueue(domain.OutboxMessage{
		ID:            "outbox-fixed",
		AggregateType: "availability",
		AggregateID:   "conf-1",
		EventType:     "SeatsReserved",
		Payload:       []byte(`{"reservation_id":"order-1"}`),
	})
	if err != nil {
		t.Fatalf("enqueue second: %v", err)
	}
	if second.ID != "outbox-fixed" {
		t.Fatalf("enqueue must keep explicit id, got %s", second.ID)
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending messages, got %d", len(pending))
	}

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.PendingCount != 2 || stats.OldestPendingAt.IsZero() {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if err := repo.MarkSent(first.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if err := repo.MarkFailed(second.ID); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	remaining, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull after marks: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty backlog, got %d", len(remaining))
	}

	if err := repo.MarkSent("missing-id"); !errors.Is(err, domain.ErrOutboxPublish) {
		t.Fatalf("expected ErrOutboxPublish for missing id, got %v", err)
	}
}
