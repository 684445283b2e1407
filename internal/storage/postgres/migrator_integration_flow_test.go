package postgres

import (
	"context"
	"testing"
	"time"
)

func TestMigrator_PostgresUpDownFlow(t *testing.T) {
	store := openRawPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("migration status: %v", err)
	}
	if version == 0 || count == 0 {
		t.Fatalf("expected applied migrations, got version=%d count=%d", version, count)
	}

	if err := store.MigrateDown(ctx, 1); err != nil {
		t.Fatalf("migrate down: %v", err)
	}

	afterDown, countDown, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("migration status after down: %v", err)
	}
	if afterDown >= version || countDown != count-1 {
		t.Fatalf("rollback did not decrease version: before=%d after=%d", version, afterDown)
	}

	// Возвращаем схему обратно, чтобы остальные интеграционные тесты
	// не зависели от порядка запуска.
	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up after down: %v", err)
	}
}
