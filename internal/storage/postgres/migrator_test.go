package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func migrationFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys["sql/migrations/"+name] = &fstest.MapFile{Data: []byte(body)}
	}
	return fsys
}

func TestReadMigrationSet_SortsByVersion(t *testing.T) {
	t.Parallel()

	set, err := readMigrationSet(migrationFS(map[string]string{
		"0002_outbox.up.sql":   "CREATE TABLE b (id INT);",
		"0002_outbox.down.sql": "DROP TABLE b;",
		"0001_orders.up.sql":   "CREATE TABLE a (id INT);",
		"0001_orders.down.sql": "DROP TABLE a;",
	}))
	if err != nil {
		t.Fatalf("readMigrationSet failed: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(set))
	}
	if set[0].version != 1 || set[0].name != "orders" {
		t.Fatalf("unexpected first pair: %+v", set[0])
	}
	if set[1].version != 2 || set[1].name != "outbox" {
		t.Fatalf("unexpected second pair: %+v", set[1])
	}
}

func TestReadMigrationSet_RejectsLoneUp(t *testing.T) {
	t.Parallel()

	_, err := readMigrationSet(migrationFS(map[string]string{
		"0001_orders.up.sql": "CREATE TABLE a (id INT);",
	}))
	if err == nil {
		t.Fatal("expected error for version without a down file")
	}
	if !strings.Contains(err.Error(), "both up and down") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReadMigrationSet_RejectsConflictingNames(t *testing.T) {
	t.Parallel()

	_, err := readMigrationSet(migrationFS(map[string]string{
		"0001_orders.up.sql":  "CREATE TABLE a (id INT);",
		"0001_seats.down.sql": "DROP TABLE a;",
	}))
	if err == nil {
		t.Fatal("expected error for conflicting names within one version")
	}
}

func TestReadMigrationSet_RejectsStrayFile(t *testing.T) {
	t.Parallel()

	_, err := readMigrationSet(migrationFS(map[string]string{
		"notes.sql": "SELECT 1;",
	}))
	if err == nil {
		t.Fatal("expected error for file outside the naming scheme")
	}
}

func TestReadMigrationSet_RejectsEmptyBody(t *testing.T) {
	t.Parallel()

	_, err := readMigrationSet(migrationFS(map[string]string{
		"0001_orders.up.sql":   "   \n",
		"0001_orders.down.sql": "DROP TABLE a;",
	}))
	if err == nil {
		t.Fatal("expected error for empty migration body")
	}
}

func TestReadMigrationSet_EmbeddedSchemaIsValid(t *testing.T) {
	t.Parallel()

	set, err := readMigrationSet(migrationsFS)
	if err != nil {
		t.Fatalf("embedded migrations are invalid: %v", err)
	}
	if len(set) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	for i := 1; i < len(set); i++ {
		if set[i].version <= set[i-1].version {
			t.Fatalf("versions are not strictly increasing: %d after %d",
				set[i].version, set[i-1].version)
		}
	}
}

func TestSchemaLockKey_IsStableAndNonZero(t *testing.T) {
	t.Parallel()

	// Ключ участвует в pg_advisory_lock и не должен дрейфовать между
	// сборками, иначе два релиза перестанут исключать друг друга.
	if schemaLockKey == 0 {
		t.Fatal("schema lock key must be non-zero")
	}
	if schemaLockKey != int64(4259438720) {
		t.Fatalf("schema lock key changed: %d", schemaLockKey)
	}
}
