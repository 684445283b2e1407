// Команда migrate управляет схемой базы сервиса регистрации: накатывает
// и откатывает миграции, показывает текущую версию. DSN берётся из флага
// -dsn либо из CRS_POSTGRES_DSN.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/crs/internal/storage/postgres"
)

const migrateTimeout = 30 * time.Second

type cliArgs struct {
	direction string
	steps     int
	dsn       string
}

func parseArgs() cliArgs {
	var args cliArgs
	flag.StringVar(&args.direction, "direction", "up", "migration direction: up|down|status")
	flag.IntVar(&args.steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	flag.StringVar(&args.dsn, "dsn", "", "PostgreSQL DSN (fallback: CRS_POSTGRES_DSN)")
	flag.Parse()

	if strings.TrimSpace(args.dsn) == "" {
		args.dsn = strings.TrimSpace(os.Getenv("CRS_POSTGRES_DSN"))
	}
	args.direction = strings.ToLower(strings.TrimSpace(args.direction))
	return args
}

func main() {
	args := parseArgs()
	if args.dsn == "" {
		fail("CRS_POSTGRES_DSN (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	if err := run(ctx, args); err != nil {
		fail("%v", err)
	}
}

func run(ctx context.Context, args cliArgs) error {
	switch args.direction {
	case "up", "down", "status":
	default:
		return fmt.Errorf("unsupported direction: %s (use up|down|status)", args.direction)
	}

	store, err := postgres.Open(ctx, args.dsn)
	if err != nil {
		return fmt.Errorf("open postgres store: %w", err)
	}
	defer store.Close()

	switch args.direction {
	case "up":
		if err := store.MigrateUp(ctx, args.steps); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
	case "down":
		steps := args.steps
		if steps <= 0 {
			steps = 1
		}
		if err := store.MigrateDown(ctx, steps); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
	}

	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status failed: %w", err)
	}
	fmt.Printf("migrate %s ok: version=%d applied=%d\n", args.direction, version, count)
	return nil
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
