package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"hash/crc32"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed sql/migrations/*.sql
var migrationsFS embed.FS

// Ключ advisory-лока выводится из имени таблицы версий: конкурирующие
// экземпляры сервиса сериализуются между собой, а чужие сервисы на том же
// кластере получают другой ключ и наш лок не делят.
var schemaLockKey = int64(crc32.ChecksumIEEE([]byte("crs.schema_migrations")))

const (
	migrationsDir   = "sql/migrations"
	schemaLockWait  = 5 * time.Second
	versionTableDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
)

// Имена файлов: NNNN_name.up.sql / NNNN_name.down.sql.
var migrationFileRe = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_]+)\.(up|down)\.sql$`)

// migrationPair — одна версия схемы с обоими направлениями.
type migrationPair struct {
	version int64
	name    string
	up      string
	down    string
}

// MigrateUp применяет недостающие up-миграции; steps=0 — все.
func (s *Store) MigrateUp(ctx context.Context, steps int) error {
	return s.runMigrations(ctx, func(ctx context.Context, conn *sql.Conn, set []migrationPair) error {
		applied, err := appliedVersions(ctx, conn)
		if err != nil {
			return err
		}

		done := 0
		for _, m := range set {
			if applied[m.version] {
				continue
			}
			if steps > 0 && done >= steps {
				break
			}
			err := runInTx(ctx, conn, func(tx *sql.Tx) error {
				if _, err := tx.ExecContext(ctx, m.up); err != nil {
					return fmt.Errorf("apply %04d_%s: %w", m.version, m.name, err)
				}
				_, err := tx.ExecContext(ctx,
					`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
					m.version, m.name)
				if err != nil {
					return fmt.Errorf("record %04d_%s: %w", m.version, m.name, err)
				}
				return nil
			})
			if err != nil {
				return err
			}
			done++
		}
		return nil
	})
}

// MigrateDown откатывает последние миграции; steps<=0 трактуется как один шаг,
// чтобы случайный вызов не снёс всю схему.
func (s *Store) MigrateDown(ctx context.Context, steps int) error {
	if steps <= 0 {
		steps = 1
	}
	return s.runMigrations(ctx, func(ctx context.Context, conn *sql.Conn, set []migrationPair) error {
		byVersion := make(map[int64]migrationPair, len(set))
		for _, m := range set {
			byVersion[m.version] = m
		}

		rows, err := conn.QueryContext(ctx,
			`SELECT version FROM schema_migrations ORDER BY version DESC LIMIT $1`, steps)
		if err != nil {
			return fmt.Errorf("list applied versions: %w", err)
		}
		var versions []int64
		for rows.Next() {
			var v int64
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return fmt.Errorf("scan applied version: %w", err)
			}
			versions = append(versions, v)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate applied versions: %w", err)
		}

		for _, v := range versions {
			m, ok := byVersion[v]
			if !ok {
				return fmt.Errorf("applied version %d has no migration files", v)
			}
			err := runInTx(ctx, conn, func(tx *sql.Tx) error {
				if _, err := tx.ExecContext(ctx, m.down); err != nil {
					return fmt.Errorf("rollback %04d_%s: %w", m.version, m.name, err)
				}
				_, err := tx.ExecContext(ctx,
					`DELETE FROM schema_migrations WHERE version = $1`, m.version)
				if err != nil {
					return fmt.Errorf("unrecord %04d_%s: %w", m.version, m.name, err)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// MigrationStatus возвращает максимальную применённую версию и число записей.
func (s *Store) MigrationStatus(ctx context.Context) (int64, int, error) {
	if s == nil || s.db == nil {
		return 0, 0, fmt.Errorf("postgres store is not initialized")
	}

	queryCtx, cancel := context.WithTimeout(ctx, schemaLockWait)
	defer cancel()

	if _, err := s.db.ExecContext(queryCtx, versionTableDDL); err != nil {
		return 0, 0, fmt.Errorf("ensure schema_migrations: %w", err)
	}

	var (
		version int64
		count   int
	)
	err := s.db.QueryRowContext(queryCtx,
		`SELECT COALESCE(MAX(version), 0), COUNT(*) FROM schema_migrations`,
	).Scan(&version, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("read schema_migrations: %w", err)
	}
	return version, count, nil
}

// runMigrations выполняет fn на выделенном соединении под advisory-локом.
func (s *Store) runMigrations(ctx context.Context, fn func(context.Context, *sql.Conn, []migrationPair) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	set, err := readMigrationSet(migrationsFS)
	if err != nil {
		return err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire migration connection: %w", err)
	}
	defer conn.Close()

	lockCtx, cancel := context.WithTimeout(ctx, schemaLockWait)
	defer cancel()
	if _, err := conn.ExecContext(lockCtx, `SELECT pg_advisory_lock($1)`, schemaLockKey); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, schemaLockKey)
	}()

	if _, err := conn.ExecContext(ctx, versionTableDDL); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	return fn(ctx, conn, set)
}

func runInTx(ctx context.Context, conn *sql.Conn, fn func(*sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration tx: %w", err)
	}
	return nil
}

func appliedVersions(ctx context.Context, conn *sql.Conn) (map[int64]bool, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied versions: %w", err)
	}
	defer rows.Close()

	applied := make(map[int64]bool)
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan applied version: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied versions: %w", err)
	}
	return applied, nil
}

// readMigrationSet собирает пары up/down из файловой системы и валидирует
// их целостность: у каждой версии ровно один up и один down, тела не пустые.
func readMigrationSet(fsys fs.FS) ([]migrationPair, error) {
	entries, err := fs.ReadDir(fsys, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	pairs := make(map[int64]*migrationPair)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		groups := migrationFileRe.FindStringSubmatch(entry.Name())
		if groups == nil {
			return nil, fmt.Errorf("unexpected file in migrations dir: %s", entry.Name())
		}

		version, err := strconv.ParseInt(groups[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse version of %s: %w", entry.Name(), err)
		}

		raw, err := fs.ReadFile(fsys, path.Join(migrationsDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		body := strings.TrimSpace(string(raw))
		if body == "" {
			return nil, fmt.Errorf("migration %s is empty", entry.Name())
		}

		pair, ok := pairs[version]
		if !ok {
			pair = &migrationPair{version: version, name: groups[2]}
			pairs[version] = pair
		} else if pair.name != groups[2] {
			return nil, fmt.Errorf("version %d has conflicting names %q and %q", version, pair.name, groups[2])
		}

		switch groups[3] {
		case "up":
			if pair.up != "" {
				return nil, fmt.Errorf("version %d has more than one up file", version)
			}
			pair.up = body
		case "down":
			if pair.down != "" {
				return nil, fmt.Errorf("version %d has more than one down file", version)
			}
			pair.down = body
		}
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("no migration files in %s", migrationsDir)
	}

	set := make([]migrationPair, 0, len(pairs))
	for _, pair := range pairs {
		if pair.up == "" || pair.down == "" {
			return nil, fmt.Errorf("version %d must have both up and down files", pair.version)
		}
		set = append(set, *pair)
	}
	sort.Slice(set, func(i, j int) bool { return set[i].version < set[j].version })

	return set, nil
}
