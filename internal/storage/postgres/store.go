package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout     = 5 * time.Second
	poolMaxOpen     = 25
	poolMaxIdle     = 25
	poolConnMaxLife = 30 * time.Minute
	poolConnMaxIdle = 5 * time.Minute
)

// Store держит пул соединений с PostgreSQL; все репозитории сервиса
// работают через один Store, чтобы outbox и состояние агрегатов жили
// в одной базе.
type Store struct {
	db *sql.DB
}

// Open подключается по DSN и сразу проверяет базу ping-ом: неправильная
// конфигурация должна валить сервис на старте, а не на первой команде.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(poolMaxOpen)
	db.SetMaxIdleConns(poolMaxIdle)
	db.SetConnMaxLifetime(poolConnMaxLife)
	db.SetConnMaxIdleTime(poolConnMaxIdle)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{db: db}, nil
}

// DB отдаёт пул репозиториям пакета.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping используется readiness-проверкой сервиса.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

// EnsureSchema доводит схему до последней версии (все up-миграции).
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.MigrateUp(ctx, 0)
}

// Close закрывает пул; безопасен на nil-получателе.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
