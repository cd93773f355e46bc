// Package db owns the PostgreSQL pool and schema migrations. Postgres holds
// the durable side of the system: check configuration, staged items, run
// state, and per-run results.
package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelfcheck/item-audit/internal/config"
)

// Connect builds a pgxpool sized from config and verifies connectivity
// before anything depends on it.
func Connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Migrate applies pending up-migrations from migrations/ (checks, users,
// subscriptions, staged_items, runs, run_results). Idempotent; the server
// runs it on every start before accepting traffic.
func Migrate(databaseURL string) error {
	// golang-migrate selects its driver by URL scheme and the pgx/v5 driver
	// registers as "pgx5", so the postgres scheme has to be rewritten.
	rest := strings.TrimPrefix(databaseURL, "postgresql://")
	rest = strings.TrimPrefix(rest, "postgres://")

	m, err := migrate.New("file://migrations", "pgx5://"+rest)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
