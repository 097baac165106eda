package postgres

import (
	"context"
	"fmt"

	"github.com/sharkz-dev/UltraEconomy/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// NewPool creates a PostgreSQL connection pool using pgx.
func NewPool(ctx context.Context, cfg config.PostgresConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("dbname", cfg.DBName).
		Int32("max_conns", cfg.MaxConns).
		Msg("PostgreSQL connection pool established")

	return pool, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id   UUID PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS balances (
		account_uuid UUID NOT NULL REFERENCES accounts(id),
		currency_id  TEXT NOT NULL,
		amount       NUMERIC(36,18) NOT NULL DEFAULT 0,
		PRIMARY KEY (account_uuid, currency_id)
	)`,
	`CREATE TABLE IF NOT EXISTS ledger_entries (
		id           BIGSERIAL PRIMARY KEY,
		account_uuid UUID NOT NULL,
		currency_id  TEXT NOT NULL,
		amount       NUMERIC(36,18) NOT NULL,
		kind         TEXT NOT NULL,
		processed    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_balances_currency_amount ON balances (currency_id, amount DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_account_processed ON ledger_entries (account_uuid, processed)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_account_currency ON ledger_entries (account_uuid, currency_id)`,
}

// Migrate creates the schema when it does not exist yet.
func Migrate(ctx context.Context, pool Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
