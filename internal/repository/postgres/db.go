package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/solderinua-oss/solder-warehouse/internal/config"
)

type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

// NewDB opens a connection pool with the lib/pq ("postgres") or pgx stdlib
// ("pgx") driver and makes sure the schema exists.
func NewDB(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	driver := cfg.Driver
	if driver != "pgx" {
		driver = "postgres"
	}

	db, err := sqlx.ConnectContext(ctx, driver, DSN(cfg))
	if err != nil {
		return nil, classify(fmt.Errorf("connect %s: %w", driver, err))
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	d := &DB{
		DB: db,
		// Limit to 10 concurrent transactions
		sem: semaphore.NewWeighted(10),
	}
	if err := d.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

// DSN prefers DB_URL and otherwise builds a keyword/value string both drivers accept.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	pairs := []struct{ key, value string }{
		{"host", cfg.Host},
		{"port", cfg.Port},
		{"user", cfg.User},
		{"password", cfg.Password},
		{"dbname", cfg.DBName},
		{"sslmode", cfg.SSLMode},
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.key+"="+quoteDSNValue(p.value))
	}
	return strings.Join(parts, " ")
}

// quoteDSNValue single-quotes v so empty values and values with spaces or
// quotes survive keyword/value parsing.
func quoteDSNValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT NOT NULL UNIQUE,
	article       TEXT NOT NULL DEFAULT '',
	quantity      INTEGER NOT NULL DEFAULT 0,
	buying_price  DOUBLE PRECISION NOT NULL DEFAULT 0,
	selling_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	category      TEXT NOT NULL DEFAULT '',
	owner         TEXT NOT NULL DEFAULT 'shared',
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_products_article ON products (article) WHERE article <> '';

CREATE TABLE IF NOT EXISTS sale_events (
	id                   UUID PRIMARY KEY,
	order_id             TEXT NOT NULL DEFAULT '',
	product_name         TEXT NOT NULL,
	article              TEXT NOT NULL DEFAULT '',
	quantity             INTEGER NOT NULL DEFAULT 0,
	sold_price           DOUBLE PRECISION NOT NULL DEFAULT 0,
	buying_price_at_sale DOUBLE PRECISION NOT NULL DEFAULT 0,
	profit               DOUBLE PRECISION NOT NULL DEFAULT 0,
	owner                TEXT NOT NULL DEFAULT 'shared',
	status               TEXT NOT NULL DEFAULT '',
	sold_at              TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sale_events_sold_at ON sale_events (sold_at DESC);
`

// Migrate creates the tables if they are missing.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return classify(fmt.Errorf("migrate schema: %w", err))
	}
	return nil
}

// WithTx executes a function within a transaction
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return classify(fmt.Errorf("could not begin transaction: %w", err))
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return classify(err)
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("could not commit transaction: %w", err))
	}

	return nil
}
