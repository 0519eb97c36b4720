package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

const schema = `
CREATE TABLE IF NOT EXISTS notification_configs (
    config_id   TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    config_type TEXT NOT NULL,
    config      JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS notification_configs_type_idx ON notification_configs (config_type)`

// DB is the Postgres backed notification config store. Queries go through a
// database/sql handle over the pgx pool.
type DB struct {
	Pool *pgxpool.Pool
	conn *sql.DB
}

func New(dsn string) (*DB, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	return &DB{Pool: pool, conn: stdlib.OpenDBFromPool(pool)}, nil
}

// NewWithConn wraps an existing connection.
func NewWithConn(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// EnsureSchema creates the config table when it does not exist.
func (d *DB) EnsureSchema(ctx context.Context) error {
	if _, err := d.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	if err := d.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	var err error
	if d.conn != nil {
		err = d.conn.Close()
	}
	if d.Pool != nil {
		d.Pool.Close()
	}
	return err
}
