package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements FileStore and NotificationStore over a pgx
// connection pool. Each operation acquires and releases its own
// connection; no connection is held across a handler's lifetime.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an already-configured pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Connect builds a pool from connString and wraps it.
func Connect(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("store: connecting to postgres: %w", err)
	}
	return NewPostgres(pool), nil
}

// Close releases the underlying pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Migrate creates the relay's tables if they do not already exist.
// Schema migrations beyond this bootstrap are out of scope.
func (p *Postgres) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS files (
			hash CHAR(64) PRIMARY KEY,
			data BYTEA NOT NULL,
			size INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notif_challenges (
			npub TEXT PRIMARY KEY,
			challenge TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT (NOW() AT TIME ZONE 'UTC')
		)`,
		`CREATE TABLE IF NOT EXISTS notif_email_verification (
			npub TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			token TEXT,
			sent_at TIMESTAMPTZ NOT NULL DEFAULT (NOW() AT TIME ZONE 'UTC')
		)`,
		`CREATE TABLE IF NOT EXISTS notif_email_preferences (
			npub TEXT PRIMARY KEY,
			enabled BOOLEAN NOT NULL DEFAULT FALSE,
			token TEXT NOT NULL,
			email TEXT NOT NULL,
			email_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			ebill_url TEXT NOT NULL,
			flags BIGINT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrating schema: %w", err)
		}
	}
	return nil
}
