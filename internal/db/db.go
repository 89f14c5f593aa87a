package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// DB wraps the PostgreSQL connection pool holding synthesis history.
type DB struct {
	*sql.DB
}

func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{conn}, nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS syntheses (
		id                  UUID PRIMARY KEY,
		text                TEXT NOT NULL,
		language            TEXT NOT NULL,
		voice               TEXT NOT NULL,
		provider            TEXT NOT NULL,
		status              TEXT NOT NULL,
		reason              TEXT,
		cancellation_reason TEXT,
		error_details       TEXT,
		message             TEXT,
		audio_bytes         INTEGER NOT NULL DEFAULT 0,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		started_at          TIMESTAMPTZ,
		finished_at         TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS syntheses_status_created_at_idx ON syntheses (status, created_at DESC);
`

// Migrate creates the history table if it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
