package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

const snapshotTableDDL = `
	CREATE TABLE IF NOT EXISTS statement_snapshots (
		source     TEXT        NOT NULL,
		ticker     TEXT        NOT NULL,
		data       JSONB       NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (source, ticker)
	)
`

// InitDB initializes the connection pool from dbURL, or from the DATABASE_URL
// environment variable when dbURL is empty, and creates the snapshot table.
func InitDB(ctx context.Context, dbURL string) error {
	var err error
	once.Do(func() {
		if dbURL == "" {
			dbURL = os.Getenv("DATABASE_URL")
		}
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return
		}
		if _, execErr := pool.Exec(ctx, snapshotTableDDL); execErr != nil {
			pool.Close()
			pool = nil
			err = fmt.Errorf("failed to create statement_snapshots: %w", execErr)
		}
	})
	return err
}

// GetPool returns the database connection pool, nil when InitDB was not called or failed.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool
func Close() {
	if pool != nil {
		pool.Close()
	}
}
