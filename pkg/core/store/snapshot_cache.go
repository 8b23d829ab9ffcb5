package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fin_statements/pkg/core/calc"
)

// Snapshot is one normalized statement set as fetched from a source.
// Edits never reach the cache.
type Snapshot struct {
	Source    string             `json:"source"`
	Ticker    string             `json:"ticker"`
	Data      *calc.StatementSet `json:"data"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// SnapshotCache stores snapshots per (source, ticker).
// Hybrid: Postgres when a pool is given, JSON files otherwise.
type SnapshotCache struct {
	pool    *pgxpool.Pool
	fileDir string
	ttl     time.Duration
	now     func() time.Time
}

// NewSnapshotCache creates a cache. With a nil pool and empty dir it defaults
// to .cache/snapshots. ttl <= 0 means entries never expire.
func NewSnapshotCache(pool *pgxpool.Pool, dir string, ttl time.Duration) *SnapshotCache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "snapshots")
	}
	if pool == nil {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("[STORE] cannot create cache dir %s: %v", dir, err)
		}
	}
	return &SnapshotCache{pool: pool, fileDir: dir, ttl: ttl, now: time.Now}
}

// Get returns the cached snapshot, or nil on a miss or when it has expired.
func (c *SnapshotCache) Get(ctx context.Context, source, ticker string) (*Snapshot, error) {
	ticker = normalizeTicker(ticker)

	var snap *Snapshot
	var err error
	if c.pool != nil {
		snap, err = c.getDB(ctx, source, ticker)
	} else {
		snap, err = c.getFile(source, ticker)
	}
	if err != nil || snap == nil {
		return nil, err
	}
	if c.expired(snap) {
		return nil, nil
	}
	return snap, nil
}

// Save stores snap, replacing any earlier entry for the same key.
func (c *SnapshotCache) Save(ctx context.Context, snap *Snapshot) error {
	if snap == nil || snap.Data == nil {
		return fmt.Errorf("nothing to cache")
	}
	entry := *snap
	entry.Ticker = normalizeTicker(snap.Ticker)
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = c.now()
	}

	if c.pool != nil {
		return c.saveDB(ctx, &entry)
	}
	return c.saveFile(&entry)
}

// Delete removes an entry; a missing entry is not an error.
func (c *SnapshotCache) Delete(ctx context.Context, source, ticker string) error {
	ticker = normalizeTicker(ticker)
	if c.pool != nil {
		_, err := c.pool.Exec(ctx, `DELETE FROM statement_snapshots WHERE source = $1 AND ticker = $2`, source, ticker)
		return err
	}
	err := os.Remove(c.path(source, ticker))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (c *SnapshotCache) expired(snap *Snapshot) bool {
	return c.ttl > 0 && c.now().Sub(snap.FetchedAt) > c.ttl
}

// DB backend

func (c *SnapshotCache) getDB(ctx context.Context, source, ticker string) (*Snapshot, error) {
	query := `
		SELECT data, fetched_at
		FROM statement_snapshots
		WHERE source = $1 AND ticker = $2
	`
	var dataJSON []byte
	var fetchedAt time.Time
	err := c.pool.QueryRow(ctx, query, source, ticker).Scan(&dataJSON, &fetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var set calc.StatementSet
	if err := json.Unmarshal(dataJSON, &set); err != nil {
		return nil, fmt.Errorf("failed to unmarshal db cached data: %w", err)
	}
	return &Snapshot{Source: source, Ticker: ticker, Data: &set, FetchedAt: fetchedAt}, nil
}

func (c *SnapshotCache) saveDB(ctx context.Context, snap *Snapshot) error {
	dataJSON, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	query := `
		INSERT INTO statement_snapshots (source, ticker, data, fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source, ticker)
		DO UPDATE SET
			data = EXCLUDED.data,
			fetched_at = EXCLUDED.fetched_at
	`
	if _, err := c.pool.Exec(ctx, query, snap.Source, snap.Ticker, dataJSON, snap.FetchedAt); err != nil {
		return fmt.Errorf("failed to save to db cache: %w", err)
	}
	return nil
}

// File backend

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

func (c *SnapshotCache) path(source, ticker string) string {
	name := unsafeChars.ReplaceAllString(source, "_") + "_" + unsafeChars.ReplaceAllString(ticker, "_")
	return filepath.Join(c.fileDir, name+".json")
}

func (c *SnapshotCache) getFile(source, ticker string) (*Snapshot, error) {
	bytes, err := os.ReadFile(c.path(source, ticker))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(bytes, &snap); err != nil {
		// A corrupt file is a miss; the next Save overwrites it.
		log.Printf("[STORE] ignoring unreadable cache file for %s/%s: %v", source, ticker, err)
		return nil, nil
	}
	if snap.Data == nil {
		return nil, nil
	}
	return &snap, nil
}

func (c *SnapshotCache) saveFile(snap *Snapshot) error {
	fileBytes, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(c.path(snap.Source, snap.Ticker), fileBytes, 0644); err != nil {
		return fmt.Errorf("failed to save to file cache: %w", err)
	}
	return nil
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
