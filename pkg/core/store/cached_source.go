package store

import (
	"context"
	"log"

	"fin_statements/pkg/core/calc"
	"fin_statements/pkg/core/ingest"
	"fin_statements/pkg/core/metrics"
)

// CachedSource serves fetches from a SnapshotCache and falls through to the
// wrapped source on a miss. Cache failures never fail a fetch.
type CachedSource struct {
	inner ingest.Fetcher
	cache *SnapshotCache
}

// NewCachedSource wraps inner with cache.
func NewCachedSource(inner ingest.Fetcher, cache *SnapshotCache) *CachedSource {
	return &CachedSource{inner: inner, cache: cache}
}

func (s *CachedSource) Name() string { return s.inner.Name() }

// Fetch returns a copy of the cached set when fresh, otherwise fetches and caches.
func (s *CachedSource) Fetch(ctx context.Context, ticker string) (*calc.StatementSet, error) {
	snap, err := s.cache.Get(ctx, s.inner.Name(), ticker)
	if err != nil {
		log.Printf("[STORE] cache lookup %s/%s failed: %v", s.inner.Name(), ticker, err)
	}
	if snap != nil {
		metrics.IncCacheHit(s.inner.Name())
		return snap.Data.Clone(), nil
	}

	set, err := s.inner.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Save(ctx, &Snapshot{Source: s.inner.Name(), Ticker: ticker, Data: set.Clone()}); err != nil {
		log.Printf("[STORE] cache save %s/%s failed: %v", s.inner.Name(), ticker, err)
	}
	return set, nil
}
