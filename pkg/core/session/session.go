// Package session holds the working state of one user: the current statement
// records, edits to them and in-flight ticker submissions.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"fin_statements/pkg/core/calc"
	"fin_statements/pkg/core/ingest"
	"fin_statements/pkg/core/metrics"
	"fin_statements/pkg/core/schema"
)

var (
	// ErrUnknownKey is returned when an edit names a key that is not a line item.
	ErrUnknownKey = errors.New("unknown line item")
	// ErrSuperseded is returned to a submission whose result arrived after a newer one started.
	ErrSuperseded = errors.New("superseded by a newer submission")
)

// Status of the session's data.
type Status string

const (
	StatusEmpty   Status = "empty"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Session is safe for concurrent use.
type Session struct {
	ID string

	mu       sync.Mutex
	set      *calc.StatementSet
	ticker   string
	source   string
	seq      uint64
	cancel   context.CancelFunc
	loading  bool
	lastErr  error
	lastUsed time.Time
	updated  time.Time
}

// New returns a session with all-zero records.
func New(id string) *Session {
	now := time.Now()
	return &Session{
		ID:       id,
		set:      ingest.NormalizeSet(ingest.SourceInternal, nil),
		lastUsed: now,
		updated:  now,
	}
}

// Submit loads ticker from fetcher and replaces the session's records.
//
// Each call cancels any earlier in-flight fetch. A result is applied only if
// no newer Submit started meanwhile; otherwise it is dropped and
// ErrSuperseded returned. On a fetch error the previous records are kept and
// the error is remembered for the view.
func (s *Session) Submit(ctx context.Context, fetcher ingest.Fetcher, ticker string) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.loading = true
	s.lastUsed = time.Now()
	s.mu.Unlock()
	defer cancel()

	start := time.Now()
	set, err := fetcher.Fetch(fctx, ticker)
	elapsed := time.Since(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		metrics.IncStaleDiscard()
		log.Printf("[SESSION] %s: dropped stale result for %s (seq %d, latest %d)", s.ID, ticker, seq, s.seq)
		return ErrSuperseded
	}
	s.cancel = nil
	s.loading = false

	if err != nil {
		metrics.ObserveFetch(fetcher.Name(), resultLabel(err), elapsed)
		s.lastErr = err
		log.Printf("[SESSION] %s: fetch %s from %s failed: %v", s.ID, ticker, fetcher.Name(), err)
		return err
	}
	if _, err := calc.ComputeAll(set); err != nil {
		metrics.ObserveFetch(fetcher.Name(), metrics.ResultError, elapsed)
		s.lastErr = fmt.Errorf("source data for %s rejected: %w", ticker, err)
		return s.lastErr
	}
	metrics.ObserveFetch(fetcher.Name(), metrics.ResultSuccess, elapsed)

	s.set = set
	s.ticker = ticker
	s.source = fetcher.Name()
	s.lastErr = nil
	s.updated = time.Now()
	return nil
}

// Import replaces the records with set as if it were a newer submission: an
// in-flight fetch is cancelled and its result will be discarded.
func (s *Session) Import(label string, set *calc.StatementSet) error {
	if set == nil {
		return fmt.Errorf("nothing to import")
	}
	if _, err := calc.ComputeAll(set); err != nil {
		return fmt.Errorf("imported records rejected: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.loading = false
	s.set = set
	s.ticker = label
	s.source = string(ingest.SourceInternal)
	s.lastErr = nil
	s.lastUsed = time.Now()
	s.updated = s.lastUsed
	return nil
}

func resultLabel(err error) string {
	if kind := ingest.KindOf(err); kind != "" {
		return string(kind)
	}
	return metrics.ResultError
}

// Edit sets one line item. Reported totals that include the edited item are
// dropped so they are recomputed from their parts; other totals keep their
// reported values.
func (s *Session) Edit(t schema.StatementType, key string, amount float64) error {
	st, err := schema.Get(t)
	if err != nil {
		return err
	}
	if !st.HasLineItem(key) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownKey, t, key)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: %s.%s", calc.ErrNonFiniteAmount, t, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.set.Record(t).Clone()
	rec[key] = amount
	for _, def := range st.Totals {
		if def.OverrideKey != "" && st.DependsOn(def.Key, key) {
			delete(rec, def.OverrideKey)
		}
	}
	// A finite amount can still push a total past the float range.
	if _, err := calc.ComputeTotals(t, rec); err != nil {
		return err
	}
	if err := s.set.SetRecord(t, rec); err != nil {
		return err
	}

	s.lastUsed = time.Now()
	s.updated = s.lastUsed
	metrics.IncEdit(string(t))
	return nil
}

// Snapshot returns a copy of the current records.
func (s *Session) Snapshot() *calc.StatementSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Clone()
}

// Close cancels any in-flight fetch.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

func (s *Session) status() Status {
	switch {
	case s.loading:
		return StatusLoading
	case s.lastErr != nil:
		return StatusError
	case s.ticker != "" || hasData(s.set):
		return StatusReady
	}
	return StatusEmpty
}

func hasData(set *calc.StatementSet) bool {
	for _, t := range schema.AllTypes() {
		for _, v := range set.Record(t) {
			if v != 0 {
				return true
			}
		}
	}
	return false
}
