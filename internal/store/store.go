package store

import (
	"context"
	"sync"

	"github.com/couchcryptid/lightning-pulse-api/internal/model"
	"github.com/couchcryptid/lightning-pulse-api/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Store is the canonical, deduplicated in-memory set of pulses across
// all uploaded sources. It lives only for the session in which it is
// constructed: append-only writes through Merge, snapshot reads through
// All. A query sees the store before or after a merge, never mid-merge.
type Store struct {
	mu      sync.RWMutex
	pulses  []model.Pulse
	seen    map[model.DedupKey]struct{}
	sources []model.SourceInfo

	metrics *observability.Metrics
	clock   clockwork.Clock
}

// New creates an empty Store.
func New(m *observability.Metrics) *Store {
	return NewWithClock(m, clockwork.NewRealClock())
}

// NewWithClock creates a Store with an injected time source, so tests
// can freeze LoadedAt timestamps.
func NewWithClock(m *observability.Metrics, c clockwork.Clock) *Store {
	return &Store{
		seen:    make(map[model.DedupKey]struct{}),
		metrics: m,
		clock:   c,
	}
}

// Merge adds one source's pulses, applying the dedup key. Records whose
// key is already present — from this upload or any earlier one — count
// as duplicates and are skipped, which makes Merge idempotent: merging
// the same file twice changes nothing beyond the duplicate count.
// Row errors from ingestion are folded into the result as rejections.
func (s *Store) Merge(sourceID, name string, pulses []model.Pulse, rowErrs []model.RowError) model.MergeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := model.MergeResult{
		Rejected:   len(rowErrs),
		Rejections: rowErrs,
		Sources:    []string{sourceID},
	}

	for _, p := range pulses {
		key := p.Key()
		if _, dup := s.seen[key]; dup {
			res.Duplicates++
			continue
		}
		s.seen[key] = struct{}{}
		s.pulses = append(s.pulses, p)
		res.Added++
	}

	s.sources = append(s.sources, model.SourceInfo{
		ID:         sourceID,
		Name:       name,
		Added:      res.Added,
		Duplicates: res.Duplicates,
		Rejected:   res.Rejected,
		LoadedAt:   s.clock.Now().UTC(),
	})

	s.observeMerge(res)
	return res
}

// All returns a snapshot of the store in insertion order. The backing
// array is append-only and pulses are immutable, so the snapshot stays
// stable while later merges grow the store.
func (s *Store) All() []model.Pulse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pulses[:len(s.pulses):len(s.pulses)]
}

// Len returns the number of deduplicated pulses.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pulses)
}

// Sources returns provenance for every merged upload.
func (s *Store) Sources() []model.SourceInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SourceInfo, len(s.sources))
	copy(out, s.sources)
	return out
}

// Clear discards all pulses and provenance, starting a fresh session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pulses = nil
	s.seen = make(map[model.DedupKey]struct{})
	s.sources = nil
	if s.metrics != nil {
		s.metrics.StorePulses.Set(0)
	}
}

// CheckReadiness reports readiness for the /readyz probe. The store is
// in-memory with no downstream dependencies, so it is always ready.
func (s *Store) CheckReadiness(_ context.Context) error { return nil }

func (s *Store) observeMerge(res model.MergeResult) {
	if s.metrics == nil {
		return
	}
	s.metrics.PulsesIngested.WithLabelValues("added").Add(float64(res.Added))
	s.metrics.PulsesIngested.WithLabelValues("duplicate").Add(float64(res.Duplicates))
	s.metrics.PulsesIngested.WithLabelValues("rejected").Add(float64(res.Rejected))
	s.metrics.StorePulses.Set(float64(len(s.pulses)))
}
