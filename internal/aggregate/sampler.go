package aggregate

import (
	"container/heap"
	"encoding/binary"
	"hash/fnv"
	"math"
	"sort"

	"github.com/couchcryptid/lightning-pulse-api/internal/model"
)

// sampler keeps a uniform random sample of at most cap scatter points.
// Each pulse gets a priority hashed from the seed and its dedup key and
// the cap-many smallest priorities win ("bottom-k" sampling). Selection
// therefore depends only on the seed and the filtered set itself, never
// on traversal order or chunk boundaries.
type sampler struct {
	cap  int
	seed int64
	heap sampleHeap // max-heap on priority: the root is the first to evict
}

func newSampler(capacity int, seed int64) *sampler {
	return &sampler{cap: capacity, seed: seed}
}

// offer considers one matching pulse for the sample.
func (s *sampler) offer(p *model.Pulse) {
	it := sampleItem{priority: s.priority(p), point: scatterPoint(p)}

	if s.heap.Len() < s.cap {
		heap.Push(&s.heap, it)
		return
	}
	if less(it, s.heap[0]) {
		s.heap[0] = it
		heap.Fix(&s.heap, 0)
	}
}

// merge folds another sampler's candidates in, keeping the overall
// bottom-k.
func (s *sampler) merge(other *sampler) {
	for _, it := range other.heap {
		if s.heap.Len() < s.cap {
			heap.Push(&s.heap, it)
			continue
		}
		if less(it, s.heap[0]) {
			s.heap[0] = it
			heap.Fix(&s.heap, 0)
		}
	}
}

// points returns the sampled scatter points in time order.
func (s *sampler) points() []model.ScatterPoint {
	out := make([]model.ScatterPoint, 0, s.heap.Len())
	for _, it := range s.heap {
		out = append(out, it.point)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Time.Equal(b.Time) {
			return a.Time.Before(b.Time)
		}
		if a.Lat != b.Lat {
			return a.Lat < b.Lat
		}
		if a.Lon != b.Lon {
			return a.Lon < b.Lon
		}
		return a.PeakCurrentKA < b.PeakCurrentKA
	})
	return out
}

// priority hashes (seed, dedup key) with FNV-1a.
func (s *sampler) priority(p *model.Pulse) uint64 {
	var buf [40]byte
	binary.BigEndian.PutUint64(buf[0:], uint64(s.seed))
	binary.BigEndian.PutUint64(buf[8:], uint64(p.Time.UnixNano()))
	binary.BigEndian.PutUint64(buf[16:], math.Float64bits(p.Lat))
	binary.BigEndian.PutUint64(buf[24:], math.Float64bits(p.Lon))
	binary.BigEndian.PutUint64(buf[32:], math.Float64bits(p.PeakCurrentKA))

	h := fnv.New64a()
	h.Write(buf[:]) //nolint:errcheck // fnv Write cannot fail
	return h.Sum64()
}

func scatterPoint(p *model.Pulse) model.ScatterPoint {
	return model.ScatterPoint{
		Time:          p.Time,
		Lat:           p.Lat,
		Lon:           p.Lon,
		Class:         p.Class,
		Polarity:      p.Polarity,
		PeakCurrentKA: p.PeakCurrentKA,
		ICHeightKM:    p.ICHeightKM,
	}
}

// ─── Heap plumbing ──────────────────────────────────────────

type sampleItem struct {
	priority uint64
	point    model.ScatterPoint
}

// less orders candidates by priority with a deterministic tie-break on
// the point itself, so a hash collision at the cap boundary still
// resolves identically for any traversal order.
func less(a, b sampleItem) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	if !a.point.Time.Equal(b.point.Time) {
		return a.point.Time.Before(b.point.Time)
	}
	if a.point.Lat != b.point.Lat {
		return a.point.Lat < b.point.Lat
	}
	if a.point.Lon != b.point.Lon {
		return a.point.Lon < b.point.Lon
	}
	return a.point.PeakCurrentKA < b.point.PeakCurrentKA
}

type sampleHeap []sampleItem

func (h sampleHeap) Len() int           { return len(h) }
func (h sampleHeap) Less(i, j int) bool { return less(h[j], h[i]) } // max-heap
func (h sampleHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *sampleHeap) Push(x any) { *h = append(*h, x.(sampleItem)) }

func (h *sampleHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
