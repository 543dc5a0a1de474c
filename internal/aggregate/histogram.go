package aggregate

import "github.com/couchcryptid/lightning-pulse-api/internal/model"

// buildHistogram buckets the collected values. Caller-supplied edges
// are used verbatim; otherwise equal-width edges span the observed
// min/max. An empty value set reports NoData instead of dividing by a
// zero width.
func buildHistogram(values []float64, spec model.HistogramSpec) model.Histogram {
	if len(values) == 0 {
		return model.Histogram{NoData: true}
	}

	edges := spec.Edges
	if len(edges) == 0 {
		lo, hi := minMax(values)
		if lo == hi {
			// All observations identical: one degenerate bucket.
			return model.Histogram{Edges: []float64{lo, hi}, Counts: []int{len(values)}}
		}
		edges = equalWidthEdges(lo, hi, spec.Buckets)
	}

	counts := make([]int, len(edges)-1)
	for _, v := range values {
		counts[bucketIndex(edges, v)]++
	}
	return model.Histogram{Edges: edges, Counts: counts}
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func equalWidthEdges(lo, hi float64, buckets int) []float64 {
	edges := make([]float64, buckets+1)
	width := (hi - lo) / float64(buckets)
	for i := 0; i < buckets; i++ {
		edges[i] = lo + width*float64(i)
	}
	// Set the last edge exactly so rounding never strands the max.
	edges[buckets] = hi
	return edges
}

// bucketIndex places v in bucket i where edges[i] <= v < edges[i+1].
// The last bucket is closed, and values outside caller-supplied edges
// clamp into the boundary buckets so bucket sums always equal the
// measured-record count.
func bucketIndex(edges []float64, v float64) int {
	last := len(edges) - 2
	if v <= edges[0] {
		return 0
	}
	if v >= edges[len(edges)-1] {
		return last
	}
	// Linear edge counts (tens, not thousands) make binary search moot.
	for i := 1; i <= last; i++ {
		if v < edges[i] {
			return i - 1
		}
	}
	return last
}
