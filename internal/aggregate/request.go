package aggregate

import (
	"fmt"

	"github.com/couchcryptid/lightning-pulse-api/internal/model"
)

// defaultSampleSeed keeps repeated queries with the same filter stable
// when the caller does not care which sample it gets.
const defaultSampleSeed = 1

// Defaults are the server-level fallbacks applied to an aggregation
// request that leaves sizing choices unset.
type Defaults struct {
	CellSizeDeg      float64
	MaxScatterPoints int
	HistogramBuckets int
}

// Normalize validates a request and fills unset fields from the
// defaults. Validation failures abort the query before it touches the
// store. A nil request selects every default.
func Normalize(req *model.AggregationRequest, d Defaults) (model.AggregationRequest, error) {
	out := model.AggregationRequest{Granularity: model.GranularityHour}
	if req != nil {
		out = *req
	}

	if out.Granularity == "" {
		out.Granularity = model.GranularityHour
	}
	if !out.Granularity.IsValid() {
		return out, fmt.Errorf("unknown granularity %q", out.Granularity)
	}

	if out.CellSizeDeg < 0 {
		return out, fmt.Errorf("cell_size_deg must be positive, got %g", out.CellSizeDeg)
	}
	if out.CellSizeDeg == 0 {
		out.CellSizeDeg = d.CellSizeDeg
	}

	if out.MaxScatterPoints < 0 {
		return out, fmt.Errorf("max_scatter_points must be positive, got %d", out.MaxScatterPoints)
	}
	if out.MaxScatterPoints == 0 {
		out.MaxScatterPoints = d.MaxScatterPoints
	}

	if out.SampleSeed == 0 {
		out.SampleSeed = defaultSampleSeed
	}

	var err error
	if out.PeakCurrent, err = normalizeHistogramSpec("peak_current", out.PeakCurrent, d.HistogramBuckets); err != nil {
		return out, err
	}
	if out.ICHeight, err = normalizeHistogramSpec("ic_height", out.ICHeight, d.HistogramBuckets); err != nil {
		return out, err
	}

	return out, nil
}

func normalizeHistogramSpec(name string, spec model.HistogramSpec, defaultBuckets int) (model.HistogramSpec, error) {
	if spec.Buckets < 0 {
		return spec, fmt.Errorf("%s.buckets must be positive, got %d", name, spec.Buckets)
	}
	if len(spec.Edges) > 0 {
		if spec.Buckets != 0 {
			return spec, fmt.Errorf("%s: buckets and edges are mutually exclusive", name)
		}
		if len(spec.Edges) < 2 {
			return spec, fmt.Errorf("%s.edges needs at least two edges", name)
		}
		for i := 1; i < len(spec.Edges); i++ {
			if spec.Edges[i] <= spec.Edges[i-1] {
				return spec, fmt.Errorf("%s.edges must be strictly ascending", name)
			}
		}
		return spec, nil
	}
	if spec.Buckets == 0 {
		spec.Buckets = defaultBuckets
	}
	return spec, nil
}
