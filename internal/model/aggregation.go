package model

import "time"

// ─── Request ────────────────────────────────────────────────

// Granularity is the time-bin width for the time series view.
type Granularity string

// Allowed Granularity values.
const (
	GranularityMinute Granularity = "MINUTE"
	GranularityHour   Granularity = "HOUR"
	GranularityDay    Granularity = "DAY"
)

// IsValid returns true if the Granularity is one of the known enum values.
func (e Granularity) IsValid() bool {
	switch e {
	case GranularityMinute, GranularityHour, GranularityDay:
		return true
	}
	return false
}

func (e Granularity) String() string { return string(e) }

// Duration returns the bin width. DAY truncates to UTC midnight.
func (e Granularity) Duration() time.Duration {
	switch e {
	case GranularityMinute:
		return time.Minute
	case GranularityDay:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

// HistogramSpec controls one histogram view. Either explicit Edges
// (ascending, len >= 2) or a Buckets count for equal-width binning over
// the filtered data's observed min/max.
type HistogramSpec struct {
	Buckets int       `json:"buckets,omitempty"`
	Edges   []float64 `json:"edges,omitempty"`
}

// AggregationRequest selects the derived views to compute.
type AggregationRequest struct {
	Granularity Granularity `json:"granularity"`

	// CellSizeDeg is the spatial grid cell size in degrees. Zero means
	// the server default.
	CellSizeDeg float64 `json:"cell_size_deg,omitempty"`

	// MaxScatterPoints caps the raw point list via deterministic
	// seeded sampling. Zero means the server default.
	MaxScatterPoints int   `json:"max_scatter_points,omitempty"`
	SampleSeed       int64 `json:"sample_seed,omitempty"`

	PeakCurrent HistogramSpec `json:"peak_current,omitempty"`
	ICHeight    HistogramSpec `json:"ic_height,omitempty"`
}

// ─── Result bundle ──────────────────────────────────────────

// TimeBin is one entry of the sparse time series: bins with zero
// matching pulses are omitted.
type TimeBin struct {
	Start   time.Time `json:"start"`
	Count   int       `json:"count"`
	CGCount int       `json:"cg_count"`
	ICCount int       `json:"ic_count"`
}

// GridCoord identifies a heatmap cell. Cells are anchored at the
// (0, 0) origin so identity is stable across successive filter changes
// with the same cell size.
type GridCoord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// GridCell is one heatmap cell with its event count.
type GridCell struct {
	GridCoord
	Count int `json:"count"`
}

// ScatterPoint is a filtered pulse reduced to what the map layer draws.
type ScatterPoint struct {
	Time          time.Time   `json:"time"`
	Lat           float64     `json:"lat"`
	Lon           float64     `json:"lon"`
	Class         StrokeClass `json:"class"`
	Polarity      Polarity    `json:"polarity"`
	PeakCurrentKA float64     `json:"peak_current_ka"`
	ICHeightKM    *float64    `json:"ic_height_km,omitempty"`
}

// SpatialGrid holds the heatmap cells plus the (possibly sampled)
// raw points for scatter rendering.
type SpatialGrid struct {
	CellSizeDeg float64        `json:"cell_size_deg"`
	Cells       []GridCell     `json:"cells"`
	Points      []ScatterPoint `json:"points"`
	Sampled     bool           `json:"sampled"`
}

// Histogram is a fixed-edge bucket view. len(Edges) == len(Counts)+1
// unless NoData is set, in which case both are empty.
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []int     `json:"counts"`
	NoData bool      `json:"no_data"`
}

// Total returns the sum of all bucket counts.
func (h Histogram) Total() int {
	n := 0
	for _, c := range h.Counts {
		n += c
	}
	return n
}

// SummaryStats are the headline numbers for the filtered set.
// CGShare + ICShare == 1.0 whenever Total > 0; both are 0 otherwise.
type SummaryStats struct {
	Total   int     `json:"total"`
	CGCount int     `json:"cg_count"`
	ICCount int     `json:"ic_count"`
	CGShare float64 `json:"cg_share"`
	ICShare float64 `json:"ic_share"`
}

// ResultBundle is the read-only snapshot handed to the presentation
// layer: every derived view from one traversal of the filtered set.
type ResultBundle struct {
	TimeSeries  []TimeBin    `json:"time_series"`
	Grid        SpatialGrid  `json:"grid"`
	PeakCurrent Histogram    `json:"peak_current"`
	ICHeight    Histogram    `json:"ic_height"`
	Summary     SummaryStats `json:"summary"`
}
