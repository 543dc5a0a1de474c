package model

import "time"

// ─── Filter ─────────────────────────────────────────────────

// TimeWindow is a half-open [Start, End) instant range: a pulse exactly
// at End falls into the next window, never both.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies in [Start, End).
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// BoundingBox is an inclusive lat/lon rectangle. MinLon > MaxLon is the
// legal antimeridian wrap: the longitude range spans the 180° boundary.
// Latitude bounds must always satisfy MinLat <= MaxLat.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Wraps reports whether the box spans the antimeridian.
func (b BoundingBox) Wraps() bool { return b.MinLon > b.MaxLon }

// Contains reports whether the coordinate lies inside the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	if lat < b.MinLat || lat > b.MaxLat {
		return false
	}
	if b.Wraps() {
		return lon >= b.MinLon || lon <= b.MaxLon
	}
	return lon >= b.MinLon && lon <= b.MaxLon
}

// PulseFilter specifies the query restrictions. All fields are optional
// and combine with logical AND; an unset axis imposes no restriction.
type PulseFilter struct {
	Window           *TimeWindow   `json:"window,omitempty"`
	Polarities       []Polarity    `json:"polarities,omitempty"`
	Classes          []StrokeClass `json:"classes,omitempty"`
	BBox             *BoundingBox  `json:"bbox,omitempty"`
	MinPeakCurrentKA *float64      `json:"min_peak_current_ka,omitempty"`
}
