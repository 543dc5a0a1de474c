package model_test

import (
	"testing"
	"time"

	"github.com/couchcryptid/lightning-pulse-api/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestTimeWindowContains_HalfOpen(t *testing.T) {
	w := model.TimeWindow{
		Start: time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 4, 26, 13, 0, 0, 0, time.UTC),
	}

	assert.True(t, w.Contains(w.Start), "start instant is included")
	assert.True(t, w.Contains(w.End.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(w.End), "end instant belongs to the next window")
	assert.False(t, w.Contains(w.Start.Add(-time.Nanosecond)))
}

func TestTimeWindowContains_EmptyWindow(t *testing.T) {
	at := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)
	w := model.TimeWindow{Start: at, End: at}

	// Start == End is a legal window that matches nothing.
	assert.False(t, w.Contains(at))
}

func TestBoundingBoxContains(t *testing.T) {
	box := model.BoundingBox{MinLat: 30, MinLon: -100, MaxLat: 40, MaxLon: -90}

	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"inside", 35, -95, true},
		{"on min corner", 30, -100, true},
		{"on max corner", 40, -90, true},
		{"north of box", 41, -95, false},
		{"west of box", 35, -101, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, box.Contains(tt.lat, tt.lon))
		})
	}
}

func TestBoundingBoxContains_AntimeridianWrap(t *testing.T) {
	// Fiji region: the longitude range crosses the 180° boundary.
	box := model.BoundingBox{MinLat: -25, MinLon: 170, MaxLat: -10, MaxLon: -170}

	assert.True(t, box.Wraps())
	assert.True(t, box.Contains(-18, 178), "east of the antimeridian")
	assert.True(t, box.Contains(-18, -175), "west of the antimeridian")
	assert.False(t, box.Contains(-18, 0), "opposite side of the globe")
	assert.False(t, box.Contains(-30, 178), "latitude outside")
}

func TestPulseKey_SourceIndependent(t *testing.T) {
	at := time.Date(2024, 4, 26, 12, 30, 0, 0, time.UTC)
	a := model.Pulse{Time: at, Lat: 35.3, Lon: -97.5, PeakCurrentKA: -18.2, SourceID: "upload-1"}
	b := model.Pulse{Time: at, Lat: 35.3, Lon: -97.5, PeakCurrentKA: -18.2, SourceID: "upload-2"}

	// Same physical strike from two overlapping files.
	assert.Equal(t, a.Key(), b.Key())

	c := b
	c.PeakCurrentKA = -18.3
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestMergeResultMerge(t *testing.T) {
	var total model.MergeResult
	total.Merge(model.MergeResult{Added: 10, Duplicates: 2, Sources: []string{"a"}})
	total.Merge(model.MergeResult{
		Added:      5,
		Rejected:   1,
		Rejections: []model.RowError{{Row: 3, Reason: "empty latitude"}},
		Sources:    []string{"b"},
	})

	assert.Equal(t, 15, total.Added)
	assert.Equal(t, 2, total.Duplicates)
	assert.Equal(t, 1, total.Rejected)
	assert.Len(t, total.Rejections, 1)
	assert.Equal(t, []string{"a", "b"}, total.Sources)
}

func TestHistogramTotal(t *testing.T) {
	h := model.Histogram{Edges: []float64{0, 10, 20}, Counts: []int{4, 6}}
	assert.Equal(t, 10, h.Total())
	assert.Equal(t, 0, model.Histogram{NoData: true}.Total())
}
