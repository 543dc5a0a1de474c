// Package aggregate computes every requested derived view — time bins,
// spatial grid, scatter points, histograms, summary stats — in a single
// traversal of the filtered pulse sequence. A second traversal over a
// large dataset is the primary cost this design avoids.
package aggregate

import (
	"sort"
	"time"

	"github.com/couchcryptid/lightning-pulse-api/internal/filter"
	"github.com/couchcryptid/lightning-pulse-api/internal/model"
	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the snapshot size below which chunked workers
// cost more than they save.
const parallelThreshold = 50_000

// Engine runs aggregation passes. Workers > 1 splits the snapshot into
// chunks merged in a fixed order; every accumulator is commutative and
// the scatter sampler is priority-based, so results are identical for
// any worker count.
type Engine struct {
	workers int
}

// New creates an Engine. workers <= 1 selects the sequential path.
func New(workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{workers: workers}
}

// Run applies the predicate to the snapshot and computes all views the
// request names. The request must already be normalized.
func (e *Engine) Run(pulses []model.Pulse, match filter.Predicate, req model.AggregationRequest) model.ResultBundle {
	return e.scan(pulses, match, req).finalize(req)
}

func (e *Engine) scan(pulses []model.Pulse, match filter.Predicate, req model.AggregationRequest) *accumulator {
	workers := e.workers
	if workers <= 1 || len(pulses) < parallelThreshold {
		acc := newAccumulator(req)
		for i := range pulses {
			if match(&pulses[i]) {
				acc.add(&pulses[i])
			}
		}
		return acc
	}

	accs := make([]*accumulator, workers)
	chunk := (len(pulses) + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(pulses))
		if lo >= hi {
			break
		}
		acc := newAccumulator(req)
		accs[w] = acc
		part := pulses[lo:hi]
		g.Go(func() error {
			for i := range part {
				if match(&part[i]) {
					acc.add(&part[i])
				}
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; Wait only synchronizes

	// Merge in chunk order. Counts are commutative sums and sampling is
	// priority-based, so partition boundaries cannot change the result.
	total := newAccumulator(req)
	for _, acc := range accs {
		if acc != nil {
			total.merge(acc)
		}
	}
	return total
}

// ─── Accumulator ────────────────────────────────────────────

type accumulator struct {
	total, cg, ic int

	granularity model.Granularity
	bins        map[time.Time]*model.TimeBin

	cellSize float64
	cells    map[model.GridCoord]int

	peakVals []float64 // |peak current| kA
	icVals   []float64 // IC height km, intracloud pulses with height only

	sampler *sampler
}

func newAccumulator(req model.AggregationRequest) *accumulator {
	return &accumulator{
		granularity: req.Granularity,
		bins:        make(map[time.Time]*model.TimeBin),
		cellSize:    req.CellSizeDeg,
		cells:       make(map[model.GridCoord]int),
		sampler:     newSampler(req.MaxScatterPoints, req.SampleSeed),
	}
}

// add updates every view for one matching pulse.
func (a *accumulator) add(p *model.Pulse) {
	a.total++
	intracloud := p.Class == model.ClassIntracloud
	if intracloud {
		a.ic++
	} else {
		a.cg++
	}

	start := binFloor(p.Time, a.granularity)
	bin, ok := a.bins[start]
	if !ok {
		bin = &model.TimeBin{Start: start}
		a.bins[start] = bin
	}
	bin.Count++
	if intracloud {
		bin.ICCount++
	} else {
		bin.CGCount++
	}

	a.cells[cellFor(p.Lat, p.Lon, a.cellSize)]++

	a.peakVals = append(a.peakVals, abs(p.PeakCurrentKA))
	if intracloud && p.ICHeightKM != nil {
		a.icVals = append(a.icVals, *p.ICHeightKM)
	}

	a.sampler.offer(p)
}

// merge folds another chunk's accumulator into this one.
func (a *accumulator) merge(b *accumulator) {
	a.total += b.total
	a.cg += b.cg
	a.ic += b.ic

	for start, bin := range b.bins {
		dst, ok := a.bins[start]
		if !ok {
			a.bins[start] = bin
			continue
		}
		dst.Count += bin.Count
		dst.CGCount += bin.CGCount
		dst.ICCount += bin.ICCount
	}

	for coord, n := range b.cells {
		a.cells[coord] += n
	}

	a.peakVals = append(a.peakVals, b.peakVals...)
	a.icVals = append(a.icVals, b.icVals...)
	a.sampler.merge(b.sampler)
}

// finalize assembles the read-only result bundle.
func (a *accumulator) finalize(req model.AggregationRequest) model.ResultBundle {
	series := make([]model.TimeBin, 0, len(a.bins))
	for _, bin := range a.bins {
		series = append(series, *bin)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Start.Before(series[j].Start) })

	cells := make([]model.GridCell, 0, len(a.cells))
	for coord, n := range a.cells {
		cells = append(cells, model.GridCell{GridCoord: coord, Count: n})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})

	var cgShare, icShare float64
	if a.total > 0 {
		cgShare = float64(a.cg) / float64(a.total)
		icShare = float64(a.ic) / float64(a.total)
	}

	return model.ResultBundle{
		TimeSeries: series,
		Grid: model.SpatialGrid{
			CellSizeDeg: a.cellSize,
			Cells:       cells,
			Points:      a.sampler.points(),
			Sampled:     a.total > a.sampler.cap,
		},
		PeakCurrent: buildHistogram(a.peakVals, req.PeakCurrent),
		ICHeight:    buildHistogram(a.icVals, req.ICHeight),
		Summary: model.SummaryStats{
			Total:   a.total,
			CGCount: a.cg,
			ICCount: a.ic,
			CGShare: cgShare,
			ICShare: icShare,
		},
	}
}

// binFloor truncates a timestamp to its bin boundary. DAY bins align to
// UTC midnight.
func binFloor(t time.Time, g model.Granularity) time.Time {
	return t.UTC().Truncate(g.Duration())
}

// cellFor assigns a coordinate to its grid cell. Cells are anchored at
// the (0, 0) origin, not the filtered data's bounding box, so the same
// cell size always yields the same cell identities.
func cellFor(lat, lon, cellSize float64) model.GridCoord {
	return model.GridCoord{
		Row: floorDiv(lat, cellSize),
		Col: floorDiv(lon, cellSize),
	}
}

func floorDiv(v, size float64) int {
	q := v / size
	n := int(q)
	if q < 0 && float64(n) != q {
		n--
	}
	return n
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
