// Package filter compiles a model.PulseFilter into a single predicate
// with well-defined composition semantics: all set axes AND together,
// an unset axis imposes no restriction.
package filter

import (
	"math"

	"github.com/couchcryptid/lightning-pulse-api/internal/model"
)

// Predicate reports whether a pulse matches a compiled filter. It is a
// pure function of the filter spec, reusable across many records.
type Predicate func(*model.Pulse) bool

// Compile validates the filter and builds its predicate. Compilation
// never touches the record store; all comparison bounds are closed over
// up front so matching allocates nothing per record.
func Compile(f *model.PulseFilter) (Predicate, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}

	if f == nil {
		return func(*model.Pulse) bool { return true }, nil
	}

	var conds []Predicate

	if f.Window != nil {
		w := *f.Window
		conds = append(conds, func(p *model.Pulse) bool { return w.Contains(p.Time) })
	}

	if len(f.Polarities) > 0 {
		allowed := make(map[model.Polarity]bool, len(f.Polarities))
		for _, pol := range f.Polarities {
			allowed[pol] = true
		}
		conds = append(conds, func(p *model.Pulse) bool { return allowed[p.Polarity] })
	}

	if len(f.Classes) > 0 {
		allowed := make(map[model.StrokeClass]bool, len(f.Classes))
		for _, c := range f.Classes {
			allowed[c] = true
		}
		conds = append(conds, func(p *model.Pulse) bool { return allowed[p.Class] })
	}

	if f.BBox != nil {
		box := *f.BBox
		conds = append(conds, func(p *model.Pulse) bool { return box.Contains(p.Lat, p.Lon) })
	}

	if f.MinPeakCurrentKA != nil {
		minKA := *f.MinPeakCurrentKA
		conds = append(conds, func(p *model.Pulse) bool { return math.Abs(p.PeakCurrentKA) >= minKA })
	}

	if len(conds) == 0 {
		return func(*model.Pulse) bool { return true }, nil
	}

	return func(p *model.Pulse) bool {
		for _, cond := range conds {
			if !cond(p) {
				return false
			}
		}
		return true
	}, nil
}
